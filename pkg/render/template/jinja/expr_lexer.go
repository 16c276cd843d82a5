package jinja

import (
	"strconv"
	"strings"
)

type exprTokenKind int

const (
	exprIdent exprTokenKind = iota
	exprString
	exprNumber
	exprDot
	exprComma
	exprPipe
	exprEq
	exprNeq
	exprLParen
	exprRParen
	exprEOF
)

type exprToken struct {
	kind exprTokenKind
	raw  string
	// value holds the decoded literal for strings and numbers.
	value any
	// offset is absolute within the template source.
	offset int
}

// tokenizeExpr scans a tag body. base is the absolute offset of input[0].
func tokenizeExpr(src *source, input string, base int) ([]exprToken, error) {
	var tokens []exprToken
	i := 0

	for i < len(input) {
		ch := input[i]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			i++
			continue
		}

		start := i
		switch {
		case ch == '.':
			tokens = append(tokens, exprToken{kind: exprDot, raw: ".", offset: base + start})
			i++
		case ch == ',':
			tokens = append(tokens, exprToken{kind: exprComma, raw: ",", offset: base + start})
			i++
		case ch == '(':
			tokens = append(tokens, exprToken{kind: exprLParen, raw: "(", offset: base + start})
			i++
		case ch == ')':
			tokens = append(tokens, exprToken{kind: exprRParen, raw: ")", offset: base + start})
			i++
		case ch == '|':
			tokens = append(tokens, exprToken{kind: exprPipe, raw: "|", offset: base + start})
			i++
		case ch == '=':
			if i+1 >= len(input) || input[i+1] != '=' {
				return nil, src.syntaxError(base+start, `unexpected "="; use "=="`)
			}
			tokens = append(tokens, exprToken{kind: exprEq, raw: "==", offset: base + start})
			i += 2
		case ch == '!':
			if i+1 >= len(input) || input[i+1] != '=' {
				return nil, src.syntaxError(base+start, `unexpected "!"; use "not" or "!="`)
			}
			tokens = append(tokens, exprToken{kind: exprNeq, raw: "!=", offset: base + start})
			i += 2
		case ch == '"' || ch == '\'':
			value, next, ok := scanString(input, i)
			if !ok {
				return nil, src.syntaxError(base+start, "unterminated string literal")
			}
			tokens = append(tokens, exprToken{kind: exprString, raw: input[start:next], value: value, offset: base + start})
			i = next
		case isDigit(ch):
			for i < len(input) && isDigit(input[i]) {
				i++
			}
			raw := input[start:i]
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, src.syntaxError(base+start, "invalid number literal "+strconv.Quote(raw))
			}
			tokens = append(tokens, exprToken{kind: exprNumber, raw: raw, value: n, offset: base + start})
		case isIdentStart(ch):
			for i < len(input) && isIdentPart(input[i]) {
				i++
			}
			tokens = append(tokens, exprToken{kind: exprIdent, raw: input[start:i], offset: base + start})
		default:
			return nil, src.syntaxError(base+start, "unexpected character "+strconv.QuoteRune(rune(ch)))
		}
	}

	tokens = append(tokens, exprToken{kind: exprEOF, offset: base + len(input)})
	return tokens, nil
}

func scanString(input string, from int) (string, int, bool) {
	quote := input[from]
	var b strings.Builder
	for i := from + 1; i < len(input); i++ {
		ch := input[i]
		if ch == '\\' && i+1 < len(input) {
			i++
			switch input[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(input[i])
			}
			continue
		}
		if ch == quote {
			return b.String(), i + 1, true
		}
		b.WriteByte(ch)
	}
	return "", len(input), false
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
