package jinja

import (
	"sort"
	"strings"
	"unicode/utf8"
)

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenOutput
	tokenBlock
)

type token struct {
	kind tokenKind
	// text holds raw text for tokenText and the trimmed tag body otherwise.
	text string
	// start is the offset of the opening delimiter (or of the text).
	start int
	// body is the offset of text[0] inside the source.
	body int
}

type delimiter struct {
	open  string
	close string
	kind  tokenKind
	label string
}

var delimiters = []delimiter{
	{open: "{{", close: "}}", kind: tokenOutput, label: "output tag"},
	{open: "{%", close: "%}", kind: tokenBlock, label: "block tag"},
	{open: "{#", close: "#}", kind: -1, label: "comment"},
}

// source keeps the template text together with its line index so offsets can
// be reported as positions.
type source struct {
	name  string
	text  string
	lines []int
}

func newSource(name, text string) *source {
	lines := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &source{name: name, text: text, lines: lines}
}

func (s *source) position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.text) {
		offset = len(s.text)
	}
	line := sort.Search(len(s.lines), func(i int) bool { return s.lines[i] > offset }) - 1
	col := utf8.RuneCountInString(s.text[s.lines[line]:offset]) + 1
	return Position{Line: line + 1, Column: col}
}

func (s *source) syntaxError(offset int, msg string) *SyntaxError {
	return &SyntaxError{Template: s.name, Pos: s.position(offset), Msg: msg}
}

type lexOptions struct {
	trimBlocks   bool
	lstripBlocks bool
}

// lex splits the source into text and tag tokens, applying whitespace control
// ("-" markers, trim/lstrip blocks) to the text in between.
func lex(src *source, opts lexOptions) ([]token, error) {
	text := src.text
	var tokens []token

	pos := 0
	trimLeading := false
	trimNewline := false

	emitText := func(start int, chunk string) {
		if chunk != "" {
			tokens = append(tokens, token{kind: tokenText, text: chunk, start: start, body: start})
		}
	}

	for pos < len(text) {
		idx, delim := nextDelimiter(text[pos:])
		if idx < 0 {
			chunk := text[pos:]
			chunk, start := applyLeading(chunk, pos, trimLeading, trimNewline)
			emitText(start, chunk)
			break
		}

		tagStart := pos + idx
		inner := tagStart + len(delim.open)
		leftTrim := inner < len(text) && text[inner] == '-'
		if leftTrim {
			inner++
		}

		end := findClose(text, inner, delim)
		if end < 0 {
			return nil, src.syntaxError(tagStart, "unterminated "+delim.label+`, missing "`+delim.close+`"`)
		}
		innerEnd := end
		rightTrim := innerEnd > inner && text[innerEnd-1] == '-'
		if rightTrim {
			innerEnd--
		}

		chunk, chunkStart := applyLeading(text[pos:tagStart], pos, trimLeading, trimNewline)
		switch {
		case leftTrim:
			chunk = strings.TrimRight(chunk, " \t\r\n")
		case delim.kind != tokenOutput && opts.lstripBlocks:
			chunk = lstripBeforeTag(chunk, chunkStart == 0 || text[chunkStart-1] == '\n')
		}
		emitText(chunkStart, chunk)

		if delim.kind != -1 {
			raw := text[inner:innerEnd]
			trimmed := strings.TrimSpace(raw)
			bodyOffset := inner + strings.Index(raw, trimmed)
			if trimmed == "" {
				bodyOffset = inner
			}
			tokens = append(tokens, token{kind: delim.kind, text: trimmed, start: tagStart, body: bodyOffset})
		}

		trimLeading = rightTrim
		trimNewline = delim.kind != tokenOutput && opts.trimBlocks
		pos = end + len(delim.close)
	}

	return tokens, nil
}

func nextDelimiter(s string) (int, delimiter) {
	best := -1
	var found delimiter
	for _, d := range delimiters {
		idx := strings.Index(s, d.open)
		if idx >= 0 && (best < 0 || idx < best) {
			best = idx
			found = d
		}
	}
	return best, found
}

// findClose returns the offset of the closing delimiter, skipping over quoted
// strings inside output and block tags.
func findClose(text string, from int, delim delimiter) int {
	if delim.kind == -1 {
		idx := strings.Index(text[from:], delim.close)
		if idx < 0 {
			return -1
		}
		return from + idx
	}

	var quote byte
	for i := from; i < len(text); i++ {
		ch := text[i]
		if quote != 0 {
			switch ch {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		if ch == '"' || ch == '\'' {
			quote = ch
			continue
		}
		if strings.HasPrefix(text[i:], delim.close) {
			return i
		}
	}
	return -1
}

func applyLeading(chunk string, start int, trimLeading, trimNewline bool) (string, int) {
	original := len(chunk)
	if trimLeading {
		chunk = strings.TrimLeft(chunk, " \t\r\n")
	} else if trimNewline {
		if strings.HasPrefix(chunk, "\r\n") {
			chunk = chunk[2:]
		} else if strings.HasPrefix(chunk, "\n") {
			chunk = chunk[1:]
		}
	}
	return chunk, start + (original - len(chunk))
}

// lstripBeforeTag removes spaces and tabs between the start of a line and a
// block tag. atLineStart reports whether chunk itself begins a line.
func lstripBeforeTag(chunk string, atLineStart bool) string {
	lastNL := strings.LastIndexByte(chunk, '\n')
	tail := chunk[lastNL+1:]
	if strings.Trim(tail, " \t") != "" {
		return chunk
	}
	if lastNL < 0 && !atLineStart {
		return chunk
	}
	return chunk[:lastNL+1]
}
