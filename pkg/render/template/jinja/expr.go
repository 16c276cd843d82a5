package jinja

import (
	"errors"
	"fmt"
	"strings"
)

type expr interface {
	eval(s *state) (any, error)
	check(c *checker, bound boundSet) error
	offset() int
	String() string
}

type nameExpr struct {
	name string
	off  int
}

func (e *nameExpr) eval(s *state) (any, error) {
	value, ok := s.scope.lookup(e.name)
	if !ok {
		return nil, s.unknown(e.off, "name", e.name)
	}
	return value, nil
}

func (e *nameExpr) check(c *checker, bound boundSet) error {
	if !bound.has(e.name) {
		return c.unknown(e.off, "name", e.name)
	}
	return nil
}

func (e *nameExpr) offset() int    { return e.off }
func (e *nameExpr) String() string { return e.name }

type attrExpr struct {
	target expr
	name   string
}

func (e *attrExpr) eval(s *state) (any, error) {
	target, err := e.target.eval(s)
	if err != nil {
		return nil, err
	}
	value, ok := attribute(target, e.name)
	if !ok {
		return nil, s.unknown(e.offset(), "attribute", e.String())
	}
	return value, nil
}

func (e *attrExpr) check(c *checker, bound boundSet) error {
	if err := e.target.check(c, bound); err != nil {
		return err
	}
	if _, ok := attrKind(staticKind(e.target, bound), e.name); !ok {
		return c.unknown(e.offset(), "attribute", e.String())
	}
	return nil
}

func (e *attrExpr) offset() int    { return e.target.offset() }
func (e *attrExpr) String() string { return e.target.String() + "." + e.name }

type callExpr struct {
	receiver expr
	method   string
	args     []expr
}

func (e *callExpr) eval(s *state) (any, error) {
	fn, ok := stringMethods[e.method]
	if !ok {
		return nil, s.unknown(e.offset(), "method", e.String())
	}
	recv, err := e.receiver.eval(s)
	if err != nil {
		return nil, err
	}
	str, ok := recv.(string)
	if !ok {
		return nil, s.mismatch(e.offset(), e.receiver, "string", recv)
	}
	if len(e.args) > 0 {
		return nil, &TypeMismatchError{
			Template: s.src.name,
			Pos:      s.src.position(e.offset()),
			Expr:     e.String(),
			Want:     "a call without arguments",
			Got:      fmt.Sprintf("a call with %d argument(s)", len(e.args)),
		}
	}
	return fn(str), nil
}

func (e *callExpr) check(c *checker, bound boundSet) error {
	if _, ok := stringMethods[e.method]; !ok {
		return c.unknown(e.offset(), "method", e.String())
	}
	if err := e.receiver.check(c, bound); err != nil {
		return err
	}
	for _, arg := range e.args {
		if err := arg.check(c, bound); err != nil {
			return err
		}
	}
	return nil
}

func (e *callExpr) offset() int { return e.receiver.offset() }

func (e *callExpr) String() string {
	args := make([]string, len(e.args))
	for i, arg := range e.args {
		args[i] = arg.String()
	}
	return e.receiver.String() + "." + e.method + "(" + strings.Join(args, ", ") + ")"
}

type filterExpr struct {
	target expr
	name   string
	arg    expr
	off    int
}

func (e *filterExpr) eval(s *state) (any, error) {
	fn, ok := s.filters[e.name]
	if !ok {
		return nil, s.unknown(e.off, "filter", e.name)
	}
	input, err := e.target.eval(s)
	if err != nil {
		return nil, err
	}
	var param any
	if e.arg != nil {
		if param, err = e.arg.eval(s); err != nil {
			return nil, err
		}
	}

	out, err := fn(input, param)
	if err != nil {
		var mismatch *TypeMismatchError
		if errors.As(err, &mismatch) && mismatch.Pos.IsZero() {
			filled := *mismatch
			filled.Template = s.src.name
			filled.Pos = s.src.position(e.target.offset())
			if filled.Expr == "" {
				filled.Expr = e.String()
			}
			return nil, &filled
		}
		return nil, fmt.Errorf("jinja: %s: filter %q: %w", location(s.src.name, s.src.position(e.off)), e.name, err)
	}
	return out, nil
}

func (e *filterExpr) check(c *checker, bound boundSet) error {
	if _, ok := c.filters[e.name]; !ok {
		return c.unknown(e.off, "filter", e.name)
	}
	if err := e.target.check(c, bound); err != nil {
		return err
	}
	if e.arg != nil {
		return e.arg.check(c, bound)
	}
	return nil
}

func (e *filterExpr) offset() int { return e.target.offset() }

func (e *filterExpr) String() string {
	out := e.target.String() + " | " + e.name
	if e.arg != nil {
		out += "(" + e.arg.String() + ")"
	}
	return out
}

type notExpr struct {
	inner expr
	off   int
}

func (e *notExpr) eval(s *state) (any, error) {
	value, err := evalBool(s, e.inner)
	if err != nil {
		return nil, err
	}
	return !value, nil
}

func (e *notExpr) check(c *checker, bound boundSet) error {
	return e.inner.check(c, bound)
}

func (e *notExpr) offset() int    { return e.off }
func (e *notExpr) String() string { return "not " + e.inner.String() }

type logicalExpr struct {
	op    string
	left  expr
	right expr
}

func (e *logicalExpr) eval(s *state) (any, error) {
	left, err := evalBool(s, e.left)
	if err != nil {
		return nil, err
	}
	if e.op == "and" && !left {
		return false, nil
	}
	if e.op == "or" && left {
		return true, nil
	}
	return evalBool(s, e.right)
}

func (e *logicalExpr) check(c *checker, bound boundSet) error {
	if err := e.left.check(c, bound); err != nil {
		return err
	}
	return e.right.check(c, bound)
}

func (e *logicalExpr) offset() int    { return e.left.offset() }
func (e *logicalExpr) String() string { return e.left.String() + " " + e.op + " " + e.right.String() }

type compareExpr struct {
	op    string
	left  expr
	right expr
}

func (e *compareExpr) eval(s *state) (any, error) {
	left, err := e.left.eval(s)
	if err != nil {
		return nil, err
	}
	right, err := e.right.eval(s)
	if err != nil {
		return nil, err
	}
	if !isComparable(left) {
		return nil, s.mismatch(e.left.offset(), e.left, "a comparable value", left)
	}
	if !isComparable(right) {
		return nil, s.mismatch(e.right.offset(), e.right, "a comparable value", right)
	}
	equal := left == right
	if e.op == "!=" {
		return !equal, nil
	}
	return equal, nil
}

func (e *compareExpr) check(c *checker, bound boundSet) error {
	if err := e.left.check(c, bound); err != nil {
		return err
	}
	return e.right.check(c, bound)
}

func (e *compareExpr) offset() int    { return e.left.offset() }
func (e *compareExpr) String() string { return e.left.String() + " " + e.op + " " + e.right.String() }

type literalExpr struct {
	value any
	raw   string
	off   int
}

func (e *literalExpr) eval(*state) (any, error)       { return e.value, nil }
func (e *literalExpr) check(*checker, boundSet) error { return nil }
func (e *literalExpr) offset() int                    { return e.off }
func (e *literalExpr) String() string                 { return e.raw }

func evalBool(s *state, e expr) (bool, error) {
	value, err := e.eval(s)
	if err != nil {
		return false, err
	}
	b, ok := value.(bool)
	if !ok {
		return false, s.mismatch(e.offset(), e, "bool", value)
	}
	return b, nil
}

// exprParser is a recursive descent parser over expression tokens. Precedence
// from loosest to tightest: or, and, not, ==/!=, filters, attribute access.
type exprParser struct {
	src    *source
	tokens []exprToken
	pos    int
}

func newExprParser(src *source, body string, base int) (*exprParser, error) {
	tokens, err := tokenizeExpr(src, body, base)
	if err != nil {
		return nil, err
	}
	return &exprParser{src: src, tokens: tokens}, nil
}

func (p *exprParser) peek() exprToken {
	return p.tokens[p.pos]
}

func (p *exprParser) next() exprToken {
	tok := p.tokens[p.pos]
	if tok.kind != exprEOF {
		p.pos++
	}
	return tok
}

func (p *exprParser) atKeyword(word string) bool {
	tok := p.peek()
	return tok.kind == exprIdent && tok.raw == word
}

func (p *exprParser) atEOF() bool {
	return p.peek().kind == exprEOF
}

func (p *exprParser) expectEOF() error {
	if tok := p.peek(); tok.kind != exprEOF {
		return p.src.syntaxError(tok.offset, fmt.Sprintf("unexpected %q", tok.raw))
	}
	return nil
}

func (p *exprParser) expect(kind exprTokenKind, what string) (exprToken, error) {
	tok := p.next()
	if tok.kind != kind {
		return tok, p.src.syntaxError(tok.offset, "expected "+what+", got "+describe(tok))
	}
	return tok, nil
}

func (p *exprParser) parseExpr() (expr, error) {
	return p.parseOr()
}

func (p *exprParser) parseOr() (expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &logicalExpr{op: "or", left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseAnd() (expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("and") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &logicalExpr{op: "and", left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseNot() (expr, error) {
	if p.atKeyword("not") {
		tok := p.next()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &notExpr{inner: inner, off: tok.offset}, nil
	}
	return p.parseCompare()
}

func (p *exprParser) parseCompare() (expr, error) {
	left, err := p.parseFiltered()
	if err != nil {
		return nil, err
	}
	if kind := p.peek().kind; kind == exprEq || kind == exprNeq {
		op := p.next()
		right, err := p.parseFiltered()
		if err != nil {
			return nil, err
		}
		return &compareExpr{op: op.raw, left: left, right: right}, nil
	}
	return left, nil
}

func (p *exprParser) parseFiltered() (expr, error) {
	target, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == exprPipe {
		p.next()
		name, err := p.expect(exprIdent, "filter name")
		if err != nil {
			return nil, err
		}
		filter := &filterExpr{target: target, name: name.raw, off: name.offset}
		if p.peek().kind == exprLParen {
			p.next()
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(exprRParen, `")"`); err != nil {
				return nil, err
			}
			filter.arg = arg
		}
		target = filter
	}
	return target, nil
}

func (p *exprParser) parsePostfix() (expr, error) {
	current, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case exprDot:
			p.next()
			name, err := p.expect(exprIdent, "attribute name")
			if err != nil {
				return nil, err
			}
			if p.peek().kind != exprLParen {
				current = &attrExpr{target: current, name: name.raw}
				continue
			}
			p.next()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			current = &callExpr{receiver: current, method: name.raw, args: args}
		case exprLParen:
			return nil, p.src.syntaxError(p.peek().offset, "only methods can be called, e.g. name.lower()")
		default:
			return current, nil
		}
	}
}

func (p *exprParser) parseArgs() ([]expr, error) {
	var args []expr
	if p.peek().kind == exprRParen {
		p.next()
		return nil, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		tok := p.next()
		switch tok.kind {
		case exprComma:
			continue
		case exprRParen:
			return args, nil
		default:
			return nil, p.src.syntaxError(tok.offset, `expected "," or ")", got `+describe(tok))
		}
	}
}

func (p *exprParser) parsePrimary() (expr, error) {
	tok := p.next()
	switch tok.kind {
	case exprIdent:
		switch tok.raw {
		case "true", "True":
			return &literalExpr{value: true, raw: tok.raw, off: tok.offset}, nil
		case "false", "False":
			return &literalExpr{value: false, raw: tok.raw, off: tok.offset}, nil
		case "none", "None":
			return &literalExpr{value: nil, raw: tok.raw, off: tok.offset}, nil
		}
		if isKeyword(tok.raw) {
			return nil, p.src.syntaxError(tok.offset, fmt.Sprintf("unexpected keyword %q", tok.raw))
		}
		return &nameExpr{name: tok.raw, off: tok.offset}, nil
	case exprString, exprNumber:
		return &literalExpr{value: tok.value, raw: tok.raw, off: tok.offset}, nil
	case exprLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(exprRParen, `")"`); err != nil {
			return nil, err
		}
		return inner, nil
	case exprEOF:
		return nil, p.src.syntaxError(tok.offset, "unexpected end of expression")
	default:
		return nil, p.src.syntaxError(tok.offset, fmt.Sprintf("unexpected %q", tok.raw))
	}
}

func isKeyword(word string) bool {
	switch word {
	case "and", "or", "not", "in", "if", "else", "elif":
		return true
	default:
		return false
	}
}

func describe(tok exprToken) string {
	if tok.kind == exprEOF {
		return "end of expression"
	}
	return fmt.Sprintf("%q", tok.raw)
}
