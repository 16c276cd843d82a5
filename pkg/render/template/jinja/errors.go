package jinja

import (
	"fmt"
)

// Position locates a byte in a template source. Line and Column are 1-based;
// columns count runes.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsZero reports whether the position was never assigned.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

// SyntaxError reports malformed markup: unterminated delimiters, unclosed or
// stray blocks, unknown statements and malformed expressions.
type SyntaxError struct {
	Template string
	Pos      Position
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("jinja: %s: syntax error: %s", location(e.Template, e.Pos), e.Msg)
}

// UnknownReferenceError reports a reference to something that is not bound in
// the current scope. Kind is one of "name", "attribute", "method" or "filter".
type UnknownReferenceError struct {
	Template string
	Pos      Position
	Kind     string
	Name     string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("jinja: %s: unknown %s %q", location(e.Template, e.Pos), e.Kind, e.Name)
}

// TypeMismatchError reports a value used where a different kind of value is
// required, for example a loop over a string or a condition over a name.
type TypeMismatchError struct {
	Template string
	Pos      Position
	Expr     string
	Want     string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	subject := "value"
	if e.Expr != "" {
		subject = fmt.Sprintf("%q", e.Expr)
	}
	return fmt.Sprintf("jinja: %s: type mismatch: %s is %s, want %s", location(e.Template, e.Pos), subject, e.Got, e.Want)
}

// NewTypeMismatch builds a position-less TypeMismatchError. Filters return it
// and the engine fills in the location of the filter expression.
func NewTypeMismatch(want string, got any) *TypeMismatchError {
	return &TypeMismatchError{Want: want, Got: typeName(got)}
}

func location(name string, pos Position) string {
	if name == "" {
		return pos.String()
	}
	return name + ":" + pos.String()
}
