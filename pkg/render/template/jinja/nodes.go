package jinja

import (
	"strings"
)

type node interface {
	render(s *state, out *strings.Builder) error
	check(c *checker, bound boundSet) error
}

type textNode struct {
	text string
}

func (n *textNode) render(_ *state, out *strings.Builder) error {
	out.WriteString(n.text)
	return nil
}

func (n *textNode) check(*checker, boundSet) error { return nil }

type outputNode struct {
	expr expr
}

func (n *outputNode) render(s *state, out *strings.Builder) error {
	value, err := n.expr.eval(s)
	if err != nil {
		return err
	}
	text, ok := stringify(value)
	if !ok {
		return s.mismatch(n.expr.offset(), n.expr, "a printable scalar", value)
	}
	out.WriteString(text)
	return nil
}

func (n *outputNode) check(c *checker, bound boundSet) error {
	return n.expr.check(c, bound)
}

type forNode struct {
	name     string
	iterable expr
	filter   expr
	body     []node
	elseBody []node
}

func (n *forNode) render(s *state, out *strings.Builder) error {
	value, err := n.iterable.eval(s)
	if err != nil {
		return err
	}
	items, ok := toList(value)
	if !ok {
		return s.mismatch(n.iterable.offset(), n.iterable, "list", value)
	}

	// Filtered loops materialise the matching items first so loop.last and
	// friends describe the filtered sequence.
	if n.filter != nil {
		matched := make([]any, 0, len(items))
		for _, item := range items {
			keep, err := s.with(map[string]any{n.name: item}, func() (bool, error) {
				return evalBool(s, n.filter)
			})
			if err != nil {
				return err
			}
			if keep {
				matched = append(matched, item)
			}
		}
		items = matched
	}

	if len(items) == 0 {
		return renderNodes(s, n.elseBody, out)
	}

	for i, item := range items {
		bindings := map[string]any{
			n.name: item,
			"loop": loopState{index0: i, length: len(items)},
		}
		_, err := s.with(bindings, func() (bool, error) {
			return true, renderNodes(s, n.body, out)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (n *forNode) check(c *checker, bound boundSet) error {
	if err := n.iterable.check(c, bound); err != nil {
		return err
	}
	inner := bound.with(n.name, elementKind(staticKind(n.iterable, bound)))
	if n.filter != nil {
		if err := n.filter.check(c, inner); err != nil {
			return err
		}
	}
	if err := checkNodes(c, inner.with("loop", kindLoop), n.body); err != nil {
		return err
	}
	return checkNodes(c, bound, n.elseBody)
}

type condBranch struct {
	cond expr
	body []node
}

type ifNode struct {
	branches []condBranch
	elseBody []node
}

func (n *ifNode) render(s *state, out *strings.Builder) error {
	for _, branch := range n.branches {
		ok, err := evalBool(s, branch.cond)
		if err != nil {
			return err
		}
		if ok {
			return renderNodes(s, branch.body, out)
		}
	}
	return renderNodes(s, n.elseBody, out)
}

func (n *ifNode) check(c *checker, bound boundSet) error {
	for _, branch := range n.branches {
		if err := branch.cond.check(c, bound); err != nil {
			return err
		}
		if err := checkNodes(c, bound, branch.body); err != nil {
			return err
		}
	}
	return checkNodes(c, bound, n.elseBody)
}

func renderNodes(s *state, nodes []node, out *strings.Builder) error {
	for _, n := range nodes {
		if err := n.render(s, out); err != nil {
			return err
		}
	}
	return nil
}

func checkNodes(c *checker, bound boundSet, nodes []node) error {
	for _, n := range nodes {
		if err := n.check(c, bound); err != nil {
			return err
		}
	}
	return nil
}

// scope is a chain of variable bindings; inner scopes shadow outer ones.
type scope struct {
	vars   map[string]any
	parent *scope
}

func (sc *scope) lookup(name string) (any, bool) {
	for cur := sc; cur != nil; cur = cur.parent {
		if value, ok := cur.vars[name]; ok {
			return value, true
		}
	}
	return nil, false
}

// state carries everything a single execution needs. It is never shared
// between executions.
type state struct {
	src     *source
	filters map[string]FilterFunc
	scope   *scope
}

func (s *state) with(vars map[string]any, fn func() (bool, error)) (bool, error) {
	parent := s.scope
	s.scope = &scope{vars: vars, parent: parent}
	defer func() { s.scope = parent }()
	return fn()
}

func (s *state) unknown(offset int, kind, name string) error {
	return &UnknownReferenceError{Template: s.src.name, Pos: s.src.position(offset), Kind: kind, Name: name}
}

func (s *state) mismatch(offset int, e expr, want string, got any) error {
	return &TypeMismatchError{
		Template: s.src.name,
		Pos:      s.src.position(offset),
		Expr:     e.String(),
		Want:     want,
		Got:      typeName(got),
	}
}

// checker validates references statically so names used only inside loops
// that never run are still reported.
type checker struct {
	src     *source
	filters map[string]FilterFunc
}

func (c *checker) unknown(offset int, kind, name string) error {
	return &UnknownReferenceError{Template: c.src.name, Pos: c.src.position(offset), Kind: kind, Name: name}
}
