package jinja

import (
	"fmt"
	"strings"
)

type parser struct {
	src    *source
	tokens []token
	pos    int
}

// blockTag is a parsed `{% keyword rest %}` header.
type blockTag struct {
	keyword string
	rest    string
	// restOffset is the absolute offset of rest within the source.
	restOffset int
	start      int
}

func parse(src *source, tokens []token) ([]node, error) {
	p := &parser{src: src, tokens: tokens}
	nodes, tag, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if tag != nil {
		return nil, p.src.syntaxError(tag.start, fmt.Sprintf("unexpected {%% %s %%}", tag.keyword))
	}
	return nodes, nil
}

// parseBody collects nodes until one of the terminator keywords or the end of
// input. It returns the terminating tag, or nil at end of input.
func (p *parser) parseBody(terminators ...string) ([]node, *blockTag, error) {
	var nodes []node
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		p.pos++

		switch tok.kind {
		case tokenText:
			nodes = append(nodes, &textNode{text: tok.text})
		case tokenOutput:
			if tok.text == "" {
				return nil, nil, p.src.syntaxError(tok.start, "empty output tag")
			}
			e, err := p.parseFullExpr(tok.text, tok.body)
			if err != nil {
				return nil, nil, err
			}
			nodes = append(nodes, &outputNode{expr: e})
		case tokenBlock:
			tag, err := p.splitTag(tok)
			if err != nil {
				return nil, nil, err
			}
			if contains(terminators, tag.keyword) {
				return nodes, tag, nil
			}
			switch tag.keyword {
			case "for":
				n, err := p.parseFor(tag)
				if err != nil {
					return nil, nil, err
				}
				nodes = append(nodes, n)
			case "if":
				n, err := p.parseIf(tag)
				if err != nil {
					return nil, nil, err
				}
				nodes = append(nodes, n)
			case "endfor", "endif", "else", "elif":
				return nil, nil, p.src.syntaxError(tag.start, fmt.Sprintf("unexpected {%% %s %%}", tag.keyword))
			default:
				return nil, nil, p.src.syntaxError(tag.start, fmt.Sprintf("unknown statement %q", tag.keyword))
			}
		}
	}
	return nodes, nil, nil
}

func (p *parser) splitTag(tok token) (*blockTag, error) {
	if tok.text == "" {
		return nil, p.src.syntaxError(tok.start, "empty block tag")
	}
	keyword := tok.text
	rest := ""
	restOffset := tok.body + len(tok.text)
	if idx := strings.IndexAny(tok.text, " \t\r\n"); idx >= 0 {
		keyword = tok.text[:idx]
		trimmed := strings.TrimLeft(tok.text[idx:], " \t\r\n")
		restOffset = tok.body + len(tok.text) - len(trimmed)
		rest = trimmed
	}
	return &blockTag{keyword: keyword, rest: rest, restOffset: restOffset, start: tok.start}, nil
}

func (p *parser) parseFor(tag *blockTag) (node, error) {
	ep, err := newExprParser(p.src, tag.rest, tag.restOffset)
	if err != nil {
		return nil, err
	}

	name, err := ep.expect(exprIdent, "loop variable")
	if err != nil {
		return nil, err
	}
	if isKeyword(name.raw) || name.raw == "loop" {
		return nil, p.src.syntaxError(name.offset, fmt.Sprintf("%q cannot be used as a loop variable", name.raw))
	}
	if !ep.atKeyword("in") {
		return nil, p.src.syntaxError(ep.peek().offset, `expected "in", got `+describe(ep.peek()))
	}
	ep.next()

	iterable, err := ep.parseExpr()
	if err != nil {
		return nil, err
	}

	n := &forNode{name: name.raw, iterable: iterable}
	if ep.atKeyword("if") {
		ep.next()
		if n.filter, err = ep.parseExpr(); err != nil {
			return nil, err
		}
	}
	if err := ep.expectEOF(); err != nil {
		return nil, err
	}

	body, end, err := p.parseBody("else", "endfor")
	if err != nil {
		return nil, err
	}
	if end == nil {
		return nil, p.src.syntaxError(tag.start, "unclosed for block, missing {% endfor %}")
	}
	n.body = body

	if end.keyword == "else" {
		if err := p.expectBare(end); err != nil {
			return nil, err
		}
		elseBody, closing, err := p.parseBody("endfor")
		if err != nil {
			return nil, err
		}
		if closing == nil {
			return nil, p.src.syntaxError(tag.start, "unclosed for block, missing {% endfor %}")
		}
		n.elseBody = elseBody
		end = closing
	}
	if err := p.expectBare(end); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) parseIf(tag *blockTag) (node, error) {
	n := &ifNode{}
	current := tag
	for {
		cond, err := p.parseFullExpr(current.rest, current.restOffset)
		if err != nil {
			return nil, err
		}
		body, end, err := p.parseBody("elif", "else", "endif")
		if err != nil {
			return nil, err
		}
		if end == nil {
			return nil, p.src.syntaxError(tag.start, "unclosed if block, missing {% endif %}")
		}
		n.branches = append(n.branches, condBranch{cond: cond, body: body})

		switch end.keyword {
		case "elif":
			current = end
			continue
		case "else":
			if err := p.expectBare(end); err != nil {
				return nil, err
			}
			elseBody, closing, err := p.parseBody("endif")
			if err != nil {
				return nil, err
			}
			if closing == nil {
				return nil, p.src.syntaxError(tag.start, "unclosed if block, missing {% endif %}")
			}
			if err := p.expectBare(closing); err != nil {
				return nil, err
			}
			n.elseBody = elseBody
		default:
			if err := p.expectBare(end); err != nil {
				return nil, err
			}
		}
		return n, nil
	}
}

func (p *parser) parseFullExpr(body string, offset int) (expr, error) {
	if strings.TrimSpace(body) == "" {
		return nil, p.src.syntaxError(offset, "missing expression")
	}
	ep, err := newExprParser(p.src, body, offset)
	if err != nil {
		return nil, err
	}
	e, err := ep.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := ep.expectEOF(); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *parser) expectBare(tag *blockTag) error {
	if tag.rest != "" {
		return p.src.syntaxError(tag.restOffset, fmt.Sprintf("unexpected %q after %s", tag.rest, tag.keyword))
	}
	return nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
