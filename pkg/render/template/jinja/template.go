package jinja

import (
	"strings"

	"github.com/goliatone/go-crudgen/pkg/entity"
)

// Context is the data a template renders against. It binds exactly one root
// name, `entity`.
type Context struct {
	Entity entity.EntitySchema
}

// ParseOption configures parsing.
type ParseOption func(*parseConfig)

type parseConfig struct {
	lex     lexOptions
	filters map[string]FilterFunc
}

// TrimBlocks drops the first newline after a block tag or comment.
func TrimBlocks(enabled bool) ParseOption {
	return func(cfg *parseConfig) {
		cfg.lex.trimBlocks = enabled
	}
}

// LStripBlocks strips spaces and tabs between the start of a line and a block
// tag or comment.
func LStripBlocks(enabled bool) ParseOption {
	return func(cfg *parseConfig) {
		cfg.lex.lstripBlocks = enabled
	}
}

// Filters replaces the filter set available to the template. The map is copied.
func Filters(filters map[string]FilterFunc) ParseOption {
	copied := make(map[string]FilterFunc, len(filters))
	for name, fn := range filters {
		copied[name] = fn
	}
	return func(cfg *parseConfig) {
		cfg.filters = copied
	}
}

// Template is a parsed, immutable template. It is safe for concurrent use.
type Template struct {
	src     *source
	root    []node
	filters map[string]FilterFunc
}

// Parse compiles text into a Template. Syntax errors and references to names,
// methods or filters that can never resolve are reported here.
func Parse(name, text string, options ...ParseOption) (*Template, error) {
	cfg := parseConfig{filters: DefaultFilters()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	src := newSource(name, text)
	tokens, err := lex(src, cfg.lex)
	if err != nil {
		return nil, err
	}
	root, err := parse(src, tokens)
	if err != nil {
		return nil, err
	}

	c := &checker{src: src, filters: cfg.filters}
	if err := checkNodes(c, boundSet{"entity": kindEntity}, root); err != nil {
		return nil, err
	}

	return &Template{src: src, root: root, filters: cfg.filters}, nil
}

// MustParse panics when Parse fails. Intended for package-level templates.
func MustParse(name, text string, options ...ParseOption) *Template {
	tmpl, err := Parse(name, text, options...)
	if err != nil {
		panic(err)
	}
	return tmpl
}

// Name returns the name the template was parsed with.
func (t *Template) Name() string {
	return t.src.name
}

// Execute renders the template. On failure no partial output is returned.
func (t *Template) Execute(ctx Context) (string, error) {
	s := &state{
		src:     t.src,
		filters: t.filters,
		scope:   &scope{vars: map[string]any{"entity": ctx.Entity}},
	}
	var out strings.Builder
	if err := renderNodes(s, t.root, &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

// Render parses and executes source against ctx using the default filters.
func Render(source string, ctx Context, options ...ParseOption) (string, error) {
	tmpl, err := Parse("", source, options...)
	if err != nil {
		return "", err
	}
	return tmpl.Execute(ctx)
}
