package jinja

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/goliatone/go-crudgen/pkg/entity"
	"github.com/goliatone/go-crudgen/pkg/render/template"
)

// Option configures the Engine before construction.
type Option func(*config)

type config struct {
	baseDir      string
	templates    fs.FS
	extension    string
	filters      map[string]FilterFunc
	trimBlocks   bool
	lstripBlocks bool
}

// WithBaseDir loads named templates from a directory on disk. It takes
// precedence over WithFS so a directory can override an embedded bundle.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads named templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension sets the extension appended to template names that lack it.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithFilter registers an additional filter, replacing a built-in of the same
// name.
func WithFilter(name string, fn FilterFunc) Option {
	return func(cfg *config) {
		name = strings.TrimSpace(name)
		if name == "" || fn == nil {
			return
		}
		cfg.filters[name] = fn
	}
}

// WithTrimBlocks enables dropping the newline that follows a block tag.
func WithTrimBlocks(enabled bool) Option {
	return func(cfg *config) {
		cfg.trimBlocks = enabled
	}
}

// WithLStripBlocks enables stripping indentation in front of block tags.
func WithLStripBlocks(enabled bool) Option {
	return func(cfg *config) {
		cfg.lstripBlocks = enabled
	}
}

// Engine renders named templates from its file systems and inline template
// strings. Parsed templates are cached; the engine is safe for concurrent use.
type Engine struct {
	mu sync.RWMutex

	sources      []fs.FS
	ext          string
	filters      map[string]FilterFunc
	trimBlocks   bool
	lstripBlocks bool
	templates    map[string]*Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine. Without WithBaseDir or WithFS only RenderString is
// usable.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		extension: ".tpl",
		filters:   DefaultFilters(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	var sources []fs.FS
	if cfg.baseDir != "" {
		info, err := os.Stat(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("jinja: template dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("jinja: template dir %q is not a directory", cfg.baseDir)
		}
		sources = append(sources, os.DirFS(cfg.baseDir))
	}
	if cfg.templates != nil {
		sources = append(sources, cfg.templates)
	}

	return &Engine{
		sources:      sources,
		ext:          cfg.extension,
		filters:      cfg.filters,
		trimBlocks:   cfg.trimBlocks,
		lstripBlocks: cfg.lstripBlocks,
		templates:    make(map[string]*Template),
	}, nil
}

// Render renders inline content when name looks like markup and a named
// template otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if template.IsTemplateContent(name) {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate renders a named template loaded from the engine sources.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil {
		return "", errors.New("jinja: engine is nil")
	}
	tmpl, err := e.Template(name)
	if err != nil {
		return "", err
	}
	return e.execute(tmpl, data, out...)
}

// RenderString parses and renders templateContent.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	if e == nil {
		return "", errors.New("jinja: engine is nil")
	}
	tmpl, err := Parse("", templateContent, e.parseOptions()...)
	if err != nil {
		return "", err
	}
	return e.execute(tmpl, data, out...)
}

// RegisterFilter adds a filter. Names already in use are rejected. The parse
// cache is dropped so templates see the new filter.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("jinja: filter name and function required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.filters[name]; exists {
		return fmt.Errorf("jinja: filter %q already exists", name)
	}
	e.filters[name] = FilterFunc(fn)
	e.templates = make(map[string]*Template)
	return nil
}

// Template returns the parsed template for name, loading it on first use.
func (e *Engine) Template(name string) (*Template, error) {
	path := strings.TrimSpace(name)
	if path == "" {
		return nil, errors.New("jinja: template name is required")
	}
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}

	e.mu.RLock()
	tmpl, ok := e.templates[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}

	raw, err := e.read(path)
	if err != nil {
		return nil, err
	}
	tmpl, err = Parse(path, string(raw), e.parseOptionsLocked()...)
	if err != nil {
		return nil, err
	}
	e.templates[path] = tmpl
	return tmpl, nil
}

// Has reports whether a named template exists in any source.
func (e *Engine) Has(name string) bool {
	path := name
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}
	for _, files := range e.sources {
		if _, err := fs.Stat(files, path); err == nil {
			return true
		}
	}
	return false
}

func (e *Engine) read(path string) ([]byte, error) {
	if len(e.sources) == 0 {
		return nil, fmt.Errorf("jinja: load template %q: no template sources configured", path)
	}
	var lastErr error
	for _, files := range e.sources {
		data, err := fs.ReadFile(files, path)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("jinja: load template %q: %w", path, lastErr)
}

func (e *Engine) parseOptions() []ParseOption {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.parseOptionsLocked()
}

func (e *Engine) parseOptionsLocked() []ParseOption {
	return []ParseOption{
		TrimBlocks(e.trimBlocks),
		LStripBlocks(e.lstripBlocks),
		Filters(e.filters),
	}
}

func (e *Engine) execute(tmpl *Template, data any, out ...io.Writer) (string, error) {
	ctx, err := contextFrom(data)
	if err != nil {
		return "", err
	}
	rendered, err := tmpl.Execute(ctx)
	if err != nil {
		return "", err
	}
	if err := template.WriteAll(rendered, out...); err != nil {
		return "", err
	}
	return rendered, nil
}

func contextFrom(data any) (Context, error) {
	switch v := data.(type) {
	case Context:
		return v, nil
	case *Context:
		if v == nil {
			return Context{}, errors.New("jinja: render context is nil")
		}
		return *v, nil
	case entity.EntitySchema:
		return Context{Entity: v}, nil
	case *entity.EntitySchema:
		if v == nil {
			return Context{}, errors.New("jinja: entity is nil")
		}
		return Context{Entity: *v}, nil
	case map[string]any:
		if len(v) != 1 {
			return Context{}, fmt.Errorf("jinja: render data must bind only %q, got %d keys", "entity", len(v))
		}
		raw, ok := v["entity"]
		if !ok {
			return Context{}, fmt.Errorf("jinja: render data must bind %q", "entity")
		}
		switch e := raw.(type) {
		case entity.EntitySchema, *entity.EntitySchema:
			return contextFrom(e)
		default:
			return Context{}, fmt.Errorf("jinja: entity binding has unsupported type %T", raw)
		}
	default:
		return Context{}, fmt.Errorf("jinja: unsupported render data %T", data)
	}
}
