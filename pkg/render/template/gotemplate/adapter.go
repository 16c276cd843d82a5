package gotemplate

import (
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-crudgen/pkg/entity"
	"github.com/goliatone/go-crudgen/pkg/generator"
	"github.com/goliatone/go-crudgen/pkg/naming"
	"github.com/goliatone/go-crudgen/pkg/render/template"
)

// Option configures the Engine before the go-template renderer is built.
type Option func(*config)

type config struct {
	options   []gotemplatepkg.Option
	postHooks []gotemplatepkg.PostHook
}

// WithBaseDir loads templates from dir. Empty values are ignored.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		if dir = strings.TrimSpace(dir); dir != "" {
			cfg.options = append(cfg.options, gotemplatepkg.WithBaseDir(dir))
		}
	}
}

// WithFS loads templates from files. A nil FS is ignored.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.options = append(cfg.options, gotemplatepkg.WithFS(files))
		}
	}
}

// WithExtension overrides the ".tpl" suffix appended to template names.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		if ext = strings.TrimSpace(ext); ext != "" {
			cfg.options = append(cfg.options, gotemplatepkg.WithExtension(ext))
		}
	}
}

// WithTemplateFunc registers pongo2 filters and callable globals.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		cfg.options = append(cfg.options, gotemplatepkg.WithTemplateFunc(funcs))
	}
}

// WithGlobalData seeds values visible to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		cfg.options = append(cfg.options, gotemplatepkg.WithGlobalData(data))
	}
}

// WithGoTemplateOptions passes options straight to go-template.
func WithGoTemplateOptions(opts ...gotemplatepkg.Option) Option {
	return func(cfg *config) {
		cfg.options = append(cfg.options, opts...)
	}
}

// WithPostHook runs hook on every successful render, in registration order.
func WithPostHook(hooks ...gotemplatepkg.PostHook) Option {
	return func(cfg *config) {
		cfg.postHooks = append(cfg.postHooks, hooks...)
	}
}

// WithMarkers fails a named template whose output lacks any of the markers
// listed for it. Keys are template names as passed to RenderTemplate.
func WithMarkers(markers map[string][]string) Option {
	return WithPostHook(MarkerHook(markers))
}

// Engine renders Django-syntax template bundles through go-template.
// Entities are exposed as plain maps, so bundles use `forloop.Last` and
// filters (`entity.name|lower`) instead of method calls.
type Engine struct {
	*gotemplatepkg.Engine
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an Engine. Either WithBaseDir or WithFS is required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	disableAutoescape()

	opts := append([]gotemplatepkg.Option{gotemplatepkg.WithTemplateFunc(namingFilters())}, cfg.options...)
	renderer, err := gotemplatepkg.NewRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: %w", err)
	}

	renderer.RegisterPreHook(entityPreHook)
	for _, hook := range cfg.postHooks {
		if hook != nil {
			renderer.RegisterPostHook(hook)
		}
	}
	return &Engine{Engine: renderer}, nil
}

// EntityContext exposes schema under the `entity` key with every attribute
// present, including empty descriptions.
func EntityContext(schema entity.EntitySchema) pongo2.Context {
	props := make([]any, len(schema.Properties))
	for i, prop := range schema.Properties {
		props[i] = map[string]any{
			"name":        prop.Name,
			"type":        prop.Type,
			"description": prop.Description,
			"required":    prop.Required,
		}
	}
	return pongo2.Context{
		"entity": map[string]any{
			"name":        schema.Name,
			"description": schema.Description,
			"properties":  props,
		},
	}
}

// entityPreHook swaps an entity for its template context before go-template
// converts the data.
func entityPreHook(ctx *gotemplatepkg.HookContext) error {
	switch v := ctx.Data.(type) {
	case entity.EntitySchema:
		ctx.Data = EntityContext(v)
	case *entity.EntitySchema:
		if v == nil {
			return fmt.Errorf("gotemplate: entity is nil")
		}
		ctx.Data = EntityContext(*v)
	}
	return nil
}

// MarkerHook returns a post-hook reporting a *generator.MarkerError when a
// named template renders without its markers. Inline strings are skipped.
func MarkerHook(markers map[string][]string) gotemplatepkg.PostHook {
	return func(ctx *gotemplatepkg.HookContext) (string, error) {
		required, ok := markers[ctx.TemplateName]
		if !ok {
			return ctx.Output, nil
		}
		if err := generator.CheckMarkers(ctx.TemplateName, ctx.TemplateName, []byte(ctx.Output), required); err != nil {
			return "", err
		}
		return ctx.Output, nil
	}
}

var autoescapeOnce sync.Once

// Generated sources are not HTML.
func disableAutoescape() {
	autoescapeOnce.Do(func() { pongo2.SetAutoescape(false) })
}

// namingFilters adds the case helpers go-template does not ship. trim and
// lowerfirst come with go-template.
func namingFilters() map[string]any {
	filters := make(map[string]any)
	for name, fn := range map[string]func(string) string{
		"upperfirst": naming.UpperFirst,
		"camel":      naming.Camel,
		"pascal":     naming.Pascal,
		"snake":      naming.Snake,
		"kebab":      naming.Kebab,
		"plural":     naming.Plural,
	} {
		filters[name] = stringFilter(fn)
	}
	return filters
}

func stringFilter(fn func(string) string) pongo2.FilterFunction {
	return func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		if in.Len() <= 0 {
			return pongo2.AsValue(""), nil
		}
		return pongo2.AsValue(fn(in.String())), nil
	}
}
