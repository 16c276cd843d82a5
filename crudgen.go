package crudgen

import (
	"fmt"
	"io/fs"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-crudgen/pkg/generator"
	pkgopenapi "github.com/goliatone/go-crudgen/pkg/openapi"
	"github.com/goliatone/go-crudgen/pkg/render/template"
	"github.com/goliatone/go-crudgen/pkg/render/template/gotemplate"
	"github.com/goliatone/go-crudgen/pkg/render/template/jinja"
)

// Engine names accepted by WithEngine.
const (
	EngineJinja      = "jinja"
	EngineGoTemplate = "gotemplate"
)

// Option customises the generator assembled by NewGenerator.
type Option func(*options)

type options struct {
	engine         string
	templateDir    string
	templateFS     fs.FS
	trimBlocks     bool
	lstripBlocks   bool
	paths          map[string]string
	markers        bool
	openapi        bool
	openapiOptions []pkgopenapi.BuildOption
	logger         *log.Logger
	concurrency    int
}

// WithEngine selects the template engine. Templates written for the
// gotemplate engine use Django syntax and must come from WithTemplateDir or
// WithTemplateFS.
func WithEngine(name string) Option {
	return func(o *options) {
		o.engine = name
	}
}

// WithTemplateDir loads templates from dir before falling back to the
// embedded bundle.
func WithTemplateDir(dir string) Option {
	return func(o *options) {
		o.templateDir = dir
	}
}

// WithTemplateFS replaces the embedded bundle.
func WithTemplateFS(fsys fs.FS) Option {
	return func(o *options) {
		o.templateFS = fsys
	}
}

// WithWhitespace toggles the trim and lstrip block options of the jinja
// engine.
func WithWhitespace(trimBlocks, lstripBlocks bool) Option {
	return func(o *options) {
		o.trimBlocks = trimBlocks
		o.lstripBlocks = lstripBlocks
	}
}

// WithPath overrides the output path pattern of a target.
func WithPath(target, pattern string) Option {
	return func(o *options) {
		if o.paths == nil {
			o.paths = make(map[string]string)
		}
		o.paths[target] = pattern
	}
}

// WithMarkerValidation toggles the generated-code marker checks.
func WithMarkerValidation(enabled bool) Option {
	return func(o *options) {
		o.markers = enabled
	}
}

// WithOpenAPI registers the openapi target after the built-in templates.
func WithOpenAPI(buildOptions ...pkgopenapi.BuildOption) Option {
	return func(o *options) {
		o.openapi = true
		o.openapiOptions = append(o.openapiOptions, buildOptions...)
	}
}

// WithLogger sets the generator logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithConcurrency bounds the number of entities generated at once.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		engine:  EngineJinja,
		markers: true,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(o)
	}
	return o
}

// NewRenderer builds the template engine NewGenerator would use.
func NewRenderer(opts ...Option) (template.TemplateRenderer, error) {
	return newOptions(opts).renderer()
}

func (o *options) renderer() (template.TemplateRenderer, error) {
	files := o.templateFS
	if files == nil {
		files = EmbeddedTemplates()
	}
	switch o.engine {
	case "", EngineJinja:
		return jinja.New(
			jinja.WithBaseDir(o.templateDir),
			jinja.WithFS(files),
			jinja.WithTrimBlocks(o.trimBlocks),
			jinja.WithLStripBlocks(o.lstripBlocks),
		)
	case EngineGoTemplate:
		if o.templateDir == "" && o.templateFS == nil {
			return nil, fmt.Errorf("crudgen: engine %q needs a template directory", o.engine)
		}
		return gotemplate.New(
			gotemplate.WithBaseDir(o.templateDir),
			gotemplate.WithFS(o.templateFS),
		)
	default:
		return nil, fmt.Errorf("crudgen: unknown engine %q", o.engine)
	}
}

// NewGenerator assembles a generator with the built-in targets.
func NewGenerator(opts ...Option) (*generator.Generator, error) {
	o := newOptions(opts)
	renderer, err := o.renderer()
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{})
	var emitters []generator.Emitter
	for _, target := range DefaultTargets() {
		known[target.Name] = struct{}{}
		path := target.Path
		if override, ok := o.paths[target.Name]; ok {
			path = override
		}
		emitterOptions := []generator.EmitterOption{generator.WithDescription(target.Description)}
		if o.markers {
			emitterOptions = append(emitterOptions, generator.WithMarkers(target.Markers...))
		}
		emitter, err := generator.NewTemplateEmitter(target.Name, renderer, target.Template, path, emitterOptions...)
		if err != nil {
			return nil, err
		}
		emitters = append(emitters, emitter)
	}

	if o.openapi {
		known[TargetOpenAPI] = struct{}{}
		path := DefaultOpenAPIPath
		if override, ok := o.paths[TargetOpenAPI]; ok {
			path = override
		}
		emitterOptions := []generator.EmitterOption{generator.WithDescription("OpenAPI 3 document")}
		if o.markers {
			emitterOptions = append(emitterOptions, generator.WithMarkers(`"openapi"`, `"paths"`))
		}
		emitter, err := generator.NewOpenAPIEmitter(TargetOpenAPI, NewBuilder(o.openapiOptions...), path, emitterOptions...)
		if err != nil {
			return nil, err
		}
		emitters = append(emitters, emitter)
	}

	for target := range o.paths {
		if _, ok := known[target]; !ok {
			return nil, fmt.Errorf("crudgen: path override for unknown target %q", target)
		}
	}

	return generator.New(
		generator.WithEmitters(emitters...),
		generator.WithLogger(o.logger),
		generator.WithConcurrency(o.concurrency),
	)
}
