package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-crudgen/pkg/entity"
	pkgopenapi "github.com/goliatone/go-crudgen/pkg/openapi"
	"github.com/goliatone/go-crudgen/pkg/render/template"
	"github.com/goliatone/go-crudgen/pkg/render/template/jinja"
)

// Emitter produces a single artifact for an entity.
type Emitter interface {
	Name() string
	Emit(ctx context.Context, e entity.EntitySchema) (Artifact, error)
}

// MarkerError reports generated code that lacks the markers its target
// requires.
type MarkerError struct {
	Target  string
	Path    string
	Missing []string
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("generator: %s (%s) is missing %s", e.Target, e.Path, strings.Join(quoted(e.Missing), ", "))
}

// CheckMarkers returns a *MarkerError when content lacks any marker.
func CheckMarkers(target, path string, content []byte, markers []string) error {
	var missing []string
	for _, marker := range markers {
		if marker == "" {
			continue
		}
		if !strings.Contains(string(content), marker) {
			missing = append(missing, marker)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MarkerError{Target: target, Path: path, Missing: missing}
}

func quoted(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}

// EmitterOption customises an emitter.
type EmitterOption func(*emitterConfig)

type emitterConfig struct {
	markers     []string
	description string
}

// WithMarkers declares strings the generated content must contain.
func WithMarkers(markers ...string) EmitterOption {
	return func(c *emitterConfig) {
		c.markers = append(c.markers, markers...)
	}
}

// WithDescription attaches a human readable summary shown by target listings.
func WithDescription(description string) EmitterOption {
	return func(c *emitterConfig) {
		c.description = description
	}
}

func newEmitterConfig(options []EmitterOption) emitterConfig {
	var cfg emitterConfig
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

// Describer is implemented by emitters that carry a description.
type Describer interface {
	Description() string
}

// pathTemplate renders output paths. Patterns always use the strict engine,
// whichever engine renders the artifact body.
type pathTemplate struct {
	tmpl *jinja.Template
}

func parsePath(target, pattern string) (pathTemplate, error) {
	if strings.TrimSpace(pattern) == "" {
		return pathTemplate{}, fmt.Errorf("generator: %s: path pattern is required", target)
	}
	tmpl, err := jinja.Parse(target+" path", pattern)
	if err != nil {
		return pathTemplate{}, fmt.Errorf("generator: %s: %w", target, err)
	}
	return pathTemplate{tmpl: tmpl}, nil
}

func (p pathTemplate) render(e entity.EntitySchema) (string, error) {
	raw, err := p.tmpl.Execute(jinja.Context{Entity: e})
	if err != nil {
		return "", err
	}
	return cleanPath(raw)
}

// TemplateEmitter renders a named template with the entity bound as
// `entity`.
type TemplateEmitter struct {
	name     string
	renderer template.TemplateRenderer
	template string
	path     pathTemplate
	cfg      emitterConfig
}

var _ Emitter = (*TemplateEmitter)(nil)

// NewTemplateEmitter builds an emitter that renders templateName through
// renderer and writes the result to the path produced by pathPattern.
func NewTemplateEmitter(name string, renderer template.TemplateRenderer, templateName, pathPattern string, options ...EmitterOption) (*TemplateEmitter, error) {
	if name == "" {
		return nil, errors.New("generator: emitter name is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("generator: %s: renderer is required", name)
	}
	if templateName == "" {
		return nil, fmt.Errorf("generator: %s: template name is required", name)
	}
	path, err := parsePath(name, pathPattern)
	if err != nil {
		return nil, err
	}
	return &TemplateEmitter{
		name:     name,
		renderer: renderer,
		template: templateName,
		path:     path,
		cfg:      newEmitterConfig(options),
	}, nil
}

// Name implements Emitter.
func (t *TemplateEmitter) Name() string { return t.name }

// Template returns the template name rendered by the emitter.
func (t *TemplateEmitter) Template() string { return t.template }

// Description implements Describer.
func (t *TemplateEmitter) Description() string { return t.cfg.description }

// Markers returns the strings the generated content must contain.
func (t *TemplateEmitter) Markers() []string {
	return append([]string(nil), t.cfg.markers...)
}

// Emit implements Emitter.
func (t *TemplateEmitter) Emit(ctx context.Context, e entity.EntitySchema) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	path, err := t.path.render(e)
	if err != nil {
		return Artifact{}, err
	}
	content, err := t.renderer.RenderTemplate(t.template, e)
	if err != nil {
		return Artifact{}, err
	}
	if err := CheckMarkers(t.name, path, []byte(content), t.cfg.markers); err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Target:  t.name,
		Entity:  e.Name,
		Path:    path,
		Content: []byte(content),
	}, nil
}

// OpenAPIEmitter writes the OpenAPI document describing an entity's CRUD
// surface.
type OpenAPIEmitter struct {
	name    string
	builder pkgopenapi.Builder
	path    pathTemplate
	cfg     emitterConfig
}

var _ Emitter = (*OpenAPIEmitter)(nil)

// NewOpenAPIEmitter builds an emitter backed by an OpenAPI builder.
func NewOpenAPIEmitter(name string, builder pkgopenapi.Builder, pathPattern string, options ...EmitterOption) (*OpenAPIEmitter, error) {
	if name == "" {
		return nil, errors.New("generator: emitter name is required")
	}
	if builder == nil {
		return nil, fmt.Errorf("generator: %s: openapi builder is required", name)
	}
	path, err := parsePath(name, pathPattern)
	if err != nil {
		return nil, err
	}
	return &OpenAPIEmitter{
		name:    name,
		builder: builder,
		path:    path,
		cfg:     newEmitterConfig(options),
	}, nil
}

// Name implements Emitter.
func (o *OpenAPIEmitter) Name() string { return o.name }

// Description implements Describer.
func (o *OpenAPIEmitter) Description() string { return o.cfg.description }

// Emit implements Emitter.
func (o *OpenAPIEmitter) Emit(ctx context.Context, e entity.EntitySchema) (Artifact, error) {
	path, err := o.path.render(e)
	if err != nil {
		return Artifact{}, err
	}
	content, err := o.builder.Build(ctx, e)
	if err != nil {
		return Artifact{}, err
	}
	if err := CheckMarkers(o.name, path, content, o.cfg.markers); err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Target:  o.name,
		Entity:  e.Name,
		Path:    path,
		Content: content,
	}, nil
}
