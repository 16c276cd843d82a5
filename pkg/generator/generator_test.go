package generator_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudgen/pkg/entity"
	"github.com/goliatone/go-crudgen/pkg/generator"
	"github.com/goliatone/go-crudgen/pkg/render/template/jinja"
)

func userEntity() entity.EntitySchema {
	return entity.MustNew("User",
		entity.PropertyDescriptor{Name: "email", Type: "string", Description: "Email", Required: true},
		entity.PropertyDescriptor{Name: "age", Type: "number", Description: "Age"},
	)
}

func newEngine(t *testing.T) *jinja.Engine {
	t.Helper()
	engine, err := jinja.New(jinja.WithFS(fstest.MapFS{
		"model.ts.tpl":   {Data: []byte("export class {{ entity.name }} {\n{% for p in entity.properties %}  {{ p.name }}: {{ p.type }};\n{% endfor %}}\n")},
		"service.ts.tpl": {Data: []byte("@Injectable()\nexport class {{ entity.name }}Service {}\n")},
		"broken.ts.tpl":  {Data: []byte("{{ entity.nope }}")},
	}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func mustEmitter(t *testing.T, name string, engine *jinja.Engine, tmpl, path string, options ...generator.EmitterOption) *generator.TemplateEmitter {
	t.Helper()
	emitter, err := generator.NewTemplateEmitter(name, engine, tmpl, path, options...)
	if err != nil {
		t.Fatalf("new emitter %s: %v", name, err)
	}
	return emitter
}

func newGenerator(t *testing.T, options ...generator.Option) *generator.Generator {
	t.Helper()
	engine := newEngine(t)
	base := []generator.Option{generator.WithEmitters(
		mustEmitter(t, "model", engine, "model.ts", "models/{{ entity.name.lower() }}.ts"),
		mustEmitter(t, "service", engine, "service.ts", "services/{{ entity.name.lower() }}.service.ts", generator.WithMarkers("@Injectable")),
	)}
	gen, err := generator.New(append(base, options...)...)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	return gen
}

func paths(artifacts []generator.Artifact) []string {
	out := make([]string, len(artifacts))
	for i, a := range artifacts {
		out[i] = a.Path
	}
	return out
}

func TestRegistry(t *testing.T) {
	engine := newEngine(t)
	registry := generator.NewRegistry()
	registry.MustRegister(mustEmitter(t, "service", engine, "service.ts", "s.ts"))
	registry.MustRegister(mustEmitter(t, "model", engine, "model.ts", "m.ts"))

	if err := registry.Register(mustEmitter(t, "model", engine, "model.ts", "other.ts")); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected nil emitter error")
	}
	if diff := cmp.Diff([]string{"model", "service"}, registry.List()); diff != "" {
		t.Fatalf("List mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"service", "model"}, registry.Ordered()); diff != "" {
		t.Fatalf("Ordered mismatch (-want +got):\n%s", diff)
	}
	if !registry.Has("model") || registry.Has("dto") {
		t.Fatalf("Has mismatch")
	}
	if _, err := registry.Get("dto"); err == nil || !strings.Contains(err.Error(), `unknown target "dto"`) {
		t.Fatalf("expected unknown target error, got %v", err)
	}
}

func TestGenerate_DefaultTargets(t *testing.T) {
	gen := newGenerator(t)

	artifacts, err := gen.Generate(context.Background(), generator.Request{Entity: userEntity()})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if diff := cmp.Diff([]string{"models/user.ts", "services/user.service.ts"}, paths(artifacts)); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	want := "export class User {\n  email: string;\n  age: number;\n}\n"
	if diff := cmp.Diff(want, artifacts[0].String()); diff != "" {
		t.Fatalf("model mismatch (-want +got):\n%s", diff)
	}
	if artifacts[1].Target != "service" || artifacts[1].Entity != "User" {
		t.Fatalf("unexpected artifact metadata: %+v", artifacts[1])
	}
}

func TestGenerate_SelectedTargets(t *testing.T) {
	gen := newGenerator(t)

	artifacts, err := gen.Generate(context.Background(), generator.Request{Entity: userEntity(), Targets: []string{"service"}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if diff := cmp.Diff([]string{"services/user.service.ts"}, paths(artifacts)); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	cases := map[string][]string{
		"unknown":   {"dto"},
		"duplicate": {"model", "model"},
	}
	for name, targets := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := gen.Generate(context.Background(), generator.Request{Entity: userEntity(), Targets: targets}); err == nil {
				t.Fatalf("expected error for targets %v", targets)
			}
		})
	}
}

func TestGenerate_InvalidEntity(t *testing.T) {
	gen := newGenerator(t)

	_, err := gen.Generate(context.Background(), generator.Request{Entity: entity.EntitySchema{Name: "bad name"}})
	if !errors.Is(err, entity.ErrInvalidIdentifier) {
		t.Fatalf("expected invalid identifier, got %v", err)
	}
}

func TestGenerate_MarkerValidation(t *testing.T) {
	engine := newEngine(t)
	gen, err := generator.New(generator.WithEmitters(
		mustEmitter(t, "model", engine, "model.ts", "models/{{ entity.name.lower() }}.ts", generator.WithMarkers("export class", "@Entity", "@Column")),
	))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	_, err = gen.Generate(context.Background(), generator.Request{Entity: userEntity()})
	var markerErr *generator.MarkerError
	if !errors.As(err, &markerErr) {
		t.Fatalf("expected MarkerError, got %v", err)
	}
	want := &generator.MarkerError{Target: "model", Path: "models/user.ts", Missing: []string{"@Entity", "@Column"}}
	if diff := cmp.Diff(want, markerErr); diff != "" {
		t.Fatalf("marker error mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(err.Error(), "User/model") {
		t.Fatalf("error should name entity and target: %v", err)
	}
}

func TestGenerate_ReportsEveryFailingTarget(t *testing.T) {
	engine := newEngine(t)
	gen, err := generator.New(generator.WithEmitters(
		mustEmitter(t, "first", engine, "broken.ts", "a.ts"),
		mustEmitter(t, "model", engine, "model.ts", "b.ts"),
		mustEmitter(t, "second", engine, "missing.ts", "c.ts"),
	))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	artifacts, err := gen.Generate(context.Background(), generator.Request{Entity: userEntity()})
	if err == nil {
		t.Fatalf("expected error")
	}
	if artifacts != nil {
		t.Fatalf("expected no artifacts on failure, got %d", len(artifacts))
	}
	var refErr *jinja.UnknownReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected UnknownReferenceError in %v", err)
	}
	for _, fragment := range []string{"User/first", "User/second"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error %q missing %q", err, fragment)
		}
	}
}

func TestGenerate_CancelledContext(t *testing.T) {
	gen := newGenerator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := gen.Generate(ctx, generator.Request{Entity: userEntity()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateAll_DeterministicOrder(t *testing.T) {
	gen := newGenerator(t, generator.WithConcurrency(3))

	var entities []entity.EntitySchema
	var want []string
	for _, name := range []string{"Zebra", "Apple", "Mango", "Kiwi", "Banana"} {
		entities = append(entities, entity.MustNew(name, entity.PropertyDescriptor{Name: "id", Type: "string", Required: true}))
		lower := strings.ToLower(name)
		want = append(want, "models/"+lower+".ts", "services/"+lower+".service.ts")
	}

	for i := 0; i < 5; i++ {
		artifacts, err := gen.GenerateAll(context.Background(), entities)
		if err != nil {
			t.Fatalf("generate all: %v", err)
		}
		if diff := cmp.Diff(want, paths(artifacts)); diff != "" {
			t.Fatalf("paths mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestGenerateAll_Errors(t *testing.T) {
	gen := newGenerator(t)
	user := userEntity()

	if _, err := gen.GenerateAll(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty input")
	}
	if _, err := gen.GenerateAll(context.Background(), []entity.EntitySchema{user, user}); err == nil || !strings.Contains(err.Error(), "#1 and #2") {
		t.Fatalf("expected duplicate entity error, got %v", err)
	}
	if _, err := gen.GenerateAll(context.Background(), []entity.EntitySchema{user}, "dto"); err == nil {
		t.Fatalf("expected unknown target error")
	}
	invalid := entity.EntitySchema{Name: "Broken", Properties: []entity.PropertyDescriptor{{Name: "x"}}}
	if _, err := gen.GenerateAll(context.Background(), []entity.EntitySchema{user, invalid}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestNewTemplateEmitter_Errors(t *testing.T) {
	engine := newEngine(t)
	cases := map[string]func() error{
		"no name": func() error {
			_, err := generator.NewTemplateEmitter("", engine, "model.ts", "a.ts")
			return err
		},
		"no renderer": func() error {
			_, err := generator.NewTemplateEmitter("model", nil, "model.ts", "a.ts")
			return err
		},
		"no template": func() error {
			_, err := generator.NewTemplateEmitter("model", engine, "", "a.ts")
			return err
		},
		"no path": func() error {
			_, err := generator.NewTemplateEmitter("model", engine, "model.ts", " ")
			return err
		},
		"bad path markup": func() error {
			_, err := generator.NewTemplateEmitter("model", engine, "model.ts", "{{ entity.nope }}.ts")
			return err
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			if err := fn(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestTemplateEmitter_RejectsEscapingPaths(t *testing.T) {
	engine := newEngine(t)
	for _, pattern := range []string{
		"../{{ entity.name }}.ts",
		"/abs/{{ entity.name }}.ts",
		"a/../../{{ entity.name }}.ts",
		"{% if false %}x{% endif %}",
	} {
		emitter := mustEmitter(t, "model", engine, "model.ts", pattern)
		if _, err := emitter.Emit(context.Background(), userEntity()); err == nil {
			t.Fatalf("expected path error for %q", pattern)
		}
	}

	emitter := mustEmitter(t, "model", engine, "model.ts", "./a//b/../{{ entity.name }}.ts")
	artifact, err := emitter.Emit(context.Background(), userEntity())
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if artifact.Path != "a/User.ts" {
		t.Fatalf("expected cleaned path, got %q", artifact.Path)
	}
}

type fakeBuilder struct {
	calls []string
}

func (f *fakeBuilder) Build(_ context.Context, entities ...entity.EntitySchema) ([]byte, error) {
	for _, e := range entities {
		f.calls = append(f.calls, e.Name)
	}
	if len(entities) == 1 && entities[0].Name == "Fail" {
		return nil, errors.New("boom")
	}
	return []byte(`{"openapi":"3.0.3","paths":{}}`), nil
}

func TestOpenAPIEmitter(t *testing.T) {
	builder := &fakeBuilder{}
	emitter, err := generator.NewOpenAPIEmitter("openapi", builder, "openapi/{{ entity.name | kebab }}.json", generator.WithMarkers(`"openapi"`), generator.WithDescription("OpenAPI document"))
	if err != nil {
		t.Fatalf("new emitter: %v", err)
	}
	if emitter.Description() != "OpenAPI document" {
		t.Fatalf("description mismatch: %q", emitter.Description())
	}

	artifact, err := emitter.Emit(context.Background(), entity.MustNew("OrderItem"))
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if artifact.Path != "openapi/order-item.json" {
		t.Fatalf("path mismatch: %q", artifact.Path)
	}
	if _, err := emitter.Emit(context.Background(), entity.MustNew("Fail")); err == nil {
		t.Fatalf("expected builder error")
	}
	if diff := cmp.Diff([]string{"OrderItem", "Fail"}, builder.calls); diff != "" {
		t.Fatalf("builder calls mismatch (-want +got):\n%s", diff)
	}
	if _, err := generator.NewOpenAPIEmitter("openapi", nil, "x.json"); err == nil {
		t.Fatalf("expected missing builder error")
	}
}
