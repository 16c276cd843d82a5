package jinja_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudgen/pkg/entity"
	"github.com/goliatone/go-crudgen/pkg/render/template/jinja"
)

func newTestEngine(t *testing.T, files fstest.MapFS, options ...jinja.Option) *jinja.Engine {
	t.Helper()
	engine, err := jinja.New(append([]jinja.Option{jinja.WithFS(files)}, options...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngineRenderTemplateWritesOutput(t *testing.T) {
	files := fstest.MapFS{
		"nestjs/dto.ts.tpl": {Data: []byte("export class {{ entity.name }}Dto {}\n")},
	}
	engine := newTestEngine(t, files)

	var buf bytes.Buffer
	got, err := engine.RenderTemplate("nestjs/dto.ts", userEntity(), &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "export class UserDto {}\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if buf.String() != want {
		t.Fatalf("writer received %q", buf.String())
	}
	if !engine.Has("nestjs/dto.ts") {
		t.Fatal("expected Has to find the template")
	}
	if engine.Has("nestjs/missing") {
		t.Fatal("expected Has to miss an unknown template")
	}
}

func TestEngineRenderDispatchesInlineContent(t *testing.T) {
	engine := newTestEngine(t, fstest.MapFS{})

	got, err := engine.Render("{{ entity.name.lower() }}", &entity.EntitySchema{Name: "Invoice"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "invoice" {
		t.Fatalf("got %q", got)
	}
}

func TestEngineDoesNotWriteOnFailure(t *testing.T) {
	files := fstest.MapFS{
		"broken.tpl": {Data: []byte("partial {% for p in entity.properties %}{{ p.name }}{% if p.name %}{% endif %}{% endfor %}")},
	}
	engine := newTestEngine(t, files)

	var buf bytes.Buffer
	_, err := engine.RenderTemplate("broken", userEntity(), &buf)
	var mismatch *jinja.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if mismatch.Template != "broken.tpl" {
		t.Fatalf("expected template name in error, got %q", mismatch.Template)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected writer untouched, got %q", buf.String())
	}
}

func TestEngineMissingTemplate(t *testing.T) {
	engine := newTestEngine(t, fstest.MapFS{})
	if _, err := engine.RenderTemplate("nope", userEntity()); err == nil || !strings.Contains(err.Error(), `"nope.tpl"`) {
		t.Fatalf("expected missing template error, got %v", err)
	}
}

func TestEngineRegisterFilter(t *testing.T) {
	files := fstest.MapFS{
		"shout.tpl": {Data: []byte("{{ entity.name | shout }}")},
	}
	engine := newTestEngine(t, files)

	if _, err := engine.RenderTemplate("shout", userEntity()); err == nil {
		t.Fatal("expected unknown filter before registration")
	}

	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		return strings.ToUpper(input.(string)) + "!", nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := engine.RenderTemplate("shout", userEntity())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "USER!" {
		t.Fatalf("got %q", got)
	}

	if err := engine.RegisterFilter("lower", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatal("expected duplicate filter to be rejected")
	}
}

func TestEngineWithFilterOption(t *testing.T) {
	engine := newTestEngine(t, fstest.MapFS{}, jinja.WithFilter("quote", func(input any, _ any) (any, error) {
		return "'" + input.(string) + "'", nil
	}))

	got, err := engine.RenderString("{{ entity.name | quote }}", userEntity())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "'User'" {
		t.Fatalf("got %q", got)
	}
}

func TestEngineBaseDirOverridesFS(t *testing.T) {
	dir := t.TempDir()
	if err := writeFile(dir, "dto.tpl", "disk {{ entity.name }}"); err != nil {
		t.Fatal(err)
	}
	files := fstest.MapFS{
		"dto.tpl":     {Data: []byte("embedded {{ entity.name }}")},
		"service.tpl": {Data: []byte("embedded service")},
	}
	engine := newTestEngine(t, files, jinja.WithBaseDir(dir))

	got, err := engine.RenderTemplate("dto", userEntity())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "disk User" {
		t.Fatalf("expected disk template to win, got %q", got)
	}
	got, err = engine.RenderTemplate("service", userEntity())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "embedded service" {
		t.Fatalf("expected embedded fallback, got %q", got)
	}
}

func TestEngineRejectsMissingBaseDir(t *testing.T) {
	if _, err := jinja.New(jinja.WithBaseDir(t.TempDir() + "/missing")); err == nil {
		t.Fatal("expected error for missing template dir")
	}
}

func TestEngineRenderData(t *testing.T) {
	engine := newTestEngine(t, fstest.MapFS{})

	got, err := engine.RenderString("{{ entity.name }}", map[string]any{"entity": userEntity()})
	if err != nil {
		t.Fatalf("render map: %v", err)
	}
	if got != "User" {
		t.Fatalf("got %q", got)
	}

	if _, err := engine.RenderString("{{ entity.name }}", map[string]any{"entity": userEntity(), "extra": 1}); err == nil {
		t.Fatal("expected extra bindings to be rejected")
	}
	if _, err := engine.RenderString("{{ entity.name }}", "User"); err == nil {
		t.Fatal("expected unsupported data to be rejected")
	}
}

func TestEngineTrimOptions(t *testing.T) {
	engine := newTestEngine(t, fstest.MapFS{}, jinja.WithTrimBlocks(true), jinja.WithLStripBlocks(true))

	got, err := engine.RenderString("{% for p in entity.properties %}\n    {% if p.required %}\n{{ p.name }}\n    {% endif %}\n{% endfor %}\n", userEntity())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "email\n" {
		t.Fatalf("got %q", got)
	}
}

func TestEngineConcurrentRenders(t *testing.T) {
	files := fstest.MapFS{
		"props.tpl": {Data: []byte("{% for p in entity.properties %}{{ p.name }}{% if not loop.last %},{% endif %}{% endfor %}")},
	}
	engine := newTestEngine(t, files)

	const workers = 16
	var wg sync.WaitGroup
	results := make([]string, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.RenderTemplate("props", userEntity())
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if results[i] != "email,age" {
			t.Fatalf("worker %d rendered %q", i, results[i])
		}
	}
}

func writeFile(dir, name, content string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
}
