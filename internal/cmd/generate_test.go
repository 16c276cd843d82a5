package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCmd_WritesEveryTarget(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "user.yaml", userSchema)
	out := filepath.Join(dir, "out")

	stdout, _, err := executeCmd(t, "generate", schemaPath, "-o", out)
	require.NoError(t, err)

	for _, rel := range []string{
		"dtos/user.dto.ts",
		"services/user.service.ts",
		"controllers/user.controller.ts",
		"swagger/user.swagger.ts",
	} {
		path := filepath.Join(out, filepath.FromSlash(rel))
		assert.FileExists(t, path)
		assert.Contains(t, stdout, "created     "+path)
	}

	dto, err := os.ReadFile(filepath.Join(out, "dtos", "user.dto.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(dto), "export class CreateUserDto {")
	assert.Contains(t, string(dto), "  age?: number;")
}

func TestGenerateCmd_SelectedTargets(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "user.yaml", userSchema)
	out := filepath.Join(dir, "out")

	_, _, err := executeCmd(t, "generate", schemaPath, "-o", out, "--targets", "dto,swagger", "--openapi")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, "dtos", "user.dto.ts"))
	assert.FileExists(t, filepath.Join(out, "swagger", "user.swagger.ts"))
	assert.NoFileExists(t, filepath.Join(out, "services", "user.service.ts"))
	assert.NoFileExists(t, filepath.Join(out, "openapi", "user.openapi.json"))
}

func TestGenerateCmd_OpenAPITarget(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "user.yaml", userSchema)
	out := filepath.Join(dir, "out")

	_, _, err := executeCmd(t, "generate", schemaPath, "-o", out, "--openapi")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "openapi", "user.openapi.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"/user/{id}"`)
}

func TestGenerateCmd_DryRun(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "user.yaml", userSchema)
	out := filepath.Join(dir, "out")

	stdout, _, err := executeCmd(t, "generate", schemaPath, "-o", out, "--dry-run")
	require.NoError(t, err)

	assert.Equal(t, 4, strings.Count(stdout, "planned"))
	assert.NoDirExists(t, out)
}

func TestGenerateCmd_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "user.yaml", userSchema)
	out := filepath.Join(dir, "out")
	existing := writeFile(t, out, "dtos/user.dto.ts", "keep me")

	_, _, err := executeCmd(t, "generate", schemaPath, "-o", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
	assert.NoFileExists(t, filepath.Join(out, "services", "user.service.ts"))

	stdout, _, err := executeCmd(t, "generate", schemaPath, "-o", out, "--overwrite")
	require.NoError(t, err)
	assert.Contains(t, stdout, "overwritten")
}

func TestGenerateCmd_MultipleDocuments(t *testing.T) {
	dir := t.TempDir()
	blog := filepath.Join("..", "..", "pkg", "schema", "testdata", "blog.yaml")
	user := writeFile(t, dir, "user.yaml", userSchema)
	out := filepath.Join(dir, "out")

	_, _, err := executeCmd(t, "generate", blog, user, "-o", out, "--targets", "dto")
	require.NoError(t, err)

	for _, name := range []string{"post", "comment", "user"} {
		assert.FileExists(t, filepath.Join(out, "dtos", name+".dto.ts"))
	}
}

func TestGenerateCmd_DuplicateEntityAcrossDocuments(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.yaml", userSchema)
	second := writeFile(t, dir, "b.yaml", userSchema)

	_, _, err := executeCmd(t, "generate", first, second, "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate entity "User"`)
	assert.Equal(t, ExitValidationError, ExitCodeFromError(err))
}

func TestGenerateCmd_InvalidSchemaExitCode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{name: "duplicate property", raw: "name: User\nproperties:\n  - name: email\n    type: string\n  - name: email\n    type: string\n", wantErr: `property "email" declared at #1 and #2`},
		{name: "missing type", raw: "name: User\nproperties:\n  - name: email\n", wantErr: "requires a type"},
		{name: "duplicate entity", raw: "entities:\n  - name: A\n  - name: A\n", wantErr: `entity "A" declared at #1 and #2`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schemaPath := writeFile(t, t.TempDir(), "doc.yaml", tt.raw)

			_, _, err := executeCmd(t, "generate", schemaPath, "--dry-run")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, ExitValidationError, ExitCodeFromError(err))
		})
	}
}

func TestGenerateCmd_OpenAPIInput(t *testing.T) {
	dir := t.TempDir()
	shop := filepath.Join("..", "openapi", "parser", "testdata", "shop.yaml")
	out := filepath.Join(dir, "out")

	_, _, err := executeCmd(t, "generate", shop, "--format", "openapi", "--schemas", "Category", "-o", out, "--targets", "dto")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, "dtos", "category.dto.ts"))
}

func TestGenerateCmd_TypeScriptDirectory(t *testing.T) {
	dir := t.TempDir()
	entities := filepath.Join("..", "typescript", "testdata", "entities")
	out := filepath.Join(dir, "out")

	_, _, err := executeCmd(t, "generate", entities, "--format", "typescript", "-o", out, "--targets", "dto")
	require.NoError(t, err)

	for _, name := range []string{"post", "postsummary", "user"} {
		assert.FileExists(t, filepath.Join(out, "dtos", name+".dto.ts"))
	}
	dto, err := os.ReadFile(filepath.Join(out, "dtos", "user.dto.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(dto), "  age?: number;")
}

func TestGenerateCmd_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "user.yaml", userSchema)
	out := filepath.Join(dir, "src")
	configPath := writeFile(t, dir, "crudgen.yaml", `output: `+out+`
targets: [dto]
paths:
  dto: "{{ entity.name.lower() }}/{{ entity.name.lower() }}.dto.ts"
`)

	_, _, err := executeCmd(t, "--config", configPath, "generate", schemaPath)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, "user", "user.dto.ts"))
}

func TestGenerateCmd_CustomTemplates(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "user.yaml", userSchema)
	templates := filepath.Join(dir, "templates")
	writeFile(t, templates, "nestjs/dto.ts.tpl", `// @ApiProperty
export class {{ entity.name }} {}
`)
	out := filepath.Join(dir, "out")

	_, _, err := executeCmd(t, "generate", schemaPath, "-o", out, "--templates", templates, "--targets", "dto,service")
	require.NoError(t, err)

	dto, err := os.ReadFile(filepath.Join(out, "dtos", "user.dto.ts"))
	require.NoError(t, err)
	assert.Equal(t, "// @ApiProperty\nexport class User {}\n", string(dto))

	service, err := os.ReadFile(filepath.Join(out, "services", "user.service.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(service), "@Injectable()")
}

func TestGenerateCmd_TemplateErrorExitCode(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "user.yaml", userSchema)
	templates := filepath.Join(dir, "templates")
	writeFile(t, templates, "nestjs/dto.ts.tpl", "{{ entity.nope }}\n")

	_, _, err := executeCmd(t, "generate", schemaPath, "--dry-run", "--templates", templates)
	require.Error(t, err)
	assert.Equal(t, ExitTemplateError, ExitCodeFromError(err))
}

func TestGenerateCmd_RemoteNeedsAllowHTTP(t *testing.T) {
	for _, arg := range []string{"https://example.com/entities.yaml", "HTTP://example.com/entities.yaml"} {
		t.Run(arg, func(t *testing.T) {
			_, _, err := executeCmd(t, "generate", arg, "--dry-run")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "--allow-http")
		})
	}
}

func TestGenerateCmd_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "user.yaml", userSchema)

	_, _, err := executeCmd(t, "generate", schemaPath, "--engine", "mustache")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown engine "mustache"`)
	assert.Equal(t, ExitValidationError, ExitCodeFromError(err))
}

func TestGenerateCmd_RequiresArgs(t *testing.T) {
	_, _, err := executeCmd(t, "generate")
	require.Error(t, err)
}
