package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCmd_TemplateFile(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "user.yaml", userSchema)
	tmpl := writeFile(t, dir, "fields.tpl", `{%- for prop in entity.properties if prop.required %}
{{ entity.name | lower }}.{{ prop.name }}
{%- endfor %}
`)

	stdout, _, err := executeCmd(t, "render", "--schema", schemaPath, tmpl)
	require.NoError(t, err)
	assert.Equal(t, "\nuser.email\n", stdout)
}

func TestRenderCmd_EmbeddedTemplate(t *testing.T) {
	blog := filepath.Join("..", "..", "pkg", "schema", "testdata", "blog.yaml")

	stdout, _, err := executeCmd(t, "render", "--schema", blog, "--entity", "Comment", "nestjs/controller.ts.tpl")
	require.NoError(t, err)
	assert.Contains(t, stdout, "@Controller('comment')")
	assert.Contains(t, stdout, "private readonly commentService")
}

func TestRenderCmd_FirstEntityByDefault(t *testing.T) {
	blog := filepath.Join("..", "..", "pkg", "schema", "testdata", "blog.yaml")
	dir := t.TempDir()
	tmpl := writeFile(t, dir, "name.tpl", "{{ entity.name }}")

	stdout, _, err := executeCmd(t, "render", "--schema", blog, tmpl)
	require.NoError(t, err)
	assert.Equal(t, "Post", stdout)
}

func TestRenderCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "user.yaml", userSchema)
	unknown := writeFile(t, dir, "unknown.tpl", "{{ entity.nope }}")
	unclosed := writeFile(t, dir, "unclosed.tpl", "{% if entity.description %}")
	name := writeFile(t, dir, "name.tpl", "{{ entity.name }}")

	tests := []struct {
		name     string
		args     []string
		contains string
		code     int
	}{
		{
			name:     "unknown reference",
			args:     []string{"render", "--schema", schemaPath, unknown},
			contains: `unknown attribute "entity.nope"`,
			code:     ExitTemplateError,
		},
		{
			name:     "syntax error",
			args:     []string{"render", "--schema", schemaPath, unclosed},
			contains: "syntax error",
			code:     ExitTemplateError,
		},
		{
			name:     "missing entity",
			args:     []string{"render", "--schema", schemaPath, "--entity", "Order", name},
			contains: `entity "Order" not found`,
			code:     ExitValidationError,
		},
		{
			name:     "missing template",
			args:     []string{"render", "--schema", schemaPath, filepath.Join(dir, "nope.tpl")},
			contains: "not found on disk or in the embedded bundle",
			code:     ExitGeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCmd(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Equal(t, tt.code, ExitCodeFromError(err))
		})
	}
}

func TestRenderCmd_RequiresSchema(t *testing.T) {
	_, _, err := executeCmd(t, "render", "nestjs/dto.ts.tpl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"schema" not set`)
}
