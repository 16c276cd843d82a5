package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crudgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	assert.NotNil(t, loader)
	assert.NotNil(t, loader.v)
}

func TestLoaderLoad(t *testing.T) {
	t.Run("loads config from file", func(t *testing.T) {
		path := writeConfig(t, `
templates: ./templates
output: src
engine: gotemplate
targets: [dto, service]
overwrite: true
concurrency: 8
trimBlocks: true
paths:
  dto: src/{{ entity.name.lower() }}/dto.ts
`)
		cfg, err := NewLoader().Load(path)

		require.NoError(t, err)
		assert.Equal(t, "./templates", cfg.Templates)
		assert.Equal(t, "src", cfg.Output)
		assert.Equal(t, "gotemplate", cfg.Engine)
		assert.Equal(t, []string{"dto", "service"}, cfg.Targets)
		assert.True(t, cfg.Overwrite)
		assert.Equal(t, 8, cfg.Concurrency)
		assert.True(t, cfg.TrimBlocks)
		assert.False(t, cfg.LStripBlocks)
		assert.Equal(t, map[string]string{"dto": "src/{{ entity.name.lower() }}/dto.ts"}, cfg.Paths)
	})

	t.Run("applies defaults without a file", func(t *testing.T) {
		chdir(t, t.TempDir())

		cfg, err := NewLoader().Load("")

		require.NoError(t, err)
		assert.Equal(t, DefaultOutput, cfg.Output)
		assert.Equal(t, DefaultEngine, cfg.Engine)
		assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
		assert.Empty(t, cfg.Targets)
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		_, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeConfig(t, "output: from-file\nengine: jinja\n")
		t.Setenv("CRUDGEN_OUTPUT", "from-env")
		t.Setenv("CRUDGEN_TARGETS", "dto,swagger")

		cfg, err := NewLoader().Load(path)

		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Output)
		assert.Equal(t, []string{"dto", "swagger"}, cfg.Targets)
	})

	t.Run("flags override environment", func(t *testing.T) {
		path := writeConfig(t, "output: from-file\n")
		t.Setenv("CRUDGEN_OUTPUT", "from-env")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("output", "", "")
		flags.Bool("dry-run", false, "")
		require.NoError(t, flags.Parse([]string{"--output", "from-flag", "--dry-run"}))

		loader := NewLoader()
		require.NoError(t, loader.BindFlags(flags))
		cfg, err := loader.Load(path)

		require.NoError(t, err)
		assert.Equal(t, "from-flag", cfg.Output)
		assert.True(t, cfg.DryRun)
	})

	t.Run("unchanged flags keep defaults", func(t *testing.T) {
		chdir(t, t.TempDir())
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.Int("concurrency", 0, "")
		require.NoError(t, flags.Parse(nil))

		loader := NewLoader()
		require.NoError(t, loader.BindFlags(flags))
		cfg, err := loader.Load("")

		require.NoError(t, err)
		assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := writeConfig(t, "engine: mustache\nconcurrency: 0\n")

		_, err := NewLoader().Load(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown engine "mustache"`)
		assert.Contains(t, err.Error(), "concurrency must be positive")
	})
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Targets = []string{"dto", "dto"}
	cfg.Paths = map[string]string{"service": ""}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `target "dto" listed twice`)
	assert.Contains(t, err.Error(), `empty path pattern for "service"`)

	dry := DefaultConfig()
	dry.Output = ""
	dry.DryRun = true
	assert.NoError(t, dry.Validate())
}
