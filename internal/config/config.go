// Package config loads crudgen settings from a YAML file, the environment and
// command line flags.
package config

import (
	"errors"
	"fmt"
	"sort"
)

// Config is the resolved generator configuration.
type Config struct {
	// Templates is a directory whose templates take precedence over the
	// embedded bundle. Env: CRUDGEN_TEMPLATES
	Templates string `mapstructure:"templates"`

	// Output is the directory artifacts are written to. Env: CRUDGEN_OUTPUT
	Output string `mapstructure:"output"`

	// Engine selects the template engine: jinja (default) or gotemplate.
	Engine string `mapstructure:"engine"`

	// Targets limits generation to the named targets. Empty means all.
	Targets []string `mapstructure:"targets"`

	Overwrite    bool `mapstructure:"overwrite"`
	DryRun       bool `mapstructure:"dryRun"`
	OpenAPI      bool `mapstructure:"openapi"`
	Concurrency  int  `mapstructure:"concurrency"`
	TrimBlocks   bool `mapstructure:"trimBlocks"`
	LStripBlocks bool `mapstructure:"lstripBlocks"`

	// Paths overrides output path patterns per target.
	Paths map[string]string `mapstructure:"paths"`
}

// Default values.
const (
	DefaultOutput      = "generated"
	DefaultEngine      = "jinja"
	DefaultConcurrency = 4
)

var engines = map[string]struct{}{
	"jinja":      {},
	"gotemplate": {},
}

// DefaultConfig returns a Config with every default populated.
func DefaultConfig() *Config {
	return &Config{
		Output:      DefaultOutput,
		Engine:      DefaultEngine,
		Concurrency: DefaultConcurrency,
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if _, ok := engines[c.Engine]; !ok {
		errs = append(errs, fmt.Errorf("config: unknown engine %q", c.Engine))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("config: concurrency must be positive, got %d", c.Concurrency))
	}
	if c.Output == "" && !c.DryRun {
		errs = append(errs, errors.New("config: output directory is required"))
	}
	targets := make(map[string]struct{}, len(c.Targets))
	for _, target := range c.Targets {
		if _, dup := targets[target]; dup {
			errs = append(errs, fmt.Errorf("config: target %q listed twice", target))
		}
		targets[target] = struct{}{}
	}
	for _, target := range c.PathTargets() {
		if c.Paths[target] == "" {
			errs = append(errs, fmt.Errorf("config: empty path pattern for %q", target))
		}
	}
	return errors.Join(errs...)
}

// PathTargets returns the targets with a path override, sorted.
func (c *Config) PathTargets() []string {
	names := make([]string, 0, len(c.Paths))
	for name := range c.Paths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
