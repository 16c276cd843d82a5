package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Environment variable prefix for crudgen configuration.
const envPrefix = "CRUDGEN"

// DefaultConfigFile is read from the working directory when no file is given.
const DefaultConfigFile = "crudgen.yaml"

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"templates":     "templates",
	"output":        "output",
	"engine":        "engine",
	"targets":       "targets",
	"overwrite":     "overwrite",
	"dry-run":       "dryRun",
	"openapi":       "openapi",
	"concurrency":   "concurrency",
	"trim-blocks":   "trimBlocks",
	"lstrip-blocks": "lstripBlocks",
}

// Loader handles loading and merging configuration from multiple sources.
// Precedence: flags, then environment, then file, then defaults.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault("templates", defaults.Templates)
	v.SetDefault("output", defaults.Output)
	v.SetDefault("engine", defaults.Engine)
	v.SetDefault("targets", []string{})
	v.SetDefault("overwrite", false)
	v.SetDefault("dryRun", false)
	v.SetDefault("openapi", false)
	v.SetDefault("concurrency", defaults.Concurrency)
	v.SetDefault("trimBlocks", false)
	v.SetDefault("lstripBlocks", false)

	return &Loader{v: v}
}

// BindFlags binds the known flags present in flags so explicitly set values
// override file and environment values.
func (l *Loader) BindFlags(flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := l.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("config: bind flag %q: %w", name, err)
		}
	}
	return nil
}

// Load reads configFile, or DefaultConfigFile when it exists and configFile
// is empty, and returns the validated configuration.
func (l *Loader) Load(configFile string) (*Config, error) {
	explicit := configFile != ""
	if !explicit {
		configFile = DefaultConfigFile
	}

	l.v.SetConfigFile(configFile)
	l.v.SetConfigType("yaml")
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if explicit || !missing {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Used reports the config file that was read, if any.
func (l *Loader) Used() string {
	if _, err := os.Stat(l.v.ConfigFileUsed()); err != nil {
		return ""
	}
	return l.v.ConfigFileUsed()
}
