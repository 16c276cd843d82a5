package openapi

import "strings"

// ImportOptions toggles how documents are turned into entities.
type ImportOptions struct {
	// ResolveReferences allows external $ref pointers to be followed.
	ResolveReferences bool

	// Validate runs full document validation before conversion.
	Validate bool

	// Schemas limits the import to the named components. Empty means every
	// object schema.
	Schemas []string
}

// ImportOption mutates ImportOptions during construction.
type ImportOption func(*ImportOptions)

// WithReferenceResolution toggles external reference resolution.
func WithReferenceResolution(enabled bool) ImportOption {
	return func(opts *ImportOptions) {
		opts.ResolveReferences = enabled
	}
}

// WithValidation toggles document validation.
func WithValidation(enabled bool) ImportOption {
	return func(opts *ImportOptions) {
		opts.Validate = enabled
	}
}

// WithSchemas restricts the import to the named component schemas, in the
// order given.
func WithSchemas(names ...string) ImportOption {
	return func(opts *ImportOptions) {
		for _, name := range names {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				opts.Schemas = append(opts.Schemas, trimmed)
			}
		}
	}
}

// NewImportOptions applies ImportOption functions over the defaults
// (validation on, external references off).
func NewImportOptions(options ...ImportOption) ImportOptions {
	cfg := ImportOptions{Validate: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// BuildOptions describes the document envelope produced by a Builder.
type BuildOptions struct {
	Title       string
	Version     string
	Description string
}

// BuildOption mutates BuildOptions during construction.
type BuildOption func(*BuildOptions)

// WithTitle sets info.title.
func WithTitle(title string) BuildOption {
	return func(opts *BuildOptions) {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			opts.Title = trimmed
		}
	}
}

// WithVersion sets info.version.
func WithVersion(version string) BuildOption {
	return func(opts *BuildOptions) {
		if trimmed := strings.TrimSpace(version); trimmed != "" {
			opts.Version = trimmed
		}
	}
}

// WithDescription sets info.description.
func WithDescription(description string) BuildOption {
	return func(opts *BuildOptions) {
		opts.Description = strings.TrimSpace(description)
	}
}

// NewBuildOptions applies BuildOption functions over the defaults.
func NewBuildOptions(options ...BuildOption) BuildOptions {
	cfg := BuildOptions{Title: "Generated API", Version: "1.0.0"}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
