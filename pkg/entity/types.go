package entity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

var (
	// ErrInvalidEntity matches every ValidationError.
	ErrInvalidEntity = errors.New("entity: invalid entity")

	// ErrInvalidIdentifier reports a name that cannot be used as an
	// identifier in generated code.
	ErrInvalidIdentifier = errors.New("entity: invalid identifier")
)

// ValidationError lists the problems found in one entity definition. It
// matches ErrInvalidEntity and unwraps to each problem.
type ValidationError struct {
	Entity   string
	Problems []error
}

func (e *ValidationError) Error() string {
	return errors.Join(e.Problems...).Error()
}

// Is reports whether target is ErrInvalidEntity.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidEntity
}

func (e *ValidationError) Unwrap() []error {
	return e.Problems
}

// Invalid wraps problems in a ValidationError for entity, or returns nil when
// there are none.
func Invalid(entity string, problems ...error) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Entity: entity, Problems: problems}
}

// EntitySchema describes the logical resource being scaffolded.
type EntitySchema struct {
	Name        string               `json:"name" yaml:"name"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Properties  []PropertyDescriptor `json:"properties" yaml:"properties"`
}

// PropertyDescriptor describes a single entity field. Type is opaque to the
// renderer and inserted verbatim.
type PropertyDescriptor struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool   `json:"required" yaml:"required"`
}

// New validates and returns an EntitySchema. The properties slice is copied.
func New(name string, properties ...PropertyDescriptor) (EntitySchema, error) {
	schema := EntitySchema{
		Name:       strings.TrimSpace(name),
		Properties: append([]PropertyDescriptor(nil), properties...),
	}
	if err := schema.Validate(); err != nil {
		return EntitySchema{}, err
	}
	return schema, nil
}

// MustNew panics when New fails. Useful for fixtures.
func MustNew(name string, properties ...PropertyDescriptor) EntitySchema {
	schema, err := New(name, properties...)
	if err != nil {
		panic(err)
	}
	return schema
}

// LowerName returns the case-folded entity name used for file names, routes
// and ORM client accessors.
func (e EntitySchema) LowerName() string {
	return strings.ToLower(e.Name)
}

// RequiredProperties materialises the subset of properties marked required,
// preserving their relative order.
func (e EntitySchema) RequiredProperties() []PropertyDescriptor {
	out := make([]PropertyDescriptor, 0, len(e.Properties))
	for _, prop := range e.Properties {
		if prop.Required {
			out = append(out, prop)
		}
	}
	return out
}

// RequiredNames lists the names of required properties in declaration order.
func (e EntitySchema) RequiredNames() []string {
	required := e.RequiredProperties()
	if len(required) == 0 {
		return nil
	}
	names := make([]string, len(required))
	for i, prop := range required {
		names[i] = prop.Name
	}
	return names
}

// Property looks up a property by name.
func (e EntitySchema) Property(name string) (PropertyDescriptor, bool) {
	for _, prop := range e.Properties {
		if prop.Name == name {
			return prop, true
		}
	}
	return PropertyDescriptor{}, false
}

// Clone returns a copy that shares no slices with the receiver.
func (e EntitySchema) Clone() EntitySchema {
	cloned := e
	if e.Properties != nil {
		cloned.Properties = append([]PropertyDescriptor(nil), e.Properties...)
	}
	return cloned
}

// Validate checks identifier rules and property name uniqueness. Every problem
// found is reported in the returned *ValidationError.
func (e EntitySchema) Validate() error {
	var errs []error
	if !IsIdentifier(e.Name) {
		errs = append(errs, fmt.Errorf("%w: entity name %q", ErrInvalidIdentifier, e.Name))
	}

	seen := make(map[string]int, len(e.Properties))
	for i, prop := range e.Properties {
		if err := prop.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("entity %q property #%d: %w", e.Name, i+1, err))
			continue
		}
		if first, exists := seen[prop.Name]; exists {
			errs = append(errs, fmt.Errorf("entity %q: property %q declared at #%d and #%d", e.Name, prop.Name, first+1, i+1))
			continue
		}
		seen[prop.Name] = i
	}
	return Invalid(e.Name, errs...)
}

// Validate checks the descriptor name and type.
func (p PropertyDescriptor) Validate() error {
	if !IsIdentifier(p.Name) {
		return Invalid("", fmt.Errorf("%w: property name %q", ErrInvalidIdentifier, p.Name))
	}
	if strings.TrimSpace(p.Type) == "" {
		return Invalid("", fmt.Errorf("entity: property %q requires a type", p.Name))
	}
	return nil
}

// IsIdentifier reports whether name is usable as an identifier in the
// generated target language.
func IsIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}
