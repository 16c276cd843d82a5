// Package wizard builds an entity schema through interactive prompts.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-crudgen/pkg/entity"
)

// customType is the select option that switches to a free-text type prompt.
const customType = "other..."

// DefaultTypes lists the property types offered by the type prompt.
func DefaultTypes() []string {
	return []string{"string", "number", "boolean", "Date", "string[]", "number[]"}
}

// Option customises a wizard run.
type Option func(*config)

type config struct {
	types []string
	name  string
}

// WithTypes replaces the property types offered by the type prompt.
func WithTypes(types ...string) Option {
	return func(c *config) {
		if len(types) > 0 {
			c.types = append([]string(nil), types...)
		}
	}
}

// WithName pre-fills the entity name prompt.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// Run asks for an entity name and description, then repeats the property
// prompts until the user stops. The returned schema is validated.
func Run(ctx context.Context, driver PromptDriver, options ...Option) (entity.EntitySchema, error) {
	cfg := &config{types: DefaultTypes()}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	name, err := driver.Input(ctx, InputConfig{
		Message:   "Entity name",
		Default:   cfg.name,
		Help:      "PascalCase identifier, e.g. User",
		Validator: validateIdentifier,
	})
	if err != nil {
		return entity.EntitySchema{}, err
	}
	description, err := driver.Input(ctx, InputConfig{Message: "Description (optional)"})
	if err != nil {
		return entity.EntitySchema{}, err
	}

	schema := entity.EntitySchema{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}
	for {
		more, err := driver.Confirm(ctx, ConfirmConfig{
			Message: addMessage(len(schema.Properties)),
			Default: len(schema.Properties) == 0,
		})
		if err != nil {
			return entity.EntitySchema{}, err
		}
		if !more {
			break
		}
		prop, err := askProperty(ctx, driver, cfg.types, schema)
		if err != nil {
			return entity.EntitySchema{}, err
		}
		schema.Properties = append(schema.Properties, prop)
	}

	if err := schema.Validate(); err != nil {
		return entity.EntitySchema{}, err
	}
	if err := driver.Info(ctx, Summary(schema)); err != nil {
		return entity.EntitySchema{}, err
	}
	return schema, nil
}

func addMessage(count int) string {
	if count == 0 {
		return "Add a property?"
	}
	return "Add another property?"
}

func askProperty(ctx context.Context, driver PromptDriver, types []string, current entity.EntitySchema) (entity.PropertyDescriptor, error) {
	name, err := driver.Input(ctx, InputConfig{
		Message: "Property name",
		Validator: func(value string) error {
			if err := validateIdentifier(value); err != nil {
				return err
			}
			if _, exists := current.Property(strings.TrimSpace(value)); exists {
				return fmt.Errorf("property %q already exists", strings.TrimSpace(value))
			}
			return nil
		},
	})
	if err != nil {
		return entity.PropertyDescriptor{}, err
	}

	options := append(append([]string(nil), types...), customType)
	idx, err := driver.Select(ctx, SelectConfig{Message: "Type", Options: options})
	if err != nil {
		return entity.PropertyDescriptor{}, err
	}
	if idx < 0 || idx >= len(options) {
		return entity.PropertyDescriptor{}, fmt.Errorf("wizard: type selection %d out of range", idx)
	}
	typ := options[idx]
	if typ == customType {
		typ, err = driver.Input(ctx, InputConfig{
			Message:   "Type expression",
			Help:      "Inserted verbatim, e.g. Record<string, unknown>",
			Validator: validateType,
		})
		if err != nil {
			return entity.PropertyDescriptor{}, err
		}
	}

	description, err := driver.Input(ctx, InputConfig{Message: "Property description (optional)"})
	if err != nil {
		return entity.PropertyDescriptor{}, err
	}
	required, err := driver.Confirm(ctx, ConfirmConfig{Message: "Required?", Default: true})
	if err != nil {
		return entity.PropertyDescriptor{}, err
	}

	return entity.PropertyDescriptor{
		Name:        strings.TrimSpace(name),
		Type:        strings.TrimSpace(typ),
		Description: strings.TrimSpace(description),
		Required:    required,
	}, nil
}

func validateIdentifier(value string) error {
	if !entity.IsIdentifier(strings.TrimSpace(value)) {
		return fmt.Errorf("%q is not a valid identifier", value)
	}
	return nil
}

func validateType(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("type is required")
	}
	return nil
}

// Summary renders a short overview of schema for confirmation output.
func Summary(schema entity.EntitySchema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d properties)", schema.Name, len(schema.Properties))
	for _, prop := range schema.Properties {
		marker := "?"
		if prop.Required {
			marker = ""
		}
		fmt.Fprintf(&b, "\n  %s%s: %s", prop.Name, marker, prop.Type)
	}
	return b.String()
}
