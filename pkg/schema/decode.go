package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-crudgen/pkg/entity"
)

// ErrNoEntities is returned when a document declares neither a top-level
// entity nor an `entities:` list.
var ErrNoEntities = errors.New("schema: document declares no entities")

type documentFile struct {
	Entities    []entity.EntitySchema       `json:"entities,omitempty" yaml:"entities,omitempty"`
	Name        string                      `json:"name,omitempty" yaml:"name,omitempty"`
	Description string                      `json:"description,omitempty" yaml:"description,omitempty"`
	Properties  []entity.PropertyDescriptor `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Decode parses a document into validated entities in declaration order.
func Decode(doc Document) ([]entity.EntitySchema, error) {
	return DecodeBytes(doc.raw, doc.Location())
}

// DecodeBytes parses raw JSON or YAML. source names the payload in errors.
// Unknown keys are rejected so misspelled attributes do not pass silently.
func DecodeBytes(data []byte, source string) ([]entity.EntitySchema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("schema: %s is empty", label(source))
	}

	var file documentFile
	if json.Valid(data) {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("schema: parse %s: %w", label(source), err)
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("schema: parse %s: %w", label(source), err)
		}
	}

	entities, err := file.entities()
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", label(source), err)
	}

	var errs []error
	seen := make(map[string]int, len(entities))
	for i := range entities {
		entities[i].Name = strings.TrimSpace(entities[i].Name)
		if err := entities[i].Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if first, ok := seen[entities[i].Name]; ok {
			errs = append(errs, entity.Invalid(entities[i].Name, fmt.Errorf("entity %q declared at #%d and #%d", entities[i].Name, first+1, i+1)))
			continue
		}
		seen[entities[i].Name] = i
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("schema: %s: %w", label(source), errors.Join(errs...))
	}
	return entities, nil
}

func (f documentFile) entities() ([]entity.EntitySchema, error) {
	single := f.Name != "" || len(f.Properties) > 0 || f.Description != ""
	switch {
	case single && len(f.Entities) > 0:
		return nil, errors.New("document mixes a top-level entity with an entities list")
	case single:
		return []entity.EntitySchema{{Name: f.Name, Description: f.Description, Properties: f.Properties}}, nil
	case len(f.Entities) > 0:
		return f.Entities, nil
	default:
		return nil, ErrNoEntities
	}
}

// Marshal encodes entities as a YAML document that Decode reads back. A single
// entity is written at the top level.
func Marshal(entities ...entity.EntitySchema) ([]byte, error) {
	var file documentFile
	switch len(entities) {
	case 0:
		return nil, ErrNoEntities
	case 1:
		file = documentFile{
			Name:        entities[0].Name,
			Description: entities[0].Description,
			Properties:  entities[0].Properties,
		}
	default:
		file = documentFile{Entities: entities}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return nil, fmt.Errorf("schema: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("schema: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func label(source string) string {
	if source == "" {
		return "document"
	}
	return source
}
