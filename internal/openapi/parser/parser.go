// Package parser imports entities from the component schemas of OpenAPI 3
// documents using kin-openapi.
package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-crudgen/pkg/entity"
	"github.com/goliatone/go-crudgen/pkg/naming"
	pkgopenapi "github.com/goliatone/go-crudgen/pkg/openapi"
	"github.com/goliatone/go-crudgen/pkg/schema"
)

const (
	componentsPath  = "/components/schemas"
	componentPrefix = "#" + componentsPath + "/"
)

// Parser implements pkgopenapi.Importer using kin-openapi.
type Parser struct {
	options pkgopenapi.ImportOptions
}

var _ pkgopenapi.Importer = (*Parser)(nil)

// New constructs a Parser with the given options.
func New(options pkgopenapi.ImportOptions) *Parser {
	return &Parser{options: options}
}

// Import converts the selected component schemas of doc into entities.
func (p *Parser) Import(ctx context.Context, doc schema.Document) ([]entity.EntitySchema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: p.options.ResolveReferences,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if p.options.Validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}
	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		return nil, errors.New("openapi parser: document has no component schemas")
	}

	order, err := readOrder(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: read key order: %w", err)
	}

	names, err := p.selectSchemas(spec.Components.Schemas, order)
	if err != nil {
		return nil, err
	}

	entities := make([]entity.EntitySchema, 0, len(names))
	var errs []error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		converted, err := convertComponent(name, spec.Components.Schemas[name], order)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entities = append(entities, converted)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("openapi parser: %w", errors.Join(errs...))
	}
	return entities, nil
}

// selectSchemas returns the component names to import: the requested ones in
// request order, or every object schema in document order.
func (p *Parser) selectSchemas(schemas openapi3.Schemas, order keyOrder) ([]string, error) {
	if len(p.options.Schemas) > 0 {
		var missing []string
		for _, name := range p.options.Schemas {
			ref, ok := schemas[name]
			if !ok || ref == nil || ref.Value == nil {
				missing = append(missing, name)
				continue
			}
			if !isObjectSchema(ref.Value) {
				return nil, fmt.Errorf("openapi parser: component %q is not an object schema", name)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("openapi parser: unknown component schemas %s", strings.Join(missing, ", "))
		}
		return append([]string(nil), p.options.Schemas...), nil
	}

	names := order.keys(componentsPath, mapKeys(schemas))
	selected := names[:0]
	for _, name := range names {
		if ref := schemas[name]; ref != nil && ref.Value != nil && isObjectSchema(ref.Value) {
			selected = append(selected, name)
		}
	}
	if len(selected) == 0 {
		return nil, errors.New("openapi parser: document has no object schemas")
	}
	return selected, nil
}

func convertComponent(name string, ref *openapi3.SchemaRef, order keyOrder) (entity.EntitySchema, error) {
	entityName := name
	if !entity.IsIdentifier(entityName) {
		entityName = naming.Pascal(name)
	}

	out := entity.EntitySchema{
		Name:        entityName,
		Description: strings.TrimSpace(ref.Value.Description),
		Properties:  []entity.PropertyDescriptor{},
	}

	seen := make(map[string]struct{})
	collectProperties(&out, ref.Value, componentPrefix+escapePointer(name), order, seen)

	if err := out.Validate(); err != nil {
		return entity.EntitySchema{}, fmt.Errorf("component %q: %w", name, err)
	}
	return out, nil
}

// collectProperties appends the properties of s (and of its allOf members) in
// document order. pointer locates s in the raw document.
func collectProperties(out *entity.EntitySchema, s *openapi3.Schema, pointer string, order keyOrder, seen map[string]struct{}) {
	for i, member := range s.AllOf {
		if member == nil || member.Value == nil {
			continue
		}
		memberPointer := fmt.Sprintf("%s/allOf/%d", pointer, i)
		if member.Ref != "" {
			memberPointer = member.Ref
		}
		collectProperties(out, member.Value, memberPointer, order, seen)
	}

	required := make(map[string]struct{}, len(s.Required))
	for _, name := range s.Required {
		required[name] = struct{}{}
	}

	for _, name := range order.keys(pointerPath(pointer)+"/properties", mapKeys(s.Properties)) {
		if _, dup := seen[name]; dup {
			continue
		}
		prop := s.Properties[name]
		if prop == nil {
			continue
		}
		seen[name] = struct{}{}

		_, isRequired := required[name]
		descriptor := entity.PropertyDescriptor{
			Name:     name,
			Type:     TypeScriptType(prop),
			Required: isRequired,
		}
		if prop.Value != nil {
			descriptor.Description = strings.TrimSpace(prop.Value.Description)
		}
		out.Properties = append(out.Properties, descriptor)
	}
}

func isObjectSchema(s *openapi3.Schema) bool {
	if s.Type != nil && s.Type.Is(openapi3.TypeObject) {
		return true
	}
	return len(s.Properties) > 0 || len(s.AllOf) > 0
}

func mapKeys(schemas openapi3.Schemas) []string {
	keys := make([]string, 0, len(schemas))
	for key := range schemas {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func escapePointer(token string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(token)
}

// pointerPath strips the leading "#" from a local JSON pointer.
func pointerPath(pointer string) string {
	return strings.TrimPrefix(pointer, "#")
}
