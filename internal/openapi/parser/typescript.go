package parser

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-crudgen/pkg/entity"
	"github.com/goliatone/go-crudgen/pkg/naming"
)

// TypeScriptType maps an OpenAPI schema to the TypeScript type used in the
// generated DTOs.
func TypeScriptType(ref *openapi3.SchemaRef) string {
	if ref == nil {
		return "unknown"
	}
	if name, ok := componentName(ref.Ref); ok {
		return name
	}
	s := ref.Value
	if s == nil {
		return "unknown"
	}

	var base string
	switch {
	case s.Type.Is(openapi3.TypeString):
		base = stringType(s)
	case s.Type.Is(openapi3.TypeInteger), s.Type.Is(openapi3.TypeNumber):
		base = "number"
	case s.Type.Is(openapi3.TypeBoolean):
		base = "boolean"
	case s.Type.Is(openapi3.TypeArray):
		item := TypeScriptType(s.Items)
		if strings.ContainsAny(item, " |") {
			item = "(" + item + ")"
		}
		base = item + "[]"
	case len(s.OneOf) > 0:
		base = unionOf(s.OneOf)
	case len(s.AnyOf) > 0:
		base = unionOf(s.AnyOf)
	default:
		base = "Record<string, unknown>"
	}

	if s.Nullable {
		return base + " | null"
	}
	return base
}

func stringType(s *openapi3.Schema) string {
	switch s.Format {
	case "date", "date-time":
		return "Date"
	}
	if len(s.Enum) == 0 {
		return "string"
	}
	literals := make([]string, 0, len(s.Enum))
	for _, value := range s.Enum {
		str, ok := value.(string)
		if !ok {
			return "string"
		}
		literals = append(literals, fmt.Sprintf("'%s'", strings.ReplaceAll(str, "'", `\'`)))
	}
	return strings.Join(literals, " | ")
}

func unionOf(refs openapi3.SchemaRefs) string {
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		parts = append(parts, TypeScriptType(ref))
	}
	return strings.Join(parts, " | ")
}

func componentName(ref string) (string, bool) {
	idx := strings.Index(ref, componentPrefix)
	if idx < 0 {
		return "", false
	}
	name := ref[idx+len(componentPrefix):]
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	if !entity.IsIdentifier(name) {
		name = naming.Pascal(name)
	}
	return name, true
}
