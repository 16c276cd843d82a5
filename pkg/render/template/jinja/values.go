package jinja

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-crudgen/pkg/entity"
	"github.com/goliatone/go-crudgen/pkg/naming"
)

// loopState backs the `loop` binding inside for blocks.
type loopState struct {
	index0 int
	length int
}

var stringMethods = map[string]func(string) string{
	"lower":      naming.Lower,
	"upper":      naming.Upper,
	"capitalize": naming.Capitalize,
	"title":      naming.Title,
	"strip":      strings.TrimSpace,
}

func attribute(value any, name string) (any, bool) {
	switch v := value.(type) {
	case entity.EntitySchema:
		return entityAttribute(v, name)
	case *entity.EntitySchema:
		if v == nil {
			return nil, false
		}
		return entityAttribute(*v, name)
	case entity.PropertyDescriptor:
		return propertyAttribute(v, name)
	case *entity.PropertyDescriptor:
		if v == nil {
			return nil, false
		}
		return propertyAttribute(*v, name)
	case loopState:
		return loopAttribute(v, name)
	case map[string]any:
		out, ok := v[name]
		return out, ok
	default:
		return nil, false
	}
}

func entityAttribute(e entity.EntitySchema, name string) (any, bool) {
	switch name {
	case "name":
		return e.Name, true
	case "description":
		return e.Description, true
	case "properties":
		return e.Properties, true
	default:
		return nil, false
	}
}

func propertyAttribute(p entity.PropertyDescriptor, name string) (any, bool) {
	switch name {
	case "name":
		return p.Name, true
	case "type":
		return p.Type, true
	case "description":
		return p.Description, true
	case "required":
		return p.Required, true
	default:
		return nil, false
	}
}

func loopAttribute(l loopState, name string) (any, bool) {
	switch name {
	case "index":
		return l.index0 + 1, true
	case "index0":
		return l.index0, true
	case "revindex":
		return l.length - l.index0, true
	case "revindex0":
		return l.length - l.index0 - 1, true
	case "first":
		return l.index0 == 0, true
	case "last":
		return l.index0 == l.length-1, true
	case "length":
		return l.length, true
	default:
		return nil, false
	}
}

// toList returns the iterable elements of value in order.
func toList(value any) ([]any, bool) {
	switch v := value.(type) {
	case []entity.PropertyDescriptor:
		out := make([]any, len(v))
		for i, prop := range v {
			out[i] = prop
		}
		return out, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []any:
		return v, true
	default:
		return nil, false
	}
}

// stringify renders a scalar value. Structured values cannot be interpolated.
func stringify(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	default:
		return "", false
	}
}

func isComparable(value any) bool {
	switch value.(type) {
	case nil, string, bool, int, int64, float64, entity.PropertyDescriptor:
		return true
	default:
		return false
	}
}

func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "none"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64:
		return "int"
	case float64:
		return "float"
	case entity.EntitySchema, *entity.EntitySchema:
		return "entity"
	case entity.PropertyDescriptor, *entity.PropertyDescriptor:
		return "property"
	case loopState:
		return "loop"
	case []entity.PropertyDescriptor, []string, []any:
		return "list"
	case map[string]any:
		return "map"
	default:
		return "unsupported value"
	}
}
