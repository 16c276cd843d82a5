package jinja

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-crudgen/pkg/entity"
	"github.com/goliatone/go-crudgen/pkg/naming"
)

// FilterFunc transforms a value inside `{{ value | name(param) }}`. param is
// nil when the filter is used without an argument. Returning a
// *TypeMismatchError built with NewTypeMismatch lets the engine attach the
// location of the offending expression.
type FilterFunc func(input any, param any) (any, error)

var (
	stripPolicyOnce sync.Once
	stripPolicy     *bluemonday.Policy
)

// DefaultFilters returns a fresh copy of the built-in filter set.
func DefaultFilters() map[string]FilterFunc {
	return map[string]FilterFunc{
		"lower":      stringFilter(naming.Lower),
		"upper":      stringFilter(naming.Upper),
		"capitalize": stringFilter(naming.Capitalize),
		"title":      stringFilter(naming.Title),
		"trim":       stringFilter(strings.TrimSpace),
		"lowerfirst": stringFilter(naming.LowerFirst),
		"upperfirst": stringFilter(naming.UpperFirst),
		"camel":      stringFilter(naming.Camel),
		"pascal":     stringFilter(naming.Pascal),
		"snake":      stringFilter(naming.Snake),
		"kebab":      stringFilter(naming.Kebab),
		"plural":     stringFilter(naming.Plural),
		"striptags":  stringFilter(stripTags),
		"length":     filterLength,
		"join":       filterJoin,
		"default":    filterDefault,
	}
}

func stringFilter(fn func(string) string) FilterFunc {
	return func(input any, _ any) (any, error) {
		s, ok := input.(string)
		if !ok {
			return nil, NewTypeMismatch("string", input)
		}
		return fn(s), nil
	}
}

func stripTags(s string) string {
	stripPolicyOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(stripPolicy.Sanitize(s))
}

func filterLength(input any, _ any) (any, error) {
	if s, ok := input.(string); ok {
		return utf8.RuneCountInString(s), nil
	}
	items, ok := toList(input)
	if !ok {
		return nil, NewTypeMismatch("string or list", input)
	}
	return len(items), nil
}

// filterJoin joins a list of strings, or the names of a list of properties,
// with the separator given as parameter (", " by default).
func filterJoin(input any, param any) (any, error) {
	sep := ", "
	if param != nil {
		s, ok := param.(string)
		if !ok {
			return nil, NewTypeMismatch("string separator", param)
		}
		sep = s
	}
	items, ok := toList(input)
	if !ok {
		return nil, NewTypeMismatch("list", input)
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case entity.PropertyDescriptor:
			parts = append(parts, v.Name)
		default:
			text, ok := stringify(v)
			if !ok {
				return nil, NewTypeMismatch("list of scalars", item)
			}
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, sep), nil
}

// filterDefault substitutes param for none or empty strings. It is the only
// way a template opts into a fallback value.
func filterDefault(input any, param any) (any, error) {
	switch v := input.(type) {
	case nil:
		return param, nil
	case string:
		if v == "" {
			return param, nil
		}
	}
	return input, nil
}
