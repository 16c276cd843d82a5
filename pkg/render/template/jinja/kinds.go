package jinja

// valueKind is the shape of a value as far as the checker can tell before
// rendering. kindAny defers every decision to render time.
type valueKind int

const (
	kindAny valueKind = iota
	kindEntity
	kindProperty
	kindPropertyList
	kindLoop
	kindString
	kindBool
	kindInt
)

// Attribute tables mirror entityAttribute, propertyAttribute and
// loopAttribute.
var (
	entityAttrKinds = map[string]valueKind{
		"name":        kindString,
		"description": kindString,
		"properties":  kindPropertyList,
	}
	propertyAttrKinds = map[string]valueKind{
		"name":        kindString,
		"type":        kindString,
		"description": kindString,
		"required":    kindBool,
	}
	loopAttrKinds = map[string]valueKind{
		"index":     kindInt,
		"index0":    kindInt,
		"revindex":  kindInt,
		"revindex0": kindInt,
		"first":     kindBool,
		"last":      kindBool,
		"length":    kindInt,
	}
)

// boundSet maps the names in scope to their kinds.
type boundSet map[string]valueKind

func (b boundSet) has(name string) bool {
	_, ok := b[name]
	return ok
}

func (b boundSet) with(name string, kind valueKind) boundSet {
	out := make(boundSet, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	out[name] = kind
	return out
}

// attrKind resolves name on a value of kind target. Scalars and lists have no
// attributes.
func attrKind(target valueKind, name string) (valueKind, bool) {
	var table map[string]valueKind
	switch target {
	case kindAny:
		return kindAny, true
	case kindEntity:
		table = entityAttrKinds
	case kindProperty:
		table = propertyAttrKinds
	case kindLoop:
		table = loopAttrKinds
	default:
		return kindAny, false
	}
	kind, ok := table[name]
	return kind, ok
}

func staticKind(e expr, bound boundSet) valueKind {
	switch v := e.(type) {
	case *nameExpr:
		return bound[v.name]
	case *attrExpr:
		kind, _ := attrKind(staticKind(v.target, bound), v.name)
		return kind
	case *callExpr:
		return kindString
	case *notExpr, *logicalExpr, *compareExpr:
		return kindBool
	case *literalExpr:
		switch v.value.(type) {
		case string:
			return kindString
		case bool:
			return kindBool
		case int:
			return kindInt
		}
	}
	return kindAny
}

func elementKind(list valueKind) valueKind {
	if list == kindPropertyList {
		return kindProperty
	}
	return kindAny
}
