package parser

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// keyOrder records, for every mapping in the raw document, the order in which
// its keys were declared. Keys are JSON pointer paths without the leading "#".
// kin-openapi decodes schemas into Go maps, so declaration order has to come
// from the source text.
type keyOrder map[string][]string

func readOrder(raw []byte) (keyOrder, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, err
	}
	order := make(keyOrder)
	if len(root.Content) > 0 {
		order.walk(root.Content[0], "")
	}
	return order, nil
}

func (o keyOrder) walk(node *yaml.Node, path string) {
	switch node.Kind {
	case yaml.MappingNode:
		keys := make([]string, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			keys = append(keys, key)
			o.walk(node.Content[i+1], path+"/"+escapePointer(key))
		}
		o[path] = keys
	case yaml.SequenceNode:
		for i, child := range node.Content {
			o.walk(child, path+"/"+strconv.Itoa(i))
		}
	}
}

// keys returns known in the order recorded for path. Entries missing from the
// recording keep their relative (sorted) order at the end.
func (o keyOrder) keys(path string, known []string) []string {
	wanted := make(map[string]struct{}, len(known))
	for _, key := range known {
		wanted[key] = struct{}{}
	}

	out := make([]string, 0, len(known))
	for _, key := range o[strings.TrimSuffix(path, "/")] {
		if _, ok := wanted[key]; ok {
			out = append(out, key)
			delete(wanted, key)
		}
	}
	for _, key := range known {
		if _, ok := wanted[key]; ok {
			out = append(out, key)
		}
	}
	return out
}
