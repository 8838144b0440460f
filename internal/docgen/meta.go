package docgen

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Metadata blocks are YAML documents attached to declarations. They are
// parsed once into plain values here; the analyzers then consume keys via
// explicit extraction rather than re-reading the source text.

// decodeMeta parses a metadata block into a plain value with string map keys
// at every level (YAML response codes like 200 arrive as integers).
func decodeMeta(text string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	return stringifyKeys(v), nil
}

// decodeMetaMap parses a metadata block and requires it to be a mapping.
func decodeMetaMap(text string) (map[string]any, error) {
	v, err := decodeMeta(text)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a mapping, got %T", v)
	}
	return m, nil
}

func stringifyKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = stringifyKeys(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = stringifyKeys(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = stringifyKeys(item)
		}
		return out
	default:
		return v
	}
}

// parseMetaNode parses a metadata block and returns its root mapping node.
// Unlike decodeMeta it preserves declaration order, which matters for
// serializer field lists and list-controller search fields.
func parseMetaNode(text string) (*yaml.Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(text), &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("expected a mapping, got an empty block")
	}
	node := root.Content[0]
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping, got %s", nodeKindName(node.Kind))
	}
	return node, nil
}

// mappingKeys returns the keys of a mapping node in declaration order.
func mappingKeys(node *yaml.Node) []string {
	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	return keys
}

// mappingValue returns the value node for key, or nil when absent.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// nodeToValue decodes a node into a plain value with string map keys.
func nodeToValue(node *yaml.Node) (any, error) {
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return stringifyKeys(v), nil
}

// nodeToStrings decodes a sequence node into its scalar values. A null node
// decodes to an empty list.
func nodeToStrings(node *yaml.Node) ([]string, error) {
	if node == nil || node.Tag == "!!null" {
		return nil, nil
	}
	var items []string
	if err := node.Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

func nodeKindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}

// copyValue deep-copies the plain-value shapes operations are made of.
func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}
