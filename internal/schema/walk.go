package schema

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// walker checks a YAML tree against a shape and records every violation.
type walker struct {
	violations []Violation
}

func (w *walker) fail(node *yaml.Node, path, format string, args ...any) {
	line := 0
	if node != nil {
		line = node.Line
	}
	w.violations = append(w.violations, Violation{
		Path:    path,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	})
}

func (w *walker) root(node *yaml.Node, s shape) {
	if s.list {
		w.list(node, "", s.record)
		return
	}
	w.record(node, "", s.record)
}

func (w *walker) list(node *yaml.Node, path string, rec *record) {
	node = resolve(node)
	if node.Kind != yaml.SequenceNode {
		w.fail(node, orRoot(path), "expected list of %s, got %s", rec.name, describe(node))
		return
	}
	for i, item := range node.Content {
		w.record(item, fmt.Sprintf("%s[%d]", path, i), rec)
	}
}

func (w *walker) record(node *yaml.Node, path string, rec *record) {
	node = resolve(node)
	if node.Kind != yaml.MappingNode {
		w.fail(node, orRoot(path), "expected %s object, got %s", rec.name, describe(node))
		return
	}

	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		key := keyNode.Value

		f, ok := rec.lookup(key)
		if !ok {
			continue
		}
		childPath := join(path, key)
		if seen[key] {
			w.fail(keyNode, childPath, "duplicate key")
			continue
		}
		seen[key] = true
		w.value(valNode, childPath, f)
	}

	for _, f := range rec.fields {
		if f.required && !seen[f.name] {
			w.fail(node, join(path, f.name), "is required")
		}
	}
}

func (w *walker) value(node *yaml.Node, path string, f field) {
	node = resolve(node)

	if isNull(node) {
		if !f.nullable {
			w.fail(node, path, "must not be null (expected %s)", f.typ)
		}
		return
	}

	switch f.typ {
	case typeString:
		w.scalar(node, path, f.typ, "!!str")
	case typeBool:
		w.scalar(node, path, f.typ, "!!bool")
	case typeNumber:
		w.scalar(node, path, f.typ, "!!int", "!!float")
	case typeInt:
		if !w.scalar(node, path, f.typ, "!!int", "!!float") {
			return
		}
		if node.ShortTag() == "!!float" && !isIntegral(node.Value) {
			w.fail(node, path, "expected integer, got %s", node.Value)
		}
	case typeStringList:
		if node.Kind != yaml.SequenceNode {
			w.fail(node, path, "expected %s, got %s", f.typ, describe(node))
			return
		}
		for i, item := range node.Content {
			w.scalar(resolve(item), fmt.Sprintf("%s[%d]", path, i), typeString, "!!str")
		}
	case typeStringMap:
		if node.Kind != yaml.MappingNode {
			w.fail(node, path, "expected %s, got %s", f.typ, describe(node))
			return
		}
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			w.scalar(resolve(node.Content[i+1]), join(path, key), typeString, "!!str")
		}
	case typeObjectList:
		w.list(node, path, f.elem)
	}
}

// scalar reports whether node is a scalar with one of the accepted tags.
func (w *walker) scalar(node *yaml.Node, path string, typ valueType, tags ...string) bool {
	if node.Kind == yaml.ScalarNode {
		tag := node.ShortTag()
		for _, t := range tags {
			if tag == t {
				return true
			}
		}
	}
	w.fail(node, path, "expected %s, got %s", typ, describe(node))
	return false
}

// resolve follows document wrappers and aliases.
func resolve(node *yaml.Node) *yaml.Node {
	for node != nil {
		switch {
		case node.Kind == yaml.DocumentNode && len(node.Content) == 1:
			node = node.Content[0]
		case node.Kind == yaml.AliasNode && node.Alias != nil:
			node = node.Alias
		default:
			return node
		}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}

func isIntegral(raw string) bool {
	f, err := strconv.ParseFloat(raw, 64)
	return err == nil && f == math.Trunc(f) && !math.IsInf(f, 0)
}

func describe(node *yaml.Node) string {
	switch node.Kind {
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "object"
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!str":
			return fmt.Sprintf("string %q", node.Value)
		case "!!int":
			return "integer " + node.Value
		case "!!float":
			return "number " + node.Value
		case "!!bool":
			return "boolean " + node.Value
		case "!!null":
			return "null"
		}
		return node.ShortTag()
	default:
		return "empty document"
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func orRoot(path string) string {
	if path == "" {
		return "$"
	}
	return path
}
