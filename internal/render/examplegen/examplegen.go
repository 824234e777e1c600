// Package examplegen renders heuristic JSON example payloads for schema
// nodes. Value selection per field: explicit example, first enum value,
// declared default, then a format- or type-driven placeholder.
package examplegen

import (
	"fmt"
	"path"

	json "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/openapi2java/openapi2java/internal/emitter"
	"github.com/openapi2java/openapi2java/internal/model"
)

// Files renders one example file per placement in both projection trees,
// rooted under folder.
func Files(m *model.Model, folder string) ([]emitter.File, error) {
	placements := append(model.EndpointPlacements(m), model.GlobalPlacements(m)...)
	out := make([]emitter.File, 0, len(placements))
	for _, p := range placements {
		content, err := Render(p.Node)
		if err != nil {
			return nil, fmt.Errorf("example for %s: %w", p.Node.Name, err)
		}
		rel := path.Join(append(append([]string{folder}, p.Segments...), p.Node.Name+".json")...)
		out = append(out, emitter.File{RelPath: rel, Content: content})
	}
	return out, nil
}

// Render produces the indented JSON example for one node.
func Render(n *model.SchemaNode) ([]byte, error) {
	v := nodeValue(n, map[*model.SchemaNode]bool{})
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// nodeValue builds the example object for a node, guarding recursion with
// the set of nodes on the current path. A revisited node renders as a
// marker string instead of recursing.
func nodeValue(n *model.SchemaNode, seen map[*model.SchemaNode]bool) any {
	if seen[n] {
		return "# circular reference to " + n.Name
	}
	seen[n] = true
	defer delete(seen, n)

	if n.Alias != nil {
		if len(n.Enum) > 0 {
			return n.Enum[0]
		}
		return typeValue(n.Alias, seen)
	}
	if n.Abstract && len(n.Variants) > 0 {
		return nodeValue(n.Variants[0], seen)
	}
	obj := orderedmap.New[string, any]()
	for _, f := range n.TotalFields() {
		obj.Set(f.Name, fieldValue(f, seen))
	}
	return obj
}

func fieldValue(f *model.Field, seen map[*model.SchemaNode]bool) any {
	if f.Example != nil {
		return f.Example
	}
	if len(f.Enum) > 0 {
		return f.Enum[0]
	}
	if f.Default != nil {
		return f.Default
	}
	return typeValue(&f.Type, seen)
}

func typeValue(t *model.TypeRef, seen map[*model.SchemaNode]bool) any {
	switch t.Kind {
	case model.KindObject:
		return nodeValue(t.Schema, seen)
	case model.KindArray:
		if t.Elem == nil {
			return []any{}
		}
		return []any{typeValue(t.Elem, seen)}
	case model.KindPolymorphic:
		// The first variant stands in for the whole alternative set.
		if t.Group != nil && len(t.Group.Variants) > 0 {
			return nodeValue(t.Group.Variants[0], seen)
		}
		return nodeValue(t.Schema, seen)
	}
	return scalarValue(t.Primitive, t.Format)
}

func scalarValue(primitive, format string) any {
	switch primitive {
	case "string":
		switch format {
		case "date-time":
			return "2025-01-01T00:00:00Z"
		case "date":
			return "2025-01-01"
		case "email":
			return "user@example.com"
		case "uuid":
			return "123e4567-e89b-12d3-a456-426614174000"
		}
		return "example_string"
	case "integer":
		return 1
	case "number":
		return 1.0
	case "boolean":
		return true
	case "object":
		return orderedmap.New[string, any]()
	}
	return nil
}
