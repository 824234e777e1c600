package model

import "github.com/stoewer/go-strcase"

// TreeKind distinguishes the two output projections.
type TreeKind string

const (
	EndpointTree TreeKind = "endpoint"
	GlobalTree   TreeKind = "global"
)

// Reserved path segments of the output vocabulary.
const (
	RelatedDir    = "related"
	AllSchemasDir = "ALL_SCHEMAS"
	NoEndpointDir = "NO_ENDPOINT"
)

// Placement assigns a node a directory in one of the output trees.
type Placement struct {
	Node *SchemaNode
	Tree TreeKind
	// Segments is the directory path, e.g. ["POST_claim", "body", "related"].
	Segments []string
	// Binding is set for endpoint-tree placements.
	Binding *EndpointBinding
}

// EndpointPlacements projects the model into the per-endpoint tree. Every
// binding gets its root schema at {METHOD}_{slug}/{role}/ and its whole
// dependency closure under related/, with closure members that belong to
// an inheritance family grouped in a folder named after the family root.
// A schema consumed by several endpoint/role pairs is placed once per
// pair: the duplication makes each endpoint directory self-contained.
// Schemas reachable from no binding land under NO_ENDPOINT.
func EndpointPlacements(m *Model) []Placement {
	var out []Placement
	covered := map[*SchemaNode]bool{}

	for _, binding := range m.Bindings {
		root := binding.Schema
		if root == nil {
			continue
		}
		covered[root] = true
		base := []string{binding.Dir, binding.Role}
		out = append(out, Placement{Node: root, Tree: EndpointTree, Segments: base, Binding: binding})

		members := Closure(root)
		inSet := map[*SchemaNode]bool{root: true}
		for _, dep := range members {
			covered[dep] = true
			inSet[dep] = true
		}
		for _, dep := range members {
			if dep.Alias != nil {
				continue
			}
			segments := append(append([]string{}, base...), RelatedDir)
			if family, ok := familyFolder(dep, inSet); ok {
				segments = append(segments, family)
			}
			out = append(out, Placement{
				Node:     dep,
				Tree:     EndpointTree,
				Segments: segments,
				Binding:  binding,
			})
		}
	}

	for _, n := range m.Nodes() {
		if covered[n] || n.Alias != nil {
			continue
		}
		out = append(out, Placement{
			Node:     n,
			Tree:     EndpointTree,
			Segments: []string{NoEndpointDir},
		})
	}
	return out
}

// familyFolder returns the lowerCamel name of the node's inheritance
// family root when the family is actually present in the placed set. A
// lone child whose root lives outside the set stays flat, as does a root
// none of whose descendants made it in.
func familyFolder(n *SchemaNode, inSet map[*SchemaNode]bool) (string, bool) {
	root := n.RootAncestor()
	if root != n {
		if !inSet[root] {
			return "", false
		}
		return strcase.LowerCamelCase(root.Name), true
	}
	for _, child := range n.Children {
		if inSet[child] {
			return strcase.LowerCamelCase(n.Name), true
		}
	}
	return "", false
}

// GlobalPlacements projects the model into the deduplicated ALL_SCHEMAS
// tree: every non-alias node receives exactly one placement. Nodes without
// a parent sit at the top level; every node below them (real or
// synthesized inheritance edge alike) sits in a folder named after its
// topmost ancestor, so one folder per family holds the whole descendant
// subtree. The projection is a pure read: running it twice over the same
// model yields identical sets.
func GlobalPlacements(m *Model) []Placement {
	var out []Placement
	for _, n := range m.Nodes() {
		if n.Alias != nil {
			continue
		}
		segments := []string{AllSchemasDir}
		if n.Parent != nil {
			segments = append(segments, n.RootAncestor().Name)
		}
		out = append(out, Placement{Node: n, Tree: GlobalTree, Segments: segments})
	}
	return out
}
