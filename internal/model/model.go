// Package model builds a resolved, inheritance-aware schema model from an
// OpenAPI document and projects it into output placements. The build is a
// single-threaded pipeline per document: reference resolution, composition
// flattening, field partitioning, endpoint binding. Projections (closures,
// placements) are pure reads over the finished model.
package model

import "strconv"

// Kind is the structural role of a type.
type Kind int

const (
	KindPrimitive Kind = iota
	KindObject
	KindArray
	KindPolymorphic
)

// TypeRef describes the type of a field or array element.
type TypeRef struct {
	Kind Kind
	// Primitive holds the raw type keyword (string, integer, number,
	// boolean) when Kind is KindPrimitive.
	Primitive string
	// Format carries the format keyword opaquely for renderers.
	Format string
	// Schema is the referenced node for KindObject, and the synthesized
	// base for KindPolymorphic.
	Schema *SchemaNode
	// Elem is the element type for KindArray.
	Elem *TypeRef
	// Group is set for KindPolymorphic.
	Group *PolymorphicGroup

	// enumSource points at the alias node a primitive TypeRef was
	// dissolved from, so referencing fields can inherit its enum values.
	enumSource *SchemaNode
}

// Field is a single property of a SchemaNode.
type Field struct {
	Name        string
	Description string
	Type        TypeRef
	Required    bool
	// Inherited is set on the copies returned by TotalFields for fields
	// declared on an ancestor; fields in SchemaNode.Fields are always own.
	Inherited bool

	// Value keywords, carried opaquely for the example renderer.
	Example any
	Enum    []any
	Default any
}

// SchemaNode is one named schema of the model: a document component, a
// synthesized polymorphic base, or an extracted nested inline object. Every
// non-alias node corresponds to exactly one output file per placement.
type SchemaNode struct {
	Name        string
	Description string
	// Fields is the node's own properties in document order. Properties
	// also present anywhere on the parent chain are excluded here and
	// reached through TotalFields.
	Fields []*Field
	// Required is the union of the schema's own required names and those
	// of every allOf member that contributed properties.
	Required map[string]bool

	Parent *SchemaNode
	// ParentSynthesized marks an inheritance edge the document never
	// declared: the node is a oneOf/anyOf variant adopted by a
	// synthesized base.
	ParentSynthesized bool
	Children          []*SchemaNode

	// Abstract marks a synthesized polymorphic base.
	Abstract bool
	// Variants is set on a polymorphic base, in declaration order.
	Variants []*SchemaNode

	// Synthesized marks nodes not present as document components:
	// polymorphic bases and extracted inline objects.
	Synthesized bool
	// Opaque marks a node built from a malformed fragment; it has no
	// fields and renders as an untyped placeholder.
	Opaque bool
	// Alias is set on a named schema that is itself an array (or other
	// non-object) type: fields referencing it are retyped to the alias
	// and the node receives no placements of its own.
	Alias *TypeRef
	// Enum holds the value set of a named enum alias.
	Enum []any
}

// IsRequired reports whether the named field is in the node's required set.
func (n *SchemaNode) IsRequired(name string) bool { return n.Required[name] }

// RootAncestor walks the parent chain to the topmost ancestor. A node
// without a parent is its own root.
func (n *SchemaNode) RootAncestor() *SchemaNode {
	cur := n
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// TotalFields returns the node's complete field list: ancestor fields
// first (root-most ancestor leading), then own fields. Ancestor fields are
// shallow copies flagged Inherited; own fields are the node's own pointers.
func (n *SchemaNode) TotalFields() []*Field {
	var chain []*SchemaNode
	for cur := n; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	var out []*Field
	for i := len(chain) - 1; i >= 0; i-- {
		for _, f := range chain[i].Fields {
			if chain[i] == n {
				out = append(out, f)
				continue
			}
			cp := *f
			cp.Inherited = true
			out = append(out, &cp)
		}
	}
	return out
}

// hasFieldInChain reports whether name is declared on the node or any
// ancestor. Used by the builder to partition own vs. inherited.
func (n *SchemaNode) hasFieldInChain(name string) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		for _, f := range cur.Fields {
			if f.Name == name {
				return true
			}
		}
	}
	return false
}

// PolymorphicGroup records a oneOf/anyOf field: the synthesized base and
// the variant set, owned by the schema declaring the field.
type PolymorphicGroup struct {
	FieldName string
	Owner     *SchemaNode
	Base      *SchemaNode
	Variants  []*SchemaNode
}

// Parameter is one operation parameter surviving the configured filters.
type Parameter struct {
	Name        string
	In          string // path, query, header
	Required    bool
	Description string
	Type        TypeRef
}

// EndpointBinding ties one operation role (request body or response body)
// to its top-level schema. Bindings are immutable after the binder pass.
type EndpointBinding struct {
	Method string // uppercase
	Path   string
	// Dir is the endpoint directory segment, e.g. "POST_claim".
	Dir string
	// Role is "body" or "response".
	Role        string
	Status      string // response status code; "" for body
	OperationID string
	Summary     string
	Description string
	// Tags is the operation's tag list, or ["untagged"].
	Tags       []string
	Parameters []Parameter
	// Schema is the bound node: the payload itself, or its element node
	// for array payloads.
	Schema *SchemaNode
	// Payload is the full payload type, arrays included.
	Payload TypeRef
}

const (
	RoleBody     = "body"
	RoleResponse = "response"

	// UntaggedGroup is the synthetic tag for operations without tags.
	UntaggedGroup = "untagged"
)

// Model is the document-scoped registry: every node, binding and group of
// one build, immutable once Build returns. No package-level state exists;
// independent documents never share a Model.
type Model struct {
	Title   string
	Version string

	nodes map[string]*SchemaNode
	order []string

	Bindings []*EndpointBinding
	Groups   []*PolymorphicGroup
	Report   *Report
}

func newModel() *Model {
	return &Model{nodes: map[string]*SchemaNode{}, Report: &Report{}}
}

// Node returns the node registered under name, or nil.
func (m *Model) Node(name string) *SchemaNode { return m.nodes[name] }

// Nodes returns every registered node in insertion order.
func (m *Model) Nodes() []*SchemaNode {
	out := make([]*SchemaNode, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.nodes[name])
	}
	return out
}

func (m *Model) addNode(n *SchemaNode) {
	m.nodes[n.Name] = n
	m.order = append(m.order, n.Name)
}

// freeName returns name if unused, otherwise the first numbered variant
// (name2, name3, ...) that is.
func (m *Model) freeName(name string) string {
	if _, ok := m.nodes[name]; !ok {
		return name
	}
	for i := 2; ; i++ {
		candidate := name + strconv.Itoa(i)
		if _, ok := m.nodes[candidate]; !ok {
			return candidate
		}
	}
}

// BindingsByTag groups bindings per tag in first-seen tag order. A binding
// with several tags appears once under each; that multiplicity is the
// contract for client-interface grouping.
func (m *Model) BindingsByTag() ([]string, map[string][]*EndpointBinding) {
	var tags []string
	byTag := map[string][]*EndpointBinding{}
	for _, b := range m.Bindings {
		for _, tag := range b.Tags {
			if _, ok := byTag[tag]; !ok {
				tags = append(tags, tag)
			}
			byTag[tag] = append(byTag[tag], b)
		}
	}
	return tags, byTag
}
