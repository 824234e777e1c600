package model

import (
	"fmt"
	"strings"

	"github.com/openapi2java/openapi2java/internal/oasdoc"
)

const schemaRefPrefix = "#/components/schemas/"

func errUnresolvable(ref, context string) error {
	return fmt.Errorf("unresolvable reference %q at %s", ref, context)
}

// refName extracts the component name from a schema pointer, or "".
func refName(ref string) string {
	if strings.HasPrefix(ref, schemaRefPrefix) {
		return strings.TrimPrefix(ref, schemaRefPrefix)
	}
	// Swagger v2 style survives in hand-written documents.
	if strings.HasPrefix(ref, "#/definitions/") {
		return strings.TrimPrefix(ref, "#/definitions/")
	}
	return ""
}

// bareRef returns the $ref string when frag is a pure reference (no sibling
// keys besides description, which OpenAPI allows alongside $ref).
func bareRef(frag *oasdoc.Obj) (string, bool) {
	ref, ok := oasdoc.GetStr(frag, "$ref")
	if !ok {
		return "", false
	}
	for pair := frag.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key != "$ref" && pair.Key != "description" {
			return "", false
		}
	}
	return ref, true
}

// resolve returns the node for a schema pointer, populating it on first
// use. Subsequent calls return the identical node, which is what the
// own/inherited partition relies on. A pointer hit while still being
// populated is a cycle: the pre-registered node is returned as-is and a
// diagnostic is recorded.
func (b *builder) resolve(ptr, context string) (*SchemaNode, error) {
	if node, ok := b.cache[ptr]; ok {
		if b.active[ptr] {
			b.m.Report.add(ReferenceCycleDetected, ptr, context,
				"reference cycle through %s", ptr)
		}
		return node, nil
	}

	name := refName(ptr)
	if name == "" {
		return nil, fmt.Errorf("unresolvable reference %q at %s: unsupported pointer form", ptr, context)
	}
	frag, ok := oasdoc.GetObj(b.doc.Schemas(), name)
	if !ok {
		b.m.Report.add(UnresolvableReference, ptr, context,
			"no schema named %q in components/schemas", name)
		return nil, fmt.Errorf("unresolvable reference %q at %s", ptr, context)
	}

	node := &SchemaNode{Name: name, Required: map[string]bool{}}
	b.cache[ptr] = node
	b.m.addNode(node)

	b.active[ptr] = true
	err := b.populate(node, frag, "components/schemas/"+name)
	delete(b.active, ptr)
	if err != nil {
		return nil, err
	}
	return node, nil
}
