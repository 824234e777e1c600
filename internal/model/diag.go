package model

import "fmt"

// DiagKind identifies a class of finding produced during a model build.
type DiagKind string

const (
	// UnresolvableReference is fatal for the document: a $ref points at
	// nothing. Build returns an error; sibling documents are unaffected.
	UnresolvableReference DiagKind = "UnresolvableReference"
	// ReferenceCycleDetected is informational: the cycle was broken with
	// the already-registered node, the field keeps its reference type.
	ReferenceCycleDetected DiagKind = "ReferenceCycleDetected"
	// AmbiguousInheritance marks an allOf with more than one bare $ref.
	// The first becomes the parent, the rest are flattened into the child.
	AmbiguousInheritance DiagKind = "AmbiguousInheritance"
	// PolymorphicBaseNameCollision marks a synthesized oneOf/anyOf base
	// whose derived name clashed with an existing, different schema.
	PolymorphicBaseNameCollision DiagKind = "PolymorphicBaseNameCollision"
	// MalformedSchemaFragment marks a fragment that is neither object,
	// array, composition nor $ref. The node is emitted as opaque.
	MalformedSchemaFragment DiagKind = "MalformedSchemaFragment"
)

// Diagnostic is a single finding, tied to the document location that
// produced it.
type Diagnostic struct {
	Kind    DiagKind
	Message string
	// Pointer is the reference or component pointer involved, when any.
	Pointer string
	// Context is the path of the construct being processed when the
	// finding was recorded, e.g. "components/schemas/Order/properties/items".
	Context string
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s", d.Kind, d.Message)
	if d.Context != "" {
		s += " (at " + d.Context + ")"
	}
	return s
}

// Report collects every diagnostic of a single document build.
type Report struct {
	Diagnostics []Diagnostic
}

func (r *Report) add(kind DiagKind, pointer, context, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Pointer: pointer,
		Context: context,
	})
}

// ByKind returns the diagnostics of one kind, in recorded order.
func (r *Report) ByKind(kind DiagKind) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Empty reports whether no diagnostics were recorded.
func (r *Report) Empty() bool { return len(r.Diagnostics) == 0 }
