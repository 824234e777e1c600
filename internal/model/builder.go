package model

import (
	"fmt"

	"github.com/openapi2java/openapi2java/internal/oasdoc"
)

// Options are the configuration values the model build consumes. Everything
// else in the configuration surface belongs to renderers and the emitter.
type Options struct {
	// IgnoreOptionalParams drops non-required parameters from bindings.
	IgnoreOptionalParams bool
	// IgnoreParams drops parameters by name from bindings.
	IgnoreParams []string
}

// builder carries the per-document build state. It is discarded when Build
// returns; only the Model survives.
type builder struct {
	doc  *oasdoc.Document
	m    *Model
	opts Options

	// cache memoizes resolution by pointer. Nodes are registered here
	// before they are populated, so a cyclic re-resolution returns the
	// same identity node instead of recursing.
	cache map[string]*SchemaNode
	// active is the set of pointers currently being populated, used to
	// tell a cycle apart from an ordinary cache hit.
	active map[string]bool

	ignore map[string]bool
}

// Build runs the full pipeline over one document and returns the finished
// model. The only hard failures are unresolvable references and missing
// top-level structure; everything else degrades to diagnostics in
// Model.Report.
func Build(doc *oasdoc.Document, opts Options) (*Model, error) {
	b := &builder{
		doc:    doc,
		m:      newModel(),
		opts:   opts,
		cache:  map[string]*SchemaNode{},
		active: map[string]bool{},
		ignore: map[string]bool{},
	}
	for _, name := range opts.IgnoreParams {
		b.ignore[name] = true
	}
	b.m.Title = doc.Title()
	b.m.Version = doc.Version()

	schemas := doc.Schemas()
	if schemas == nil && doc.Paths() == nil {
		return nil, fmt.Errorf("document %s: no components/schemas and no paths", doc.Name)
	}

	// Resolve every named component up front so the model covers schemas
	// no endpoint references.
	if schemas != nil {
		for pair := schemas.Oldest(); pair != nil; pair = pair.Next() {
			ptr := "#/components/schemas/" + pair.Key
			if _, err := b.resolve(ptr, "components/schemas/"+pair.Key); err != nil {
				return nil, err
			}
		}
	}

	if err := b.bindEndpoints(); err != nil {
		return nil, err
	}
	return b.m, nil
}
