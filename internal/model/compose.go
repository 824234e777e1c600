package model

import (
	"github.com/gobuffalo/flect"
	"github.com/stoewer/go-strcase"

	"github.com/openapi2java/openapi2java/internal/oasdoc"
)

// populate fills a pre-registered node from its document fragment. The
// order matters: allOf first (so the parent edge exists before the own
// field partition), then top-level properties, then structural fallbacks,
// then the finalize step that applies the partition and required flags.
func (b *builder) populate(node *SchemaNode, frag *oasdoc.Obj, context string) error {
	if frag == nil {
		node.Opaque = true
		b.m.Report.add(MalformedSchemaFragment, "", context, "schema fragment is not a mapping")
		return nil
	}
	if desc, ok := oasdoc.GetStr(frag, "description"); ok {
		node.Description = desc
	}

	// A named schema that is purely a $ref becomes an alias to its target.
	if ref, ok := bareRef(frag); ok {
		target, err := b.resolve(ref, context)
		if err != nil {
			return err
		}
		node.Alias = refType(target)
		return nil
	}

	b.unionRequired(node, frag)

	if members, ok := oasdoc.GetSeq(frag, "allOf"); ok {
		if err := b.flattenAllOf(node, members, context+"/allOf"); err != nil {
			return err
		}
	}

	if err := b.mergeProperties(node, frag, context); err != nil {
		return err
	}

	if len(node.Fields) == 0 && node.Parent == nil && node.Alias == nil {
		if err := b.aliasFallback(node, frag, context); err != nil {
			return err
		}
	}

	b.finalize(node)
	return nil
}

// flattenAllOf applies the inheritance policy: the first bare $ref member
// becomes the parent, further $ref members are flattened into the child
// with a diagnostic, inline members are merged in document order with
// later duplicates winning, and array-typed members turn the node into an
// array alias instead of an object merge target.
func (b *builder) flattenAllOf(node *SchemaNode, members []any, context string) error {
	for _, member := range members {
		frag, ok := member.(*oasdoc.Obj)
		if !ok {
			b.m.Report.add(MalformedSchemaFragment, "", context, "allOf member is not a mapping")
			continue
		}
		if ref, ok := bareRef(frag); ok {
			target, err := b.resolve(ref, context)
			if err != nil {
				return err
			}
			if parentChainContains(target, node) {
				b.m.Report.add(ReferenceCycleDetected, ref, context,
					"allOf member closes an inheritance cycle through %s", target.Name)
				continue
			}
			if node.Parent == nil {
				node.Parent = target
				target.Children = append(target.Children, node)
				continue
			}
			b.m.Report.add(AmbiguousInheritance, ref, context,
				"second bare $ref in allOf of %s: %s flattened into field list", node.Name, target.Name)
			b.flattenInto(node, target)
			continue
		}
		if isArrayFragment(frag) {
			t, err := b.fieldType(node, node.Name, frag, context)
			if err != nil {
				return err
			}
			if node.Alias == nil {
				node.Alias = &t
			}
			continue
		}
		b.unionRequired(node, frag)
		if nested, ok := oasdoc.GetSeq(frag, "allOf"); ok {
			if err := b.flattenAllOf(node, nested, context); err != nil {
				return err
			}
		}
		if err := b.mergeProperties(node, frag, context); err != nil {
			return err
		}
	}
	return nil
}

// parentChainContains reports whether node appears on target's parent
// chain, target itself included. Linking node under such a target would
// make the chain cyclic, and everything walking parent chains relies on
// them terminating.
func parentChainContains(target, node *SchemaNode) bool {
	for cur := target; cur != nil; cur = cur.Parent {
		if cur == node {
			return true
		}
	}
	return false
}

// flattenInto copies target's total field set into node as own fields,
// later duplicates winning, and unions target's required names.
func (b *builder) flattenInto(node *SchemaNode, target *SchemaNode) {
	for _, f := range target.TotalFields() {
		cp := *f
		cp.Inherited = false
		b.mergeField(node, &cp)
	}
	for cur := target; cur != nil; cur = cur.Parent {
		for name := range cur.Required {
			node.Required[name] = true
		}
	}
}

func (b *builder) mergeProperties(node *SchemaNode, frag *oasdoc.Obj, context string) error {
	props, ok := oasdoc.GetObj(frag, "properties")
	if !ok {
		return nil
	}
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		propFrag, ok := pair.Value.(*oasdoc.Obj)
		if !ok {
			b.m.Report.add(MalformedSchemaFragment, "", context+"/properties/"+pair.Key,
				"property %q is not a mapping", pair.Key)
			continue
		}
		f, err := b.buildField(node, pair.Key, propFrag, context+"/properties/"+pair.Key)
		if err != nil {
			return err
		}
		b.mergeField(node, f)
	}
	return nil
}

// mergeField inserts f, or replaces an earlier field of the same name in
// place so document position of the first occurrence is kept.
func (b *builder) mergeField(node *SchemaNode, f *Field) {
	for i, existing := range node.Fields {
		if existing.Name == f.Name {
			node.Fields[i] = f
			return
		}
	}
	node.Fields = append(node.Fields, f)
}

func (b *builder) unionRequired(node *SchemaNode, frag *oasdoc.Obj) {
	seq, ok := oasdoc.GetSeq(frag, "required")
	if !ok {
		return
	}
	for _, v := range seq {
		if name, ok := v.(string); ok {
			node.Required[name] = true
		}
	}
}

// aliasFallback handles named schemas that are not objects: arrays become
// array aliases, scalar types (including enums) become primitive aliases,
// and anything unrecognizable is marked opaque with a diagnostic. Top-level
// oneOf/anyOf members are resolved so they register, but the node itself
// stays empty: polymorphism is a per-field concern.
func (b *builder) aliasFallback(node *SchemaNode, frag *oasdoc.Obj, context string) error {
	if isArrayFragment(frag) {
		t, err := b.fieldType(node, node.Name, frag, context)
		if err != nil {
			return err
		}
		node.Alias = &t
		return nil
	}
	// A named schema that is itself a oneOf/anyOf acts as the abstract
	// base of its alternatives, same as a synthesized per-field base but
	// under its document name.
	for _, key := range []string{"oneOf", "anyOf"} {
		members, ok := oasdoc.GetSeq(frag, key)
		if !ok {
			continue
		}
		node.Abstract = true
		for _, member := range members {
			mf, ok := member.(*oasdoc.Obj)
			if !ok {
				continue
			}
			ref, ok := bareRef(mf)
			if !ok {
				b.m.Report.add(MalformedSchemaFragment, "", context+"/"+key,
					"composition member of %s is not a $ref; skipped", node.Name)
				continue
			}
			v, err := b.resolve(ref, context+"/"+key)
			if err != nil {
				return err
			}
			node.Variants = append(node.Variants, v)
			if v.Parent == nil && v != node {
				v.Parent = node
				v.ParentSynthesized = true
				node.Children = append(node.Children, v)
			}
		}
		return nil
	}
	if t, ok := oasdoc.GetStr(frag, "type"); ok && t != "object" {
		node.Alias = &TypeRef{Kind: KindPrimitive, Primitive: t}
		if format, ok := oasdoc.GetStr(frag, "format"); ok {
			node.Alias.Format = format
		}
		if enum, ok := oasdoc.GetSeq(frag, "enum"); ok {
			node.Enum = enum
		}
		return nil
	}
	if t, _ := oasdoc.GetStr(frag, "type"); t == "object" || oasdoc.Has(frag, "additionalProperties") {
		// An object with no declared properties stays an empty class.
		return nil
	}
	node.Opaque = true
	b.m.Report.add(MalformedSchemaFragment, "", context,
		"schema %s is neither object, array, composition nor $ref", node.Name)
	return nil
}

// finalize applies the own/inherited partition and derives per-field
// required flags. Fields whose name exists anywhere on the parent chain
// are dropped from the own list; TotalFields surfaces them from the
// ancestor that declares them.
func (b *builder) finalize(node *SchemaNode) {
	if node.Parent != nil {
		kept := node.Fields[:0]
		for _, f := range node.Fields {
			if !node.Parent.hasFieldInChain(f.Name) {
				kept = append(kept, f)
			}
		}
		node.Fields = kept
	}
	for _, f := range node.Fields {
		f.Required = node.Required[f.Name]
	}
}

func (b *builder) buildField(owner *SchemaNode, name string, frag *oasdoc.Obj, context string) (*Field, error) {
	f := &Field{Name: name}
	if desc, ok := oasdoc.GetStr(frag, "description"); ok {
		f.Description = desc
	}
	if v, ok := frag.Get("example"); ok {
		f.Example = v
	}
	if v, ok := frag.Get("default"); ok {
		f.Default = v
	}
	if enum, ok := oasdoc.GetSeq(frag, "enum"); ok {
		f.Enum = enum
	}
	t, err := b.fieldType(owner, name, frag, context)
	if err != nil {
		return nil, err
	}
	f.Type = t
	if len(f.Enum) == 0 {
		if t.Kind == KindPrimitive && t.enumSource != nil {
			f.Enum = t.enumSource.Enum
		}
	}
	return f, nil
}

// fieldType derives the TypeRef for a fragment. nameHint names extracted
// inline objects and synthesized polymorphic bases; for array items it is
// singularized first.
func (b *builder) fieldType(owner *SchemaNode, nameHint string, frag *oasdoc.Obj, context string) (TypeRef, error) {
	if frag == nil {
		b.m.Report.add(MalformedSchemaFragment, "", context, "missing schema fragment")
		return TypeRef{Kind: KindPrimitive, Primitive: "object"}, nil
	}
	if ref, ok := bareRef(frag); ok {
		target, err := b.resolve(ref, context)
		if err != nil {
			return TypeRef{}, err
		}
		return *refType(target), nil
	}
	for _, key := range []string{"oneOf", "anyOf"} {
		if members, ok := oasdoc.GetSeq(frag, key); ok {
			return b.polymorphicType(owner, nameHint, members, context+"/"+key)
		}
	}
	if isArrayFragment(frag) {
		items, _ := oasdoc.GetObj(frag, "items")
		elemHint := flect.Singularize(nameHint)
		elem, err := b.fieldType(owner, elemHint, items, context+"/items")
		if err != nil {
			return TypeRef{}, err
		}
		return TypeRef{Kind: KindArray, Elem: &elem}, nil
	}
	if oasdoc.Has(frag, "properties") {
		node, err := b.extractInline(nameHint, frag, context)
		if err != nil {
			return TypeRef{}, err
		}
		return TypeRef{Kind: KindObject, Schema: node}, nil
	}
	if t, ok := oasdoc.GetStr(frag, "type"); ok {
		if t == "object" {
			return TypeRef{Kind: KindPrimitive, Primitive: "object"}, nil
		}
		format, _ := oasdoc.GetStr(frag, "format")
		return TypeRef{Kind: KindPrimitive, Primitive: t, Format: format}, nil
	}
	if oasdoc.Has(frag, "allOf") {
		node, err := b.extractInline(nameHint, frag, context)
		if err != nil {
			return TypeRef{}, err
		}
		return TypeRef{Kind: KindObject, Schema: node}, nil
	}
	b.m.Report.add(MalformedSchemaFragment, "", context,
		"fragment is neither object, array, composition nor $ref")
	return TypeRef{Kind: KindPrimitive, Primitive: "object"}, nil
}

// extractInline promotes a nested inline object to its own named node so
// every node maps to exactly one output file. The name derives from the
// owning field, capitalized, numbered on collision.
func (b *builder) extractInline(nameHint string, frag *oasdoc.Obj, context string) (*SchemaNode, error) {
	name := b.m.freeName(strcase.UpperCamelCase(nameHint))
	node := &SchemaNode{Name: name, Required: map[string]bool{}, Synthesized: true}
	b.m.addNode(node)
	if err := b.populate(node, frag, context); err != nil {
		return nil, err
	}
	return node, nil
}

// polymorphicType synthesizes the abstract base for a oneOf/anyOf field
// and adopts each variant under it, unless the variant already declares a
// parent of its own. The field is retyped to the base.
func (b *builder) polymorphicType(owner *SchemaNode, fieldName string, members []any, context string) (TypeRef, error) {
	var variants []*SchemaNode
	for _, member := range members {
		frag, ok := member.(*oasdoc.Obj)
		if !ok {
			b.m.Report.add(MalformedSchemaFragment, "", context, "composition member is not a mapping")
			continue
		}
		ref, ok := bareRef(frag)
		if !ok {
			b.m.Report.add(MalformedSchemaFragment, "", context,
				"composition member of %q is not a $ref; skipped", fieldName)
			continue
		}
		v, err := b.resolve(ref, context)
		if err != nil {
			return TypeRef{}, err
		}
		variants = append(variants, v)
	}
	if len(variants) == 0 {
		return TypeRef{Kind: KindPrimitive, Primitive: "object"}, nil
	}

	baseName := strcase.UpperCamelCase(fieldName)
	// A document component with the base's name decides between reuse and
	// collision, so it is resolved before consulting the registry.
	if b.m.Node(baseName) == nil && oasdoc.Has(b.doc.Schemas(), baseName) {
		if _, err := b.resolve(schemaRefPrefix+baseName, context); err != nil {
			return TypeRef{}, err
		}
	}
	base := b.m.Node(baseName)
	if base != nil && !sameVariantBase(base, variants) {
		disambiguated := b.m.freeName(baseName + "Base")
		b.m.Report.add(PolymorphicBaseNameCollision, "", context,
			"synthesized base %q collides with an existing schema; using %q", baseName, disambiguated)
		baseName, base = disambiguated, nil
	}
	if base == nil {
		base = &SchemaNode{
			Name:        baseName,
			Required:    map[string]bool{},
			Abstract:    true,
			Synthesized: true,
		}
		b.m.addNode(base)
		for _, v := range variants {
			base.Variants = append(base.Variants, v)
			if v.Parent == nil {
				v.Parent = base
				v.ParentSynthesized = true
				base.Children = append(base.Children, v)
			}
		}
	}

	group := &PolymorphicGroup{FieldName: fieldName, Owner: owner, Base: base, Variants: variants}
	b.m.Groups = append(b.m.Groups, group)
	return TypeRef{Kind: KindPolymorphic, Schema: base, Group: group}, nil
}

// sameVariantBase reports whether existing is an abstract base over the
// same variant set, in which case it is reused instead of collided.
// Synthesized bases and document-declared unions both qualify.
func sameVariantBase(existing *SchemaNode, variants []*SchemaNode) bool {
	if !existing.Abstract || len(existing.Variants) != len(variants) {
		return false
	}
	for i, v := range variants {
		if existing.Variants[i] != v {
			return false
		}
	}
	return true
}

// refType is the TypeRef for a field referencing target. Alias targets
// dissolve into their aliased type so list and scalar aliases never leak
// as class references.
func refType(target *SchemaNode) *TypeRef {
	if target.Alias != nil {
		cp := *target.Alias
		cp.enumSource = target
		return &cp
	}
	return &TypeRef{Kind: KindObject, Schema: target}
}

func isArrayFragment(frag *oasdoc.Obj) bool {
	if t, _ := oasdoc.GetStr(frag, "type"); t == "array" {
		return true
	}
	return oasdoc.Has(frag, "items")
}
