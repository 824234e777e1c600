package model

import (
	"strings"

	"github.com/stoewer/go-strcase"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/openapi2java/openapi2java/internal/oasdoc"
)

var httpMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// bindEndpoints walks paths in document order and records one binding per
// operation role. Response codes outside 2xx are skipped; several 2xx
// codes pointing at the same schema collapse to the first occurrence.
func (b *builder) bindEndpoints() error {
	paths := b.doc.Paths()
	if paths == nil {
		return nil
	}
	for pathPair := paths.Oldest(); pathPair != nil; pathPair = pathPair.Next() {
		pathTemplate := pathPair.Key
		item, ok := pathPair.Value.(*oasdoc.Obj)
		if !ok {
			continue
		}
		shared, _ := oasdoc.GetSeq(item, "parameters")
		for _, method := range httpMethods {
			op, ok := oasdoc.GetObj(item, method)
			if !ok {
				continue
			}
			if err := b.bindOperation(strings.ToUpper(method), pathTemplate, op, shared); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) bindOperation(method, pathTemplate string, op *oasdoc.Obj, sharedParams []any) error {
	context := "paths/" + pathTemplate + "/" + strings.ToLower(method)

	tags := []string{UntaggedGroup}
	if seq, ok := oasdoc.GetSeq(op, "tags"); ok && len(seq) > 0 {
		tags = tags[:0]
		for _, v := range seq {
			if s, ok := v.(string); ok {
				tags = append(tags, s)
			}
		}
		if len(tags) == 0 {
			tags = []string{UntaggedGroup}
		}
	}

	opID, _ := oasdoc.GetStr(op, "operationId")
	summary, _ := oasdoc.GetStr(op, "summary")
	description, _ := oasdoc.GetStr(op, "description")

	var params []any
	params = append(params, sharedParams...)
	if own, ok := oasdoc.GetSeq(op, "parameters"); ok {
		params = append(params, own...)
	}
	parameters, err := b.bindParameters(params, context)
	if err != nil {
		return err
	}

	proto := EndpointBinding{
		Method:      method,
		Path:        pathTemplate,
		Dir:         endpointDir(method, pathTemplate),
		OperationID: opID,
		Summary:     summary,
		Description: description,
		Tags:        tags,
		Parameters:  parameters,
	}

	bound := len(b.m.Bindings)

	if body, ok := oasdoc.GetObj(op, "requestBody"); ok {
		schema, payload, err := b.mediaSchema(body, opID, method, pathTemplate, context+"/requestBody")
		if err != nil {
			return err
		}
		if schema != nil {
			binding := proto
			binding.Role = RoleBody
			binding.Schema = schema
			binding.Payload = payload
			b.m.Bindings = append(b.m.Bindings, &binding)
		}
	}

	responses, _ := oasdoc.GetObj(op, "responses")
	seen := map[*SchemaNode]bool{}
	for pair := oldest(responses); pair != nil; pair = pair.Next() {
		status := pair.Key
		if !strings.HasPrefix(status, "2") {
			continue
		}
		resp, ok := pair.Value.(*oasdoc.Obj)
		if !ok {
			continue
		}
		resp, err := b.derefResponse(resp, context+"/responses/"+status)
		if err != nil {
			return err
		}
		schema, payload, err := b.mediaSchema(resp, opID, method, pathTemplate, context+"/responses/"+status)
		if err != nil {
			return err
		}
		if schema == nil || seen[schema] {
			continue
		}
		seen[schema] = true
		binding := proto
		binding.Role = RoleResponse
		binding.Status = status
		binding.Schema = schema
		binding.Payload = payload
		b.m.Bindings = append(b.m.Bindings, &binding)
	}

	// An operation with no bound schema at all (no body, no 2xx payload)
	// still surfaces for client-interface rendering, just with nothing to
	// place.
	if len(b.m.Bindings) == bound {
		binding := proto
		binding.Role = RoleResponse
		b.m.Bindings = append(b.m.Bindings, &binding)
	}
	return nil
}

func oldest(o *oasdoc.Obj) *orderedmap.Pair[string, any] {
	if o == nil {
		return nil
	}
	return o.Oldest()
}

// derefResponse follows a components/responses $ref, one level.
func (b *builder) derefResponse(resp *oasdoc.Obj, context string) (*oasdoc.Obj, error) {
	ref, ok := oasdoc.GetStr(resp, "$ref")
	if !ok {
		return resp, nil
	}
	name := strings.TrimPrefix(ref, "#/components/responses/")
	if name == ref {
		b.m.Report.add(UnresolvableReference, ref, context, "unsupported response pointer form")
		return resp, nil
	}
	target, ok := oasdoc.GetObj(b.doc.ResponseComponents(), name)
	if !ok {
		b.m.Report.add(UnresolvableReference, ref, context,
			"no response named %q in components/responses", name)
		return nil, errUnresolvable(ref, context)
	}
	return target, nil
}

// mediaSchema extracts the bound schema node from a requestBody or
// response object: the application/json media type when present, else the
// first media type declared. Array payloads bind to their element node;
// purely scalar payloads produce no binding.
func (b *builder) mediaSchema(container *oasdoc.Obj, opID, method, pathTemplate, context string) (*SchemaNode, TypeRef, error) {
	content, ok := oasdoc.GetObj(container, "content")
	if !ok {
		return nil, TypeRef{}, nil
	}
	media, ok := oasdoc.GetObj(content, "application/json")
	if !ok {
		if first := content.Oldest(); first != nil {
			media, _ = first.Value.(*oasdoc.Obj)
		}
	}
	schemaFrag, ok := oasdoc.GetObj(media, "schema")
	if !ok {
		return nil, TypeRef{}, nil
	}

	hint := opID
	if hint == "" {
		hint = strings.ToLower(method) + " " + slugFromPath(pathTemplate)
	}
	t, err := b.fieldType(nil, strcase.UpperCamelCase(hint), schemaFrag, context+"/schema")
	if err != nil {
		return nil, TypeRef{}, err
	}
	return bindingNode(&t), t, nil
}

// bindingNode digs the schema node out of a payload type: arrays bind
// their element, polymorphic payloads bind the base.
func bindingNode(t *TypeRef) *SchemaNode {
	switch t.Kind {
	case KindObject, KindPolymorphic:
		return t.Schema
	case KindArray:
		if t.Elem != nil {
			return bindingNode(t.Elem)
		}
	}
	return nil
}

func (b *builder) bindParameters(raw []any, context string) ([]Parameter, error) {
	var out []Parameter
	for _, v := range raw {
		frag, ok := v.(*oasdoc.Obj)
		if !ok {
			continue
		}
		if ref, ok := oasdoc.GetStr(frag, "$ref"); ok {
			name := strings.TrimPrefix(ref, "#/components/parameters/")
			if name == ref {
				b.m.Report.add(UnresolvableReference, ref, context, "unsupported parameter pointer form")
				continue
			}
			target, found := oasdoc.GetObj(b.doc.ParameterComponents(), name)
			if !found {
				b.m.Report.add(UnresolvableReference, ref, context,
					"no parameter named %q in components/parameters", name)
				return nil, errUnresolvable(ref, context)
			}
			frag = target
		}
		name, _ := oasdoc.GetStr(frag, "name")
		in, _ := oasdoc.GetStr(frag, "in")
		required, _ := oasdoc.GetBool(frag, "required")
		description, _ := oasdoc.GetStr(frag, "description")
		if name == "" || b.ignore[name] {
			continue
		}
		if b.opts.IgnoreOptionalParams && !required {
			continue
		}
		p := Parameter{Name: name, In: in, Required: required, Description: description}
		if schemaFrag, ok := oasdoc.GetObj(frag, "schema"); ok {
			t, err := b.fieldType(nil, strcase.UpperCamelCase(name), schemaFrag, context+"/parameters/"+name)
			if err != nil {
				return nil, err
			}
			p.Type = t
		} else {
			p.Type = TypeRef{Kind: KindPrimitive, Primitive: "string"}
		}
		out = append(out, p)
	}
	return out, nil
}

// endpointDir derives the endpoint directory segment: method uppercased,
// path slug with braces stripped and slashes flattened to underscores.
// POST /users/{id}/claims becomes POST_users_id_claims.
func endpointDir(method, pathTemplate string) string {
	return method + "_" + slugFromPath(pathTemplate)
}

func slugFromPath(pathTemplate string) string {
	s := strings.NewReplacer("{", "", "}", "").Replace(pathTemplate)
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return "root"
	}
	return strings.Join(parts, "_")
}
