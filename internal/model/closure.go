package model

// Closure computes the transitive dependency set of root, excluding root
// itself, in first-discovered (breadth-first) order. It follows object
// references, array element references, every variant and the base of a
// polymorphic field, and parents reached through inheritance edges. The
// visited guard is by node identity, so diamonds and cycles contribute
// each node once.
func Closure(root *SchemaNode) []*SchemaNode {
	visited := map[*SchemaNode]bool{root: true}
	var out []*SchemaNode
	queue := []*SchemaNode{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range neighbors(cur) {
			if dep == nil || visited[dep] {
				continue
			}
			visited[dep] = true
			out = append(out, dep)
			queue = append(queue, dep)
		}
	}
	return out
}

func neighbors(n *SchemaNode) []*SchemaNode {
	var out []*SchemaNode
	if n.Parent != nil {
		out = append(out, n.Parent)
	}
	for _, f := range n.Fields {
		out = appendTypeDeps(out, &f.Type)
	}
	if n.Alias != nil {
		out = appendTypeDeps(out, n.Alias)
	}
	out = append(out, n.Variants...)
	return out
}

func appendTypeDeps(out []*SchemaNode, t *TypeRef) []*SchemaNode {
	switch t.Kind {
	case KindObject:
		out = append(out, t.Schema)
	case KindArray:
		if t.Elem != nil {
			out = appendTypeDeps(out, t.Elem)
		}
	case KindPolymorphic:
		out = append(out, t.Schema)
		if t.Group != nil {
			out = append(out, t.Group.Variants...)
		}
	}
	return out
}
