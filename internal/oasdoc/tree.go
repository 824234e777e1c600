package oasdoc

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Obj is an order-preserving mapping node of a parsed document tree.
// Keeping declaration order matters: property merge rules are defined over
// document order, and generated output is expected to list fields the way
// the document does.
type Obj = orderedmap.OrderedMap[string, any]

// ParseTree parses YAML (or JSON, which is a YAML subset) into a generic
// tree of *Obj mappings, []any sequences and scalar values.
func ParseTree(data []byte) (*Obj, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	v, err := fromNode(&root)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Obj)
	if !ok {
		return nil, fmt.Errorf("parse document: top-level value is not a mapping")
	}
	return obj, nil
}

func fromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromNode(n.Content[0])
	case yaml.MappingNode:
		obj := orderedmap.New[string, any]()
		for i := 0; i+1 < len(n.Content); i += 2 {
			var key string
			if err := n.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("mapping key at line %d: %w", n.Content[i].Line, err)
			}
			val, err := fromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(key, val)
		}
		return obj, nil
	case yaml.SequenceNode:
		seq := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("scalar at line %d: %w", n.Line, err)
		}
		return v, nil
	case yaml.AliasNode:
		return fromNode(n.Alias)
	default:
		return nil, fmt.Errorf("unsupported node kind %d at line %d", n.Kind, n.Line)
	}
}

// GetObj returns the mapping stored under key, when present and a mapping.
func GetObj(o *Obj, key string) (*Obj, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	obj, ok := v.(*Obj)
	return obj, ok
}

// GetStr returns the string stored under key, when present and a string.
func GetStr(o *Obj, key string) (string, bool) {
	if o == nil {
		return "", false
	}
	v, ok := o.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetSeq returns the sequence stored under key, when present and a sequence.
func GetSeq(o *Obj, key string) ([]any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	seq, ok := v.([]any)
	return seq, ok
}

// GetBool returns the bool stored under key, when present and a bool.
func GetBool(o *Obj, key string) (bool, bool) {
	if o == nil {
		return false, false
	}
	v, ok := o.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Has reports whether key is present.
func Has(o *Obj, key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.Get(key)
	return ok
}
