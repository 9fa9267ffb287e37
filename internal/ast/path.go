package ast

import "strconv"

// AtKey returns the value of a mapping key, descending one level. It
// returns nil if n is not a Mapping or the key is absent — callers
// chain calls to walk a dotted path without checking each step.
func (n *Node) AtKey(key string) *Node {
	v, _ := n.Get(key)
	return v
}

// AtIndex returns the i'th item of a Sequence, or nil if n is not a
// Sequence or i is out of range.
func (n *Node) AtIndex(i int) *Node {
	if n == nil || n.Kind != Sequence || i < 0 || i >= len(n.Items) {
		return nil
	}
	return n.Items[i]
}

// Walk descends a sequence of string/int steps, where a string step is
// a mapping key and an int step is a sequence index. It stops and
// returns nil as soon as a step cannot be satisfied.
func (n *Node) Walk(steps ...any) *Node {
	cur := n
	for _, step := range steps {
		if cur == nil {
			return nil
		}
		switch s := step.(type) {
		case string:
			cur = cur.AtKey(s)
		case int:
			cur = cur.AtIndex(s)
		default:
			return nil
		}
	}
	return cur
}

// IndexOrKey parses a path segment that is either a bare decimal
// index or a mapping key, used by the override/presentation path
// resolvers to apply a parsed segment to a live node.
func (n *Node) IndexOrKey(seg string) *Node {
	if n == nil {
		return nil
	}
	if n.Kind == Sequence {
		if i, err := strconv.Atoi(seg); err == nil {
			return n.AtIndex(i)
		}
	}
	return n.AtKey(seg)
}
