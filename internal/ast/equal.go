package ast

import "github.com/shapestone/yamlfuse/internal/token"

// Equal reports whether a and b are structurally identical: same
// shape, same scalar values, same mapping keys in the same order, same
// tags. Span, Raw, and Quoted are presentation details and are ignored.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	if !tagEqual(a.Tag, b.Tag) {
		return false
	}
	switch a.Kind {
	case Scalar:
		return scalarEqual(a, b)
	case Sequence:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	case Mapping:
		if len(a.Pairs) != len(b.Pairs) {
			return false
		}
		for i := range a.Pairs {
			pa, pb := a.Pairs[i], b.Pairs[i]
			if pa.Key != pb.Key || pa.Variable != pb.Variable {
				return false
			}
			if !Equal(pa.Value, pb.Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func tagEqual(a, b *Tag) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name == b.Name
}

func scalarEqual(a, b *Node) bool {
	if a.ScalarKind != b.ScalarKind {
		return false
	}
	if a.ScalarKind == token.Null {
		return true
	}
	return a.Bool == b.Bool && a.Int == b.Int && a.UInt == b.UInt && a.Double == b.Double && a.Str == b.Str
}
