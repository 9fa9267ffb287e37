// Package ast defines the parsed document's data model: the tagged
// Scalar/Sequence/Mapping Node variant, ordered mapping pairs, and the
// small set of typed accessors and builders the parser and packer
// share.
package ast

import (
	"github.com/shapestone/yamlfuse/internal/token"
)

// Kind is the three-way shape a Node can take.
type Kind int

const (
	Scalar Kind = iota
	Sequence
	Mapping
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "Scalar"
	case Sequence:
		return "Sequence"
	case Mapping:
		return "Mapping"
	default:
		return "Unknown"
	}
}

// Tag is the optional "!name" annotation on a value.
type Tag struct {
	Name string
	Span token.Span
}

// Pair is one key/value entry of a Mapping, in surface order. Key is
// restricted to alphanumerics, optionally '$'-prefixed (a variable
// key).
type Pair struct {
	Key      string
	KeySpan  token.Span
	Variable bool // Key starts with '$'
	Value    *Node
}

// Node is a parsed YAML value: exactly one of Scalar/Sequence/Mapping
// is populated, selected by Kind.
type Node struct {
	Kind Kind
	Span token.Span
	Tag  *Tag

	// Scalar fields (valid when Kind == Scalar).
	ScalarKind token.ScalarKind
	Bool       bool
	Int        int64
	UInt       uint64
	Double     float64
	Str        string // decoded text; raw text for round-trip lives in Raw.
	Raw        string // the literal source lexeme, pre-decode (used by the variable engine's "embedded" splice).
	Quoted     bool

	// Sequence fields (valid when Kind == Sequence).
	Items []*Node

	// Mapping fields (valid when Kind == Mapping).
	Pairs []*Pair
}

func NewNull(span token.Span) *Node {
	return &Node{Kind: Scalar, Span: span, ScalarKind: token.Null}
}

func NewScalarFrom(v token.Scalar, raw string, quoted bool, span token.Span) *Node {
	return &Node{
		Kind:       Scalar,
		Span:       span,
		ScalarKind: v.Kind,
		Bool:       v.Bool,
		Int:        v.Int,
		UInt:       v.UInt,
		Double:     v.Double,
		Str:        v.Str,
		Raw:        raw,
		Quoted:     quoted,
	}
}

func NewString(s string, span token.Span) *Node {
	return &Node{Kind: Scalar, Span: span, ScalarKind: token.String, Str: s, Raw: s}
}

func NewSequence(span token.Span) *Node {
	return &Node{Kind: Sequence, Span: span}
}

func NewMapping(span token.Span) *Node {
	return &Node{Kind: Mapping, Span: span}
}

// FindKey returns the index of the pair with the given key, or -1.
func (n *Node) FindKey(key string) int {
	for i, p := range n.Pairs {
		if p.Key == key {
			return i
		}
	}
	return -1
}

// Get returns the value mapped to key, if n is a Mapping and key is present.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != Mapping {
		return nil, false
	}
	if i := n.FindKey(key); i >= 0 {
		return n.Pairs[i].Value, true
	}
	return nil, false
}

// AsString returns the scalar's decoded text and true if n is a Scalar.
func (n *Node) AsString() (string, bool) {
	if n == nil || n.Kind != Scalar {
		return "", false
	}
	return n.Str, true
}

// AsBool returns the scalar's boolean value and true if n is a Bool scalar.
func (n *Node) AsBool() (bool, bool) {
	if n == nil || n.Kind != Scalar || n.ScalarKind != token.Bool {
		return false, false
	}
	return n.Bool, true
}

// AsInt returns the scalar's signed value and true if n is an Int scalar.
func (n *Node) AsInt() (int64, bool) {
	if n == nil || n.Kind != Scalar || n.ScalarKind != token.Int {
		return 0, false
	}
	return n.Int, true
}

// AsUint returns the scalar's unsigned value and true if n is a UInt scalar.
func (n *Node) AsUint() (uint64, bool) {
	if n == nil || n.Kind != Scalar || n.ScalarKind != token.UInt {
		return 0, false
	}
	return n.UInt, true
}

// AsDouble returns the scalar's float value and true if n is a Double scalar.
func (n *Node) AsDouble() (float64, bool) {
	if n == nil || n.Kind != Scalar || n.ScalarKind != token.Double {
		return 0, false
	}
	return n.Double, true
}

// IsNull reports whether n is the Null scalar.
func (n *Node) IsNull() bool {
	return n != nil && n.Kind == Scalar && n.ScalarKind == token.Null
}

// RawText returns the literal source text of a scalar (used by the
// variable engine when splicing a non-string scalar into a host
// string: "non-string scalars use their span's raw text").
func (n *Node) RawText() string {
	if n == nil {
		return ""
	}
	return n.Raw
}

// Clone deep-copies a Node tree. Used when a memoized subfile parse is
// reused at a second inclusion site: each site must be free to apply
// its own override/variable bindings without disturbing the others.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Tag != nil {
		t := *n.Tag
		c.Tag = &t
	}
	if n.Items != nil {
		c.Items = make([]*Node, len(n.Items))
		for i, it := range n.Items {
			c.Items[i] = it.Clone()
		}
	}
	if n.Pairs != nil {
		c.Pairs = make([]*Pair, len(n.Pairs))
		for i, p := range n.Pairs {
			np := *p
			np.Value = p.Value.Clone()
			c.Pairs[i] = &np
		}
	}
	return &c
}
