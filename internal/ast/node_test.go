package ast

import (
	"testing"

	"github.com/shapestone/yamlfuse/internal/token"
)

func TestNodeTypedAccessors(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		kind token.ScalarKind
	}{
		{name: "null", node: NewNull(token.Zero), kind: token.Null},
		{name: "string", node: NewString("hi", token.Zero), kind: token.String},
		{name: "bool", node: &Node{Kind: Scalar, ScalarKind: token.Bool, Bool: true}, kind: token.Bool},
		{name: "int", node: &Node{Kind: Scalar, ScalarKind: token.Int, Int: -7}, kind: token.Int},
		{name: "uint", node: &Node{Kind: Scalar, ScalarKind: token.UInt, UInt: 7}, kind: token.UInt},
		{name: "double", node: &Node{Kind: Scalar, ScalarKind: token.Double, Double: 1.5}, kind: token.Double},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.node.ScalarKind != tt.kind {
				t.Fatalf("ScalarKind = %v, want %v", tt.node.ScalarKind, tt.kind)
			}
			if _, ok := tt.node.AsBool(); ok != (tt.kind == token.Bool) {
				t.Errorf("AsBool ok = %v", ok)
			}
			if _, ok := tt.node.AsInt(); ok != (tt.kind == token.Int) {
				t.Errorf("AsInt ok = %v", ok)
			}
			if _, ok := tt.node.AsUint(); ok != (tt.kind == token.UInt) {
				t.Errorf("AsUint ok = %v", ok)
			}
			if _, ok := tt.node.AsDouble(); ok != (tt.kind == token.Double) {
				t.Errorf("AsDouble ok = %v", ok)
			}
		})
	}
}

func TestNodeGetAndFindKey(t *testing.T) {
	m := NewMapping(token.Zero)
	m.Pairs = append(m.Pairs,
		&Pair{Key: "name", Value: NewString("alice", token.Zero)},
		&Pair{Key: "age", Value: &Node{Kind: Scalar, ScalarKind: token.UInt, UInt: 30}},
	)

	if i := m.FindKey("age"); i != 1 {
		t.Fatalf("FindKey(age) = %d, want 1", i)
	}
	if _, ok := m.Get("missing"); ok {
		t.Fatalf("Get(missing) should not be found")
	}
	v, ok := m.Get("name")
	if !ok {
		t.Fatal("Get(name) not found")
	}
	if s, _ := v.AsString(); s != "alice" {
		t.Errorf("name = %q, want alice", s)
	}
}

func TestNodeEqualIgnoresPresentation(t *testing.T) {
	a := NewString("x", token.Span{Start: token.Position{Line: 1}})
	a.Raw = `"x"`
	a.Quoted = true
	b := NewString("x", token.Zero)
	b.Raw = "x"
	b.Quoted = false

	if !Equal(a, b) {
		t.Fatal("expected scalars with same decoded value to be Equal regardless of presentation")
	}

	c := NewString("y", token.Zero)
	if Equal(a, c) {
		t.Fatal("expected different string values to be unequal")
	}
}

func TestNodeEqualMappingOrderMatters(t *testing.T) {
	m1 := NewMapping(token.Zero)
	m1.Pairs = []*Pair{
		{Key: "a", Value: NewString("1", token.Zero)},
		{Key: "b", Value: NewString("2", token.Zero)},
	}
	m2 := NewMapping(token.Zero)
	m2.Pairs = []*Pair{
		{Key: "b", Value: NewString("2", token.Zero)},
		{Key: "a", Value: NewString("1", token.Zero)},
	}
	if Equal(m1, m2) {
		t.Fatal("expected reordered mapping pairs to be unequal")
	}
}

func TestNodeEqualTags(t *testing.T) {
	a := NewString("x", token.Zero)
	a.Tag = &Tag{Name: "include"}
	b := NewString("x", token.Zero)
	b.Tag = &Tag{Name: "include"}
	if !Equal(a, b) {
		t.Fatal("expected equal tags to compare equal")
	}
	b.Tag = &Tag{Name: "includeraw"}
	if Equal(a, b) {
		t.Fatal("expected different tag names to compare unequal")
	}
}

func TestNodeClone(t *testing.T) {
	root := NewMapping(token.Zero)
	seq := NewSequence(token.Zero)
	seq.Items = append(seq.Items, NewString("a", token.Zero), NewString("b", token.Zero))
	root.Pairs = append(root.Pairs, &Pair{Key: "list", Value: seq})

	clone := root.Clone()
	if !Equal(root, clone) {
		t.Fatal("clone should be structurally equal to original")
	}

	clone.Pairs[0].Value.Items[0].Str = "mutated"
	if root.Pairs[0].Value.Items[0].Str == "mutated" {
		t.Fatal("mutating the clone must not affect the original")
	}
}

func TestNodeWalk(t *testing.T) {
	root := NewMapping(token.Zero)
	seq := NewSequence(token.Zero)
	inner := NewMapping(token.Zero)
	inner.Pairs = append(inner.Pairs, &Pair{Key: "port", Value: &Node{Kind: Scalar, ScalarKind: token.UInt, UInt: 8080}})
	seq.Items = append(seq.Items, inner)
	root.Pairs = append(root.Pairs, &Pair{Key: "servers", Value: seq})

	got := root.Walk("servers", 0, "port")
	if got == nil {
		t.Fatal("Walk returned nil")
	}
	if u, _ := got.AsUint(); u != 8080 {
		t.Errorf("port = %d, want 8080", u)
	}

	if root.Walk("servers", 5, "port") != nil {
		t.Fatal("expected out-of-range index to stop the walk")
	}
}
