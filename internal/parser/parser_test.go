package parser

import (
	"testing"

	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/internal/token"
)

func mustParse(t *testing.T, src string) *Result {
	t.Helper()
	res, err := Parse("", []byte(src), Flags{GenPresentation: true})
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	return res
}

func TestParseScalarKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind token.ScalarKind
	}{
		{name: "null tilde", src: "~", kind: token.Null},
		{name: "bool true", src: "true", kind: token.Bool},
		{name: "uint", src: "42", kind: token.UInt},
		{name: "int", src: "-42", kind: token.Int},
		{name: "double", src: "3.14", kind: token.Double},
		{name: "bare string", src: "hello", kind: token.String},
		{name: "quoted string", src: `"hello world"`, kind: token.String},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustParse(t, tt.src)
			if res.Root.Kind != ast.Scalar {
				t.Fatalf("Kind = %v, want Scalar", res.Root.Kind)
			}
			if res.Root.ScalarKind != tt.kind {
				t.Errorf("ScalarKind = %v, want %v", res.Root.ScalarKind, tt.kind)
			}
		})
	}
}

func TestParseSimpleMapping(t *testing.T) {
	res := mustParse(t, "name: alice\nage: 30\n")
	if res.Root.Kind != ast.Mapping {
		t.Fatalf("Kind = %v, want Mapping", res.Root.Kind)
	}
	if len(res.Root.Pairs) != 2 {
		t.Fatalf("len(Pairs) = %d, want 2", len(res.Root.Pairs))
	}
	name, _ := res.Root.Pairs[0].Value.AsString()
	if name != "alice" {
		t.Errorf("name = %q", name)
	}
	age, _ := res.Root.Pairs[1].Value.AsUint()
	if age != 30 {
		t.Errorf("age = %d", age)
	}
}

func TestParseNestedMapping(t *testing.T) {
	src := "db:\n  host: localhost\n  port: 5432\n"
	res := mustParse(t, src)
	db, ok := res.Root.Get("db")
	if !ok || db.Kind != ast.Mapping {
		t.Fatalf("db = %+v", db)
	}
	host, _ := db.AtKey("host").AsString()
	if host != "localhost" {
		t.Errorf("host = %q", host)
	}
}

func TestParseSequence(t *testing.T) {
	src := "- a\n- b\n- c\n"
	res := mustParse(t, src)
	if res.Root.Kind != ast.Sequence {
		t.Fatalf("Kind = %v, want Sequence", res.Root.Kind)
	}
	if len(res.Root.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(res.Root.Items))
	}
}

func TestParseCompactSequenceValue(t *testing.T) {
	src := "servers:\n- a\n- b\n"
	res := mustParse(t, src)
	servers, ok := res.Root.Get("servers")
	if !ok || servers.Kind != ast.Sequence {
		t.Fatalf("servers = %+v", servers)
	}
	if len(servers.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(servers.Items))
	}
}

func TestParseIndentedSequenceValue(t *testing.T) {
	src := "servers:\n  - a\n  - b\n"
	res := mustParse(t, src)
	servers, ok := res.Root.Get("servers")
	if !ok || servers.Kind != ast.Sequence {
		t.Fatalf("servers = %+v", servers)
	}
	if len(servers.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(servers.Items))
	}
}

func TestParseFlowSequenceAndMapping(t *testing.T) {
	res := mustParse(t, "nums: [1, 2, 3]\n")
	nums, _ := res.Root.Get("nums")
	if nums.Kind != ast.Sequence || len(nums.Items) != 3 {
		t.Fatalf("nums = %+v", nums)
	}

	res2 := mustParse(t, "point: {x: 1, y: 2}\n")
	point, _ := res2.Root.Get("point")
	if point.Kind != ast.Mapping || len(point.Pairs) != 2 {
		t.Fatalf("point = %+v", point)
	}
}

func TestParseFlowImplicitMapping(t *testing.T) {
	res := mustParse(t, "items: [a: 1, b: 2]\n")
	items, _ := res.Root.Get("items")
	if items.Kind != ast.Sequence || len(items.Items) != 2 {
		t.Fatalf("items = %+v", items)
	}
	if items.Items[0].Kind != ast.Mapping {
		t.Fatalf("items[0] = %+v", items.Items[0])
	}
}

func TestParseFlowNestedColonIsError(t *testing.T) {
	_, err := Parse("", []byte("items: [a: b: c]\n"), Flags{})
	if err == nil {
		t.Fatal("expected WrongData::UnexpectedColon error")
	}
}

func TestParseDuplicateKeyIsError(t *testing.T) {
	_, err := Parse("", []byte("a: 1\na: 2\n"), Flags{})
	if err == nil {
		t.Fatal("expected BadKey error for duplicate key")
	}
}

func TestParseTabInIndentationIsError(t *testing.T) {
	_, err := Parse("", []byte("a:\n\tb: 1\n"), Flags{})
	if err == nil {
		t.Fatal("expected TabCharacter error")
	}
}

func TestParseTag(t *testing.T) {
	res := mustParse(t, "!custom hello\n")
	if res.Root.Tag == nil || res.Root.Tag.Name != "custom" {
		t.Fatalf("Tag = %+v", res.Root.Tag)
	}
}

func TestParseBareIncludeRejected(t *testing.T) {
	_, err := Parse("", []byte("!include foo.yml\n"), Flags{})
	if err == nil {
		t.Fatal("expected InvalidInclude error for bare-stream include")
	}
}
