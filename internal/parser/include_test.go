package parser

import (
	"testing"

	"github.com/shapestone/yamlfuse/internal/ast"
)

func TestIncludeAndOverrideMerge(t *testing.T) {
	reader := mapReader{
		"root.yml":  "!include inner.yml\ny: 3\nz: 4\n",
		"inner.yml": "x: 1\ny: 2\n",
	}
	res, err := ParseWithReader("root.yml", []byte(reader["root.yml"]), Flags{GenPresentation: true}, reader)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if res.Root.Kind != ast.Mapping {
		t.Fatalf("Kind = %v, want Mapping", res.Root.Kind)
	}
	x, _ := res.Root.AtKey("x").AsUint()
	y, _ := res.Root.AtKey("y").AsUint()
	z, _ := res.Root.AtKey("z").AsUint()
	if x != 1 || y != 3 || z != 4 {
		t.Fatalf("x=%d y=%d z=%d, want 1,3,4", x, y, z)
	}
}

func TestIncludeRaw(t *testing.T) {
	reader := mapReader{
		"root.yml": "!includeraw notes.txt\n",
		"notes.txt": "hello\nworld",
	}
	res, err := ParseWithReader("root.yml", []byte(reader["root.yml"]), Flags{}, reader)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	s, ok := res.Root.AsString()
	if !ok || s != "hello\nworld" {
		t.Fatalf("root = %q", s)
	}
}

func TestIncludeDirectoryEscapeRejected(t *testing.T) {
	reader := mapReader{
		"sub/root.yml": "!include ../secret.yml\n",
	}
	_, err := ParseWithReader("sub/root.yml", []byte(reader["sub/root.yml"]), Flags{}, reader)
	if err == nil {
		t.Fatal("expected InvalidInclude for a path escaping the including directory")
	}
}

func TestIncludeCycleDetected(t *testing.T) {
	reader := mapReader{
		"a.yml": "!include b.yml\n",
		"b.yml": "!include a.yml\n",
	}
	_, err := ParseWithReader("a.yml", []byte(reader["a.yml"]), Flags{}, reader)
	if err == nil {
		t.Fatal("expected InvalidInclude for an include cycle")
	}
}

func TestVariableTemplateSubstitution(t *testing.T) {
	reader := mapReader{
		"root.yml":  "!include inner.yml\n$host: h\n$port: 80\n",
		"inner.yml": `addr: "$host:$port"` + "\n",
	}
	res, err := ParseWithReader("root.yml", []byte(reader["root.yml"]), Flags{GenPresentation: true}, reader)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	addr, ok := res.Root.AtKey("addr").AsString()
	if !ok || addr != "h:80" {
		t.Fatalf("addr = %q, want %q", addr, "h:80")
	}
}

func TestUnboundVariableIsError(t *testing.T) {
	reader := mapReader{
		"root.yml":  "!include inner.yml\n",
		"inner.yml": "addr: \"$host\"\n",
	}
	_, err := ParseWithReader("root.yml", []byte(reader["root.yml"]), Flags{}, reader)
	if err == nil {
		t.Fatal("expected UnboundVariables error")
	}
}

func TestUnboundVariableAllowed(t *testing.T) {
	reader := mapReader{
		"root.yml":  "!include inner.yml\n",
		"inner.yml": "addr: \"$host\"\n",
	}
	res, err := ParseWithReader("root.yml", []byte(reader["root.yml"]), Flags{AllowUnboundVariables: true}, reader)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	addr, _ := res.Root.AtKey("addr").AsString()
	if addr != "$host" {
		t.Fatalf("addr = %q, want unsubstituted template", addr)
	}
}

func TestUnknownVariableInOverrideIsError(t *testing.T) {
	reader := mapReader{
		"root.yml":  "!include inner.yml\n$nope: 1\n",
		"inner.yml": "x: 1\n",
	}
	_, err := ParseWithReader("root.yml", []byte(reader["root.yml"]), Flags{}, reader)
	if err == nil {
		t.Fatal("expected BadKey::UnknownVariable error")
	}
}
