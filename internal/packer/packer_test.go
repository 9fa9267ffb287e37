package packer

import (
	"testing"

	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/internal/parser"
)

// mapReader is an in-memory parser.FileReader, mirroring the parser
// package's own test fixture so round-trip tests here don't need the
// real filesystem.
type mapReader map[string]string

func (m mapReader) ReadFile(path string) ([]byte, error) {
	if data, ok := m[path]; ok {
		return []byte(data), nil
	}
	return nil, errNotFound(path)
}

type errNotFound string

func (e errNotFound) Error() string { return "no such file: " + string(e) }

func packString(t *testing.T, src string) string {
	t.Helper()
	res, err := parser.ParseWithReader("doc.yml", []byte(src), parser.Flags{GenPresentation: true}, mapReader{"doc.yml": src})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	out, err := Pack(res.Root, res.Doc, Options{})
	if err != nil {
		t.Fatalf("pack error: %v", err)
	}
	return string(out)
}

func TestScalarCanonicalization(t *testing.T) {
	got := packString(t, "a: NulL\n")
	want := "a: ~\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCompactSequenceNormalizesIndent(t *testing.T) {
	got := packString(t, "a:\n- 1\n- 2\n")
	want := "a:\n  - 1\n  - 2\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNestedMappingIndent(t *testing.T) {
	got := packString(t, "a:\n  b: 1\n  c: 2\n")
	want := "a:\n  b: 1\n  c: 2\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSequenceOfMappingsStaysCompact(t *testing.T) {
	src := "- a: 1\n  b: 2\n- c: 3\n"
	got := packString(t, src)
	if got != src {
		t.Fatalf("got %q, want %q", got, src)
	}
}

func TestSequenceOfMappingsNestedUnderKey(t *testing.T) {
	src := "items:\n  - a: 1\n    b: 2\n  - a: 3\n    b: 4\n"
	got := packString(t, src)
	if got != src {
		t.Fatalf("got %q, want %q", got, src)
	}
}

func TestRoundTripSimpleDocument(t *testing.T) {
	src := "name: widget\ncount: 3\ntags:\n  - red\n  - blue\n"
	got := packString(t, src)
	if got != src {
		t.Fatalf("got %q, want %q", got, src)
	}
}

func TestCommentsAndBlankLinesPreserved(t *testing.T) {
	src := "# top\na: 1\n\n# before b\nb: 2\n"
	got := packString(t, src)
	if got != src {
		t.Fatalf("got %q, want %q", got, src)
	}
}

func TestInlineCommentPreserved(t *testing.T) {
	src := "a: 1 #trailing\n"
	got := packString(t, src)
	if got != src {
		t.Fatalf("got %q, want %q", got, src)
	}
}

func TestFlowSequencePreserved(t *testing.T) {
	src := "a: [1, 2, 3]\n"
	got := packString(t, src)
	if got != src {
		t.Fatalf("got %q, want %q", got, src)
	}
}

func TestFlowMappingPreserved(t *testing.T) {
	src := "a: {x: 1, y: 2}\n"
	got := packString(t, src)
	if got != src {
		t.Fatalf("got %q, want %q", got, src)
	}
}

func TestFlowFallsBackToBlockWhenDescendantTagged(t *testing.T) {
	// Flow syntax has no tag form, so the tag is put on the parsed tree
	// directly, as a program editing it before packing would.
	src := "a: [1, 2, 3]\n"
	res, err := parser.ParseWithReader("doc.yml", []byte(src), parser.Flags{GenPresentation: true}, mapReader{"doc.yml": src})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	res.Root.AtKey("a").Items[1].Tag = &ast.Tag{Name: "thing"}
	out, err := Pack(res.Root, res.Doc, Options{})
	if err != nil {
		t.Fatalf("pack error: %v", err)
	}
	got := string(out)
	want := "a:\n  - 1\n  - !thing 2\n  - 3\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestQuotingEdgeCases(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"leading-bang", `a: "!not-a-tag"` + "\n", `a: "!not-a-tag"` + "\n"},
		{"looks-numeric", `a: "123"` + "\n", `a: "123"` + "\n"},
		{"looks-bool", `a: "true"` + "\n", `a: "true"` + "\n"},
		{"colon-space", `a: "b: c"` + "\n", `a: "b: c"` + "\n"},
		{"hash-after-space", `a: "b #c"` + "\n", `a: "b #c"` + "\n"},
		{"plain-needs-no-quotes", "a: hello\n", "a: hello\n"},
		{"colon-no-space-bare", "a: http://x\n", "a: http://x\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := packString(t, c.src)
			if got != c.want {
				t.Fatalf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestIncludeInlineRoot(t *testing.T) {
	reader := mapReader{
		"root.yml":  "!include inner.yml\ny: 3\nz: 4\n",
		"inner.yml": "x: 1\ny: 2\n",
	}
	res, err := parser.ParseWithReader("root.yml", []byte(reader["root.yml"]), parser.Flags{GenPresentation: true}, reader)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	out, err := Pack(res.Root, res.Doc, Options{})
	if err != nil {
		t.Fatalf("pack error: %v", err)
	}
	want := "x: 1\ny: 3\nz: 4\n"
	if string(out) != want {
		t.Fatalf("got %q, want %q", string(out), want)
	}
}

func TestIncludeInlineNested(t *testing.T) {
	reader := mapReader{
		"root.yml": "db: !include db.yml\n",
		"db.yml":   "host: localhost\nport: 5432\n",
	}
	res, err := parser.ParseWithReader("root.yml", []byte(reader["root.yml"]), parser.Flags{GenPresentation: true}, reader)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	out, err := Pack(res.Root, res.Doc, Options{})
	if err != nil {
		t.Fatalf("pack error: %v", err)
	}
	want := "db:\n  host: localhost\n  port: 5432\n"
	if string(out) != want {
		t.Fatalf("got %q, want %q", string(out), want)
	}
}

func TestIncludeReferenceModeNoSink(t *testing.T) {
	reader := mapReader{
		"root.yml": "db: !include db.yml\n",
		"db.yml":   "host: localhost\n",
	}
	res, err := parser.ParseWithReader("root.yml", []byte(reader["root.yml"]), parser.Flags{GenPresentation: true}, reader)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	out, err := Pack(res.Root, res.Doc, Options{Mode: ModeReference})
	if err != nil {
		t.Fatalf("pack error: %v", err)
	}
	want := "db: !include db.yml\n"
	if string(out) != want {
		t.Fatalf("got %q, want %q", string(out), want)
	}
}

func TestIncludeRawRoundTrip(t *testing.T) {
	reader := mapReader{
		"root.yml":  "!includeraw notes.txt\n",
		"notes.txt": "hello\nworld",
	}
	res, err := parser.ParseWithReader("root.yml", []byte(reader["root.yml"]), parser.Flags{GenPresentation: true}, reader)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	out, err := Pack(res.Root, res.Doc, Options{})
	if err != nil {
		t.Fatalf("pack error: %v", err)
	}
	want := "\"hello\\nworld\"\n"
	if string(out) != want {
		t.Fatalf("got %q, want %q", string(out), want)
	}
}

func TestVariableWholeTemplateRoundTrip(t *testing.T) {
	reader := mapReader{
		"root.yml":  "!include inner.yml\n$host: myhost\n",
		"inner.yml": `host: "$host"` + "\n",
	}
	res, err := parser.ParseWithReader("root.yml", []byte(reader["root.yml"]), parser.Flags{GenPresentation: true}, reader)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	out, err := Pack(res.Root, res.Doc, Options{})
	if err != nil {
		t.Fatalf("pack error: %v", err)
	}
	want := "host: $host\n$host: myhost\n"
	if string(out) != want {
		t.Fatalf("got %q, want %q", string(out), want)
	}
}

func TestOverrideBlockReconstruction(t *testing.T) {
	reader := mapReader{
		"root.yml":  "!include inner.yml\ny: 3\nnew: 9\n",
		"inner.yml": "x: 1\ny: 2\n",
	}
	res, err := parser.ParseWithReader("root.yml", []byte(reader["root.yml"]), parser.Flags{GenPresentation: true}, reader)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	out, err := Pack(res.Root, res.Doc, Options{})
	if err != nil {
		t.Fatalf("pack error: %v", err)
	}
	want := "x: 1\ny: 3\nnew: 9\n"
	if string(out) != want {
		t.Fatalf("got %q, want %q", string(out), want)
	}
}
