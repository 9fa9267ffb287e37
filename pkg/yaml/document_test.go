package yaml

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestParseAndPackRoundTrip(t *testing.T) {
	src := "name: widget\ncount: 3\n"
	doc, err := Parse([]byte(src), Flags{GenPresentation: true})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := doc.Pack()
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if string(out) != src {
		t.Fatalf("got %q, want %q", out, src)
	}
}

func TestParseFileResolvesIncludes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "db.yml"), []byte("host: localhost\n"), 0o644); err != nil {
		t.Fatalf("write db.yml: %v", err)
	}
	root := filepath.Join(dir, "root.yml")
	if err := os.WriteFile(root, []byte("db: !include db.yml\n"), 0o644); err != nil {
		t.Fatalf("write root.yml: %v", err)
	}
	doc, err := ParseFile(root, Flags{GenPresentation: true})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	host, ok := doc.Root.AtKey("db").AtKey("host").AsString()
	if !ok || host != "localhost" {
		t.Fatalf("host = %q, ok=%v", host, ok)
	}
}

func TestEnvelopeListsRecordedPaths(t *testing.T) {
	doc, err := Parse([]byte("a: 1 # note\n"), Flags{GenPresentation: true})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	env := doc.Envelope()
	found := false
	for _, e := range env.Entries {
		if e.Path == "a" && e.InlineComment == " note" {
			found = true
		}
	}
	if !found {
		t.Fatalf("envelope %+v missing path %q with inline comment", env.Entries, "a")
	}
}

func TestPackEnvOutdirWritesSubfile(t *testing.T) {
	dir := t.TempDir()
	outdir := filepath.Join(dir, "out")
	srcDir := filepath.Join(dir, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "db.yml"), []byte("host: localhost\n"), 0o644); err != nil {
		t.Fatalf("write db.yml: %v", err)
	}
	rootPath := filepath.Join(srcDir, "root.yml")
	if err := os.WriteFile(rootPath, []byte("db: !include db.yml\n"), 0o644); err != nil {
		t.Fatalf("write root.yml: %v", err)
	}
	parsed, err := ParseFile(rootPath, Flags{GenPresentation: true})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	env := NewPackEnv().SetOutdir(outdir)
	var buf bytes.Buffer
	if err := env.PackToWriter(&buf, parsed.Root, parsed.Doc); err != nil {
		t.Fatalf("PackToWriter: %v", err)
	}
	if buf.String() != "db: !include db.yml\n" {
		t.Fatalf("got %q", buf.String())
	}
	data, err := os.ReadFile(filepath.Join(outdir, "db.yml"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "host: localhost\n" {
		t.Fatalf("subfile content = %q", data)
	}
}

func TestPackEnvOutdirWritesSubfileBeforeOverride(t *testing.T) {
	dir := t.TempDir()
	outdir := filepath.Join(dir, "out")
	srcDir := filepath.Join(dir, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "inner.yml"), []byte("x: 1\ny: 2\n"), 0o644); err != nil {
		t.Fatalf("write inner.yml: %v", err)
	}
	rootPath := filepath.Join(srcDir, "root.yml")
	if err := os.WriteFile(rootPath, []byte("!include inner.yml\ny: 3\nz: 4\n"), 0o644); err != nil {
		t.Fatalf("write root.yml: %v", err)
	}
	parsed, err := ParseFile(rootPath, Flags{GenPresentation: true})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	env := NewPackEnv().SetOutdir(outdir)
	var buf bytes.Buffer
	if err := env.PackToWriter(&buf, parsed.Root, parsed.Doc); err != nil {
		t.Fatalf("PackToWriter: %v", err)
	}
	want := "!include inner.yml\ny: 3\nz: 4\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
	data, err := os.ReadFile(filepath.Join(outdir, "inner.yml"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "x: 1\ny: 2\n" {
		t.Fatalf("subfile content = %q, want verbatim pre-override content", data)
	}
}

func TestPackEnvNoSubfilesSkipsDisk(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "db.yml"), []byte("host: localhost\n"), 0o644); err != nil {
		t.Fatalf("write db.yml: %v", err)
	}
	rootPath := filepath.Join(dir, "root.yml")
	if err := os.WriteFile(rootPath, []byte("db: !include db.yml\n"), 0o644); err != nil {
		t.Fatalf("write root.yml: %v", err)
	}
	parsed, err := ParseFile(rootPath, Flags{GenPresentation: true})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	env := NewPackEnv().SetFlags(true)
	var buf bytes.Buffer
	if err := env.PackToWriter(&buf, parsed.Root, parsed.Doc); err != nil {
		t.Fatalf("PackToWriter: %v", err)
	}
	if buf.String() != "db: !include db.yml\n" {
		t.Fatalf("got %q", buf.String())
	}
}
