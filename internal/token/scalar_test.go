package token

import "testing"

func TestClassifyBare(t *testing.T) {
	cases := []struct {
		in   string
		kind ScalarKind
	}{
		{"NulL", Null},
		{"~", Null},
		{"TrUE", Bool},
		{"false", Bool},
		{"-0", UInt},
		{"0", UInt},
		{"123", UInt},
		{"-123", Int},
		{"1e3", Double},
		{"1.5", Double},
		{".inf", Double},
		{"-.inf", Double},
		{".nan", Double},
		{"hello", String},
		{"18446744073709551615", UInt}, // max uint64
		{"-9223372036854775808", Int},  // min int64
	}
	for _, c := range cases {
		got := ClassifyBare(c.in)
		if got.Kind != c.kind {
			t.Errorf("ClassifyBare(%q).Kind = %v, want %v", c.in, got.Kind, c.kind)
		}
	}
}

func TestReadBareScalarStopsAtColonSpace(t *testing.T) {
	s := NewScanner([]byte("foo: bar"))
	lex, _ := s.ReadBareScalar(false)
	if lex != "foo" {
		t.Errorf("got %q, want %q", lex, "foo")
	}
}

func TestReadBareScalarAllowsEmbeddedColon(t *testing.T) {
	s := NewScanner([]byte("http://example.com\n"))
	lex, _ := s.ReadBareScalar(false)
	if lex != "http://example.com" {
		t.Errorf("got %q", lex)
	}
}

func TestReadBareScalarStopsAtSpaceHash(t *testing.T) {
	s := NewScanner([]byte("hello world #comment"))
	lex, _ := s.ReadBareScalar(false)
	if lex != "hello world" {
		t.Errorf("got %q", lex)
	}
}

func TestPeekKeyVariable(t *testing.T) {
	s := NewScanner([]byte("$host: h"))
	key, n, ok := s.PeekKey()
	if !ok || key != "$host" {
		t.Fatalf("PeekKey = %q, %v, %v", key, n, ok)
	}
}

func TestReadQuotedEscapes(t *testing.T) {
	s := NewScanner([]byte(`"a\nb\tcA"`))
	got, _, err := s.ReadQuoted()
	if err != nil {
		t.Fatal(err)
	}
	want := "a\nb\tcA"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestSkipTriviaBlankLinesCapped(t *testing.T) {
	s := NewScanner([]byte("\n\n\n\n\nkey"))
	// consume nothing before; we want to measure blank lines between
	// a (virtual) previous line and "key".
	tr, err := s.SkipTrivia(true)
	if err != nil {
		t.Fatal(err)
	}
	if tr.BlankLines != 2 {
		t.Errorf("BlankLines = %d, want capped 2", tr.BlankLines)
	}
}

func TestSkipTriviaTabError(t *testing.T) {
	s := NewScanner([]byte("\t key"))
	_, err := s.SkipTrivia(true)
	if err == nil {
		t.Fatal("expected tab error")
	}
}

func TestSkipTriviaPrefixVsInlineComment(t *testing.T) {
	s := NewScanner([]byte("# leading\nkey"))
	tr, err := s.SkipTrivia(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.Prefix) != 1 || tr.Prefix[0] != " leading" {
		t.Errorf("Prefix = %v", tr.Prefix)
	}
}
