package token

import "strings"

// Scanner provides O(1)-lookahead access to a byte stream plus the
// position bookkeeping every token and node span is built from.
type Scanner struct {
	src       []byte
	pos       int // byte offset
	line      int // 1-based
	lineStart int // byte offset of the first column of the current line
}

func NewScanner(src []byte) *Scanner {
	return &Scanner{src: src, pos: 0, line: 1, lineStart: 0}
}

// Position returns the current cursor position.
func (s *Scanner) Position() Position {
	return Position{Line: s.line, Column: s.pos - s.lineStart + 1, Offset: s.pos}
}

// Eof reports whether the scanner has consumed the whole input.
func (s *Scanner) Eof() bool { return s.pos >= len(s.src) }

// PeekByte returns the byte at the cursor without consuming it.
func (s *Scanner) PeekByte() (byte, bool) {
	return s.PeekAt(0)
}

// PeekAt returns the byte n positions ahead of the cursor.
func (s *Scanner) PeekAt(n int) (byte, bool) {
	i := s.pos + n
	if i < 0 || i >= len(s.src) {
		return 0, false
	}
	return s.src[i], true
}

// Advance consumes and returns the byte at the cursor, updating
// line/column bookkeeping on newlines.
func (s *Scanner) Advance() (byte, bool) {
	if s.Eof() {
		return 0, false
	}
	b := s.src[s.pos]
	s.pos++
	if b == '\n' {
		s.line++
		s.lineStart = s.pos
	}
	return b, true
}

// AdvanceN consumes n bytes.
func (s *Scanner) AdvanceN(n int) {
	for i := 0; i < n; i++ {
		s.Advance()
	}
}

// SliceFrom returns the bytes consumed between offset start and the
// current cursor.
func (s *Scanner) SliceFrom(start int) []byte {
	return s.src[start:s.pos]
}

// Offset returns the current byte offset, useful as a SliceFrom anchor.
func (s *Scanner) Offset() int { return s.pos }

// Remaining returns the unconsumed tail of the input.
func (s *Scanner) Remaining() []byte { return s.src[s.pos:] }

// Trivia is the result of a SkipTrivia call: everything insignificant
// to the AST but significant to presentation.
type Trivia struct {
	// BlankLines is the number of fully empty lines encountered,
	// capped at 2 per the presentation model.
	BlankLines int
	// Prefix holds comment bodies (the text after '#', kept verbatim)
	// that each started their own line: after a newline, or with only
	// spaces or tabs before them on the line the call started on.
	Prefix []string
	// Inline holds a comment found before any newline was consumed
	// during this call that follows other content on the current line.
	Inline *string
}

// SkipTrivia consumes spaces, comments, and newlines, classifying
// comments as prefix (own line) or inline (trailing current line) and
// counting blank lines (capped at 2). In indentCtx, a raw tab triggers
// a TabCharacter error; outside it (e.g. inside flow, or trailing a
// value on its own line) tabs are tolerated as ordinary whitespace.
func (s *Scanner) SkipTrivia(indentCtx bool) (Trivia, error) {
	var t Trivia
	crossedNewline := false
	lineHasContent := false

	for {
		b, ok := s.PeekByte()
		if !ok {
			break
		}
		switch b {
		case ' ':
			s.Advance()
		case '\t':
			if indentCtx {
				sp := Span{Start: s.Position(), End: s.Position()}
				return t, &scanError{Span: sp, Msg: "tab character in indentation"}
			}
			s.Advance()
		case '\r':
			s.Advance()
			if nb, ok2 := s.PeekByte(); ok2 && nb == '\n' {
				s.Advance()
			}
			if crossedNewline && !lineHasContent {
				if t.BlankLines < 2 {
					t.BlankLines++
				}
			}
			crossedNewline = true
			lineHasContent = false
		case '\n':
			s.Advance()
			if crossedNewline && !lineHasContent {
				if t.BlankLines < 2 {
					t.BlankLines++
				}
			}
			crossedNewline = true
			lineHasContent = false
		case '#':
			ownLine := crossedNewline || strings.TrimLeft(string(s.src[s.lineStart:s.pos]), " \t") == ""
			text := s.readCommentText()
			if ownLine {
				t.Prefix = append(t.Prefix, text)
			} else {
				c := text
				t.Inline = &c
			}
			lineHasContent = true
		default:
			return t, nil
		}
	}
	return t, nil
}

func (s *Scanner) readCommentText() string {
	start := s.pos
	s.Advance() // consume '#'
	for {
		b, ok := s.PeekByte()
		if !ok || b == '\n' || b == '\r' {
			break
		}
		s.Advance()
	}
	raw := string(s.SliceFrom(start))
	return strings.TrimPrefix(raw, "#")
}

// scanError is a minimal error carrier so this low-level package does
// not need to import internal/yamlerr (which in turn depends on
// token.Span); internal/parser adapts it into a *yamlerr.Error.
type scanError struct {
	Span Span
	Msg  string
}

func (e *scanError) Error() string { return e.Msg }

// AsScanError extracts the span/message pair, if err originated here.
func AsScanError(err error) (Span, string, bool) {
	se, ok := err.(*scanError)
	if !ok {
		return Span{}, "", false
	}
	return se.Span, se.Msg, true
}
