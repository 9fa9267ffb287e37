// Package yamlerr defines the closed set of error kinds the engine can
// raise, each carrying a source span, and a printer that renders a
// cursor-style diagnostic with nested-include traces.
package yamlerr

import (
	"fmt"
	"strings"

	"github.com/shapestone/yamlfuse/internal/token"
)

// Kind is one of the closed set of error categories the parser and
// packer can raise. There is no recovery: every Kind is terminal for
// the parse that raised it.
type Kind string

const (
	BadKey           Kind = "BadKey"
	BadString        Kind = "BadString"
	MissingData      Kind = "MissingData"
	WrongData        Kind = "WrongData"
	WrongIndent      Kind = "WrongIndent"
	WrongObject      Kind = "WrongObject"
	TabCharacter     Kind = "TabCharacter"
	InvalidTag       Kind = "InvalidTag"
	ExtraData        Kind = "ExtraData"
	InvalidInclude   Kind = "InvalidInclude"
	InvalidOverride  Kind = "InvalidOverride"
	UnboundVariables Kind = "UnboundVariables"
)

// Frame identifies one level of an include chain. Frames[0] on an
// Error is where the failure actually occurred; later frames walk
// outward to the file that started the parse.
type Frame struct {
	File string
	Span token.Span
}

// Error is the single error type the engine returns. Kind narrows the
// category; Frames[0].Span is where the cursor should land.
type Error struct {
	Kind    Kind
	Message string
	Frames  []Frame
}

func New(kind Kind, file string, span token.Span, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Frames:  []Frame{{File: file, Span: span}},
	}
}

// WrapInclude adds an outer frame recording where an `!include` tag
// pulled in the file that eventually failed, so the printer can walk
// the chain from outermost to innermost.
func (e *Error) WrapInclude(file string, span token.Span) *Error {
	if e == nil {
		return nil
	}
	e.Frames = append(e.Frames, Frame{File: file, Span: span})
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	f := e.Frames[0]
	return fmt.Sprintf("%s:%s: %s: %s", f.File, f.Span.Start.String(), e.Kind, e.Message)
}

// Is supports errors.Is(err, SomeKind) by treating Kind values as
// comparable sentinels via Sentinel.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Sentinel builds a zero-span error usable as an errors.Is comparison
// target, e.g. errors.Is(err, Sentinel(BadKey)).
func Sentinel(kind Kind) *Error { return &Error{Kind: kind} }

// Printer renders Errors as "filename:line:col: message" plus a
// source excerpt and caret range, recursing through include chains
// from outermost to innermost.
type Printer struct {
	sources map[string][]byte
}

func NewPrinter() *Printer {
	return &Printer{sources: make(map[string][]byte)}
}

// AddSource registers the raw bytes of a file so the printer can show
// the offending line. Missing sources are tolerated (the stanza is
// printed without a source excerpt).
func (p *Printer) AddSource(filename string, content []byte) {
	p.sources[filename] = content
}

// Sprint renders the full diagnostic, one stanza per include level.
func (p *Printer) Sprint(err *Error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	for i := len(err.Frames) - 1; i >= 0; i-- {
		f := err.Frames[i]
		if i == 0 {
			fmt.Fprintf(&b, "%s:%s: %s: %s\n", f.File, f.Span.Start.String(), err.Kind, err.Message)
		} else {
			fmt.Fprintf(&b, "%s:%s: in include\n", f.File, f.Span.Start.String())
		}
		p.writeExcerpt(&b, f)
	}
	return b.String()
}

func (p *Printer) writeExcerpt(b *strings.Builder, f Frame) {
	src, ok := p.sources[f.File]
	if !ok {
		return
	}
	lines := strings.Split(string(src), "\n")
	line := f.Span.Start.Line
	if line < 1 || line > len(lines) {
		return
	}
	text := lines[line-1]
	fmt.Fprintf(b, "  %s\n", text)
	col := f.Span.Start.Column
	if col < 1 {
		col = 1
	}
	width := 1
	if f.Span.End.Line == f.Span.Start.Line && f.Span.End.Column > f.Span.Start.Column {
		width = f.Span.End.Column - f.Span.Start.Column
	}
	fmt.Fprintf(b, "  %s%s\n", strings.Repeat(" ", col-1), strings.Repeat("^", width))
}
