// Package parser turns a YAML byte stream into an *ast.Node tree plus
// a *presentation.Document recording everything needed to pack it back
// out byte-for-byte, resolving !include/!includeraw tags, trailing
// override mappings, and $variable bindings along the way.
package parser

import (
	"path/filepath"

	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/internal/presentation"
	"github.com/shapestone/yamlfuse/internal/token"
	"github.com/shapestone/yamlfuse/internal/yamlerr"
)

// Flags control optional parser behavior.
type Flags struct {
	// GenPresentation enables the presentation recorder. Disabling it
	// trades round-trip fidelity for speed when only the data is needed.
	GenPresentation bool
	// AllowUnboundVariables downgrades leftover $name occurrences at the
	// top level from a fatal UnboundVariables error to a silent no-op.
	AllowUnboundVariables bool
}

// FileReader abstracts subfile loading so tests can parse from an
// in-memory fixture tree instead of the real filesystem.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// chainFrame is one level of the active include chain, used for cycle
// detection and for the error printer's nested-include trace.
type chainFrame struct {
	resolvedPath string
	includeSpan  token.Span
}

// subfileResult is the memoized outcome of parsing one physical file
// exactly once; each inclusion site clones Root fresh so independent
// override/variable bindings never collide.
type subfileResult struct {
	root *ast.Node
	doc  *presentation.Document
	vars varTable
	err  error
}

// resolver owns the memoization cache and is shared across an entire
// top-level Parse call, including every nested !include it triggers.
type resolver struct {
	reader FileReader
	cache  map[string]*subfileResult
}

func newResolver(reader FileReader) *resolver {
	return &resolver{reader: reader, cache: make(map[string]*subfileResult)}
}

// Context carries the state threaded through one file's parse: its
// scanner, its own presentation document, its own variable table, and
// the shared include-cycle bookkeeping.
type Context struct {
	Flags Flags

	scanner *token.Scanner
	rec     *presentation.Recorder
	doc     *presentation.Document

	file    string // path of the file being parsed, "" for a bare in-memory stream.
	baseDir string // directory used to resolve relative !include paths.

	vars varTable

	chain    []chainFrame
	resolver *resolver
}

// newRootContext builds the Context for a top-level Parse call. The
// root file seeds chain so a cycle that loops back to it (a includes b
// includes a) is caught the same way a cycle through any other
// ancestor is: checkCycle only ever walks a Context's own chain.
func newRootContext(file string, src []byte, flags Flags, reader FileReader) *Context {
	doc := presentation.NewDocument()
	var chain []chainFrame
	if file != "" {
		chain = []chainFrame{{resolvedPath: filepath.Clean(file)}}
	}
	return &Context{
		Flags:    flags,
		scanner:  token.NewScanner(src),
		rec:      presentation.NewRecorder(doc, flags.GenPresentation),
		doc:      doc,
		file:     file,
		baseDir:  dirOf(file),
		vars:     newVarTable(),
		chain:    chain,
		resolver: newResolver(reader),
	}
}

// child builds the Context used to parse one !include target,
// inheriting Flags and the shared resolver/chain but starting a fresh
// scanner, presentation document, and variable table of its own.
func (c *Context) child(resolvedPath string, src []byte, span token.Span) *Context {
	doc := presentation.NewDocument()
	return &Context{
		Flags:    c.Flags,
		scanner:  token.NewScanner(src),
		rec:      presentation.NewRecorder(doc, c.Flags.GenPresentation),
		doc:      doc,
		file:     resolvedPath,
		baseDir:  dirOf(resolvedPath),
		vars:     newVarTable(),
		chain:    append(append([]chainFrame{}, c.chain...), chainFrame{resolvedPath: resolvedPath, includeSpan: span}),
		resolver: c.resolver,
	}
}

func dirOf(file string) string {
	if file == "" {
		return ""
	}
	return filepath.Dir(file)
}

// errAt builds a *yamlerr.Error positioned in the current file, wrapped
// with one Frame per enclosing !include (the including file and the
// span of its tag) so the printer can show the whole inclusion chain.
func (c *Context) errAt(kind yamlerr.Kind, span token.Span, format string, args ...any) error {
	err := yamlerr.New(kind, c.file, span, format, args...)
	for i := len(c.chain) - 1; i >= 1; i-- {
		err.Frames = append(err.Frames, yamlerr.Frame{File: c.chain[i-1].resolvedPath, Span: c.chain[i].includeSpan})
	}
	return err
}

// scanErrAt adapts a token.scanError (surfaced via token.AsScanError)
// into a *yamlerr.Error positioned in the current file.
func (c *Context) scanErrAt(err error, kind yamlerr.Kind) error {
	span, msg, ok := token.AsScanError(err)
	if !ok {
		return c.errAt(kind, token.Zero, "%v", err)
	}
	return c.errAt(kind, span, "%s", msg)
}
