package parser

import (
	"os"

	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/internal/presentation"
	"github.com/shapestone/yamlfuse/internal/yamlerr"
)

// osReader reads subfiles straight off disk.
type osReader struct{}

func (osReader) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// Result is the outcome of a top-level Parse call.
type Result struct {
	Root *ast.Node
	Doc  *presentation.Document
}

// Parse parses src as a complete document. file is the path src was
// read from (used to resolve relative !include targets and to label
// errors); pass "" when parsing a bare in-memory stream that must not
// contain any !include/!includeraw tag.
func Parse(file string, src []byte, flags Flags) (*Result, error) {
	return parseWith(file, src, flags, osReader{})
}

// ParseWithReader is Parse with an injectable FileReader, for tests
// that parse a virtual file tree instead of the real filesystem.
func ParseWithReader(file string, src []byte, flags Flags, reader FileReader) (*Result, error) {
	return parseWith(file, src, flags, reader)
}

func parseWith(file string, src []byte, flags Flags, reader FileReader) (*Result, error) {
	ctx := newRootContext(file, src, flags, reader)
	root, err := ctx.ParseDocument()
	if err != nil {
		return nil, err
	}
	if len(ctx.vars) > 0 && !flags.AllowUnboundVariables {
		for name := range ctx.vars {
			return nil, ctx.errAt(yamlerr.UnboundVariables, ctx.scanner.Position(), "unbound variable %q", name)
		}
	}
	return &Result{Root: root, Doc: ctx.doc}, nil
}
