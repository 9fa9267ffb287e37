// Package yaml is the public surface of the round-tripping YAML
// engine: parse a document (optionally resolving !include/!includeraw
// and $name variables) into an AST plus a presentation side-channel,
// then pack it back out reproducing everything the side-channel
// recorded.
//
// Example:
//
//	doc, err := yaml.ParseFile("config.yml", yaml.Flags{GenPresentation: true})
//	if err != nil {
//	    return err
//	}
//	out, err := doc.Pack()
package yaml

import (
	"fmt"
	"io"
	"os"

	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/internal/parser"
	"github.com/shapestone/yamlfuse/internal/presentation"
)

// Flags control optional parse behavior, mirroring internal/parser.Flags.
type Flags struct {
	// GenPresentation enables the presentation recorder. Required for
	// anything that later calls Pack/PackEnv — without it a Document
	// round-trips data only, losing comments, blank lines, flow style,
	// and include/override/variable provenance.
	GenPresentation bool
	// AllowUnboundVariables downgrades a leftover top-level $name
	// occurrence from a fatal error to a silent no-op.
	AllowUnboundVariables bool
}

// Document is a parsed YAML document: the data tree plus everything
// needed to pack it back out.
type Document struct {
	Root *ast.Node
	Doc  *presentation.Document
}

// Parse parses src as a complete in-memory document. Use this for a
// bare stream that must not contain !include/!includeraw — those
// require a file path to resolve relative subfile paths against, so
// use ParseFile or ParseReader instead when the document might include.
func Parse(src []byte, flags Flags) (*Document, error) {
	res, err := parser.Parse("", src, toParserFlags(flags))
	if err != nil {
		return nil, err
	}
	return &Document{Root: res.Root, Doc: res.Doc}, nil
}

// ParseFile reads and parses the file at path, resolving any
// !include/!includeraw tags relative to its directory.
func ParseFile(path string, flags Flags) (*Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("yaml: reading %s: %w", path, err)
	}
	res, err := parser.Parse(path, src, toParserFlags(flags))
	if err != nil {
		return nil, err
	}
	return &Document{Root: res.Root, Doc: res.Doc}, nil
}

// ParseReader reads r fully, then parses it as the file named file
// (used only to resolve relative !include targets and to label
// errors — pass "" for a stream with no includes).
func ParseReader(file string, r io.Reader, flags Flags) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("yaml: reading %s: %w", file, err)
	}
	res, err := parser.Parse(file, src, toParserFlags(flags))
	if err != nil {
		return nil, err
	}
	return &Document{Root: res.Root, Doc: res.Doc}, nil
}

func toParserFlags(f Flags) parser.Flags {
	return parser.Flags{
		GenPresentation:       f.GenPresentation,
		AllowUnboundVariables: f.AllowUnboundVariables,
	}
}

// Envelope returns the document's presentation side-channel flattened
// to a serializable snapshot, for inspection or storage alongside the
// packed bytes.
func (d *Document) Envelope() *presentation.Envelope {
	if d.Doc == nil {
		return nil
	}
	return d.Doc.ToEnvelope()
}

