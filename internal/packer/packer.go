// Package packer turns an *ast.Node tree plus its *presentation.Document
// back into YAML source bytes. It reproduces everything the
// presentation side-channel recorded — blank-line runs, comments,
// flow-vs-block choices, tags, and include/override/variable
// provenance — but normalizes every level of indentation to a fixed
// two-space step rather than preserving the original column widths.
package packer

import (
	"strings"

	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/internal/presentation"
)

// stdIndent is the number of spaces one nesting level contributes to
// the output, regardless of how the source document was indented.
const stdIndent = 2

// Mode selects how a previously-included subtree is re-emitted.
type Mode int

const (
	// ModeInline splices the subfile's own content directly into the
	// output at the inclusion point, addressed by its own presentation
	// document. This is the default: no outdir, no NoSubfiles.
	ModeInline Mode = iota
	// ModeReference emits "!include path" / "!includeraw path" instead
	// of the subfile's content. If Sink is set, the subfile is also
	// packed and handed to the sink for writing (content-addressed
	// dedup is the sink's responsibility). A nil Sink in this mode
	// still emits the reference token but performs no I/O — the
	// NoSubfiles policy.
	ModeReference
)

// IncludeSink receives one subfile's packed bytes, keyed by the path
// it should be (or already has been) written under, and returns the
// path that should actually be cited in the "!include" token — which
// may differ from the requested one if a same-named, differently
// content'd subfile already occupies it.
type IncludeSink interface {
	Write(path string, data []byte) (actualPath string, err error)
}

// Options configures one Pack call.
type Options struct {
	Mode Mode
	Sink IncludeSink
}

// Packer holds the scratch state threaded through one Pack call.
type Packer struct {
	opts Options

	// deduced accumulates $name bindings recovered from VarTemplate
	// records while packing the body of one !include, reset around
	// each inclusion so a nested include's deductions don't leak into
	// its parent's override block.
	deduced []deducedVar
}

type deducedVar struct {
	name  string
	value *ast.Node
}

// Pack renders root back to YAML source, using doc for everything the
// AST alone does not carry. A nil doc is treated as an entirely
// presentation-free document: every node packs in its default block
// form with no comments or blank lines.
func Pack(root *ast.Node, doc *presentation.Document, opts Options) ([]byte, error) {
	if doc == nil {
		doc = presentation.NewDocument()
	}
	p := &Packer{opts: opts}
	var b strings.Builder
	if err := p.packValue(&b, root, doc, nil, 0); err != nil {
		return nil, err
	}
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
	for i := 0; i < doc.TrailingBlankLines; i++ {
		b.WriteByte('\n')
	}
	for _, c := range doc.FinalComments {
		b.WriteString(commentLine(c))
	}
	return []byte(b.String()), nil
}

func writeIndent(b *strings.Builder, depth int) {
	for i := 0; i < depth*stdIndent; i++ {
		b.WriteByte(' ')
	}
}

func commentLine(text string) string {
	if text == "" {
		return "#\n"
	}
	return "#" + text + "\n"
}

// writeLeading emits a node's blank-lines-before and prefix comments,
// each on its own line at depth's indentation.
func writeLeading(b *strings.Builder, rec *presentation.NodeRecord, depth int) {
	if rec == nil {
		return
	}
	for i := 0; i < rec.BlankLinesBefore; i++ {
		b.WriteByte('\n')
	}
	for _, c := range rec.PrefixComments {
		writeIndent(b, depth)
		b.WriteString(commentLine(c))
	}
}

func writeInline(b *strings.Builder, rec *presentation.NodeRecord) {
	if rec == nil || rec.InlineComment == "" {
		return
	}
	b.WriteString(" #")
	b.WriteString(rec.InlineComment)
}

func recordFor(doc *presentation.Document, path presentation.Path) *presentation.NodeRecord {
	rec, _ := doc.Get(path)
	return rec
}

// packValue emits the document root at path (always nil in practice).
// It writes the root's own leading trivia and indent, then hands off
// to packBodyAt with no depth increment: unlike a mapping value or a
// sequence item, the root is not introduced by a "key: " or "- "
// prefix that already consumed one indentation level.
func (p *Packer) packValue(b *strings.Builder, n *ast.Node, doc *presentation.Document, path presentation.Path, depth int) error {
	rec := recordFor(doc, path)
	writeLeading(b, rec, depth)
	writeIndent(b, depth)

	if inc, ok := doc.GetInclude(path); ok {
		return p.packInclude(b, n, doc, path, depth, inc)
	}
	return p.packBodyAt(b, n, doc, path, depth)
}

// packBodyAt emits n's tag (if any) and its scalar/flow/block content
// with n's own children nested at depth — not depth+1. Callers that
// sit after a consumed "key: " or "- " prefix pass depth+1 themselves;
// this only ever sees the depth its children should actually use. A
// block collection's entries start on a fresh line: the current line
// is ended first only if something (a key, a dash) already sits on it.
func (p *Packer) packBodyAt(b *strings.Builder, n *ast.Node, doc *presentation.Document, path presentation.Path, depth int) error {
	rec := recordFor(doc, path)
	isFlow := rec != nil && rec.Style == presentation.Flow && canUseFlow(n, doc, path)
	if n.Tag != nil {
		b.WriteByte('!')
		b.WriteString(n.Tag.Name)
		if n.Kind == ast.Scalar {
			b.WriteByte(' ')
		} else {
			b.WriteByte('\n')
			writeIndent(b, depth)
		}
	}

	switch {
	case n.Kind == ast.Scalar:
		p.packScalar(b, n, rec)
		writeInline(b, rec)
		b.WriteByte('\n')
	case n.Kind == ast.Sequence && isFlow:
		p.packFlowSequence(b, n)
		writeInline(b, rec)
		b.WriteByte('\n')
	case n.Kind == ast.Mapping && isFlow:
		p.packFlowMapping(b, n)
		writeInline(b, rec)
		b.WriteByte('\n')
	case n.Kind == ast.Sequence && len(n.Items) == 0:
		b.WriteString("[]\n")
	case n.Kind == ast.Mapping && len(n.Pairs) == 0:
		b.WriteString("{}\n")
	case n.Kind == ast.Mapping:
		if !atLineStart(b) {
			writeInline(b, rec)
			b.WriteByte('\n')
		}
		return p.packMappingPairs(b, n.Pairs, doc, path, depth)
	case n.Kind == ast.Sequence:
		if !atLineStart(b) {
			writeInline(b, rec)
			b.WriteByte('\n')
		}
		for i, item := range n.Items {
			itemPath := path.Index(i)
			itemRec := recordFor(doc, itemPath)
			writeLeading(b, itemRec, depth)
			writeIndent(b, depth)
			b.WriteString("- ")
			// packInline takes the dash's own depth, as in packKeyedValue.
			if err := p.packInline(b, item, doc, itemPath, depth); err != nil {
				return err
			}
		}
	}
	return nil
}

// atLineStart reports whether nothing has been written on the current
// output line yet.
func atLineStart(b *strings.Builder) bool {
	s := b.String()
	return s == "" || s[len(s)-1] == '\n'
}

func (p *Packer) packScalar(b *strings.Builder, n *ast.Node, rec *presentation.NodeRecord) {
	if rec != nil && rec.VarTemplate != "" {
		if name, ok := deduceVariable(rec.VarTemplate); ok {
			p.deduced = append(p.deduced, deducedVar{name: name, value: n.Clone()})
			if needsQuoting(rec.VarTemplate) {
				appendQuoted(b, rec.VarTemplate)
			} else {
				b.WriteString(rec.VarTemplate)
			}
			return
		}
	}
	text, quote := renderScalar(n)
	if quote {
		appendQuoted(b, text)
	} else {
		b.WriteString(text)
	}
}

// packMappingPairs emits "key: value" lines for pairs at depth,
// without any enclosing brace or leading key of its own — shared
// between an ordinary block mapping's body and a reconstructed
// trailing override block, both of which are just a run of sibling
// key/value lines.
func (p *Packer) packMappingPairs(b *strings.Builder, pairs []*ast.Pair, doc *presentation.Document, path presentation.Path, depth int) error {
	for _, pair := range pairs {
		pairPath := path.Key(pair.Key)
		pairRec := recordFor(doc, pairPath)
		writeLeading(b, pairRec, depth)
		writeIndent(b, depth)
		b.WriteString(pair.Key)
		b.WriteByte(':')
		if err := p.packKeyedValue(b, pair.Value, doc, pairPath, depth); err != nil {
			return err
		}
	}
	return nil
}

// packKeyedValue emits the part of a mapping pair after the colon: a
// scalar (or flow container) stays on the same line, a block
// container moves to indented lines beneath.
func (p *Packer) packKeyedValue(b *strings.Builder, v *ast.Node, doc *presentation.Document, path presentation.Path, depth int) error {
	if inc, ok := doc.GetInclude(path); ok {
		// An inlined subfile whose root is a non-empty block collection
		// starts on the line below, so the colon takes no space then.
		blockBody := p.opts.Mode != ModeReference && inc.Tag == "include" && v.Tag == nil &&
			((v.Kind == ast.Mapping && len(v.Pairs) > 0) || (v.Kind == ast.Sequence && len(v.Items) > 0))
		if blockBody {
			if sub := recordFor(inc.Doc, nil); sub != nil && sub.Style == presentation.Flow && canUseFlow(v, inc.Doc, nil) {
				blockBody = false
			}
		}
		if !blockBody {
			b.WriteByte(' ')
		}
		return p.packInclude(b, v, doc, path, depth, inc)
	}

	rec := recordFor(doc, path)
	isFlow := rec != nil && rec.Style == presentation.Flow && canUseFlow(v, doc, path)

	if v.Tag != nil {
		b.WriteByte(' ')
		b.WriteByte('!')
		b.WriteString(v.Tag.Name)
		if v.Kind != ast.Scalar {
			b.WriteByte('\n')
			writeIndent(b, depth)
		}
	}

	switch {
	case v.Kind == ast.Scalar:
		b.WriteByte(' ')
		p.packScalar(b, v, rec)
		writeInline(b, rec)
		b.WriteByte('\n')
	case v.Kind == ast.Sequence && isFlow:
		b.WriteByte(' ')
		p.packFlowSequence(b, v)
		writeInline(b, rec)
		b.WriteByte('\n')
	case v.Kind == ast.Mapping && isFlow:
		b.WriteByte(' ')
		p.packFlowMapping(b, v)
		writeInline(b, rec)
		b.WriteByte('\n')
	case v.Kind == ast.Sequence && len(v.Items) == 0:
		b.WriteString(" []\n")
	case v.Kind == ast.Mapping && len(v.Pairs) == 0:
		b.WriteString(" {}\n")
	case v.Kind == ast.Sequence:
		writeInline(b, rec)
		b.WriteByte('\n')
		for i, item := range v.Items {
			itemPath := path.Index(i)
			itemRec := recordFor(doc, itemPath)
			writeLeading(b, itemRec, depth+1)
			writeIndent(b, depth+1)
			b.WriteString("- ")
			if err := p.packInline(b, item, doc, itemPath, depth+1); err != nil {
				return err
			}
		}
	case v.Kind == ast.Mapping:
		writeInline(b, rec)
		b.WriteByte('\n')
		if err := p.packMappingPairs(b, v.Pairs, doc, path, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// packInline emits a value that starts immediately after a "- " dash
// rather than after a "key:" — structurally the same as
// packKeyedValue, differing only in that the opening separator (the
// dash and its space) has already been written by the caller.
func (p *Packer) packInline(b *strings.Builder, v *ast.Node, doc *presentation.Document, path presentation.Path, depth int) error {
	if inc, ok := doc.GetInclude(path); ok {
		return p.packInclude(b, v, doc, path, depth, inc)
	}

	rec := recordFor(doc, path)
	isFlow := rec != nil && rec.Style == presentation.Flow && canUseFlow(v, doc, path)

	if v.Tag != nil {
		b.WriteByte('!')
		b.WriteString(v.Tag.Name)
		if v.Kind == ast.Scalar {
			b.WriteByte(' ')
		} else {
			b.WriteByte('\n')
			writeIndent(b, depth)
		}
	}

	switch {
	case v.Kind == ast.Scalar:
		p.packScalar(b, v, rec)
		writeInline(b, rec)
		b.WriteByte('\n')
	case v.Kind == ast.Sequence && isFlow:
		p.packFlowSequence(b, v)
		writeInline(b, rec)
		b.WriteByte('\n')
	case v.Kind == ast.Mapping && isFlow:
		p.packFlowMapping(b, v)
		writeInline(b, rec)
		b.WriteByte('\n')
	case v.Kind == ast.Sequence && len(v.Items) == 0:
		b.WriteString("[]\n")
	case v.Kind == ast.Mapping && len(v.Pairs) == 0:
		b.WriteString("{}\n")
	case v.Kind == ast.Mapping:
		if v.Tag != nil || (rec != nil && rec.InlineComment != "") {
			writeInline(b, rec)
			b.WriteByte('\n')
			if err := p.packMappingPairs(b, v.Pairs, doc, path, depth+1); err != nil {
				return err
			}
		} else if err := p.packDashMappingBody(b, v, doc, path, depth); err != nil {
			return err
		}
	case v.Kind == ast.Sequence:
		writeInline(b, rec)
		b.WriteByte('\n')
		for i, item := range v.Items {
			itemPath := path.Index(i)
			itemRec := recordFor(doc, itemPath)
			writeLeading(b, itemRec, depth+1)
			writeIndent(b, depth+1)
			b.WriteString("- ")
			if err := p.packInline(b, item, doc, itemPath, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// packDashMappingBody emits a mapping value that sits directly on a
// "- " line: its first pair continues the dash's own line ("- key:
// value") instead of dropping to a fresh, over-indented line, and the
// remaining pairs align beneath it at the same column as the first
// key.
func (p *Packer) packDashMappingBody(b *strings.Builder, v *ast.Node, doc *presentation.Document, path presentation.Path, depth int) error {
	first := v.Pairs[0]
	firstPath := path.Key(first.Key)
	b.WriteString(first.Key)
	b.WriteByte(':')
	if err := p.packKeyedValue(b, first.Value, doc, firstPath, depth+1); err != nil {
		return err
	}
	return p.packMappingPairs(b, v.Pairs[1:], doc, path, depth+1)
}

func (p *Packer) packFlowSequence(b *strings.Builder, n *ast.Node) {
	b.WriteByte('[')
	for i, item := range n.Items {
		if i > 0 {
			b.WriteString(", ")
		}
		p.packFlowElement(b, item, true)
	}
	b.WriteByte(']')
}

func (p *Packer) packFlowMapping(b *strings.Builder, n *ast.Node) {
	b.WriteByte('{')
	for i, pair := range n.Pairs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pair.Key)
		b.WriteString(": ")
		p.packFlowElement(b, pair.Value, false)
	}
	b.WriteByte('}')
}

// packFlowElement renders one element of a flow container. When
// seqElem is set (a direct flow-sequence element), a Mapping with
// exactly one pair uses the implicit "k: v" form the flow parser
// produces for a bare "key: value" sequence element; any other
// mapping renders with explicit braces.
func (p *Packer) packFlowElement(b *strings.Builder, n *ast.Node, seqElem bool) {
	switch {
	case n.Kind == ast.Scalar:
		text, quote := renderScalar(n)
		if quote {
			appendQuoted(b, text)
		} else {
			b.WriteString(text)
		}
	case n.Kind == ast.Mapping && len(n.Pairs) == 1 && seqElem:
		b.WriteString(n.Pairs[0].Key)
		b.WriteString(": ")
		p.packFlowElement(b, n.Pairs[0].Value, false)
	case n.Kind == ast.Sequence:
		p.packFlowSequence(b, n)
	case n.Kind == ast.Mapping:
		p.packFlowMapping(b, n)
	}
}

// canUseFlow reports whether the node at path may be re-emitted in
// flow style. Flow is refused if the path carries an active override
// (an override block always follows as block-form sibling lines,
// which reads oddly after a flow container) or if any descendant
// carries a tag — the flow grammar has no syntax for a tag on a
// nested element, so such a node could not be reparsed back out of
// its own flow form.
func canUseFlow(n *ast.Node, doc *presentation.Document, path presentation.Path) bool {
	if _, ok := doc.GetOverride(path); ok {
		return false
	}
	switch n.Kind {
	case ast.Sequence:
		for _, it := range n.Items {
			if hasTaggedDescendant(it) {
				return false
			}
		}
	case ast.Mapping:
		for _, pr := range n.Pairs {
			if hasTaggedDescendant(pr.Value) {
				return false
			}
		}
	}
	return true
}

func hasTaggedDescendant(n *ast.Node) bool {
	if n == nil {
		return false
	}
	if n.Tag != nil {
		return true
	}
	switch n.Kind {
	case ast.Sequence:
		for _, it := range n.Items {
			if hasTaggedDescendant(it) {
				return true
			}
		}
	case ast.Mapping:
		for _, p := range n.Pairs {
			if hasTaggedDescendant(p.Value) {
				return true
			}
		}
	}
	return false
}
