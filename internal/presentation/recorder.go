package presentation

import (
	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/internal/token"
)

// Recorder accumulates trivia as the parser walks the input and
// attaches it to the Document once the node it belongs to is known.
// Trivia scanned before a node's first token is staged and flushed as
// that node's prefix/blank-lines when the node is produced; trivia
// scanned immediately after, on the same line, is staged as the
// pending inline comment for whichever node was produced last.
type Recorder struct {
	doc     *Document
	enabled bool

	pendingBlank  int
	pendingPrefix []string

	lastPath Path
	lastNode *ast.Node
	haveLast bool
}

// NewRecorder creates a Recorder writing into doc. If enabled is
// false, all methods are no-ops (spec's GenPresentation=false mode).
func NewRecorder(doc *Document, enabled bool) *Recorder {
	return &Recorder{doc: doc, enabled: enabled}
}

// StageTrivia folds a token.Trivia scanned before the next node into
// the pending prefix/blank-line accumulator.
func (r *Recorder) StageTrivia(tr token.Trivia) {
	if !r.enabled {
		return
	}
	r.pendingBlank += tr.BlankLines
	r.pendingPrefix = append(r.pendingPrefix, tr.Prefix...)
	if tr.Inline != nil && r.haveLast {
		r.attachInline(*tr.Inline)
	}
}

// attachInline sets the inline comment on the most recently produced node.
func (r *Recorder) attachInline(text string) {
	if rec, ok := r.doc.Get(r.lastPath); ok {
		rec.InlineComment = text
		return
	}
	rec := &NodeRecord{InlineComment: text}
	r.doc.Set(r.lastPath, r.lastNode, rec)
}

// Produce records a node's presentation at path p: the staged
// blank-lines/prefix comments become this node's leading trivia, and
// the accumulator resets. style/quoted/raw describe the node's own
// surface form.
func (r *Recorder) Produce(p Path, n *ast.Node, style Style, quoted bool, raw string) {
	if !r.enabled {
		return
	}
	rec := &NodeRecord{
		BlankLinesBefore: r.pendingBlank,
		PrefixComments:   r.pendingPrefix,
		Style:            style,
		Quoted:           quoted,
		Raw:              raw,
	}
	r.doc.Set(p, n, rec)
	r.pendingBlank = 0
	r.pendingPrefix = nil
	r.lastPath = p
	r.lastNode = n
	r.haveLast = true
}

// Inline attaches an inline comment directly to node n at p, bypassing
// StageTrivia. The parser itself does not call it; it attaches inline
// comments through StageTrivia.
func (r *Recorder) Inline(p Path, n *ast.Node, text string) {
	if !r.enabled || text == "" {
		return
	}
	if rec, ok := r.doc.GetNode(n); ok {
		rec.InlineComment = text
		return
	}
	r.doc.Set(p, n, &NodeRecord{InlineComment: text})
}

// Flush drains any remaining staged trivia into the document's
// end-of-file fields, called once parsing completes.
func (r *Recorder) Flush() {
	if !r.enabled {
		return
	}
	r.doc.TrailingBlankLines = r.pendingBlank
	r.doc.FinalComments = r.pendingPrefix
	r.pendingBlank = 0
	r.pendingPrefix = nil
}

// Enabled reports whether this recorder is actually accumulating
// trivia (mirrors the parser's Flags.GenPresentation).
func (r *Recorder) Enabled() bool { return r.enabled }
