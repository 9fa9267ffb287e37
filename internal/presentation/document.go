package presentation

import (
	"sort"

	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/internal/token"
)

// Style records how a collection was written in the source: expanded
// (block, one entry per line) or flow ("[a, b]" / "{k: v}").
type Style int

const (
	Block Style = iota
	Flow
)

// NodeRecord holds everything the packer needs to reproduce a node's
// surface form that the AST itself does not carry.
type NodeRecord struct {
	BlankLinesBefore int
	PrefixComments   []string
	InlineComment    string
	Style            Style
	Quoted           bool
	Raw              string // original lexeme, used to re-emit numbers/bools byte-identically.

	// VarTemplate is the pre-substitution text of a scalar that
	// contained one or more $name occurrences, kept so the packer can
	// attempt to reconstruct the template at pack time.
	VarTemplate string
}

// IncludeRecord remembers which file a node's subtree was pulled from,
// so the packer can choose between emitting "!include path" again or
// inlining the content (per the active PackEnv policy).
type IncludeRecord struct {
	Tag      string // "include" or "includeraw"
	Path     string // as written in the source, relative to its including file.
	Resolved string // absolute/cleaned path used for dedup and cycle checks.

	// Doc is the subfile's own presentation, addressed by paths
	// relative to its own root, so the subfile can be repacked
	// independently (shared across every inclusion site of the same
	// physical file; overrides applied at one site never mutate it).
	Doc *Document
}

// OverrideEntry is one "path: value" line found in a trailing override
// mapping at an inclusion site.
type OverrideEntry struct {
	Path  Path
	Found bool // set when the parser records the entry; the packer skips entries without it, and also omits, non-fatally, any entry whose path no longer resolves in the (possibly further-mutated) tree.
	Span  token.Span

	// Original is the included value a scalar replacement overwrote,
	// nil for sequence appends and new mapping keys (spec: "scalars
	// are the only nodes whose prior value is preserved for round-trip").
	Original *ast.Node
}

// OverrideTrace is the set of override entries applied at one
// inclusion site, in source order.
type OverrideTrace struct {
	Entries []OverrideEntry
}

// VariableRecord remembers that a scalar's value came from binding a
// "$name" occurrence, either as the whole scalar or embedded in a
// larger string.
type VariableRecord struct {
	Name     string
	Embedded bool // true if $name appeared inside a larger string rather than as the whole value.
}

// Document is the full presentation side-channel for one parsed root,
// addressed both by Path (for the packer, which walks top-down) and by
// *ast.Node (for engines that already hold a pointer, like the
// override/variable binders).
type Document struct {
	byPath map[string]*NodeRecord
	byNode map[*ast.Node]*NodeRecord

	includes  map[string]*IncludeRecord // keyed by Path.String() of the including node.
	overrides map[string]*OverrideTrace
	variables map[*ast.Node]*VariableRecord

	// TrailingBlankLines is the blank-line run at end-of-file, which has
	// no following node to attach to.
	TrailingBlankLines int
	// FinalComments holds comments that trail the last node with no
	// following node to attach to as a prefix.
	FinalComments []string
}

func NewDocument() *Document {
	return &Document{
		byPath:    make(map[string]*NodeRecord),
		byNode:    make(map[*ast.Node]*NodeRecord),
		includes:  make(map[string]*IncludeRecord),
		overrides: make(map[string]*OverrideTrace),
		variables: make(map[*ast.Node]*VariableRecord),
	}
}

// Set records the presentation of the node found at path.
func (d *Document) Set(p Path, n *ast.Node, rec *NodeRecord) {
	key := p.String()
	d.byPath[key] = rec
	if n != nil {
		d.byNode[n] = rec
	}
}

// Get returns the record stored for a path, if any.
func (d *Document) Get(p Path) (*NodeRecord, bool) {
	r, ok := d.byPath[p.String()]
	return r, ok
}

// GetNode returns the record stored for a node pointer, if any. Used
// by the packer when it has walked to a node via the AST rather than
// recomputing its path.
func (d *Document) GetNode(n *ast.Node) (*NodeRecord, bool) {
	r, ok := d.byNode[n]
	return r, ok
}

// SetInclude records the include tag/path seen at the node addressed by p.
func (d *Document) SetInclude(p Path, rec *IncludeRecord) {
	d.includes[p.String()] = rec
}

// GetInclude returns the include record at p, if any.
func (d *Document) GetInclude(p Path) (*IncludeRecord, bool) {
	r, ok := d.includes[p.String()]
	return r, ok
}

// SetOverride records the trailing override mapping applied at the
// inclusion site addressed by p.
func (d *Document) SetOverride(p Path, trace *OverrideTrace) {
	d.overrides[p.String()] = trace
}

// GetOverride returns the override trace recorded at p, if any.
func (d *Document) GetOverride(p Path) (*OverrideTrace, bool) {
	r, ok := d.overrides[p.String()]
	return r, ok
}

// SetVariable records that node n's value came from binding a variable.
func (d *Document) SetVariable(n *ast.Node, rec *VariableRecord) {
	d.variables[n] = rec
}

// GetVariable returns the variable record for node n, if any.
func (d *Document) GetVariable(n *ast.Node) (*VariableRecord, bool) {
	r, ok := d.variables[n]
	return r, ok
}

// Paths returns every recorded path, sorted, mainly for deterministic
// test output and for `inspect`-style CLI dumps.
func (d *Document) Paths() []string {
	out := make([]string, 0, len(d.byPath))
	for k := range d.byPath {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
