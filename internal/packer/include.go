package packer

import (
	"sort"
	"strings"

	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/internal/presentation"
)

// includeRawTrailingNewline is appended to a !includeraw subfile's
// content on write, even though reading one never preserves a
// trailing newline (an empty file and a file containing just "\n"
// read identically). Encoding the asymmetry as one named constant,
// rather than a flag, keeps the two directions from drifting apart.
const includeRawTrailingNewline = "\n"

// packInclude emits the node at path, which the presentation document
// says was pulled in via !include or !includeraw. The caller has
// already positioned the cursor (written any leading comments/blank
// lines, the line's indent, and — for a mapping value or sequence
// item — the "key: " or "- " that precedes it).
func (p *Packer) packInclude(b *strings.Builder, n *ast.Node, doc *presentation.Document, path presentation.Path, depth int, inc *presentation.IncludeRecord) error {
	outerDeduced := p.deduced
	p.deduced = nil

	var err error
	switch p.opts.Mode {
	case ModeReference:
		err = p.packIncludeReference(b, n, doc, path, inc)
	default:
		err = p.packIncludeInline(b, n, doc, path, depth, inc)
	}
	if err != nil {
		return err
	}

	if inc.Tag == "include" {
		// Below a key or dash the override lines sit one level deeper
		// than it, the indentation the parser reads a trailing override at.
		overrideDepth := depth
		if len(path) > 0 {
			overrideDepth = depth + 1
		}
		if err := p.packOverrideBlock(b, n, doc, path, overrideDepth); err != nil {
			return err
		}
	}

	p.deduced = outerDeduced
	return nil
}

// packIncludeInline splices the subfile's own content directly into
// the output, addressed by its own presentation document from its own
// root — exactly as if it had been written at this point in the
// including file. path is the include's own address in the parent
// document: empty only when the include occupies the document root,
// in which case (exactly as for any other root value) the subfile's
// top-level children are not nested under a consumed "key: " or "- "
// prefix and so stay at depth rather than depth+1.
func (p *Packer) packIncludeInline(b *strings.Builder, n *ast.Node, doc *presentation.Document, path presentation.Path, depth int, inc *presentation.IncludeRecord) error {
	if inc.Tag == "includeraw" {
		appendQuoted(b, n.Str)
		b.WriteByte('\n')
		return nil
	}
	childDepth := depth
	if len(path) > 0 {
		childDepth = depth + 1
	}
	return p.packBodyAt(b, n, inc.Doc, nil, childDepth)
}

// packIncludeReference emits "!include path" / "!includeraw path"
// instead of the subfile's content. When a Sink is configured the
// subfile is packed independently and hand it its bytes, using
// whatever path the sink reports back (it may rename on a
// content-address collision).
func (p *Packer) packIncludeReference(b *strings.Builder, n *ast.Node, doc *presentation.Document, path presentation.Path, inc *presentation.IncludeRecord) error {
	outPath := inc.Path
	if p.opts.Sink != nil {
		data, err := p.packSubfileBytes(n, doc, path, inc)
		if err != nil {
			return err
		}
		actual, err := p.opts.Sink.Write(inc.Path, data)
		if err != nil {
			return err
		}
		outPath = actual
	}
	b.WriteByte('!')
	b.WriteString(inc.Tag)
	b.WriteByte(' ')
	if needsQuoting(outPath) {
		appendQuoted(b, outPath)
	} else {
		b.WriteString(outPath)
	}
	b.WriteByte('\n')
	return nil
}

// packSubfileBytes renders the subfile's own content for writing to
// disk. n may carry a trailing override's mutations baked in (a
// scalar replaced, keys/items appended); those belong only to this
// inclusion site's repacked output, never to the shared subfile, so
// when path carries a recorded override trace the subfile is packed
// from a reverted copy instead of n itself.
func (p *Packer) packSubfileBytes(n *ast.Node, doc *presentation.Document, path presentation.Path, inc *presentation.IncludeRecord) ([]byte, error) {
	if inc.Tag == "includeraw" {
		return []byte(n.Str + includeRawTrailingNewline), nil
	}
	base := n
	if trace, ok := doc.GetOverride(path); ok {
		base = revertOverrideBase(n, trace)
	}
	return Pack(base, inc.Doc, p.opts)
}

// revertOverrideBase undoes every mutation recorded in trace against a
// clone of n: a scalar entry's prior value (Original) is restored in
// place, and an entry with no Original — a mapping key or sequence
// item the override appended rather than replaced — is removed
// entirely, so the result is exactly what loadIncludeParsed produced
// before this site's override was merged into it.
func revertOverrideBase(n *ast.Node, trace *presentation.OverrideTrace) *ast.Node {
	base := n.Clone()

	type truncation struct {
		segs []presentation.Segment
		min  int
	}
	var keyRemovals [][]presentation.Segment
	truncations := make(map[string]*truncation)

	for _, e := range trace.Entries {
		if !e.Found {
			continue
		}
		segs := e.Path
		if len(segs) > 0 && segs[len(segs)-1].Bang {
			if e.Original == nil {
				continue
			}
			if target := walkSegments(base, segs[:len(segs)-1]); target != nil {
				*target = *e.Original.Clone()
			}
			continue
		}
		if e.Original != nil || len(segs) == 0 {
			continue
		}
		last := segs[len(segs)-1]
		parent := segs[:len(segs)-1]
		if last.IsKey {
			keyRemovals = append(keyRemovals, segs)
			continue
		}
		key := presentation.Path(parent).String()
		if t, ok := truncations[key]; ok {
			if last.Index < t.min {
				t.min = last.Index
			}
		} else {
			truncations[key] = &truncation{segs: parent, min: last.Index}
		}
	}

	for _, segs := range keyRemovals {
		parent := walkSegments(base, segs[:len(segs)-1])
		if parent == nil || parent.Kind != ast.Mapping {
			continue
		}
		if idx := parent.FindKey(segs[len(segs)-1].Key); idx >= 0 {
			parent.Pairs = append(parent.Pairs[:idx], parent.Pairs[idx+1:]...)
		}
	}
	for _, t := range truncations {
		parent := walkSegments(base, t.segs)
		if parent == nil || parent.Kind != ast.Sequence {
			continue
		}
		if t.min < len(parent.Items) {
			parent.Items = parent.Items[:t.min]
		}
	}

	return base
}

// packOverrideBlock reconstructs the trailing "$name: value" /
// "key: value" lines that followed this inclusion in the source: one
// line per variable binding this include's body deduced while
// packing, in name order (their original relative order is not part
// of the presentation side-channel and so cannot be recovered),
// followed, in reference mode, by one line per entry the override
// trace recorded, read live off n (which already reflects every
// mutation the merge and any later editing applied). In inline mode
// the trace entries are not repeated: the spliced body already holds
// their merged values.
func (p *Packer) packOverrideBlock(b *strings.Builder, n *ast.Node, doc *presentation.Document, path presentation.Path, depth int) error {
	var pairs []*ast.Pair

	if len(p.deduced) > 0 {
		sorted := append([]deducedVar(nil), p.deduced...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })
		for _, dv := range sorted {
			pairs = append(pairs, &ast.Pair{Key: "$" + dv.name, Variable: true, Value: dv.value})
		}
	}

	if trace, ok := doc.GetOverride(path); ok && p.opts.Mode == ModeReference {
		root := buildOverrideTree(trace.Entries, n)
		if root != nil {
			pairs = append(pairs, root.Pairs...)
		}
	}

	if len(pairs) == 0 {
		return nil
	}
	overridePath := path.Key(presentation.OverrideMarker)
	return p.packMappingPairs(b, pairs, doc, overridePath, depth)
}

// buildOverrideTree reassembles the override mapping's skeleton from a
// recorded trace, reading each entry's current value live off current
// rather than from whatever it held at override time: a later edit to
// the same node (e.g. a program mutating the parsed tree before
// packing) is reflected automatically. Entries whose Found flag is
// unset, and entries whose path no longer resolves in current, are
// skipped.
func buildOverrideTree(entries []presentation.OverrideEntry, current *ast.Node) *ast.Node {
	root := &ast.Node{Kind: ast.Mapping}
	for _, e := range entries {
		if !e.Found {
			continue
		}
		segs := e.Path
		if len(segs) > 0 && segs[len(segs)-1].Bang {
			segs = segs[:len(segs)-1]
		}
		value := walkSegments(current, segs)
		if value == nil {
			continue
		}
		insertSegments(root, segs, value.Clone())
	}
	return root
}

func walkSegments(n *ast.Node, segs []presentation.Segment) *ast.Node {
	cur := n
	for _, seg := range segs {
		if cur == nil {
			return nil
		}
		if seg.IsKey {
			cur = cur.AtKey(seg.Key)
		} else {
			cur = cur.AtIndex(seg.Index)
		}
	}
	return cur
}

// insertSegments grafts value into root at the path described by
// segs, creating mapping/sequence skeleton nodes for any intermediate
// segment that is not yet present. A freshly created intermediate
// node's own kind is decided by the segment that will address it next
// (a following key segment wants a Mapping, a following index segment
// wants a Sequence).
func insertSegments(root *ast.Node, segs []presentation.Segment, value *ast.Node) {
	skeletonFor := func(next presentation.Segment) *ast.Node {
		if next.IsKey {
			return &ast.Node{Kind: ast.Mapping}
		}
		return &ast.Node{Kind: ast.Sequence}
	}

	cur := root
	for i, seg := range segs {
		last := i == len(segs)-1
		if seg.IsKey {
			if idx := cur.FindKey(seg.Key); idx >= 0 {
				if last {
					cur.Pairs[idx].Value = value
					return
				}
				cur = cur.Pairs[idx].Value
				continue
			}
			child := value
			if !last {
				child = skeletonFor(segs[i+1])
			}
			cur.Pairs = append(cur.Pairs, &ast.Pair{Key: seg.Key, Value: child})
			cur = child
			continue
		}
		for len(cur.Items) <= seg.Index {
			cur.Items = append(cur.Items, &ast.Node{Kind: ast.Mapping})
		}
		if last {
			cur.Items[seg.Index] = value
			return
		}
		if cur.Items[seg.Index].Kind != ast.Mapping && cur.Items[seg.Index].Kind != ast.Sequence {
			cur.Items[seg.Index] = skeletonFor(segs[i+1])
		}
		cur = cur.Items[seg.Index]
	}
}
