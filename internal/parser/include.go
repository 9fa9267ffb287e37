package parser

import (
	"path/filepath"
	"strings"

	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/internal/presentation"
	"github.com/shapestone/yamlfuse/internal/token"
	"github.com/shapestone/yamlfuse/internal/yamlerr"
)

// parseInclude handles a "!include" or "!includeraw" tag: it reads and
// resolves the path string that follows, loads and (for !include)
// parses the target exactly once per physical file, clones the result
// for this inclusion site, consumes any trailing override mapping, and
// folds the subfile's leftover unbound variables upward.
func (ctx *Context) parseInclude(tagName string, minIndent int, path presentation.Path, tagSpan token.Span) (*ast.Node, error) {
	if _, err := ctx.scanner.SkipTrivia(false); err != nil {
		return nil, ctx.scanErrAt(err, yamlerr.TabCharacter)
	}
	pathNode, err := ctx.parseScalar(path, false)
	if err != nil {
		return nil, err
	}
	rawPath, ok := pathNode.AsString()
	if !ok {
		return nil, ctx.errAt(yamlerr.InvalidInclude, tagSpan, "%s target must be a string", tagName)
	}

	if ctx.file == "" {
		return nil, ctx.errAt(yamlerr.InvalidInclude, tagSpan, "%s is not allowed when parsing a bare stream", tagName)
	}

	resolved, err := ctx.resolveIncludePath(rawPath, tagSpan)
	if err != nil {
		return nil, err
	}
	if err := ctx.checkCycle(resolved, tagSpan); err != nil {
		return nil, err
	}

	var result *ast.Node
	var subDoc *presentation.Document
	if tagName == "includeraw" {
		result, err = ctx.loadIncludeRaw(resolved, path, tagSpan)
	} else {
		result, subDoc, err = ctx.loadIncludeParsed(resolved, path, tagSpan)
	}
	if err != nil {
		return nil, err
	}

	ctx.doc.SetInclude(path, &presentation.IncludeRecord{Tag: tagName, Path: rawPath, Resolved: resolved, Doc: subDoc})

	if tagName == "include" {
		if err := ctx.parseTrailingOverride(result, minIndent, path); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// resolveIncludePath resolves rawPath relative to the including file's
// directory and rejects any path that escapes that directory's
// subtree.
func (ctx *Context) resolveIncludePath(rawPath string, span token.Span) (string, error) {
	joined := filepath.Join(ctx.baseDir, rawPath)
	cleanBase := filepath.Clean(ctx.baseDir)
	rel, err := filepath.Rel(cleanBase, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ctx.errAt(yamlerr.InvalidInclude, span, "include path %q escapes %q", rawPath, ctx.baseDir)
	}
	return joined, nil
}

// checkCycle walks ctx's own chain, which always starts with the
// top-level file and gains one frame per !include hop since, so a
// cycle back to any ancestor (including the root itself) is caught
// here regardless of how many hops deep resolved was reached from.
func (ctx *Context) checkCycle(resolved string, span token.Span) error {
	for _, f := range ctx.chain {
		if f.resolvedPath == resolved {
			return ctx.errAt(yamlerr.InvalidInclude, span, "include cycle detected at %q", resolved)
		}
	}
	return nil
}

func (ctx *Context) loadIncludeRaw(resolved string, path presentation.Path, span token.Span) (*ast.Node, error) {
	data, err := ctx.resolver.reader.ReadFile(resolved)
	if err != nil {
		return nil, ctx.errAt(yamlerr.InvalidInclude, span, "reading %q: %v", resolved, err)
	}
	node := ast.NewString(string(data), span)
	ctx.rec.Produce(path, node, presentation.Block, false, string(data))
	return node, nil
}

// loadIncludeParsed returns a fresh clone of the memoized parse of
// resolved, merging its leftover unbound variables into ctx's table.
func (ctx *Context) loadIncludeParsed(resolved string, path presentation.Path, span token.Span) (*ast.Node, *presentation.Document, error) {
	sub, err := ctx.resolver.parseOnce(ctx, resolved, span)
	if err != nil {
		return nil, nil, err
	}
	clone := sub.root.Clone()
	mergeUnbound(ctx.vars, cloneVarTableFor(sub.vars, sub.root, clone))
	ctx.rec.Produce(path, clone, presentation.Block, false, "")
	return clone, sub.doc, nil
}

// parseOnce parses resolved exactly once across the whole top-level
// Parse call, caching the AST, presentation document, and leftover
// variable table for reuse at every inclusion site.
func (r *resolver) parseOnce(parent *Context, resolved string, span token.Span) (*subfileResult, error) {
	if cached, ok := r.cache[resolved]; ok {
		if cached.err != nil {
			return nil, cached.err
		}
		return cached, nil
	}

	data, err := r.reader.ReadFile(resolved)
	if err != nil {
		wrapped := parent.errAt(yamlerr.InvalidInclude, span, "reading %q: %v", resolved, err)
		r.cache[resolved] = &subfileResult{err: wrapped}
		return nil, wrapped
	}

	child := parent.child(resolved, data, span)
	root, perr := child.ParseDocument()
	if perr != nil {
		r.cache[resolved] = &subfileResult{err: perr}
		return nil, perr
	}

	// Leftover entries in child.vars are not an error here: they may
	// still be bound by the override at whichever inclusion site is
	// active, or merged further upward. The top-level Parse call is
	// the only place an unbound variable actually fails.
	result := &subfileResult{root: root, doc: child.doc, vars: child.vars}
	r.cache[resolved] = result
	return result, nil
}

// cloneVarTableFor rewrites a variable table recorded against
// original's nodes so it instead points at the corresponding nodes of
// clone, which must be a Clone() of original.
func cloneVarTableFor(table varTable, original, clone *ast.Node) varTable {
	index := make(map[*ast.Node]*ast.Node)
	indexNodes(original, clone, index)

	out := newVarTable()
	for name, occs := range table {
		for _, occ := range occs {
			if mapped, ok := index[occ.owner]; ok {
				out[name] = append(out[name], &varOccurrence{owner: mapped, whole: occ.whole})
			}
		}
	}
	return out
}

// indexNodes walks two structurally identical trees in lockstep,
// recording original -> clone node correspondence.
func indexNodes(original, clone *ast.Node, index map[*ast.Node]*ast.Node) {
	if original == nil || clone == nil {
		return
	}
	index[original] = clone
	switch original.Kind {
	case ast.Sequence:
		for i := range original.Items {
			if i < len(clone.Items) {
				indexNodes(original.Items[i], clone.Items[i], index)
			}
		}
	case ast.Mapping:
		for i := range original.Pairs {
			if i < len(clone.Pairs) {
				indexNodes(original.Pairs[i].Value, clone.Pairs[i].Value, index)
			}
		}
	}
}
