package parser

import (
	"strings"

	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/internal/presentation"
	"github.com/shapestone/yamlfuse/internal/token"
	"github.com/shapestone/yamlfuse/internal/yamlerr"
)

// parseTrailingOverride looks past an already-parsed include for a
// trailing block mapping at column >= minIndent: $-prefixed keys bind
// variables, everything else merges into included via mergeOverride.
func (ctx *Context) parseTrailingOverride(included *ast.Node, minIndent int, includePath presentation.Path) error {
	tr, err := ctx.scanner.SkipTrivia(true)
	if err != nil {
		return ctx.scanErrAt(err, yamlerr.TabCharacter)
	}
	ctx.rec.StageTrivia(tr)

	if ctx.scanner.Eof() {
		return nil
	}
	if ctx.scanner.Position().Column < minIndent {
		return nil
	}
	if _, _, ok := ctx.scanner.PeekKey(); !ok {
		return nil
	}

	overridePath := includePath.Key(presentation.OverrideMarker)
	raw, err := ctx.parseMapping(minIndent, overridePath)
	if err != nil {
		return err
	}

	var valuePairs []*ast.Pair
	for _, p := range raw.Pairs {
		if p.Variable {
			name := strings.TrimPrefix(p.Key, "$")
			if !bindVariable(ctx.vars, name, p.Value) {
				return ctx.errAt(yamlerr.BadKey, p.KeySpan, "BadKey::UnknownVariable: %q", name)
			}
			continue
		}
		valuePairs = append(valuePairs, p)
	}
	if len(valuePairs) == 0 {
		return nil
	}

	overriding := &ast.Node{Kind: ast.Mapping, Span: raw.Span, Pairs: valuePairs}
	entries, err := ctx.mergeOverride(included, overriding, nil)
	if err != nil {
		return err
	}
	ctx.doc.SetOverride(includePath, &presentation.OverrideTrace{Entries: entries})
	return nil
}

// mergeOverride applies the override algebra of §4.7: scalar replaces
// scalar, sequence append-only, mapping recurses key by key (ignoring
// $-prefixed keys, which the variable engine already consumed). prefix
// is the path built up so far, relative to the inclusion point.
func (ctx *Context) mergeOverride(included, overriding *ast.Node, prefix presentation.Path) ([]presentation.OverrideEntry, error) {
	if included.Kind != overriding.Kind {
		return nil, ctx.errAt(yamlerr.InvalidOverride, overriding.Span, "type mismatch overriding %s with %s", included.Kind, overriding.Kind)
	}

	switch included.Kind {
	case ast.Scalar:
		original := included.Clone()
		span := included.Span
		*included = *overriding.Clone()
		included.Span = span
		return []presentation.OverrideEntry{{Path: prefix.Tag(), Found: true, Original: original, Span: overriding.Span}}, nil

	case ast.Sequence:
		var entries []presentation.OverrideEntry
		for _, item := range overriding.Items {
			idx := len(included.Items)
			included.Items = append(included.Items, item.Clone())
			entries = append(entries, presentation.OverrideEntry{Path: prefix.Index(idx), Found: true, Span: item.Span})
		}
		return entries, nil

	case ast.Mapping:
		var entries []presentation.OverrideEntry
		for _, op := range overriding.Pairs {
			if strings.HasPrefix(op.Key, "$") {
				continue
			}
			childPath := prefix.Key(op.Key)
			if idx := included.FindKey(op.Key); idx >= 0 {
				childEntries, err := ctx.mergeOverride(included.Pairs[idx].Value, op.Value, childPath)
				if err != nil {
					return nil, err
				}
				entries = append(entries, childEntries...)
				continue
			}
			included.Pairs = append(included.Pairs, &ast.Pair{Key: op.Key, Value: op.Value.Clone()})
			entries = append(entries, presentation.OverrideEntry{Path: childPath, Found: true, Span: op.Value.Span})
		}
		return entries, nil

	default:
		return nil, ctx.errAt(yamlerr.InvalidOverride, token.Zero, "unsupported node kind in override")
	}
}
