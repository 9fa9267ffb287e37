package parser

import (
	"strings"

	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/internal/presentation"
	"github.com/shapestone/yamlfuse/internal/token"
	"github.com/shapestone/yamlfuse/internal/yamlerr"
)

// ParseDocument parses one complete top-level value, skipping leading
// trivia, and fails with ExtraData if anything other than trailing
// trivia remains afterward.
func (ctx *Context) ParseDocument() (*ast.Node, error) {
	tr, err := ctx.scanner.SkipTrivia(true)
	if err != nil {
		return nil, ctx.scanErrAt(err, yamlerr.TabCharacter)
	}
	ctx.rec.StageTrivia(tr)

	if ctx.scanner.Eof() {
		return ast.NewNull(token.Zero), nil
	}

	node, err := ctx.parseValue(0, nil)
	if err != nil {
		return nil, err
	}

	tr, err = ctx.scanner.SkipTrivia(true)
	if err != nil {
		return nil, ctx.scanErrAt(err, yamlerr.TabCharacter)
	}
	ctx.rec.StageTrivia(tr)
	if !ctx.scanner.Eof() {
		return nil, ctx.errAt(yamlerr.ExtraData, ctx.scanner.Position(), "unexpected trailing data")
	}
	ctx.rec.Flush()
	return node, nil
}

// parseValue dispatches on the byte at the cursor per the block
// parser's value-position grammar. minIndent is the column the caller
// requires this value's own container elements (if any) to sit at or
// beyond; it is not re-checked here for the value's own first byte,
// since callers already validated that column before calling in.
func (ctx *Context) parseValue(minIndent int, path presentation.Path) (*ast.Node, error) {
	b, ok := ctx.scanner.PeekByte()
	if !ok {
		return nil, ctx.errAt(yamlerr.MissingData, ctx.scanner.Position(), "expected a value")
	}

	switch {
	case b == '!':
		return ctx.parseTagged(minIndent, path)
	case b == '-' && isDashPrefix(ctx):
		return ctx.parseSequence(minIndent, path)
	case b == '[' || b == '{':
		return ctx.parseFlow(path)
	default:
		if _, _, ok := ctx.scanner.PeekKey(); ok {
			return ctx.parseMapping(minIndent, path)
		}
		return ctx.parseScalar(path, false)
	}
}

func isDashPrefix(ctx *Context) bool {
	nb, ok := ctx.scanner.PeekAt(1)
	return !ok || nb == ' ' || nb == '\t' || nb == '\n' || nb == '\r'
}

// parseTagged consumes a "!name" tag and recurses into its value at
// the same minIndent, attaching the tag to the resulting node
// afterward. !include and !includeraw are intercepted by the include
// resolver instead of falling through to an ordinary value parse.
func (ctx *Context) parseTagged(minIndent int, path presentation.Path) (*ast.Node, error) {
	tagStart := ctx.scanner.Position()
	ctx.scanner.Advance() // consume '!'
	nameStart := ctx.scanner.Offset()
	for {
		b, ok := ctx.scanner.PeekByte()
		if !ok || !isTagRune(b) {
			break
		}
		ctx.scanner.Advance()
	}
	name := string(ctx.scanner.SliceFrom(nameStart))
	if name == "" {
		return nil, ctx.errAt(yamlerr.InvalidTag, tagStart, "empty tag")
	}
	tagSpan := token.Span{Start: tagStart, End: ctx.scanner.Position()}

	if name == "include" || name == "includeraw" {
		return ctx.parseInclude(name, minIndent, path, tagSpan)
	}

	if _, err := ctx.scanner.SkipTrivia(false); err != nil {
		return nil, ctx.scanErrAt(err, yamlerr.TabCharacter)
	}
	node, err := ctx.parseValue(minIndent, path)
	if err != nil {
		return nil, err
	}
	node.Tag = &ast.Tag{Name: name, Span: tagSpan}
	return node, nil
}

func isTagRune(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// parseSequence parses a run of "- value" items at column itemCol,
// where itemCol is established by the first item (required to be >=
// minIndent) and every later item must match exactly.
func (ctx *Context) parseSequence(minIndent int, path presentation.Path) (*ast.Node, error) {
	node := ast.NewSequence(ctx.scanner.Position())
	itemCol := -1
	index := 0

	for {
		if ctx.scanner.Eof() {
			break
		}
		col := ctx.scanner.Position().Column
		b, ok := ctx.scanner.PeekByte()
		if !ok || b != '-' || !isDashPrefix(ctx) {
			break
		}
		if itemCol == -1 {
			if col < minIndent {
				break
			}
			itemCol = col
		} else if col != itemCol {
			if col > itemCol {
				return nil, ctx.errAt(yamlerr.WrongIndent, ctx.scanner.Position(), "unexpected indent in sequence")
			}
			break
		}

		ctx.scanner.Advance() // consume '-'
		ctx.skipLineSpace()

		itemPath := path.Index(index)
		var elem *ast.Node
		var err error
		if ctx.atInlineValue() {
			// minIndent is itemCol+1, not the dash's own column: a
			// trailing override/tag lookahead must require strictly
			// deeper indentation than the dash, matching the
			// non-inline case below.
			elem, err = ctx.parseValue(itemCol+1, itemPath)
		} else {
			elem, err = ctx.parseValueOnOwnLine(itemCol+1, itemPath, false)
		}
		if err != nil {
			return nil, err
		}
		node.Items = append(node.Items, elem)
		index++

		tr, terr := ctx.scanner.SkipTrivia(true)
		if terr != nil {
			return nil, ctx.scanErrAt(terr, yamlerr.TabCharacter)
		}
		ctx.rec.StageTrivia(tr)
	}

	ctx.rec.Produce(path, node, presentation.Block, false, "")
	return node, nil
}

// parseMapping parses a run of "key: value" pairs at column itemCol,
// established by the first key and required to match exactly for
// every later key.
func (ctx *Context) parseMapping(minIndent int, path presentation.Path) (*ast.Node, error) {
	node := ast.NewMapping(ctx.scanner.Position())
	itemCol := -1

	for {
		if ctx.scanner.Eof() {
			break
		}
		col := ctx.scanner.Position().Column
		key, klen, ok := ctx.scanner.PeekKey()
		if !ok {
			break
		}
		if itemCol == -1 {
			if col < minIndent {
				break
			}
			itemCol = col
		} else if col != itemCol {
			if col > itemCol {
				return nil, ctx.errAt(yamlerr.WrongIndent, ctx.scanner.Position(), "unexpected indent in mapping")
			}
			break
		}
		if node.FindKey(key) >= 0 {
			return nil, ctx.errAt(yamlerr.BadKey, ctx.scanner.Position(), "duplicate key %q", key)
		}

		keyStart := ctx.scanner.Position()
		ctx.scanner.AdvanceN(klen)
		keySpan := token.Span{Start: keyStart, End: ctx.scanner.Position()}
		ctx.scanner.Advance() // consume ':'
		ctx.skipLineSpace()

		pairPath := path.Key(key)
		var val *ast.Node
		var err error
		if ctx.atInlineValue() {
			// minIndent is itemCol+1, not the key's own column: this
			// keeps a trailing override/tag lookahead requiring
			// strictly deeper indentation than the key, the same bound
			// a block-form value on its own line would use below.
			val, err = ctx.parseValue(itemCol+1, pairPath)
		} else {
			val, err = ctx.parseValueOnOwnLine(itemCol+1, pairPath, true)
		}
		if err != nil {
			return nil, err
		}

		node.Pairs = append(node.Pairs, &ast.Pair{
			Key: key, KeySpan: keySpan, Variable: strings.HasPrefix(key, "$"), Value: val,
		})

		tr, terr := ctx.scanner.SkipTrivia(true)
		if terr != nil {
			return nil, ctx.scanErrAt(terr, yamlerr.TabCharacter)
		}
		ctx.rec.StageTrivia(tr)
	}

	ctx.rec.Produce(path, node, presentation.Block, false, "")
	return node, nil
}

// atInlineValue reports whether a value starts on the current line
// (immediately, not after a newline) — i.e. the cursor is not sitting
// on end-of-line/comment/EOF.
func (ctx *Context) atInlineValue() bool {
	b, ok := ctx.scanner.PeekByte()
	if !ok || b == '\n' || b == '\r' || b == '#' {
		return false
	}
	return true
}

// skipLineSpace consumes the spaces and tabs after a key's ':' or a
// sequence dash without crossing the end of the line, so atInlineValue
// can tell a value on the same line from one on a later line.
func (ctx *Context) skipLineSpace() {
	for {
		b, ok := ctx.scanner.PeekByte()
		if !ok || (b != ' ' && b != '\t') {
			return
		}
		ctx.scanner.Advance()
	}
}

// parseValueOnOwnLine handles the case where a key or dash has nothing
// following it on the same line: the value must appear on a later
// line, indented at least to minIndent. For a mapping value
// (mappingValue set) whose look-ahead is a sequence prefix, the
// sequence may instead share the key's own column, one below
// minIndent: the "compact sequence" concession. A sequence item's
// value gets no such allowance.
func (ctx *Context) parseValueOnOwnLine(minIndent int, path presentation.Path, mappingValue bool) (*ast.Node, error) {
	tr, err := ctx.scanner.SkipTrivia(true)
	if err != nil {
		return nil, ctx.scanErrAt(err, yamlerr.TabCharacter)
	}
	ctx.rec.StageTrivia(tr)

	if ctx.scanner.Eof() {
		return ast.NewNull(token.Zero), nil
	}

	col := ctx.scanner.Position().Column
	b, _ := ctx.scanner.PeekByte()
	effectiveMin := minIndent
	if mappingValue && b == '-' && isDashPrefix(ctx) {
		// Compact sequence concession: a mapping value that is a
		// sequence may share the mapping key's column.
		effectiveMin = minIndent - 1
	}
	if col < effectiveMin {
		return ast.NewNull(token.Zero), nil
	}
	return ctx.parseValue(col, path)
}
