package parser

import (
	"strings"

	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/internal/presentation"
	"github.com/shapestone/yamlfuse/internal/token"
	"github.com/shapestone/yamlfuse/internal/yamlerr"
)

// parseFlow parses a bracketed "[ ... ]" sequence or "{ ... }" mapping.
// Block indentation rules do not apply inside flow; elements are
// separated by commas, with a tolerated trailing comma before the
// closing bracket.
func (ctx *Context) parseFlow(path presentation.Path) (*ast.Node, error) {
	b, _ := ctx.scanner.PeekByte()
	if b == '[' {
		return ctx.parseFlowSequence(path)
	}
	return ctx.parseFlowMapping(path)
}

func (ctx *Context) parseFlowSequence(path presentation.Path) (*ast.Node, error) {
	start := ctx.scanner.Position()
	ctx.scanner.Advance() // '['
	node := ast.NewSequence(start)
	index := 0

	for {
		if _, err := ctx.scanner.SkipTrivia(false); err != nil {
			return nil, ctx.scanErrAt(err, yamlerr.TabCharacter)
		}
		b, ok := ctx.scanner.PeekByte()
		if !ok {
			return nil, ctx.errAt(yamlerr.MissingData, ctx.scanner.Position(), "unterminated flow sequence")
		}
		if b == ']' {
			ctx.scanner.Advance()
			break
		}

		itemPath := path.Index(index)
		elem, err := ctx.parseFlowElement(itemPath)
		if err != nil {
			return nil, err
		}
		node.Items = append(node.Items, elem)
		index++

		if _, err := ctx.scanner.SkipTrivia(false); err != nil {
			return nil, ctx.scanErrAt(err, yamlerr.TabCharacter)
		}
		b, ok = ctx.scanner.PeekByte()
		if !ok {
			return nil, ctx.errAt(yamlerr.MissingData, ctx.scanner.Position(), "unterminated flow sequence")
		}
		if b == ',' {
			ctx.scanner.Advance()
			continue
		}
		if b == ']' {
			ctx.scanner.Advance()
			break
		}
		return nil, ctx.errAt(yamlerr.WrongData, ctx.scanner.Position(), "expected ',' or ']' in flow sequence")
	}

	ctx.rec.Produce(path, node, presentation.Flow, false, "")
	return node, nil
}

// parseFlowElement parses one element of a flow sequence, which may be
// a scalar, a nested flow container, or an implicit one-pair mapping
// "k: v". A nested implicit mapping such as "a: b: c" is rejected.
func (ctx *Context) parseFlowElement(path presentation.Path) (*ast.Node, error) {
	key, klen, ok := ctx.scanner.PeekKey()
	if !ok || strings.HasPrefix(key, "$") {
		return ctx.parseFlowValue(path)
	}

	keyStart := ctx.scanner.Position()
	ctx.scanner.AdvanceN(klen)
	ctx.scanner.Advance() // ':'
	if _, err := ctx.scanner.SkipTrivia(false); err != nil {
		return nil, ctx.scanErrAt(err, yamlerr.TabCharacter)
	}

	valPath := path.Key(key)
	val, err := ctx.parseFlowValue(valPath)
	if err != nil {
		return nil, err
	}

	if _, err := ctx.scanner.SkipTrivia(false); err != nil {
		return nil, ctx.scanErrAt(err, yamlerr.TabCharacter)
	}
	if b, ok := ctx.scanner.PeekByte(); ok && b == ':' {
		return nil, ctx.errAt(yamlerr.WrongData, ctx.scanner.Position(), "WrongData::UnexpectedColon: nested implicit mapping in flow")
	}

	m := ast.NewMapping(keyStart)
	m.Pairs = append(m.Pairs, &ast.Pair{Key: key, Value: val})
	ctx.rec.Produce(path, m, presentation.Flow, false, "")
	return m, nil
}

func (ctx *Context) parseFlowValue(path presentation.Path) (*ast.Node, error) {
	b, ok := ctx.scanner.PeekByte()
	if !ok {
		return nil, ctx.errAt(yamlerr.MissingData, ctx.scanner.Position(), "expected a value")
	}
	if b == '[' || b == '{' {
		return ctx.parseFlow(path)
	}
	return ctx.parseScalar(path, true)
}

func (ctx *Context) parseFlowMapping(path presentation.Path) (*ast.Node, error) {
	start := ctx.scanner.Position()
	ctx.scanner.Advance() // '{'
	node := ast.NewMapping(start)

	for {
		if _, err := ctx.scanner.SkipTrivia(false); err != nil {
			return nil, ctx.scanErrAt(err, yamlerr.TabCharacter)
		}
		b, ok := ctx.scanner.PeekByte()
		if !ok {
			return nil, ctx.errAt(yamlerr.MissingData, ctx.scanner.Position(), "unterminated flow mapping")
		}
		if b == '}' {
			ctx.scanner.Advance()
			break
		}

		key, klen, ok := ctx.scanner.PeekKey()
		if !ok || strings.HasPrefix(key, "$") {
			return nil, ctx.errAt(yamlerr.WrongData, ctx.scanner.Position(), "expected \"key: value\" in flow mapping")
		}
		if node.FindKey(key) >= 0 {
			return nil, ctx.errAt(yamlerr.BadKey, ctx.scanner.Position(), "duplicate key %q", key)
		}
		keyStart := ctx.scanner.Position()
		ctx.scanner.AdvanceN(klen)
		keySpan := token.Span{Start: keyStart, End: ctx.scanner.Position()}
		ctx.scanner.Advance() // ':'
		if _, err := ctx.scanner.SkipTrivia(false); err != nil {
			return nil, ctx.scanErrAt(err, yamlerr.TabCharacter)
		}

		valPath := path.Key(key)
		val, err := ctx.parseFlowValue(valPath)
		if err != nil {
			return nil, err
		}
		node.Pairs = append(node.Pairs, &ast.Pair{Key: key, KeySpan: keySpan, Value: val})

		if _, err := ctx.scanner.SkipTrivia(false); err != nil {
			return nil, ctx.scanErrAt(err, yamlerr.TabCharacter)
		}
		b, ok = ctx.scanner.PeekByte()
		if !ok {
			return nil, ctx.errAt(yamlerr.MissingData, ctx.scanner.Position(), "unterminated flow mapping")
		}
		if b == ',' {
			ctx.scanner.Advance()
			continue
		}
		if b == '}' {
			ctx.scanner.Advance()
			break
		}
		return nil, ctx.errAt(yamlerr.WrongData, ctx.scanner.Position(), "expected ',' or '}' in flow mapping")
	}

	ctx.rec.Produce(path, node, presentation.Flow, false, "")
	return node, nil
}
