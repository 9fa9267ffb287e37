package parser

import (
	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/internal/presentation"
	"github.com/shapestone/yamlfuse/internal/token"
	"github.com/shapestone/yamlfuse/internal/yamlerr"
)

// parseScalar reads either a quoted or bare scalar at the cursor,
// classifies it, records its variable occurrences, and produces its
// presentation entry.
func (ctx *Context) parseScalar(path presentation.Path, inFlow bool) (*ast.Node, error) {
	b, ok := ctx.scanner.PeekByte()
	if !ok {
		return nil, ctx.errAt(yamlerr.MissingData, ctx.scanner.Position(), "expected a value")
	}

	var node *ast.Node
	var style presentation.Style
	quoted := false
	var raw string

	if b == '"' {
		text, span, err := ctx.scanner.ReadQuoted()
		if err != nil {
			return nil, ctx.scanErrAt(err, yamlerr.BadString)
		}
		node = ast.NewString(text, span)
		quoted = true
		raw = text
	} else {
		lex, span := ctx.scanner.ReadBareScalar(inFlow)
		if lex == "" {
			return nil, ctx.errAt(yamlerr.MissingData, ctx.scanner.Position(), "expected a value")
		}
		v := token.ClassifyBare(lex)
		node = ast.NewScalarFrom(v, lex, false, span)
		raw = lex
	}

	if inFlow {
		style = presentation.Flow
	} else {
		style = presentation.Block
	}
	ctx.rec.Produce(path, node, style, quoted, raw)
	detectVariables(node, path, ctx.vars, ctx.rec, ctx.doc)
	return node, nil
}
