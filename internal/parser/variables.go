package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/internal/presentation"
	"github.com/shapestone/yamlfuse/internal/token"
)

var varPattern = regexp.MustCompile(`\$([A-Za-z0-9]+)`)

// varOccurrence is one place a $name token was found while scanning a
// scalar. whole means the scalar's entire text was "$name" with
// nothing else, so binding may replace the node wholesale; otherwise
// the name was embedded in a larger string and binding must splice
// text into it.
type varOccurrence struct {
	owner *ast.Node
	whole bool
}

// varTable maps a variable name to every occurrence recorded so far in
// one file's scope. Consumed entries are deleted as they are bound.
type varTable map[string][]*varOccurrence

func newVarTable() varTable { return make(varTable) }

// detectVariables scans a freshly built scalar node's text for $name
// occurrences, records them against table, and — when any were found —
// stashes the pre-substitution text in presentation so the packer can
// later attempt to reconstruct the template.
func detectVariables(owner *ast.Node, path presentation.Path, table varTable, rec *presentation.Recorder, doc *presentation.Document) {
	if owner.Kind != ast.Scalar || owner.ScalarKind != token.String {
		return
	}
	matches := varPattern.FindAllStringSubmatchIndex(owner.Str, -1)
	if len(matches) == 0 {
		return
	}

	whole := len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(owner.Str)

	seen := make(map[string]bool)
	for _, m := range matches {
		name := owner.Str[m[2]:m[3]]
		if seen[name] {
			continue
		}
		seen[name] = true
		table[name] = append(table[name], &varOccurrence{owner: owner, whole: whole})
	}

	if rec.Enabled() {
		if nodeRec, ok := doc.GetNode(owner); ok {
			nodeRec.VarTemplate = owner.Str
		} else {
			doc.Set(path, owner, &presentation.NodeRecord{VarTemplate: owner.Str})
		}
	}
}

// bindVariable applies every recorded occurrence of name to value and
// removes name from table. It returns false if name has no recorded
// occurrences (an unknown-variable override key).
func bindVariable(table varTable, name string, value *ast.Node) bool {
	occs, ok := table[name]
	if !ok {
		return false
	}
	for _, occ := range occs {
		if occ.whole {
			span := occ.owner.Span
			*occ.owner = *value.Clone()
			occ.owner.Span = span
			continue
		}
		text := scalarSpliceText(value)
		occ.owner.Str = strings.ReplaceAll(occ.owner.Str, "$"+name, text)
		occ.owner.Raw = occ.owner.Str
	}
	delete(table, name)
	return true
}

// scalarSpliceText renders value's textual form for embedding inside a
// host string: a String scalar contributes its decoded text directly,
// any other scalar contributes its original source lexeme.
func scalarSpliceText(value *ast.Node) string {
	if value.Kind != ast.Scalar {
		return ""
	}
	if value.ScalarKind == token.String {
		return value.Str
	}
	if value.Raw != "" {
		return value.Raw
	}
	switch value.ScalarKind {
	case token.Bool:
		if value.Bool {
			return "true"
		}
		return "false"
	case token.Int:
		return strconv.FormatInt(value.Int, 10)
	case token.UInt:
		return strconv.FormatUint(value.UInt, 10)
	case token.Double:
		return strconv.FormatFloat(value.Double, 'g', -1, 64)
	default:
		return "~"
	}
}

// mergeUnbound folds every still-unbound entry of src into dst, used
// when an inclusion's override has consumed what it can and the
// remainder becomes the including file's problem to bind.
func mergeUnbound(dst, src varTable) {
	for name, occs := range src {
		dst[name] = append(dst[name], occs...)
	}
}
