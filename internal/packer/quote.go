package packer

import (
	"math"
	"strconv"
	"strings"

	"github.com/shapestone/yamlfuse/internal/ast"
	"github.com/shapestone/yamlfuse/internal/token"
)

// renderScalar returns the unquoted text for a scalar node and whether
// that text must be wrapped in double quotes to survive a reparse.
// Bool/Int/UInt/Double/Null render from their typed field, not from
// whatever lexeme produced them, so a mixed-case "NulL" or a
// leading-zero "007" always canonicalizes on repack.
func renderScalar(n *ast.Node) (text string, quote bool) {
	switch n.ScalarKind {
	case token.Null:
		return "~", false
	case token.Bool:
		if n.Bool {
			return "true", false
		}
		return "false", false
	case token.Int:
		return strconv.FormatInt(n.Int, 10), false
	case token.UInt:
		return strconv.FormatUint(n.UInt, 10), false
	case token.Double:
		return formatDouble(n.Double), false
	default:
		s := n.Str
		return s, needsQuoting(s)
	}
}

func formatDouble(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// leadingQuoteChars are bytes that, appearing first in a bare scalar,
// could be mistaken for a YAML structural indicator rather than the
// start of a plain string.
const leadingQuoteChars = "!&*-\"'[.{}"

// needsQuoting decides whether s must be emitted as a double-quoted
// string to round-trip back to this exact String value rather than
// being reclassified as a different scalar kind or misparsed as
// structure.
func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	if strings.IndexByte(leadingQuoteChars, s[0]) >= 0 {
		return true
	}
	if s[0] == ' ' || s[len(s)-1] == ' ' {
		return true
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b < 0x20 {
			return true
		}
		if b == ':' && (i+1 == len(s) || s[i+1] == ' ' || s[i+1] == '\t') {
			return true
		}
		if b == '#' && i > 0 && s[i-1] == ' ' {
			return true
		}
	}
	// A plain string that happens to look like a different scalar kind
	// (a number, a bool, null, or a special float) would reparse as
	// that kind unless quoted.
	if token.ClassifyBare(s).Kind != token.String {
		return true
	}
	return false
}

// appendQuoted writes s into b as a double-quoted YAML string, using
// the same escape vocabulary ReadQuoted understands on the way back
// in: \" \\ \a \b \e \f \n \r \t \v and \uXXXX for anything else
// below 0x20.
func appendQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		esc := escapeFor(c)
		if esc == "" {
			continue
		}
		b.WriteString(s[start:i])
		b.WriteString(esc)
		start = i + 1
	}
	b.WriteString(s[start:])
	b.WriteByte('"')
}

func escapeFor(c byte) string {
	switch c {
	case '"':
		return `\"`
	case '\\':
		return `\\`
	case '\a':
		return `\a`
	case '\b':
		return `\b`
	case 0x1b:
		return `\e`
	case '\f':
		return `\f`
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '\v':
		return `\v`
	default:
		if c < 0x20 {
			return "\\u" + hex4(c)
		}
		return ""
	}
}

const hexDigits = "0123456789abcdef"

func hex4(c byte) string {
	return string([]byte{
		'0', '0',
		hexDigits[c>>4],
		hexDigits[c&0xf],
	})
}
