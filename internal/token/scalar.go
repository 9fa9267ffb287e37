package token

import (
	"math"
	"strconv"
	"strings"
)

// ScalarKind is the exclusive classification of a parsed scalar value.
type ScalarKind int

const (
	Null ScalarKind = iota
	Bool
	Int
	UInt
	Double
	String
)

func (k ScalarKind) String() string {
	switch k {
	case Null:
		return "Null"
	case Bool:
		return "Bool"
	case Int:
		return "Int"
	case UInt:
		return "UInt"
	case Double:
		return "Double"
	case String:
		return "String"
	default:
		return "Unknown"
	}
}

// Scalar is the classified value of a bare (unquoted) lexeme.
type Scalar struct {
	Kind   ScalarKind
	Bool   bool
	Int    int64
	UInt   uint64
	Double float64
	Str    string
}

// ClassifyBare maps a bare (unquoted) lexeme to its scalar kind,
// following the exclusive rule in the data model: special tokens are
// recognised before numeric parsing, "-0" normalizes to UInt 0,
// negative integers fitting int64 become Int, non-negative integers
// fitting uint64 become UInt, non-integers parseable as float64 become
// Double, and anything else is a bare String.
func ClassifyBare(lexeme string) Scalar {
	switch strings.ToLower(lexeme) {
	case "~", "null":
		return Scalar{Kind: Null}
	case "true":
		return Scalar{Kind: Bool, Bool: true}
	case "false":
		return Scalar{Kind: Bool, Bool: false}
	case ".inf":
		return Scalar{Kind: Double, Double: math.Inf(1)}
	case "-.inf":
		return Scalar{Kind: Double, Double: math.Inf(-1)}
	case ".nan":
		return Scalar{Kind: Double, Double: math.NaN()}
	}

	if lexeme == "-0" {
		return Scalar{Kind: UInt, UInt: 0}
	}

	if strings.HasPrefix(lexeme, "-") {
		if i, err := strconv.ParseInt(lexeme, 10, 64); err == nil {
			return Scalar{Kind: Int, Int: i}
		}
	} else if lexeme != "" {
		if u, err := strconv.ParseUint(lexeme, 10, 64); err == nil {
			return Scalar{Kind: UInt, UInt: u}
		}
	}

	if !isExcludedFloatLexeme(lexeme) {
		if d, err := strconv.ParseFloat(lexeme, 64); err == nil {
			return Scalar{Kind: Double, Double: d}
		}
	}

	return Scalar{Kind: String, Str: lexeme}
}

// isExcludedFloatLexeme reports whether lexeme is one of the bare
// spellings strconv.ParseFloat accepts ("nan", "inf", "+inf",
// "infinity", case-insensitively) that the data model does not
// recognize as a float special — only the literal ".inf"/"-.inf"/
// ".nan" forms are, and are matched above before numeric parsing runs.
func isExcludedFloatLexeme(lexeme string) bool {
	switch strings.ToLower(lexeme) {
	case "nan", "inf", "+inf", "-inf", "infinity", "+infinity", "-infinity":
		return true
	}
	return false
}

// isKeyRune reports whether r can appear in a mapping key or plain
// identifier ("alphanumerics" per the data model).
func isKeyRune(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// PeekKey looks ahead, without consuming, for a mapping key: an
// optional leading '$' followed by one or more alphanumerics,
// immediately followed by ':' and then whitespace, a newline, or EOF.
// Returns the key text (including any '$' prefix) and its length in
// bytes if found.
func (s *Scanner) PeekKey() (key string, length int, ok bool) {
	n := 0
	if b, pok := s.PeekAt(n); pok && b == '$' {
		n++
	}
	keyStart := n
	for {
		b, pok := s.PeekAt(n)
		if !pok || !isKeyRune(b) {
			break
		}
		n++
	}
	if n == keyStart {
		return "", 0, false
	}
	b, pok := s.PeekAt(n)
	if !pok || b != ':' {
		return "", 0, false
	}
	nb, nok := s.PeekAt(n + 1)
	if nok && nb != ' ' && nb != '\t' && nb != '\n' && nb != '\r' {
		return "", 0, false
	}
	var buf strings.Builder
	for i := 0; i < n; i++ {
		b, _ := s.PeekAt(i)
		buf.WriteByte(b)
	}
	return buf.String(), n, true
}

// ReadBareScalar consumes a plain (unquoted) scalar lexeme. It stops
// at end of line, at ": " / ":\t" / end-of-line-after-colon (colon
// immediately followed by whitespace or EOL, which could start a
// mapping), at " #" (space then hash, which starts a comment), and,
// when inFlow is true, at any of the flow structural bytes ", [ ] { }
// :". Trailing spaces are trimmed from the result.
func (s *Scanner) ReadBareScalar(inFlow bool) (string, Span) {
	start := s.Offset()
	startPos := s.Position()

	for {
		b, ok := s.PeekByte()
		if !ok || b == '\n' || b == '\r' {
			break
		}
		if inFlow {
			switch b {
			case ',', '[', ']', '{', '}', ':':
				goto done
			}
		}
		if b == ':' {
			nb, nok := s.PeekAt(1)
			if !nok || nb == ' ' || nb == '\t' || nb == '\n' || nb == '\r' {
				goto done
			}
		}
		if b == ' ' {
			nb, nok := s.PeekAt(1)
			if nok && nb == '#' {
				goto done
			}
		}
		s.Advance()
	}
done:
	raw := string(s.SliceFrom(start))
	raw = strings.TrimRight(raw, " \t")
	endPos := s.Position()
	return raw, Span{Start: startPos, End: endPos}
}
