package token

import "strings"

// ReadQuoted consumes a double-quoted string starting at the cursor
// (which must be positioned on the opening '"') and returns its
// decoded text. Supported escapes: \" \\ \a \b \e \f \n \r \t \v and
// \uXXXX. A non-decodable escape is BadString::InvalidBackslash; a
// string with no closing quote before EOF or newline is
// BadString::Unclosed. Broken UTF-8 bytes inside the string are
// tolerated and copied through as raw bytes.
func (s *Scanner) ReadQuoted() (string, Span, error) {
	startPos := s.Position()
	b, ok := s.PeekByte()
	if !ok || b != '"' {
		return "", Span{}, &scanError{Span: Span{Start: startPos, End: startPos}, Msg: "expected opening quote"}
	}
	s.Advance()

	var buf strings.Builder
	for {
		b, ok := s.PeekByte()
		if !ok {
			return "", Span{}, &scanError{Span: Span{Start: startPos, End: s.Position()}, Msg: "BadString::Unclosed"}
		}
		if b == '"' {
			s.Advance()
			endPos := s.Position()
			return buf.String(), Span{Start: startPos, End: endPos}, nil
		}
		if b == '\n' {
			return "", Span{}, &scanError{Span: Span{Start: startPos, End: s.Position()}, Msg: "BadString::Unclosed"}
		}
		if b != '\\' {
			s.Advance()
			buf.WriteByte(b)
			continue
		}

		s.Advance() // consume backslash
		esc, eok := s.PeekByte()
		if !eok {
			return "", Span{}, &scanError{Span: Span{Start: startPos, End: s.Position()}, Msg: "BadString::Unclosed"}
		}
		switch esc {
		case '"':
			s.Advance()
			buf.WriteByte('"')
		case '\\':
			s.Advance()
			buf.WriteByte('\\')
		case 'a':
			s.Advance()
			buf.WriteByte('\a')
		case 'b':
			s.Advance()
			buf.WriteByte('\b')
		case 'e':
			s.Advance()
			buf.WriteByte('\x1b')
		case 'f':
			s.Advance()
			buf.WriteByte('\f')
		case 'n':
			s.Advance()
			buf.WriteByte('\n')
		case 'r':
			s.Advance()
			buf.WriteByte('\r')
		case 't':
			s.Advance()
			buf.WriteByte('\t')
		case 'v':
			s.Advance()
			buf.WriteByte('\v')
		case 'u':
			s.Advance()
			var hex [4]byte
			n := 0
			for n < 4 {
				hb, hok := s.PeekByte()
				if !hok || !isHexDigit(hb) {
					break
				}
				hex[n] = hb
				s.Advance()
				n++
			}
			if n != 4 {
				return "", Span{}, &scanError{Span: Span{Start: startPos, End: s.Position()}, Msg: "BadString::InvalidBackslash"}
			}
			cp := parseHex4(hex)
			buf.WriteRune(rune(cp))
		default:
			return "", Span{}, &scanError{Span: Span{Start: startPos, End: s.Position()}, Msg: "BadString::InvalidBackslash"}
		}
	}
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	default:
		return int(b-'A') + 10
	}
}

func parseHex4(hex [4]byte) int {
	v := 0
	for _, b := range hex {
		v = v*16 + hexVal(b)
	}
	return v
}
