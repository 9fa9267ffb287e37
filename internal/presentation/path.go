// Package presentation records and replays everything a round-trip
// needs beyond the AST's data: blank-line runs, prefix/inline
// comments, flow-vs-block choices, and include/override/variable
// provenance, all addressed by a path expression over the document.
package presentation

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a path: either a mapping key, a sequence
// index, or the trailing "!" marker that an override trace puts on a
// scalar-replacement entry.
type Segment struct {
	Key   string
	Index int
	IsKey bool
	Bang  bool
}

// Path is a sequence of segments, e.g. "db.hosts[0].name" or
// "db.driver!" (the trailing bang marks db.driver as a replaced scalar).
type Path []Segment

// OverrideMarker is a synthetic mapping-key segment that cannot
// collide with a real document key (those are restricted to
// alphanumerics and a leading '$'), used to address an inclusion
// site's trailing override mapping without clobbering the included
// node's own presentation record at the same nominal path.
const OverrideMarker = "~override"

// String renders the path using the ".key" / "[n]" / trailing "!" grammar.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if seg.Bang {
			b.WriteByte('!')
			continue
		}
		if seg.IsKey {
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.Key)
		} else {
			fmt.Fprintf(&b, "[%d]", seg.Index)
		}
	}
	return b.String()
}

// Key returns p with an additional mapping-key segment appended.
func (p Path) Key(k string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Segment{Key: k, IsKey: true})
}

// Index returns p with an additional sequence-index segment appended.
func (p Path) Index(i int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Segment{Index: i})
}

// Tag returns p with the trailing "!" marker appended.
func (p Path) Tag() Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Segment{Bang: true})
}

// ParsePath parses the ".key" / "[n]" / trailing "!" grammar back into
// a Path, e.g. "servers[0].port"; it is the inverse of Path.String.
func ParsePath(s string) (Path, error) {
	var p Path
	i := 0
	n := len(s)
	for i < n {
		switch {
		case s[i] == '.':
			i++
		case s[i] == '[':
			j := strings.IndexByte(s[i:], ']')
			if j < 0 {
				return nil, fmt.Errorf("unterminated index in path %q", s)
			}
			idxStr := s[i+1 : i+j]
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, fmt.Errorf("bad index %q in path %q", idxStr, s)
			}
			p = append(p, Segment{Index: idx})
			i += j + 1
		case s[i] == '!' && i == n-1:
			p = append(p, Segment{Bang: true})
			i++
		default:
			j := i
			for j < n && s[j] != '.' && s[j] != '[' && s[j] != '!' {
				j++
			}
			p = append(p, Segment{Key: s[i:j], IsKey: true})
			i = j
		}
	}
	return p, nil
}
