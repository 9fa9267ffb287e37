package packer

import "regexp"

// wholeVarPattern matches a VarTemplate whose entire text is a single
// "$name" occurrence with nothing else around it — the only shape the
// packer can invert back into a binding, per the parser's own
// varOccurrence.whole distinction between a scalar that was wholly a
// variable reference and one with a variable merely embedded in it.
var wholeVarPattern = regexp.MustCompile(`^\$([A-Za-z0-9]+)$`)

// deduceVariable reports the variable name if template is exactly one
// "$name" reference. A template with other text around or between
// multiple "$name" occurrences (the "embedded" case) has no unique
// inverse — the value baked into the node at pack time is emitted
// literally instead, and the binding that produced it is lost.
func deduceVariable(template string) (name string, ok bool) {
	m := wholeVarPattern.FindStringSubmatch(template)
	if m == nil {
		return "", false
	}
	return m[1], true
}
