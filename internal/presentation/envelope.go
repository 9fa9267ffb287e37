package presentation

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Envelope is a flat, serializable snapshot of a Document, used by
// `yamlfuse inspect --presentation` to dump the side-channel as plain
// YAML (via gopkg.in/yaml.v3) rather than the composed document
// itself.
type Envelope struct {
	Entries            []EnvelopeEntry   `yaml:"entries"`
	Includes           []EnvelopeInclude `yaml:"includes,omitempty"`
	TrailingBlankLines int               `yaml:"trailingBlankLines,omitempty"`
	FinalComments      []string          `yaml:"finalComments,omitempty"`
}

// EnvelopeEntry is one path's recorded presentation.
type EnvelopeEntry struct {
	Path               string   `yaml:"path"`
	BlankLinesBefore   int      `yaml:"blankLinesBefore,omitempty"`
	PrefixComments     []string `yaml:"prefixComments,omitempty"`
	InlineComment      string   `yaml:"inlineComment,omitempty"`
	Flow               bool     `yaml:"flow,omitempty"`
	Quoted             bool     `yaml:"quoted,omitempty"`
	Included           bool     `yaml:"included,omitempty"`
	ValueWithVariables string   `yaml:"valueWithVariables,omitempty"`
}

// EnvelopeInclude is one path's recorded include provenance.
type EnvelopeInclude struct {
	Path     string `yaml:"path"`
	Tag      string `yaml:"tag"`
	Source   string `yaml:"source"`
	Resolved string `yaml:"resolved"`
}

// ToEnvelope flattens a Document into its serializable form.
func (d *Document) ToEnvelope() *Envelope {
	env := &Envelope{
		TrailingBlankLines: d.TrailingBlankLines,
		FinalComments:      d.FinalComments,
	}
	for _, p := range d.Paths() {
		rec := d.byPath[p]
		_, included := d.includes[p]
		env.Entries = append(env.Entries, EnvelopeEntry{
			Path:               p,
			BlankLinesBefore:   rec.BlankLinesBefore,
			PrefixComments:     rec.PrefixComments,
			InlineComment:      rec.InlineComment,
			Flow:               rec.Style == Flow,
			Quoted:             rec.Quoted,
			Included:           included,
			ValueWithVariables: rec.VarTemplate,
		})
	}

	includePaths := make([]string, 0, len(d.includes))
	for p := range d.includes {
		includePaths = append(includePaths, p)
	}
	sort.Strings(includePaths)
	for _, p := range includePaths {
		inc := d.includes[p]
		env.Includes = append(env.Includes, EnvelopeInclude{
			Path:     p,
			Tag:      inc.Tag,
			Source:   inc.Path,
			Resolved: inc.Resolved,
		})
	}
	return env
}

// MarshalYAMLBytes renders the envelope as YAML text.
func (env *Envelope) MarshalYAMLBytes() ([]byte, error) {
	out, err := yaml.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal presentation envelope: %w", err)
	}
	return out, nil
}

// EnvelopeFromYAML parses a previously-dumped envelope, e.g. for tests
// that round-trip `inspect --presentation` output.
func EnvelopeFromYAML(data []byte) (*Envelope, error) {
	var env Envelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal presentation envelope: %w", err)
	}
	return &env, nil
}
