package ct

import (
	"fmt"
	"strings"
)

// Rule labels every sample name containing Substring.
type Rule struct {
	Substring string
	Label     string
}

// ParseRule reads a "substring=label" pair.
func ParseRule(s string) (Rule, error) {
	substring, label, ok := strings.Cut(s, "=")
	if !ok || substring == "" || label == "" {
		return Rule{}, fmt.Errorf("%w: rule %q, want substring=label", ErrInvalidConfig, s)
	}
	return Rule{Substring: substring, Label: label}, nil
}

// Keyer is an ordered rule list. The first matching rule wins, a sample name
// matching no rule is its own label.
type Keyer []Rule

func (k Keyer) Classify(sampleName string) string {
	for _, rule := range k {
		if strings.Contains(sampleName, rule.Substring) {
			return rule.Label
		}
	}
	return sampleName
}

func (k Keyer) Apply(table *Table) {
	for _, m := range table.Rows {
		m.CellType = k.Classify(m.SampleName)
	}
}
