package main

import (
	"qPCR/pkg/ct"
	"strings"

	"github.com/samber/lo"
)

var (
	HistBins = 20
	HistRows = 5
)

// ruleList collects repeated -rule flags.
type ruleList []ct.Rule

func (r *ruleList) String() string {
	if r == nil {
		return ""
	}
	return strings.Join(
		lo.Map(*r, func(rule ct.Rule, _ int) string { return rule.Substring + "=" + rule.Label }),
		" ",
	)
}

func (r *ruleList) Set(s string) error {
	rule, err := ct.ParseRule(s)
	if err != nil {
		return err
	}
	*r = append(*r, rule)
	return nil
}

func splitList(s string) []string {
	return lo.Compact(lo.Map(strings.Split(s, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	}))
}
