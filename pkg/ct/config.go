package ct

import (
	"fmt"

	"github.com/samber/lo"
)

var (
	DefaultRules = Keyer{
		{Substring: "IPSC", Label: "iPSC"},
		{Substring: "MSN", Label: "MSN"},
	}
	DefaultReferences  = []string{"EIF4A2", "UBC"}
	DefaultControl     = "iPSC"
	DefaultMultiplier  = 1.5
	DefaultPlotTargets = []string{"S100B", "BCL", "PPP", "RBFOX3"}
)

// Config holds every tunable of a run. Control decides every fold change.
type Config struct {
	Rules      Keyer
	References []string
	Control    string

	Multiplier float64
	Fence      Fence

	// display order of the plot, empty means every non-reference target
	PlotTargets []string
}

func DefaultConfig() Config {
	return Config{
		Rules:       append(Keyer(nil), DefaultRules...),
		References:  append([]string(nil), DefaultReferences...),
		Control:     DefaultControl,
		Multiplier:  DefaultMultiplier,
		Fence:       FenceStrict,
		PlotTargets: append([]string(nil), DefaultPlotTargets...),
	}
}

func (c Config) Validate() error {
	if c.Control == "" {
		return fmt.Errorf("%w: control cell type is required", ErrInvalidConfig)
	}
	if len(c.References) == 0 {
		return fmt.Errorf("%w: at least one reference target is required", ErrInvalidConfig)
	}
	if dup := lo.FindDuplicates(c.References); len(dup) > 0 {
		return fmt.Errorf("%w: duplicate reference targets %v", ErrInvalidConfig, dup)
	}
	if lo.Contains(c.References, "") {
		return fmt.Errorf("%w: empty reference target", ErrInvalidConfig)
	}
	if c.Multiplier <= 0 {
		return fmt.Errorf("%w: outlier multiplier %v must be positive", ErrInvalidConfig, c.Multiplier)
	}
	return nil
}
