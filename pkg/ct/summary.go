package ct

import (
	"github.com/montanaflynn/stats"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/guregu/null.v3"
)

// Summary is one bar of the plot: the fold changes of a target within a cell
// type.
type Summary struct {
	Target   string
	CellType string
	N        int
	Mean     null.Float
	SD       null.Float
	Values   []float64
}

// PlotTargets resolves the targets shown in the plot. References never show.
func PlotTargets(table *Table, cfg Config) []string {
	var targets = cfg.PlotTargets
	if len(targets) == 0 {
		targets = table.Targets()
	}
	return lo.Without(targets, cfg.References...)
}

// Summarize aggregates the valid fold changes per plot target and cell type,
// cell types in order of first appearance. Combinations without rows are
// skipped.
func Summarize(table *Table, cfg Config) []Summary {
	var (
		cellTypes = table.CellTypes()
		values    = make(map[[2]string][]float64)
	)
	for _, m := range table.Rows {
		if !m.FoldChange.Valid {
			continue
		}
		key := [2]string{m.Target, m.CellType}
		values[key] = append(values[key], m.FoldChange.Float64)
	}

	var summaries []Summary
	for _, target := range PlotTargets(table, cfg) {
		for _, cellType := range cellTypes {
			v, ok := values[[2]string{target, cellType}]
			if !ok {
				continue
			}
			s := Summary{
				Target:   target,
				CellType: cellType,
				N:        len(v),
				Mean:     null.FloatFrom(stat.Mean(v, nil)),
				Values:   v,
			}
			if len(v) > 1 {
				if sd, err := stats.StandardDeviationSample(v); err == nil {
					s.SD = null.FloatFrom(sd)
				}
			}
			summaries = append(summaries, s)
		}
	}
	return summaries
}
