package ct

import (
	"log/slog"

	"github.com/samber/lo"
)

// Stats counts the rows each stage saw.
type Stats struct {
	Loaded           int
	Undetermined     int
	Outliers         int
	Kept             int
	MissingReference int
	MissingControl   int
}

var StatsTitle = []string{
	"Loaded",
	"Undetermined",
	"Outliers",
	"Kept",
	"MissingReference",
	"MissingControl",
}

func (s Stats) Row() []any {
	return []any{
		s.Loaded,
		s.Undetermined,
		s.Outliers,
		s.Kept,
		s.MissingReference,
		s.MissingControl,
	}
}

type Result struct {
	Table *Table
	Stats Stats
}

// Run classifies, filters and normalizes a copy of table. The input table is
// left untouched.
func Run(cfg Config, table *Table) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		work  = table.Clone()
		stats = Stats{Loaded: len(work.Rows)}
	)

	cfg.Rules.Apply(work)
	slog.Info("CellType", "cellTypes", work.CellTypes())

	determined := lo.Filter(work.Rows, func(m *Measurement, _ int) bool {
		return !m.Undetermined
	})
	stats.Undetermined = stats.Loaded - len(determined)

	kept := FilterOutliers(determined, cfg.Multiplier, cfg.Fence)
	stats.Outliers = len(determined) - len(kept)
	stats.Kept = len(kept)
	slog.Info("Outlier", "fence", cfg.Fence, "multiplier", cfg.Multiplier, "undetermined", stats.Undetermined, "outliers", stats.Outliers, "kept", stats.Kept)

	Normalize(kept, cfg.References)
	Relative(kept, cfg.Control)

	stats.MissingReference = lo.CountBy(kept, func(m *Measurement) bool { return !m.GeoMean.Valid })
	stats.MissingControl = lo.CountBy(kept, func(m *Measurement) bool { return !m.DCtControl.Valid })

	work.Rows = kept
	return &Result{Table: work, Stats: stats}, nil
}
