package ct

import (
	"log/slog"
	"math"
	"sort"

	"gopkg.in/guregu/null.v3"
)

// Fence selects how CT values sitting exactly on the outlier bound are
// treated.
type Fence int

const (
	// FenceStrict drops values on the bound, so a single-replicate group
	// (IQR 0) never survives.
	FenceStrict Fence = iota
	// FenceInclusive is the conventional Tukey fence.
	FenceInclusive
)

func (f Fence) String() string {
	switch f {
	case FenceStrict:
		return "strict"
	case FenceInclusive:
		return "inclusive"
	}
	return "unknown"
}

// Quantile is the linear interpolation quantile at position p*(n-1) of an
// ascending slice.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := p * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	fraction := pos - float64(lower)
	return sorted[lower] + fraction*(sorted[upper]-sorted[lower])
}

type groupKey struct {
	target     string
	cellType   string
	sampleName string
}

func keyOf(m *Measurement) groupKey {
	return groupKey{m.Target, m.CellType, m.SampleName}
}

type quartiles struct {
	q1, q3 float64
}

func groupQuartiles(rows []*Measurement) map[groupKey]quartiles {
	var values = make(map[groupKey][]float64)
	for _, m := range rows {
		if m.Undetermined {
			continue
		}
		key := keyOf(m)
		values[key] = append(values[key], m.CT)
	}

	var out = make(map[groupKey]quartiles, len(values))
	for key, v := range values {
		sort.Float64s(v)
		out[key] = quartiles{Quantile(v, 0.25), Quantile(v, 0.75)}
	}
	return out
}

// FilterOutliers attaches Q1, Q3, IQR and OutlierIf to every row and returns
// the rows inside Q1-OutlierIf .. Q3+OutlierIf. The quartiles come from the
// same population they filter.
func FilterOutliers(rows []*Measurement, multiplier float64, fence Fence) (kept []*Measurement) {
	var groups = groupQuartiles(rows)

	for _, m := range rows {
		if m.Undetermined {
			continue
		}
		q, ok := groups[keyOf(m)]
		if !ok {
			continue
		}
		iqr := q.q3 - q.q1
		bound := iqr * multiplier

		m.Q1 = null.FloatFrom(q.q1)
		m.Q3 = null.FloatFrom(q.q3)
		m.IQR = null.FloatFrom(iqr)
		m.OutlierIf = null.FloatFrom(bound)

		if inside(m.CT, q.q1-bound, q.q3+bound, fence) {
			kept = append(kept, m)
		} else {
			slog.Debug("Outlier", "well", m.Well, "target", m.Target, "sample", m.SampleName, "ct", m.CT, "q1", q.q1, "q3", q.q3, "bound", bound)
		}
	}
	return
}

func inside(v, low, high float64, fence Fence) bool {
	if fence == FenceInclusive {
		return v >= low && v <= high
	}
	return v > low && v < high
}
