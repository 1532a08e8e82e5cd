package ct

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/guregu/null.v3"
)

// FoldChange is 2^-ddCt.
func FoldChange(ddct null.Float) null.Float {
	if !ddct.Valid {
		return null.Float{}
	}
	return null.FloatFrom(math.Pow(2, -ddct.Float64))
}

// controlMeans maps each target to the mean dCt of its control rows. Rows
// without a dCt are skipped.
func controlMeans(rows []*Measurement, control string) map[string]float64 {
	var values = make(map[string][]float64)
	for _, m := range rows {
		if m.CellType != control || !m.DCt.Valid {
			continue
		}
		values[m.Target] = append(values[m.Target], m.DCt.Float64)
	}

	var means = make(map[string]float64, len(values))
	for target, v := range values {
		means[target] = stat.Mean(v, nil)
	}
	return means
}

// Relative sets DCtControl, DDCt and FoldChange against the control cell
// type.
func Relative(rows []*Measurement, control string) {
	var means = controlMeans(rows, control)

	var missing = make(map[string]int)
	for _, m := range rows {
		if v, ok := means[m.Target]; ok {
			m.DCtControl = null.FloatFrom(v)
		} else {
			m.DCtControl = null.Float{}
			m.flag("MissingControlData")
			missing[m.Target]++
		}
		m.DDCt = sub(m.DCt, m.DCtControl)
		m.FoldChange = FoldChange(m.DDCt)
	}
	for target, n := range missing {
		slog.Warn("MissingControlData", "target", target, "control", control, "rows", n)
	}
}
