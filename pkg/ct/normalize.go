package ct

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/guregu/null.v3"
)

type scopeKey struct {
	cellType   string
	sampleName string
}

// referenceMeans maps (cell type, sample) to the mean CT of one reference
// target.
func referenceMeans(rows []*Measurement, reference string) map[scopeKey]float64 {
	var values = make(map[scopeKey][]float64)
	for _, m := range rows {
		if m.Target != reference {
			continue
		}
		key := scopeKey{m.CellType, m.SampleName}
		values[key] = append(values[key], m.CT)
	}

	var means = make(map[scopeKey]float64, len(values))
	for key, v := range values {
		means[key] = stat.Mean(v, nil)
	}
	return means
}

// GeoMean is the geometric mean of the reference averages. A missing or
// non-positive input makes the result missing, reason names the first
// offending reference.
func GeoMean(refs []null.Float) (geomean null.Float, reason string) {
	var values = make([]float64, 0, len(refs))
	for _, r := range refs {
		if !r.Valid {
			return null.Float{}, "missing"
		}
		if r.Float64 <= 0 {
			return null.Float{}, "non-positive"
		}
		values = append(values, r.Float64)
	}
	if len(values) == 0 {
		return null.Float{}, "missing"
	}
	return null.FloatFrom(stat.GeometricMean(values, nil)), ""
}

// Normalize sets Reference, GeoMean and DCt on every row. Reference averages
// are taken within the row's cell type and sample.
func Normalize(rows []*Measurement, references []string) {
	var means = make([]map[scopeKey]float64, len(references))
	for i, reference := range references {
		means[i] = referenceMeans(rows, reference)
	}

	var missing int
	for _, m := range rows {
		key := scopeKey{m.CellType, m.SampleName}
		m.Reference = make(map[string]null.Float, len(references))
		var refs = make([]null.Float, len(references))
		for i, reference := range references {
			if v, ok := means[i][key]; ok {
				refs[i] = null.FloatFrom(v)
				if v <= 0 {
					m.flag("NonPositiveReference:" + reference)
				}
			} else {
				m.flag("MissingReferenceData:" + reference)
			}
			m.Reference[reference] = refs[i]
		}

		m.GeoMean, _ = GeoMean(refs)
		m.DCt = sub(null.FloatFrom(m.CT), m.GeoMean)
		if !m.GeoMean.Valid {
			missing++
		}
	}
	if missing > 0 {
		slog.Warn("MissingReferenceData", "rows", missing, "references", references)
	}
}
