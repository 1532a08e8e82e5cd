package ct

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/guregu/null.v3"
)

// Undetermined is the CT literal written by the instrument when no
// amplification crossed the threshold.
const Undetermined = "Undetermined"

var (
	ErrMalformedMeasurement = errors.New("malformed measurement")
	ErrInvalidConfig        = errors.New("invalid config")
)

// Measurement is one well read.
type Measurement struct {
	Well       string
	Target     string
	SampleName string
	CellType   string

	CT           float64
	Undetermined bool

	// original columns, keyed by header
	Fields map[string]string

	Q1        null.Float
	Q3        null.Float
	IQR       null.Float
	OutlierIf null.Float

	Reference  map[string]null.Float
	GeoMean    null.Float
	DCt        null.Float
	DCtControl null.Float
	DDCt       null.Float
	FoldChange null.Float

	Missing []string
}

// ParseCT parses a raw CT cell. Undetermined reads are reported through the
// second return value; anything that is neither a finite number nor the
// sentinel is an ErrMalformedMeasurement.
func ParseCT(raw string) (float64, bool, error) {
	v := strings.TrimSpace(raw)
	if strings.EqualFold(v, Undetermined) {
		return 0, true, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("%w: CT %q", ErrMalformedMeasurement, raw)
	}
	return f, false, nil
}

func (m *Measurement) clone() *Measurement {
	var c = *m
	c.Fields = make(map[string]string, len(m.Fields))
	for k, v := range m.Fields {
		c.Fields[k] = v
	}
	if m.Reference != nil {
		c.Reference = make(map[string]null.Float, len(m.Reference))
		for k, v := range m.Reference {
			c.Reference[k] = v
		}
	}
	c.Missing = append([]string(nil), m.Missing...)
	return &c
}

func (m *Measurement) flag(reason string) {
	m.Missing = append(m.Missing, reason)
}

// Table keeps the original column order next to the rows.
type Table struct {
	Header []string
	Rows   []*Measurement
}

func (t *Table) Clone() *Table {
	var c = &Table{
		Header: append([]string(nil), t.Header...),
		Rows:   make([]*Measurement, len(t.Rows)),
	}
	for i, m := range t.Rows {
		c.Rows[i] = m.clone()
	}
	return c
}

// Targets returns the distinct target names in first-appearance order.
func (t *Table) Targets() []string {
	var targets []string
	var seen = make(map[string]bool)
	for _, m := range t.Rows {
		if !seen[m.Target] {
			seen[m.Target] = true
			targets = append(targets, m.Target)
		}
	}
	return targets
}

// CellTypes returns the distinct cell populations in first-appearance order.
func (t *Table) CellTypes() []string {
	var cellTypes []string
	var seen = make(map[string]bool)
	for _, m := range t.Rows {
		if !seen[m.CellType] {
			seen[m.CellType] = true
			cellTypes = append(cellTypes, m.CellType)
		}
	}
	return cellTypes
}

// sub keeps missing values missing.
func sub(a, b null.Float) null.Float {
	if !a.Valid || !b.Valid {
		return null.Float{}
	}
	return null.FloatFrom(a.Float64 - b.Float64)
}
