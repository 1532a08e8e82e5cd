package ct

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

type well struct {
	target string
	sample string
	ct     string
}

func newTable(t *testing.T, wells []well) *Table {
	t.Helper()
	var table = &Table{Header: []string{"Well", "Sample Name", "Target Name", "CT"}}
	for i, w := range wells {
		v, undetermined, err := ParseCT(w.ct)
		if err != nil {
			t.Fatal(err)
		}
		id := fmt.Sprintf("W%d", i+1)
		table.Rows = append(table.Rows, &Measurement{
			Well:         id,
			Target:       w.target,
			SampleName:   w.sample,
			CT:           v,
			Undetermined: undetermined,
			Fields: map[string]string{
				"Well":        id,
				"Sample Name": w.sample,
				"Target Name": w.target,
				"CT":          w.ct,
			},
		})
	}
	return table
}

// two replicates of A per cell type, three of each reference
var plate = []well{
	{"A", "IPSC_1", "20"},
	{"A", "IPSC_1", "22"},
	{"EIF4A2", "IPSC_1", "17.5"},
	{"EIF4A2", "IPSC_1", "18"},
	{"EIF4A2", "IPSC_1", "18.5"},
	{"UBC", "IPSC_1", "17.5"},
	{"UBC", "IPSC_1", "18"},
	{"UBC", "IPSC_1", "18.5"},
	{"A", "MSN_1", "24"},
	{"A", "MSN_1", "26"},
	{"EIF4A2", "MSN_1", "17.5"},
	{"EIF4A2", "MSN_1", "18"},
	{"EIF4A2", "MSN_1", "18.5"},
	{"UBC", "MSN_1", "17.5"},
	{"UBC", "MSN_1", "18"},
	{"UBC", "MSN_1", "18.5"},
	{"B", "MSN_1", "30"},
	{"B", "MSN_1", "30.5"},
	{"A", "IPSC_2", "20"},
	{"A", "IPSC_2", "21"},
	{"A", "IPSC_1", "Undetermined"},
	{"UBC", "MSN_1", "35"},
}

func rowsOf(table *Table, target, cellType string) []*Measurement {
	var rows []*Measurement
	for _, m := range table.Rows {
		if m.Target == target && m.CellType == cellType {
			rows = append(rows, m)
		}
	}
	return rows
}

func TestRunEndToEnd(t *testing.T) {
	var (
		table = newTable(t, plate)
		cfg   = DefaultConfig()
	)
	result, err := Run(cfg, table)
	if err != nil {
		t.Fatal(err)
	}

	want := Stats{Loaded: 22, Undetermined: 1, Outliers: 1, Kept: 20, MissingReference: 2, MissingControl: 2}
	if result.Stats != want {
		t.Errorf("Stats = %+v, want %+v", result.Stats, want)
	}

	for _, m := range result.Table.Rows {
		if m.Undetermined {
			t.Errorf("undetermined row %s survived", m.Well)
		}
		if m.CT == 35 {
			t.Errorf("outlier %s survived", m.Well)
		}
	}

	a := rowsOf(result.Table, "A", "iPSC")
	if len(a) != 4 {
		t.Fatalf("%d iPSC A rows, want 4", len(a))
	}
	for _, m := range a[:2] {
		approx(t, "geomean", m.GeoMean, 18)
		approx(t, "EIF4A2", m.Reference["EIF4A2"], 18)
		approx(t, "UBC", m.Reference["UBC"], 18)
	}
	approx(t, "dct", a[0].DCt, 2)
	approx(t, "dct", a[1].DCt, 4)

	// the control mean is the mean dCt of the control rows of the target
	con := (a[0].DCt.Float64 + a[1].DCt.Float64) / 2
	for _, m := range a {
		approx(t, "dct.con", m.DCtControl, con)
	}
	approx(t, "ddct", a[0].DDCt, -1)
	approx(t, "ddct", a[1].DDCt, 1)
	approx(t, "fold", a[0].FoldChange, 2)
	approx(t, "fold", a[1].FoldChange, 0.5)
	if mean := (a[0].DDCt.Float64 + a[1].DDCt.Float64) / 2; mean > tolerance || mean < -tolerance {
		t.Errorf("mean control ddct = %v, want 0", mean)
	}

	// IPSC_2 has no references
	for _, m := range a[2:] {
		if m.GeoMean.Valid || m.DCt.Valid || m.FoldChange.Valid {
			t.Errorf("%s should be missing downstream of geomean", m.Well)
		}
		if !m.DCtControl.Valid {
			t.Errorf("%s lost its control mean", m.Well)
		}
	}

	msn := rowsOf(result.Table, "A", "MSN")
	approx(t, "fold", msn[0].FoldChange, 0.125)
	approx(t, "fold", msn[1].FoldChange, 0.03125)

	for _, m := range rowsOf(result.Table, "B", "MSN") {
		if m.DCtControl.Valid || m.FoldChange.Valid {
			t.Errorf("B has no control rows but %s got %v", m.Well, m.FoldChange)
		}
	}
}

func TestRunLeavesInputUntouched(t *testing.T) {
	var table = newTable(t, plate)
	if _, err := Run(DefaultConfig(), table); err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != len(plate) {
		t.Errorf("input rows = %d, want %d", len(table.Rows), len(plate))
	}
	for _, m := range table.Rows {
		if m.CellType != "" || m.Q1.Valid || m.DCt.Valid || len(m.Missing) > 0 {
			t.Fatalf("input row %s was modified: %+v", m.Well, m)
		}
	}
}

func TestRunControlOnlyChangesRelativeStage(t *testing.T) {
	var table = newTable(t, plate)

	ipsc, err := Run(DefaultConfig(), table)
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Control = "MSN"
	msn, err := Run(cfg, table)
	if err != nil {
		t.Fatal(err)
	}

	byWell := make(map[string]*Measurement)
	for _, m := range msn.Table.Rows {
		byWell[m.Well] = m
	}
	for _, before := range ipsc.Table.Rows {
		after, ok := byWell[before.Well]
		if !ok {
			t.Fatalf("%s missing after control change", before.Well)
		}
		if before.Q1 != after.Q1 || before.Q3 != after.Q3 || before.GeoMean != after.GeoMean || before.DCt != after.DCt {
			t.Errorf("%s: control changed an upstream column", before.Well)
		}
		if before.Target == "A" && before.FoldChange.Valid && before.FoldChange == after.FoldChange {
			t.Errorf("%s: fold change unchanged by control", before.Well)
		}
	}

	a := rowsOf(msn.Table, "A", "iPSC")
	approx(t, "fold", a[0].FoldChange, 32)
	approx(t, "fold", a[1].FoldChange, 8)

	// B now has control rows
	for _, m := range rowsOf(msn.Table, "B", "MSN") {
		if !m.FoldChange.Valid {
			t.Errorf("%s: B fold change missing with MSN control", m.Well)
		}
	}
}

// one reading per reference: IQR 0 leaves nothing inside a strict fence
var singleReference = []well{
	{"A", "IPSC_1", "20"},
	{"A", "IPSC_1", "22"},
	{"EIF4A2", "IPSC_1", "18"},
	{"UBC", "IPSC_1", "18"},
}

func TestRunSingleReference(t *testing.T) {
	result, err := Run(DefaultConfig(), newTable(t, singleReference))
	if err != nil {
		t.Fatal(err)
	}

	want := Stats{Loaded: 4, Outliers: 2, Kept: 2, MissingReference: 2, MissingControl: 2}
	if result.Stats != want {
		t.Errorf("Stats = %+v, want %+v", result.Stats, want)
	}
	for _, m := range result.Table.Rows {
		if m.Target != "A" {
			t.Errorf("single %s reading survived", m.Target)
			continue
		}
		if m.GeoMean.Valid || m.DCt.Valid || m.DCtControl.Valid || m.DDCt.Valid || m.FoldChange.Valid {
			t.Errorf("%s: %+v, want missing from geomean on", m.Well, m)
		}
		for _, reason := range []string{"MissingReferenceData:EIF4A2", "MissingReferenceData:UBC", "MissingControlData"} {
			if !slices.Contains(m.Missing, reason) {
				t.Errorf("%s: Missing = %v, want %s", m.Well, m.Missing, reason)
			}
		}
	}
}

func TestRunSingleReferenceInclusive(t *testing.T) {
	var cfg = DefaultConfig()
	cfg.Fence = FenceInclusive
	result, err := Run(cfg, newTable(t, singleReference))
	if err != nil {
		t.Fatal(err)
	}

	a := rowsOf(result.Table, "A", "iPSC")
	if len(a) != 2 {
		t.Fatalf("%d A rows, want 2", len(a))
	}
	for _, m := range a {
		approx(t, "geomean", m.GeoMean, 18)
		approx(t, "dct.con", m.DCtControl, 3)
	}
	approx(t, "ddct", a[0].DDCt, -1)
	approx(t, "ddct", a[1].DDCt, 1)
	approx(t, "fold", a[0].FoldChange, 2)
	approx(t, "fold", a[1].FoldChange, 0.5)
}

func TestRunInvalidConfig(t *testing.T) {
	var table = newTable(t, plate)
	var tests = []struct {
		name   string
		modify func(*Config)
	}{
		{"no control", func(c *Config) { c.Control = "" }},
		{"no references", func(c *Config) { c.References = nil }},
		{"duplicate reference", func(c *Config) { c.References = []string{"UBC", "UBC"} }},
		{"zero multiplier", func(c *Config) { c.Multiplier = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if _, err := Run(cfg, table); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestParseCT(t *testing.T) {
	var tests = []struct {
		raw          string
		want         float64
		undetermined bool
		malformed    bool
	}{
		{"21.5", 21.5, false, false},
		{" 30 ", 30, false, false},
		{"Undetermined", 0, true, false},
		{"undetermined", 0, true, false},
		{"", 0, false, true},
		{"N/A", 0, false, true},
		{"NaN", 0, false, true},
		{"Inf", 0, false, true},
		{"-infinity", 0, false, true},
	}
	for _, tt := range tests {
		v, undetermined, err := ParseCT(tt.raw)
		if tt.malformed {
			if !errors.Is(err, ErrMalformedMeasurement) {
				t.Errorf("ParseCT(%q) err = %v, want ErrMalformedMeasurement", tt.raw, err)
			}
			continue
		}
		if err != nil || v != tt.want || undetermined != tt.undetermined {
			t.Errorf("ParseCT(%q) = %v, %v, %v", tt.raw, v, undetermined, err)
		}
	}
}
