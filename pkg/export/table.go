package export

import (
	"encoding/csv"
	"io"
	"qPCR/pkg/ct"
	"strconv"

	"github.com/gocarina/gocsv"
	"gopkg.in/guregu/null.v3"
)

func NullFloatFormatter(n null.Float) string {
	if !n.Valid {
		return ""
	}

	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

// Columns is the original header followed by the derived columns.
func Columns(header, references []string) []string {
	var columns = append([]string(nil), header...)
	columns = append(columns, CellTypeTitle)
	columns = append(columns, OutlierTitle...)
	columns = append(columns, references...)
	columns = append(columns, RelativeTitle...)
	return columns
}

func derived(m *ct.Measurement, references []string) []null.Float {
	var values = []null.Float{m.Q1, m.Q3, m.IQR, m.OutlierIf}
	for _, reference := range references {
		values = append(values, m.Reference[reference])
	}
	return append(values, m.GeoMean, m.DCt, m.DCtControl, m.DDCt, m.FoldChange)
}

// Lines renders every row as text, missing values as empty cells.
func Lines(table *ct.Table, references []string) [][]string {
	var lines = make([][]string, 0, len(table.Rows))
	for _, m := range table.Rows {
		var line = make([]string, 0, len(table.Header)+len(references)+10)
		for _, name := range table.Header {
			line = append(line, m.Fields[name])
		}
		line = append(line, m.CellType)
		for _, v := range derived(m, references) {
			line = append(line, NullFloatFormatter(v))
		}
		lines = append(lines, line)
	}
	return lines
}

// WriteTable writes the result table as comma separated text.
func WriteTable(w io.Writer, table *ct.Table, references []string) error {
	out := csv.NewWriter(w)
	if err := out.Write(Columns(table.Header, references)); err != nil {
		return err
	}
	if err := out.WriteAll(Lines(table, references)); err != nil {
		return err
	}
	out.Flush()
	return out.Error()
}

type SummaryRow struct {
	Target   string `csv:"Target Name"`
	CellType string `csv:"celltype"`
	N        int    `csv:"N"`
	Mean     string `csv:"Mean"`
	SD       string `csv:"SD"`
}

func SummaryRows(summaries []ct.Summary) []*SummaryRow {
	var rows = make([]*SummaryRow, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, &SummaryRow{
			Target:   s.Target,
			CellType: s.CellType,
			N:        s.N,
			Mean:     NullFloatFormatter(s.Mean),
			SD:       NullFloatFormatter(s.SD),
		})
	}
	return rows
}

// WriteSummary writes the per target and cell type fold change summary.
func WriteSummary(w io.Writer, summaries []ct.Summary) error {
	rows := SummaryRows(summaries)
	return gocsv.Marshal(&rows, w)
}
