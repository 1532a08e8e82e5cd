package export

import (
	_ "image/png"
	"log"
	"qPCR/pkg/ct"

	"github.com/xuri/excelize/v2"
	"gopkg.in/guregu/null.v3"
)

func nullCell(n null.Float) any {
	if !n.Valid {
		return nil
	}
	return n.Float64
}

func writeSheet(xlsx *excelize.File, sheet string, title []string, lines [][]any) error {
	if _, err := xlsx.NewSheet(sheet); err != nil {
		return err
	}
	if err := xlsx.SetSheetRow(sheet, "A1", &title); err != nil {
		return err
	}
	for i, line := range lines {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := xlsx.SetSheetRow(sheet, cellName, &line); err != nil {
			return err
		}
	}
	return nil
}

func resultLines(table *ct.Table, references []string) [][]any {
	var lines = make([][]any, 0, len(table.Rows))
	for _, m := range table.Rows {
		var line []any
		for _, name := range table.Header {
			line = append(line, m.Fields[name])
		}
		line = append(line, m.CellType)
		for _, v := range derived(m, references) {
			line = append(line, nullCell(v))
		}
		lines = append(lines, line)
	}
	return lines
}

func summaryLines(summaries []ct.Summary) [][]any {
	var lines = make([][]any, 0, len(summaries))
	for _, s := range summaries {
		lines = append(lines, []any{s.Target, s.CellType, s.N, nullCell(s.Mean), nullCell(s.SD)})
	}
	return lines
}

// WriteWorkbook saves the result table, the summary, the run counts and, when
// plotPath is set, the plot image as sheets of one workbook.
func WriteWorkbook(path string, result *ct.Result, summaries []ct.Summary, references []string, plotPath string) error {
	xlsx := excelize.NewFile()
	defer xlsx.Close()

	var table = result.Table
	if err := writeSheet(xlsx, ResultSheet, Columns(table.Header, references), resultLines(table, references)); err != nil {
		return err
	}
	if err := writeSheet(xlsx, SummarySheet, SummaryTitle, summaryLines(summaries)); err != nil {
		return err
	}
	if err := writeSheet(xlsx, StatsSheet, ct.StatsTitle, [][]any{result.Stats.Row()}); err != nil {
		return err
	}
	if plotPath != "" {
		if _, err := xlsx.NewSheet(PlotSheet); err != nil {
			return err
		}
		if err := xlsx.AddPicture(PlotSheet, "A1", plotPath, nil); err != nil {
			return err
		}
	}
	if err := xlsx.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	xlsx.SetActiveSheet(0)

	log.Printf("SaveAs(%s)", path)
	return xlsx.SaveAs(path)
}
