package loader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/csimplestring/go-csv/detector"
	"github.com/extrame/xls"
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

// ReadXlsx returns the raw cell values of a sheet.
func ReadXlsx(path, sheet string) ([][]string, error) {
	xlsx, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer xlsx.Close()

	if sheet == "" {
		sheet = xlsx.GetSheetName(0)
	}
	return xlsx.GetRows(sheet, excelize.Options{RawCellValue: true})
}

// ReadXls reads a legacy BIFF workbook.
func ReadXls(path, sheet string) ([][]string, error) {
	workbook, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, err
	}

	var ws *xls.WorkSheet
	for i := 0; i < workbook.NumSheets(); i++ {
		s := workbook.GetSheet(i)
		if s != nil && (sheet == "" || s.Name == sheet) {
			ws = s
			break
		}
	}
	if ws == nil {
		return nil, fmt.Errorf("sheet %q not found in %s", sheet, path)
	}

	var rows [][]string
	for rowID := 0; rowID <= int(ws.MaxRow); rowID++ {
		row := ws.Row(rowID)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		var values []string
		for colID := 0; colID <= row.LastCol(); colID++ {
			values = append(values, row.Col(colID))
		}
		for len(values) > 0 && strings.TrimSpace(values[len(values)-1]) == "" {
			values = values[:len(values)-1]
		}
		rows = append(rows, values)
	}
	return rows, nil
}

// DetectDelimiter guesses the separator of an instrument text export. Comma
// unless the detector finds a better candidate.
func DetectDelimiter(data []byte) rune {
	candidate := lo.FirstOr(lo.Compact(detector.New().DetectDelimiter(bytes.NewReader(data), '"')), ",")
	return []rune(candidate)[0]
}

// ReadDelimited reads delimited text line by line, keeping blank lines so row
// numbers match the file. A quoted field may not span lines.
func ReadDelimited(path string, delimiter rune) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if delimiter == 0 {
		delimiter = DetectDelimiter(data)
	}

	var rows [][]string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			rows = append(rows, nil)
			continue
		}
		r := csv.NewReader(strings.NewReader(line))
		r.Comma = delimiter
		r.LazyQuotes = true
		r.FieldsPerRecord = -1
		record, err := r.Read()
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, len(rows)+1, err)
		}
		rows = append(rows, record)
	}
	return rows, scanner.Err()
}
