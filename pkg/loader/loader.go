package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"qPCR/pkg/ct"
	"strings"

	"github.com/samber/lo"
)

var (
	ErrHeaderNotFound    = errors.New("header not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// column names of the instrument export
var (
	WellColumn   = "Well"
	SampleColumn = "Sample Name"
	TargetColumn = "Target Name"
	CTColumns    = []string{"CT", "Cт", "Ct", "Cq"}
)

type Options struct {
	// sheet of a workbook, empty means the first sheet
	Sheet string
	// 1-based row of the column names
	HeaderRow int
	// data rows to read after the header, 0 reads up to the first empty row
	MaxRows int
	// delimiter of text input, 0 detects it
	Delimiter rune
	// Well -> reason of wells dropped at load
	Omit map[string]string
}

// Load reads the measurement rectangle of an instrument export.
func Load(path string, opts Options) (*ct.Table, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = ReadXlsx(path, opts.Sheet)
	case ".xls":
		rows, err = ReadXls(path, opts.Sheet)
	case ".csv", ".tsv", ".txt":
		rows, err = ReadDelimited(path, opts.Delimiter)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}

	table, err := Parse(rows, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Info("Load", "path", path, "rows", len(table.Rows), "targets", table.Targets())
	return table, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isEmpty(row []string) bool {
	return lo.EveryBy(row, func(v string) bool { return strings.TrimSpace(v) == "" })
}

// Parse cuts the table out of a sheet: column names at opts.HeaderRow, data
// below it. A CT that is neither numeric nor Undetermined fails the load.
func Parse(rows [][]string, opts Options) (*ct.Table, error) {
	var headerRow = opts.HeaderRow
	if headerRow < 1 {
		headerRow = 1
	}
	if headerRow > len(rows) {
		return nil, fmt.Errorf("%w: sheet has %d rows, header row %d", ErrHeaderNotFound, len(rows), headerRow)
	}

	var (
		header = lo.Map(rows[headerRow-1], func(v string, _ int) string { return strings.TrimSpace(v) })
		index  = make(map[string]int)
	)
	for i, name := range header {
		if _, ok := index[name]; !ok && name != "" {
			index[name] = i
		}
	}
	for len(header) > 0 && header[len(header)-1] == "" {
		header = header[:len(header)-1]
	}

	targetCol, ok := index[TargetColumn]
	if !ok {
		return nil, fmt.Errorf("%w: column %q in row %d", ErrHeaderNotFound, TargetColumn, headerRow)
	}
	sampleCol, ok := index[SampleColumn]
	if !ok {
		return nil, fmt.Errorf("%w: column %q in row %d", ErrHeaderNotFound, SampleColumn, headerRow)
	}
	ctName, ok := lo.Find(CTColumns, func(name string) bool { _, ok := index[name]; return ok })
	if !ok {
		return nil, fmt.Errorf("%w: column %v in row %d", ErrHeaderNotFound, CTColumns, headerRow)
	}
	ctCol := index[ctName]
	wellCol, hasWell := index[WellColumn]
	if !hasWell {
		wellCol = -1
	}

	var table = &ct.Table{Header: header}
	for i, row := range rows[headerRow:] {
		if opts.MaxRows > 0 && i >= opts.MaxRows {
			break
		}
		if opts.MaxRows == 0 && isEmpty(row) {
			break
		}
		sheetRow := headerRow + i + 1

		well := cell(row, wellCol)
		if reason, ok := opts.Omit[well]; ok && well != "" {
			slog.Info("Omit", "well", well, "reason", reason)
			continue
		}

		v, undetermined, err := ct.ParseCT(cell(row, ctCol))
		if err != nil {
			return nil, fmt.Errorf("row %d well %q: %w", sheetRow, well, err)
		}

		var fields = make(map[string]string, len(header))
		for j, name := range header {
			if name != "" {
				fields[name] = cell(row, j)
			}
		}
		table.Rows = append(table.Rows, &ct.Measurement{
			Well:         well,
			Target:       cell(row, targetCol),
			SampleName:   cell(row, sampleCol),
			CT:           v,
			Undetermined: undetermined,
			Fields:       fields,
		})
	}
	return table, nil
}
