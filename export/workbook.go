// Package export renders transactions into xlsx workbooks: a key/value sheet for the
// header and a table sheet for the lines.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/xuri/excelize/v2"
)

const (
	HeaderSheet = "Header"
	LinesSheet  = "Lines"
)

type WorkbookExporter struct{}

func NewWorkbookExporter() *WorkbookExporter {
	return &WorkbookExporter{}
}

// Export writes header and lines (any JSON-encodable values) into a workbook and
// returns the xlsx bytes.
func (WorkbookExporter) Export(kind string, header any, lines any) ([]byte, error) {
	var fields map[string]any
	if err := remarshal(header, &fields); err != nil {
		return nil, fmt.Errorf("export %s header: %w", kind, err)
	}
	var rows []map[string]any
	if err := remarshal(lines, &rows); err != nil {
		return nil, fmt.Errorf("export %s lines: %w", kind, err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", HeaderSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(LinesSheet); err != nil {
		return nil, err
	}

	if err := setRow(f, HeaderSheet, 1, []any{"kind", kind}); err != nil {
		return nil, err
	}
	for i, key := range sortedKeys(fields) {
		if err := setRow(f, HeaderSheet, i+2, []any{key, cellValue(fields[key])}); err != nil {
			return nil, err
		}
	}

	if len(rows) > 0 {
		columns := sortedKeys(rows[0])
		titles := make([]any, len(columns))
		for i, c := range columns {
			titles[i] = c
		}
		if err := setRow(f, LinesSheet, 1, titles); err != nil {
			return nil, err
		}
		for r, row := range rows {
			values := make([]any, len(columns))
			for i, c := range columns {
				values[i] = cellValue(row[c])
			}
			if err := setRow(f, LinesSheet, r+2, values); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func remarshal(in any, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// cellValue keeps scalars as they are and flattens nested values to JSON text.
func cellValue(v any) any {
	switch v.(type) {
	case nil:
		return ""
	case map[string]any, []any:
		data, _ := json.Marshal(v)
		return string(data)
	default:
		return v
	}
}
