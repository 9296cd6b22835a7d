// Package xlsx imports and exports string tables as spreadsheets.
package xlsx

import (
	"errors"
	"fmt"
	"io"

	"github.com/artpar/gridpatch/domain/table"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet written by Export when none is named.
const DefaultSheet = "Sheet1"

// ErrNoSheets is returned when a workbook has no worksheets.
var ErrNoSheets = errors.New("workbook has no sheets")

// Export writes the grid to w as a workbook with one sheet, one sheet row
// per table row. Only string tables can be exported.
func Export(w io.Writer, g table.Grid, shape table.Shape, sheet string) error {
	if shape.CellType.Structured {
		return fmt.Errorf("export: %w: cells are %q objects", table.ErrWrongCellType, shape.CellType.Name)
	}
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return fmt.Errorf("name sheet %q: %w", sheet, err)
		}
	}

	for i, texts := range g.Matrix() {
		values := make([]any, len(texts))
		for j, text := range texts {
			values[j] = text
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Import reads a sheet of a workbook as rows of cell texts. An empty sheet
// name selects the first sheet. Rows may be ragged; trailing empty rows
// are dropped.
func Import(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoSheets
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	for len(rows) > 0 && isBlank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
