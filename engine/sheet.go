package engine

import (
	"context"

	"github.com/prftrack/prf-app-excel/workbook"
)

// sheet is the used range of a worksheet with its located header and column mapping.
type sheet struct {
	name     string
	origin   workbook.Origin
	values   [][]any
	rowCount int
	header   int
	columns  workbook.Columns
}

func (e *Engine) readSheet(ctx context.Context, s *session, ref workbookRef, name string) (*sheet, error) {
	r, err := s.client.UsedRange(ctx, ref.DriveID, ref.ItemID, name)
	if err != nil {
		return nil, &ResolutionError{Op: "read worksheet", Sheet: name, Err: err}
	}

	origin, err := workbook.ParseUsedRangeStart(r.Address)
	if err != nil {
		return nil, &ResolutionError{Op: "read worksheet", Sheet: name, Err: err}
	}

	v := sheet{
		name:     name,
		origin:   origin,
		values:   r.Values,
		rowCount: r.RowCount,
		columns:  workbook.Columns{},
	}

	if v.rowCount < len(v.values) {
		v.rowCount = len(v.values)
	}

	if !v.empty() {
		v.header = workbook.LocateHeader(v.values)
		v.columns = workbook.ColumnMap(v.values[v.header])
	}

	return &v, nil
}

func (v *sheet) empty() bool {
	for _, row := range v.values {
		for _, cell := range row {
			if !workbook.IsBlank(cell) {
				return false
			}
		}
	}

	return true
}

func (v *sheet) keyColumn() (int, bool) {
	ix, ok := v.columns[workbook.PRFNo]

	return ix, ok
}

// find returns the index (within values) of the row holding the PRF number.
func (v *sheet) find(key string) (int, bool) {
	column, ok := v.keyColumn()
	if !ok {
		return -1, false
	}

	return workbook.FindRow(v.values, v.header, column, key)
}

// width is the number of columns up to the last non-blank header cell.
func (v *sheet) width() int {
	if v.header >= len(v.values) {
		return 0
	}

	header := v.values[v.header]
	for i := len(header) - 1; i >= 0; i-- {
		if !workbook.IsBlank(header[i]) {
			return i + 1
		}
	}

	return 0
}

// rowNumber converts an index within values to a worksheet row number.
func (v *sheet) rowNumber(index int) int {
	return v.origin.Row + index
}

// nextRow is the worksheet row number immediately after the used range.
func (v *sheet) nextRow() int {
	return v.origin.Row + v.rowCount
}

func (v *sheet) headerRow() []string {
	row := []string{}
	if v.header < len(v.values) {
		for _, cell := range v.values[v.header] {
			row = append(row, workbook.TextOf(cell))
		}
	}

	return row
}
