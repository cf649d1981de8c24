package workbook

// FindRow returns the index of the first row after the header whose key column holds the key
// (compared as trimmed text).
func FindRow(values [][]any, header int, keyColumn int, key string) (int, bool) {
	key = TextOf(key)
	if key == "" || keyColumn < 0 {
		return -1, false
	}

	for i := header + 1; i < len(values); i++ {
		row := values[i]
		if keyColumn < len(row) && TextOf(row[keyColumn]) == key {
			return i, true
		}
	}

	return -1, false
}

// UpdateCells builds the values for an in-place row update spanning the leftmost to rightmost
// mapped column. Cells in unmapped columns are nil, which the remote API leaves unchanged.
func UpdateCells(columns Columns, values map[Field]any) (first int, cells []any, ok bool) {
	first, last, ok := columns.Span()
	if !ok {
		return 0, nil, false
	}

	cells = make([]any, last-first+1)
	for field, ix := range columns {
		cells[ix-first] = CellValue(values[field])
	}

	return first, cells, true
}

// AppendCells builds a full row of the given width for an append. Unmapped columns are blank.
func AppendCells(columns Columns, width int, values map[Field]any) []any {
	cells := make([]any, width)
	for i := range cells {
		cells[i] = ""
	}

	for field, ix := range columns {
		if ix < width {
			cells[ix] = CellValue(values[field])
		}
	}

	return cells
}

// ReadRow extracts the normalised value of every mapped field from a row.
func ReadRow(columns Columns, row []any) map[Field]any {
	values := map[Field]any{}
	for field, ix := range columns {
		var raw any
		if ix < len(row) {
			raw = row[ix]
		}

		values[field] = Normalise(KindOf(field), raw)
	}

	return values
}
