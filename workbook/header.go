package workbook

// HeaderScanRows is the number of leading rows examined when looking for the header row.
const HeaderScanRows = 30

// LocateHeader returns the index of the header row within a used range. A row containing a
// business key column alias is accepted immediately, otherwise the first row with at least two
// recognisable column names is used. Falls back to row 0.
func LocateHeader(values [][]any) int {
	limit := len(values)
	if limit > HeaderScanRows {
		limit = HeaderScanRows
	}

	for i := 0; i < limit; i++ {
		hits := 0
		for _, cell := range values[i] {
			text := TextOf(cell)
			if IsIdentifier(text) {
				return i
			}

			if _, ok := Lookup(text); ok {
				hits++
			}
		}

		if hits >= 2 {
			return i
		}
	}

	return 0
}
