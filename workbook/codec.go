package workbook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Origin is the top-left cell of a worksheet used range. Row is the 1-based worksheet row and
// Col is the zero-based column index.
type Origin struct {
	Row int
	Col int
}

var cellRef = regexp.MustCompile(`^([a-zA-Z]*)([0-9]*)$`)

// IndexToLetters converts a zero-based column index to spreadsheet column letters
// e.g. 0 -> A, 25 -> Z, 26 -> AA.
func IndexToLetters(index int) (string, error) {
	return excelize.ColumnNumberToName(index + 1)
}

// LettersToIndex converts spreadsheet column letters to a zero-based column index.
func LettersToIndex(letters string) (int, error) {
	n, err := excelize.ColumnNameToNumber(strings.ToUpper(strings.TrimSpace(letters)))
	if err != nil {
		return -1, err
	}

	return n - 1, nil
}

// ParseUsedRangeStart extracts the origin of a range address such as 'Sheet1!C5:F10' or
// "'PRF Detail 2024'!$B$3:$K$40". Whole column and whole row references default the missing
// coordinate to column A/row 1.
func ParseUsedRangeStart(address string) (Origin, error) {
	ref := address
	if ix := strings.LastIndex(ref, "!"); ix >= 0 {
		ref = ref[ix+1:]
	}

	ref = strings.ReplaceAll(ref, "$", "")
	if ix := strings.Index(ref, ":"); ix >= 0 {
		ref = ref[:ix]
	}

	ref = strings.TrimSpace(ref)
	match := cellRef.FindStringSubmatch(ref)
	if ref == "" || match == nil {
		return Origin{}, fmt.Errorf("invalid range address '%s'", address)
	}

	origin := Origin{Row: 1, Col: 0}

	if match[1] != "" {
		col, err := LettersToIndex(match[1])
		if err != nil {
			return Origin{}, fmt.Errorf("invalid range address '%s' (%w)", address, err)
		}
		origin.Col = col
	}

	if match[2] != "" {
		row, err := strconv.Atoi(match[2])
		if err != nil || row < 1 {
			return Origin{}, fmt.Errorf("invalid range address '%s'", address)
		}
		origin.Row = row
	}

	return origin, nil
}

// RangeAddress returns the single row address spanning the (zero-based) columns first..last,
// e.g. RangeAddress(7, 2, 5) -> C7:F7.
func RangeAddress(row, first, last int) (string, error) {
	if last < first {
		return "", fmt.Errorf("invalid column span %d..%d", first, last)
	}

	from, err := excelize.CoordinatesToCellName(first+1, row)
	if err != nil {
		return "", err
	}

	to, err := excelize.CoordinatesToCellName(last+1, row)
	if err != nil {
		return "", err
	}

	return from + ":" + to, nil
}
