package workbook

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"2-Jan-2006",
	"2-Jan-06",
	"02-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
}

var (
	numberNoise = regexp.MustCompile(`[,\s$€£₱¥]`)
	fourDigits  = regexp.MustCompile(`(?:^|[^0-9])((?:19|20)[0-9]{2})(?:[^0-9]|$)`)
)

// TextOf returns the trimmed text representation of a cell value. Whole numbers are rendered
// without a fractional part so that numeric business keys compare equal to their text form.
func TextOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""

	case string:
		return strings.TrimSpace(t)

	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)

	case int:
		return strconv.Itoa(t)

	case int64:
		return strconv.FormatInt(t, 10)

	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"

	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// IsBlank returns true for nil and whitespace-only cells.
func IsBlank(v any) bool {
	return TextOf(v) == ""
}

// ParseNumber converts a cell value to a number, stripping thousands separators and currency
// symbols. Accounting style negatives e.g. (1,200.00) are supported.
func ParseNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true

	case int:
		return float64(t), true

	case int64:
		return float64(t), true
	}

	s := TextOf(v)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = numberNoise.ReplaceAllString(s, "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	if negative {
		f = -f
	}

	return f, true
}

// ExcelSerialToTime converts an Excel 1900 date system serial number to a UTC time. The fractional
// part is the time of day. Serial 60 is the nonexistent 1900-02-29 and is rejected.
func ExcelSerialToTime(serial float64) (time.Time, error) {
	switch {
	case serial <= 0:
		return time.Time{}, fmt.Errorf("invalid Excel date serial %v", serial)

	case serial < 60:
		// serial 1 is 1900-01-01
		epoch := time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)
		return epoch.Add(time.Duration(serial * float64(24*time.Hour))).Round(time.Second), nil

	case serial < 61:
		return time.Time{}, fmt.Errorf("invalid Excel date serial %v (1900-02-29 does not exist)", serial)
	}

	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, err
	}

	return t.UTC().Round(time.Second), nil
}

// ParseDate converts a cell value to a date. Numbers (and numeric text) are treated as Excel
// serials, anything else is parsed against a list of common layouts.
func ParseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case float64:
		if d, err := ExcelSerialToTime(t); err == nil {
			return d, true
		}
		return time.Time{}, false

	case time.Time:
		return t.UTC(), true
	}

	s := TextOf(v)
	if s == "" {
		return time.Time{}, false
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if d, err := ExcelSerialToTime(f); err == nil {
			return d, true
		}
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return d.UTC(), true
		}
	}

	return time.Time{}, false
}

// ParseYear extracts a budget year from a number (2024) or text ('FY 2024', '2024-2025').
func ParseYear(v any) (int, bool) {
	if f, ok := v.(float64); ok {
		if f >= 1900 && f < 10000 && f == math.Trunc(f) {
			return int(f), true
		}
		return 0, false
	}

	if match := fourDigits.FindStringSubmatch(TextOf(v)); len(match) > 1 {
		year, _ := strconv.Atoi(match[1])
		return year, true
	}

	return 0, false
}

// Normalise converts a raw cell value to the typed value for the kind: string, time.Time,
// float64 or int. Blank or unparseable cells normalise to nil.
func Normalise(kind Kind, v any) any {
	if IsBlank(v) {
		return nil
	}

	switch kind {
	case Date:
		if d, ok := ParseDate(v); ok {
			return d
		}
		return nil

	case Number:
		if f, ok := ParseNumber(v); ok {
			return f
		}
		return nil

	case Year:
		if y, ok := ParseYear(v); ok {
			return y
		}
		return nil

	default:
		return TextOf(v)
	}
}

// CellValue converts a typed value to the representation written to a worksheet. Dates are
// written as ISO dates (Excel parses them into date cells) and nil values as empty strings.
func CellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""

	case time.Time:
		return t.Format("2006-01-02")

	case string:
		return strings.TrimSpace(t)

	default:
		return t
	}
}
