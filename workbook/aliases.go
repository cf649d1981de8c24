package workbook

import (
	"regexp"
	"strings"
)

// Field identifies a purchase request attribute that can be mapped to a worksheet column.
type Field string

const (
	PRFNo           Field = "PRFNo"
	DateSubmitted   Field = "DateSubmitted"
	SubmittedBy     Field = "SubmittedBy"
	Summary         Field = "Summary"
	Description     Field = "Description"
	CostCode        Field = "CostCode"
	RequiredFor     Field = "RequiredFor"
	BudgetYear      Field = "BudgetYear"
	RequestedAmount Field = "RequestedAmount"
	Status          Field = "Status"
)

// Kind determines how a cell value is normalised when read back from a worksheet.
type Kind int

const (
	Text Kind = iota
	Date
	Number
	Year
)

type Alias struct {
	Field    Field
	Kind     Kind
	Variants []string
}

// Aliases is the column alias table. Order matters: when a header cell matches the variants of
// more than one field, the field declared first wins.
var Aliases = []Alias{
	{PRFNo, Text, []string{"PRF No", "PRF No.", "PRFNo", "PR/PO No", "PR/PO No.", "PRF Number", "PRF #"}},
	{DateSubmitted, Date, []string{"Date Submitted", "Submission Date", "Date Requested", "Date"}},
	{SubmittedBy, Text, []string{"Submitted By", "Requested By", "Requestor", "Requester", "Prepared By"}},
	{Summary, Text, []string{"Summary", "Purpose", "Particulars"}},
	{Description, Text, []string{"Description", "Details", "Item Description", "Remarks"}},
	{CostCode, Text, []string{"Cost Code", "Budget Code", "Account Code", "Charge To", "Account"}},
	{RequiredFor, Text, []string{"Required For", "Needed For", "Date Needed", "Required Date"}},
	{BudgetYear, Year, []string{"Budget Year", "Fiscal Year", "FY", "Year"}},
	{RequestedAmount, Number, []string{"Requested Amount", "Amount", "Total Amount", "Total", "Amount Requested"}},
	{Status, Text, []string{"Status", "PRF Status", "Approval Status"}},
}

var whitespace = regexp.MustCompile(`\s+`)

var index = indexOf(Aliases)

func indexOf(aliases []Alias) map[string]Field {
	m := map[string]Field{}
	for _, alias := range aliases {
		for _, v := range alias.Variants {
			k := Canonical(v)
			if _, ok := m[k]; !ok {
				m[k] = alias.Field
			}
		}
	}

	return m
}

// Lookup returns the field whose alias list matches the header text.
func Lookup(header string) (Field, bool) {
	k := Canonical(header)
	if k == "" {
		return "", false
	}

	f, ok := index[k]
	return f, ok
}

// KindOf returns the normalisation kind for a field.
func KindOf(field Field) Kind {
	for _, alias := range Aliases {
		if alias.Field == field {
			return alias.Kind
		}
	}

	return Text
}

// IsIdentifier returns true if the header text is one of the business key column aliases.
func IsIdentifier(header string) bool {
	f, ok := Lookup(header)
	return ok && f == PRFNo
}

// Columns maps fields to zero-based column offsets within a used range.
type Columns map[Field]int

// ColumnMap builds the field to column mapping for a header row. If several cells match the same
// field, the leftmost cell wins.
func ColumnMap(header []any) Columns {
	columns := Columns{}
	for i, v := range header {
		if f, ok := Lookup(TextOf(v)); ok {
			if _, exists := columns[f]; !exists {
				columns[f] = i
			}
		}
	}

	return columns
}

// Span returns the leftmost and rightmost mapped columns.
func (c Columns) Span() (first, last int, ok bool) {
	first, last = -1, -1
	for _, ix := range c {
		if first < 0 || ix < first {
			first = ix
		}
		if ix > last {
			last = ix
		}
	}

	return first, last, first >= 0
}

// Canonical returns text in the form used to match header cells and worksheet names: lower case
// with all whitespace removed.
func Canonical(v string) string {
	return strings.ToLower(whitespace.ReplaceAllString(v, ""))
}
