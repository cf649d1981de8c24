package prf

import (
	"math"
	"time"

	"github.com/prftrack/prf-app-excel/workbook"
)

// Change is a field level difference between the database and the worksheet.
type Change struct {
	Field string `json:"field"`
	From  any    `json:"from"`
	To    any    `json:"to"`
}

// Diff compares the current record against the values read from a worksheet row. Only fields
// present in remote are compared; a remote nil against a non-nil current value is a change.
func Diff(current Record, remote map[workbook.Field]any) []Change {
	changes := []Change{}
	for _, alias := range workbook.Aliases {
		if alias.Field == workbook.PRFNo {
			continue
		}

		to, ok := remote[alias.Field]
		if !ok {
			continue
		}

		from := current.Value(alias.Field)
		if !equal(alias.Kind, from, to) {
			changes = append(changes, Change{
				Field: string(alias.Field),
				From:  from,
				To:    to,
			})
		}
	}

	return changes
}

func equal(kind workbook.Kind, a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch kind {
	case workbook.Date:
		p, ok := a.(time.Time)
		q, ok2 := b.(time.Time)
		if !ok || !ok2 {
			return false
		}
		return p.UTC().Format(time.DateOnly) == q.UTC().Format(time.DateOnly)

	case workbook.Number:
		p, ok := a.(float64)
		q, ok2 := b.(float64)
		return ok && ok2 && math.Abs(p-q) < 1e-6

	default:
		return a == b
	}
}
