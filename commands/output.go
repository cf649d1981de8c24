package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prftrack/prf-app-excel/engine"
)

const (
	formatJSON = "json"
	formatTSV  = "tsv"
)

func format(v string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(v)); f {
	case formatJSON, formatTSV:
		return f, nil

	default:
		return "", fmt.Errorf("invalid --format '%v' (expected 'json' or 'tsv')", v)
	}
}

func printJSON(w io.Writer, v any) error {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n", bytes)

	return err
}

// changesToTSV writes the changes found by a pull as a tab separated table with a header row.
func changesToTSV(w io.Writer, outcome engine.PullOutcome) error {
	tsv := csv.NewWriter(w)
	tsv.Comma = '\t'

	if err := tsv.Write([]string{"sheet", "row", "field", "from", "to"}); err != nil {
		return err
	}

	for _, c := range outcome.Changes {
		record := []string{
			outcome.SheetName,
			fmt.Sprintf("%v", outcome.RowNumber),
			c.Field,
			cell(c.From),
			cell(c.To),
		}

		if err := tsv.Write(record); err != nil {
			return err
		}
	}

	tsv.Flush()

	return tsv.Error()
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""

	case time.Time:
		return t.Format(time.DateOnly)

	case string:
		return clean(t)

	default:
		return fmt.Sprintf("%v", t)
	}
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
