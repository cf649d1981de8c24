package engine

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/prftrack/prf-app-excel/graph"
	"github.com/prftrack/prf-app-excel/workbook"
)

// candidates is the ordered list of worksheets to search. The first Preferred entries contain
// the requested year.
type candidates struct {
	Sheets    []string
	Preferred int
}

// listCandidates lists the worksheets whose name contains the configured prefix, with the
// worksheets that also contain the year first.
func (e *Engine) listCandidates(ctx context.Context, s *session, ref workbookRef, year int) (candidates, []graph.Worksheet, error) {
	worksheets, err := s.client.Worksheets(ctx, ref.DriveID, ref.ItemID)
	if err != nil {
		return candidates{}, nil, err
	}

	return selectCandidates(worksheets, e.config.Excel.WorksheetPrefix, year), worksheets, nil
}

func selectCandidates(worksheets []graph.Worksheet, prefix string, year int) candidates {
	sorted := append([]graph.Worksheet{}, worksheets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	token := workbook.Canonical(prefix)
	matched := []string{}
	for _, ws := range sorted {
		if strings.Contains(workbook.Canonical(ws.Name), token) {
			matched = append(matched, ws.Name)
		}
	}

	if year <= 0 {
		return candidates{Sheets: matched}
	}

	y := strconv.Itoa(year)
	preferred := []string{}
	rest := []string{}
	for _, name := range matched {
		if strings.Contains(name, y) {
			preferred = append(preferred, name)
		} else {
			rest = append(rest, name)
		}
	}

	return candidates{
		Sheets:    append(preferred, rest...),
		Preferred: len(preferred),
	}
}

// sheetsFor returns the worksheets to search for a mode.
func (e *Engine) sheetsFor(ctx context.Context, s *session, ref workbookRef, mode Mode, year int) (candidates, error) {
	if mode == Single {
		return candidates{Sheets: []string{e.config.Excel.WorksheetName}}, nil
	}

	c, _, err := e.listCandidates(ctx, s, ref, year)
	if err != nil {
		return candidates{}, err
	}

	s.log.WithField("candidates", c.Sheets).Debugf("candidate worksheets")

	return c, nil
}

// destination returns the worksheet to append to when a PRF number is not found: the first
// worksheet matching the year, else the first candidate, else the configured worksheet.
func (e *Engine) destination(s *session, mode Mode, c candidates, year int) (string, error) {
	switch {
	case mode == Single:
		return e.config.Excel.WorksheetName, nil

	case c.Preferred > 0:
		return c.Sheets[0], nil

	case len(c.Sheets) > 0:
		if year > 0 {
			s.log.Warnf("no worksheet matches year %v, appending to '%v'", year, c.Sheets[0])
		}
		return c.Sheets[0], nil

	case strings.TrimSpace(e.config.Excel.WorksheetName) != "":
		s.log.Warnf("no worksheet matches '%v', appending to '%v'", e.config.Excel.WorksheetPrefix, e.config.Excel.WorksheetName)
		return e.config.Excel.WorksheetName, nil

	default:
		return "", &ResolutionError{Op: "append", Err: ErrNoWorksheet}
	}
}
