package engine

import (
	"context"

	"github.com/prftrack/prf-app-excel/auth"
)

// AccessReport describes what the engine can see of the configured workbook.
type AccessReport struct {
	Strategy   string   `json:"strategy"`
	Locator    string   `json:"locator"`
	DriveID    string   `json:"drive_id"`
	ItemID     string   `json:"item_id"`
	Worksheets []string `json:"worksheets"`
	Candidates []string `json:"candidates"`
	Sheet      string   `json:"sheet,omitempty"`
	HeaderRow  int      `json:"header_row,omitempty"`
	Header     []string `json:"header,omitempty"`
}

// TestAccess resolves the workbook, lists its worksheets and reads the header row of the first
// candidate worksheet (or the configured worksheet) without modifying anything.
func (e *Engine) TestAccess(ctx context.Context) (AccessReport, error) {
	var report AccessReport

	err := e.withFallback(ctx, "test-access", auth.Read, e.log, func(s *session) error {
		report = AccessReport{
			Strategy:   s.strategy.String(),
			Worksheets: []string{},
			Candidates: []string{},
		}

		ref, err := e.locate(ctx, s)
		if err != nil {
			return err
		}

		report.Locator = ref.Via
		report.DriveID = ref.DriveID
		report.ItemID = ref.ItemID

		c, worksheets, err := e.listCandidates(ctx, s, ref, 0)
		if err != nil {
			return err
		}

		for _, ws := range worksheets {
			report.Worksheets = append(report.Worksheets, ws.Name)
		}

		report.Candidates = c.Sheets

		sample := e.config.Excel.WorksheetName
		if len(c.Sheets) > 0 {
			sample = c.Sheets[0]
		}

		if sample == "" {
			return nil
		}

		v, err := e.readSheet(ctx, s, ref, sample)
		if err != nil {
			return err
		}

		report.Sheet = sample
		if !v.empty() {
			report.HeaderRow = v.rowNumber(v.header)
			report.Header = v.headerRow()
		}

		return nil
	})

	return report, err
}
