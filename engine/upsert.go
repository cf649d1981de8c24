package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/prftrack/prf-app-excel/auth"
	"github.com/prftrack/prf-app-excel/prf"
	"github.com/prftrack/prf-app-excel/workbook"
)

// SyncOutcome is the result of a push. Exactly one of Updated and Appended is true.
type SyncOutcome struct {
	Updated  bool   `json:"updated"`
	Appended bool   `json:"appended"`
	Sheet    string `json:"sheet"`
	Row      int    `json:"row"`
}

// match is the result of searching the candidate worksheets for a PRF number.
type match struct {
	ref        workbookRef
	candidates candidates
	searched   []string
	sheets     map[string]*sheet
	sheet      *sheet
	row        int
}

// Upsert writes the record to the worksheet row holding its PRF number, or appends a new row
// after the used range if the PRF number is not found. Only columns mapped to a record field
// are written to an existing row.
func (e *Engine) Upsert(ctx context.Context, record prf.Record, options Options) (SyncOutcome, error) {
	key := strings.TrimSpace(record.PRFNo)
	if key == "" {
		return SyncOutcome{}, fmt.Errorf("upsert: %w (id:%v)", ErrMissingKey, record.ID)
	}

	mode, err := e.mode(options)
	if err != nil {
		return SyncOutcome{}, err
	}

	log := e.log.WithFields(logrus.Fields{"prf": key, "mode": mode})

	var outcome SyncOutcome

	err = e.withFallback(ctx, "upsert", auth.Write, log, func(s *session) (err error) {
		outcome, err = e.upsert(ctx, s, key, record.Values(), mode, options.Year)
		return
	})

	return outcome, err
}

func (e *Engine) upsert(ctx context.Context, s *session, key string, values map[workbook.Field]any, mode Mode, year int) (SyncOutcome, error) {
	m, err := e.search(ctx, s, key, mode, year)
	if err != nil {
		return SyncOutcome{}, err
	}

	if m.sheet != nil {
		return e.update(ctx, s, m, values)
	}

	name, err := e.destination(s, mode, m.candidates, year)
	if err != nil {
		return SyncOutcome{}, err
	}

	v, ok := m.sheets[name]
	if !ok {
		if v, err = e.readSheet(ctx, s, m.ref, name); err != nil {
			return SyncOutcome{}, err
		}
	}

	return e.append(ctx, s, m.ref, v, values)
}

// search looks for the PRF number in each candidate worksheet in turn. In scan mode worksheets
// without a PRF number column are skipped.
func (e *Engine) search(ctx context.Context, s *session, key string, mode Mode, year int) (*match, error) {
	ref, err := e.locate(ctx, s)
	if err != nil {
		return nil, err
	}

	c, err := e.sheetsFor(ctx, s, ref, mode, year)
	if err != nil {
		return nil, err
	}

	m := match{
		ref:        ref,
		candidates: c,
		searched:   []string{},
		sheets:     map[string]*sheet{},
	}

	for _, name := range c.Sheets {
		log := s.log.WithField("sheet", name)

		v, err := e.readSheet(ctx, s, ref, name)
		if err != nil {
			if mode == Single || isAuthorization(err) {
				return nil, err
			}

			log.Warnf("skipping worksheet (%v)", err)
			continue
		}

		m.sheets[name] = v

		if _, ok := v.keyColumn(); !ok {
			if mode == Single && !v.empty() {
				return nil, &ResolutionError{Op: "search", Sheet: name, Err: ErrNoIdentifierColumn}
			}

			log.Infof("skipping worksheet with no PRF number column")
			continue
		}

		m.searched = append(m.searched, name)

		if row, ok := v.find(key); ok {
			m.sheet = v
			m.row = row

			log.WithField("row", v.rowNumber(row)).Debugf("found PRF")
			return &m, nil
		}
	}

	return &m, nil
}

func (e *Engine) update(ctx context.Context, s *session, m *match, values map[workbook.Field]any) (SyncOutcome, error) {
	v := m.sheet

	first, cells, ok := workbook.UpdateCells(v.columns, values)
	if !ok {
		return SyncOutcome{}, &ResolutionError{Op: "update", Sheet: v.name, Err: ErrNoIdentifierColumn}
	}

	row := v.rowNumber(m.row)
	address, err := workbook.RangeAddress(row, v.origin.Col+first, v.origin.Col+first+len(cells)-1)
	if err != nil {
		return SyncOutcome{}, &ResolutionError{Op: "update", Sheet: v.name, Err: err}
	}

	if _, err := s.client.UpdateRange(ctx, m.ref.DriveID, m.ref.ItemID, v.name, address, [][]any{cells}); err != nil {
		return SyncOutcome{}, fmt.Errorf("update worksheet '%v' %v: %w", v.name, address, err)
	}

	s.log.WithFields(logrus.Fields{"sheet": v.name, "row": row, "range": address}).Infof("updated PRF")

	return SyncOutcome{Updated: true, Sheet: v.name, Row: row}, nil
}

func (e *Engine) append(ctx context.Context, s *session, ref workbookRef, v *sheet, values map[workbook.Field]any) (SyncOutcome, error) {
	if v.empty() {
		return SyncOutcome{}, &ResolutionError{Op: "append", Sheet: v.name, Err: ErrEmptyWorksheet}
	}

	if _, ok := v.keyColumn(); !ok {
		return SyncOutcome{}, &ResolutionError{Op: "append", Sheet: v.name, Err: ErrNoIdentifierColumn}
	}

	width := v.width()
	cells := workbook.AppendCells(v.columns, width, values)

	row := v.nextRow()
	address, err := workbook.RangeAddress(row, v.origin.Col, v.origin.Col+width-1)
	if err != nil {
		return SyncOutcome{}, &ResolutionError{Op: "append", Sheet: v.name, Err: err}
	}

	if _, err := s.client.UpdateRange(ctx, ref.DriveID, ref.ItemID, v.name, address, [][]any{cells}); err != nil {
		return SyncOutcome{}, fmt.Errorf("append to worksheet '%v' %v: %w", v.name, address, err)
	}

	s.log.WithFields(logrus.Fields{"sheet": v.name, "row": row, "range": address}).Infof("appended PRF")

	return SyncOutcome{Appended: true, Sheet: v.name, Row: row}, nil
}
