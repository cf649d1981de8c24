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

// PullOutcome is the result of a pull. Changes lists every field where the worksheet differs
// from the record as it was before the pull, including blank worksheet cells which are not
// written to the database.
type PullOutcome struct {
	Updated   bool         `json:"updated"`
	SheetName string       `json:"sheet"`
	RowNumber int          `json:"row"`
	Changes   []prf.Change `json:"changes"`
}

// Pull reads the worksheet row holding the record's PRF number and merges the worksheet values
// into the database. Blank worksheet cells never overwrite database values.
func (e *Engine) Pull(ctx context.Context, record prf.Record, options Options) (PullOutcome, error) {
	key := strings.TrimSpace(record.PRFNo)
	if key == "" {
		return PullOutcome{}, fmt.Errorf("pull: %w (id:%v)", ErrMissingKey, record.ID)
	}

	mode, err := e.mode(options)
	if err != nil {
		return PullOutcome{}, err
	}

	if e.store == nil && !options.DryRun {
		return PullOutcome{}, &ConfigurationError{Setting: "DATABASE_URL", Reason: "is required to apply a pull"}
	}

	log := e.log.WithFields(logrus.Fields{"prf": key, "mode": mode})

	var remote map[workbook.Field]any
	var outcome PullOutcome

	err = e.withFallback(ctx, "pull", auth.Read, log, func(s *session) error {
		m, err := e.search(ctx, s, key, mode, options.Year)
		if err != nil {
			return err
		}

		if m.sheet == nil {
			return &NotFoundError{Op: "pull", Key: key, Sheets: m.searched}
		}

		remote = workbook.ReadRow(m.sheet.columns, m.sheet.values[m.row])
		outcome.SheetName = m.sheet.name
		outcome.RowNumber = m.sheet.rowNumber(m.row)

		return nil
	})

	if err != nil {
		return PullOutcome{}, err
	}

	outcome.Changes = prf.Diff(record, remote)

	log = log.WithFields(logrus.Fields{"sheet": outcome.SheetName, "row": outcome.RowNumber})
	for _, c := range outcome.Changes {
		log.WithField("field", c.Field).Debugf("%v -> %v", c.From, c.To)
	}

	if options.DryRun {
		log.Infof("dry run: %v changes not applied", len(outcome.Changes))
		return outcome, nil
	}

	pulled := prf.Record{ID: record.ID, PRFNo: key}
	for field, v := range remote {
		if field != workbook.PRFNo {
			pulled.Set(field, v)
		}
	}

	updated, err := e.store.ApplyPull(ctx, record.ID, pulled)
	if err != nil {
		return outcome, fmt.Errorf("pull: %w", err)
	}

	outcome.Updated = updated

	log.WithField("changes", len(outcome.Changes)).Infof("pulled PRF")

	return outcome, nil
}
