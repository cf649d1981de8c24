// Package store reads purchase requests from, and merges pulled worksheet values into, the
// purchase_requests table.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/prftrack/prf-app-excel/prf"
)

var ErrNotFound = errors.New("purchase request not found")

const selectRecord = `
SELECT id, prf_no, date_submitted, submitted_by, summary, description, cost_code,
       required_for, budget_year, requested_amount, status
FROM purchase_requests`

// A pulled value of NULL never overwrites the current value.
const applyPull = `
UPDATE purchase_requests SET
  date_submitted   = COALESCE(?, date_submitted),
  submitted_by     = COALESCE(?, submitted_by),
  summary          = COALESCE(?, summary),
  description      = COALESCE(?, description),
  cost_code        = COALESCE(?, cost_code),
  required_for     = COALESCE(?, required_for),
  budget_year      = COALESCE(?, budget_year),
  requested_amount = COALESCE(?, requested_amount),
  status           = COALESCE(?, status)
WHERE id = ?`

type Store struct {
	db *sqlx.DB
}

// Open connects to the database with one of the registered drivers ('pgx' or 'sqlite3').
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "pgx", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported database driver '%v'", driver)
	}

	if dsn == "" {
		return nil, fmt.Errorf("missing database URL")
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening %v database (%w)", driver, err)
	}

	return New(db), nil
}

func New(db *sqlx.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get retrieves a purchase request by internal ID.
func (s *Store) Get(ctx context.Context, id int64) (prf.Record, error) {
	return s.get(ctx, selectRecord+" WHERE id = ?", id)
}

// GetByPRFNo retrieves a purchase request by PRF number.
func (s *Store) GetByPRFNo(ctx context.Context, prfNo string) (prf.Record, error) {
	return s.get(ctx, selectRecord+" WHERE prf_no = ?", prfNo)
}

func (s *Store) get(ctx context.Context, query string, arg any) (prf.Record, error) {
	var record prf.Record

	if err := s.db.GetContext(ctx, &record, s.db.Rebind(query), arg); errors.Is(err, sql.ErrNoRows) {
		return prf.Record{}, fmt.Errorf("%w (%v)", ErrNotFound, arg)
	} else if err != nil {
		return prf.Record{}, fmt.Errorf("error retrieving purchase request %v (%w)", arg, err)
	}

	return record, nil
}

// ApplyPull merges the non-nil fields of a pulled record into the purchase request with a
// single UPDATE. Returns true if a row was updated.
func (s *Store) ApplyPull(ctx context.Context, id int64, pulled prf.Record) (bool, error) {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(applyPull),
		pulled.DateSubmitted,
		pulled.SubmittedBy,
		pulled.Summary,
		pulled.Description,
		pulled.CostCode,
		pulled.RequiredFor,
		pulled.BudgetYear,
		pulled.RequestedAmount,
		pulled.Status,
		id)

	if err != nil {
		return false, fmt.Errorf("error updating purchase request %v (%w)", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error updating purchase request %v (%w)", id, err)
	}

	return rows > 0, nil
}
