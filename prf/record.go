// Package prf defines the purchase request record exchanged between the database and the
// PRF register workbook.
package prf

import (
	"strings"
	"time"

	"github.com/prftrack/prf-app-excel/workbook"
)

// Record is a purchase request. ID is the internal database id and PRFNo the business key used
// to match worksheet rows. The remaining fields are nullable and eligible for synchronisation.
type Record struct {
	ID              int64      `db:"id" json:"id"`
	PRFNo           string     `db:"prf_no" json:"prf_no"`
	DateSubmitted   *time.Time `db:"date_submitted" json:"date_submitted,omitempty"`
	SubmittedBy     *string    `db:"submitted_by" json:"submitted_by,omitempty"`
	Summary         *string    `db:"summary" json:"summary,omitempty"`
	Description     *string    `db:"description" json:"description,omitempty"`
	CostCode        *string    `db:"cost_code" json:"cost_code,omitempty"`
	RequiredFor     *string    `db:"required_for" json:"required_for,omitempty"`
	BudgetYear      *int       `db:"budget_year" json:"budget_year,omitempty"`
	RequestedAmount *float64   `db:"requested_amount" json:"requested_amount,omitempty"`
	Status          *string    `db:"status" json:"status,omitempty"`
}

// Value returns the field value as one of nil, string, time.Time, int or float64.
func (r Record) Value(field workbook.Field) any {
	switch field {
	case workbook.PRFNo:
		if s := strings.TrimSpace(r.PRFNo); s != "" {
			return s
		}

	case workbook.DateSubmitted:
		if r.DateSubmitted != nil {
			return r.DateSubmitted.UTC()
		}

	case workbook.SubmittedBy:
		return text(r.SubmittedBy)

	case workbook.Summary:
		return text(r.Summary)

	case workbook.Description:
		return text(r.Description)

	case workbook.CostCode:
		return text(r.CostCode)

	case workbook.RequiredFor:
		return text(r.RequiredFor)

	case workbook.BudgetYear:
		if r.BudgetYear != nil {
			return *r.BudgetYear
		}

	case workbook.RequestedAmount:
		if r.RequestedAmount != nil {
			return *r.RequestedAmount
		}

	case workbook.Status:
		return text(r.Status)
	}

	return nil
}

// Values returns every synchronised field keyed by field name.
func (r Record) Values() map[workbook.Field]any {
	values := map[workbook.Field]any{}
	for _, alias := range workbook.Aliases {
		values[alias.Field] = r.Value(alias.Field)
	}

	return values
}

// Set assigns a normalised value (as returned by workbook.Normalise) to a field. Values of the
// wrong type clear the field.
func (r *Record) Set(field workbook.Field, v any) {
	switch field {
	case workbook.PRFNo:
		s, _ := v.(string)
		r.PRFNo = s

	case workbook.DateSubmitted:
		if d, ok := v.(time.Time); ok {
			r.DateSubmitted = &d
		} else {
			r.DateSubmitted = nil
		}

	case workbook.SubmittedBy:
		r.SubmittedBy = ptr(v)

	case workbook.Summary:
		r.Summary = ptr(v)

	case workbook.Description:
		r.Description = ptr(v)

	case workbook.CostCode:
		r.CostCode = ptr(v)

	case workbook.RequiredFor:
		r.RequiredFor = ptr(v)

	case workbook.BudgetYear:
		if y, ok := v.(int); ok {
			r.BudgetYear = &y
		} else {
			r.BudgetYear = nil
		}

	case workbook.RequestedAmount:
		if f, ok := v.(float64); ok {
			r.RequestedAmount = &f
		} else {
			r.RequestedAmount = nil
		}

	case workbook.Status:
		r.Status = ptr(v)
	}
}

func text(s *string) any {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}

	return strings.TrimSpace(*s)
}

func ptr(v any) *string {
	if s, ok := v.(string); ok && s != "" {
		return &s
	}

	return nil
}
