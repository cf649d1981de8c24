package prf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prftrack/prf-app-excel/workbook"
)

func TestRecordValues(t *testing.T) {
	date := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	blank := "  "
	status := " Approved "
	year := 2024
	amount := 1250.5

	r := Record{
		ID:              7,
		PRFNo:           " PRF-2024-007 ",
		DateSubmitted:   &date,
		SubmittedBy:     &blank,
		BudgetYear:      &year,
		RequestedAmount: &amount,
		Status:          &status,
	}

	values := r.Values()

	assert.Equal(t, "PRF-2024-007", values[workbook.PRFNo])
	assert.Equal(t, date, values[workbook.DateSubmitted])
	assert.Nil(t, values[workbook.SubmittedBy])
	assert.Nil(t, values[workbook.Summary])
	assert.Equal(t, 2024, values[workbook.BudgetYear])
	assert.Equal(t, 1250.5, values[workbook.RequestedAmount])
	assert.Equal(t, "Approved", values[workbook.Status])
	assert.Len(t, values, len(workbook.Aliases))
}

func TestRecordSet(t *testing.T) {
	var r Record

	r.Set(workbook.DateSubmitted, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC))
	r.Set(workbook.Summary, "Laptops")
	r.Set(workbook.BudgetYear, 2023)
	r.Set(workbook.RequestedAmount, 500.0)
	r.Set(workbook.Status, nil)

	require.NotNil(t, r.DateSubmitted)
	assert.Equal(t, "2023-01-01", r.DateSubmitted.Format(time.DateOnly))
	require.NotNil(t, r.Summary)
	assert.Equal(t, "Laptops", *r.Summary)
	require.NotNil(t, r.BudgetYear)
	assert.Equal(t, 2023, *r.BudgetYear)
	require.NotNil(t, r.RequestedAmount)
	assert.Equal(t, 500.0, *r.RequestedAmount)
	assert.Nil(t, r.Status)

	r.Set(workbook.RequestedAmount, "not a number")
	assert.Nil(t, r.RequestedAmount)
}

func TestDiff(t *testing.T) {
	date := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	summary := "Laptops"
	amount := 500.0

	current := Record{
		PRFNo:           "PRF-1",
		DateSubmitted:   &date,
		Summary:         &summary,
		RequestedAmount: &amount,
	}

	remote := map[workbook.Field]any{
		workbook.PRFNo:           "PRF-1",
		workbook.DateSubmitted:   time.Date(2024, time.January, 15, 18, 0, 0, 0, time.UTC),
		workbook.Summary:         "Laptops",
		workbook.RequestedAmount: nil,
		workbook.Status:          "Approved",
	}

	changes := Diff(current, remote)

	expected := []Change{
		{Field: "RequestedAmount", From: 500.0, To: nil},
		{Field: "Status", From: nil, To: "Approved"},
	}

	assert.Equal(t, expected, changes)
}

func TestDiffNumberTolerance(t *testing.T) {
	amount := 0.1 + 0.2
	current := Record{RequestedAmount: &amount}

	changes := Diff(current, map[workbook.Field]any{workbook.RequestedAmount: 0.3})
	assert.Empty(t, changes)
}
