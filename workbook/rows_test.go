package workbook

import (
	"reflect"
	"testing"
	"time"
)

func TestFindRow(t *testing.T) {
	values := [][]any{
		{"PRF No", "Amount"},
		{"PRF-1", 100.0},
		{" PRF-2 ", 200.0},
		{1024.0, 300.0},
		{"PRF-2", 400.0},
	}

	tests := []struct {
		key      string
		expected int
		found    bool
	}{
		{"PRF-1", 1, true},
		{"PRF-2", 2, true},
		{" 1024", 3, true},
		{"PRF-3", -1, false},
		{"", -1, false},
	}

	for _, test := range tests {
		ix, ok := FindRow(values, 0, 0, test.key)
		if ix != test.expected || ok != test.found {
			t.Errorf("Incorrect row for '%v' - expected:%v/%v, got:%v/%v", test.key, test.expected, test.found, ix, ok)
		}
	}
}

func TestFindRowSkipsHeaderAndBanner(t *testing.T) {
	values := [][]any{
		{"PRF-1"},
		{"PRF No"},
		{"PRF-9"},
	}

	if _, ok := FindRow(values, 1, 0, "PRF-1"); ok {
		t.Errorf("Rows above the header should not be matched")
	}
}

func TestUpdateCellsLeavesUnmappedColumnsUntouched(t *testing.T) {
	columns := Columns{PRFNo: 1, Status: 4, RequestedAmount: 3}
	values := map[Field]any{
		PRFNo:           "PRF-7",
		Status:          "Approved",
		RequestedAmount: 1500.0,
		Summary:         "not mapped",
	}

	first, cells, ok := UpdateCells(columns, values)
	if !ok {
		t.Fatalf("Expected update cells")
	}

	expected := []any{"PRF-7", nil, 1500.0, "Approved"}

	if first != 1 {
		t.Errorf("Incorrect first column - expected:%v, got:%v", 1, first)
	}

	if !reflect.DeepEqual(cells, expected) {
		t.Errorf("Incorrect update cells\n   expected: %#v\n   got:      %#v", expected, cells)
	}
}

func TestUpdateCellsWithNoMappedColumns(t *testing.T) {
	if _, _, ok := UpdateCells(Columns{}, nil); ok {
		t.Errorf("Expected no update for empty column map")
	}
}

func TestAppendCells(t *testing.T) {
	columns := Columns{PRFNo: 0, DateSubmitted: 2, RequestedAmount: 3}
	values := map[Field]any{
		PRFNo:           "PRF-8",
		DateSubmitted:   time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		RequestedAmount: nil,
	}

	expected := []any{"PRF-8", "", "2024-03-05", "", ""}

	if cells := AppendCells(columns, 5, values); !reflect.DeepEqual(cells, expected) {
		t.Errorf("Incorrect append cells\n   expected: %#v\n   got:      %#v", expected, cells)
	}
}

func TestReadRow(t *testing.T) {
	columns := Columns{PRFNo: 0, DateSubmitted: 1, RequestedAmount: 2, Status: 3, BudgetYear: 5}
	row := []any{"PRF-1", 44927.0, "", "Pending"}

	expected := map[Field]any{
		PRFNo:           "PRF-1",
		RequestedAmount: nil,
		Status:          "Pending",
		BudgetYear:      nil,
	}

	values := ReadRow(columns, row)

	if d, ok := values[DateSubmitted].(time.Time); !ok || !d.Equal(time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Incorrect date submitted - got:%#v", values[DateSubmitted])
	}

	delete(values, DateSubmitted)

	if !reflect.DeepEqual(values, expected) {
		t.Errorf("Incorrect row values\n   expected: %#v\n   got:      %#v", expected, values)
	}
}
