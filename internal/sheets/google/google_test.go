package google

import (
	"testing"

	"fintrack/internal/core"
)

func TestSummaryRows(t *testing.T) {
	s := core.PeriodSummary{
		Month:        6,
		Year:         2024,
		TotalIncome:  core.Money{Cents: 200_000_000},
		TotalExpense: core.Money{Cents: 110_000_000},
		NetAmount:    core.Money{Cents: 90_000_000},
		ExpensesByCategory: []core.CategoryTotal{
			{CategoryID: 1, CategoryName: "Food", Total: core.Money{Cents: 110_000_000}},
		},
		TransactionCount: 3,
	}

	rows := summaryRows("alice", s)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0][1] != "2024-06" {
		t.Errorf("expected period 2024-06, got %v", rows[0][1])
	}
	if rows[2][3] != "900000.00" {
		t.Errorf("expected net 900000.00, got %v", rows[2][3])
	}
	if rows[3][2] != "category:Food" {
		t.Errorf("expected category row, got %v", rows[3][2])
	}
}
