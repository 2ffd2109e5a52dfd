package core

import "testing"

func expenseTx(categoryID int64, cents int64, year, month, day int) Transaction {
	return Transaction{
		CategoryID: categoryID,
		Amount:     Money{Cents: cents},
		Type:       Expense,
		Date:       NewDate(year, month, day),
	}
}

func TestComputeProgress(t *testing.T) {
	budget := Budget{ID: 10, CategoryID: 1, Amount: Money{Cents: 100_000_000}, Month: 6, Year: 2024}

	txs := []Transaction{
		expenseTx(1, 40_000_000, 2024, 6, 5),
		expenseTx(1, 70_000_000, 2024, 6, 20),
		expenseTx(1, 10_000_000, 2024, 7, 1), // different month, excluded
		expenseTx(9, 5_000_000, 2024, 6, 10), // different category, excluded
		{CategoryID: 1, Amount: Money{Cents: 200_000_000}, Type: Income, Date: NewDate(2024, 6, 12)}, // income, excluded
	}

	p := ComputeProgress(budget, txs)

	if p.SpentAmount.Cents != 110_000_000 {
		t.Fatalf("expected spent 110_000_000, got %d", p.SpentAmount.Cents)
	}
	if p.ProgressPercent != 100 {
		t.Fatalf("expected capped percentage 100, got %v", p.ProgressPercent)
	}
	if !p.Exceeded {
		t.Fatalf("expected exceeded")
	}
	if p.ExceedAmount.Cents != 10_000_000 {
		t.Fatalf("expected exceed amount 10_000_000, got %d", p.ExceedAmount.Cents)
	}
}

func TestComputeProgressUnderBudget(t *testing.T) {
	budget := Budget{CategoryID: 1, Amount: Money{Cents: 1000}, Month: 3, Year: 2025}
	txs := []Transaction{expenseTx(1, 250, 2025, 3, 15)}

	p := ComputeProgress(budget, txs)

	if p.SpentAmount.Cents != 250 {
		t.Fatalf("expected spent 250, got %d", p.SpentAmount.Cents)
	}
	if p.ProgressPercent != 25 {
		t.Fatalf("expected 25%%, got %v", p.ProgressPercent)
	}
	if p.Exceeded {
		t.Fatalf("did not expect exceeded")
	}
	if p.ExceedAmount.Cents != 0 {
		t.Fatalf("expected exceed amount 0, got %d", p.ExceedAmount.Cents)
	}
}

func TestComputeProgressNoTransactions(t *testing.T) {
	budget := Budget{CategoryID: 1, Amount: Money{Cents: 1000}, Month: 3, Year: 2025}

	p := ComputeProgress(budget, nil)

	if p.SpentAmount.Cents != 0 || p.ProgressPercent != 0 || p.Exceeded {
		t.Fatalf("expected zero progress, got %+v", p)
	}
}

func TestComputeProgressZeroBudgetAmount(t *testing.T) {
	// A zero-amount budget cannot be created through the service; the
	// pure function still has defined behavior for it.
	budget := Budget{CategoryID: 1, Amount: Money{Cents: 0}, Month: 3, Year: 2025}
	txs := []Transaction{expenseTx(1, 250, 2025, 3, 15)}

	p := ComputeProgress(budget, txs)

	if p.ProgressPercent != 0 {
		t.Fatalf("expected 0%% for zero budget, got %v", p.ProgressPercent)
	}
	if !p.Exceeded {
		t.Fatalf("spend above a zero budget is still exceeded")
	}
}

func TestComputeProgressPercentAlwaysCapped(t *testing.T) {
	budget := Budget{CategoryID: 1, Amount: Money{Cents: 1}, Month: 1, Year: 2030}
	txs := []Transaction{expenseTx(1, 1_000_000, 2030, 1, 1)}

	p := ComputeProgress(budget, txs)

	if p.ProgressPercent < 0 || p.ProgressPercent > 100 {
		t.Fatalf("percentage out of [0,100]: %v", p.ProgressPercent)
	}
	if p.WholePercent() != 100 {
		t.Fatalf("expected whole percent 100, got %d", p.WholePercent())
	}
}

func TestWholePercentRounding(t *testing.T) {
	cases := []struct {
		spent, amount int64
		want          int
	}{
		{333, 1000, 33}, // 33.3 rounds down
		{335, 1000, 34}, // 33.5 rounds up
		{667, 1000, 67},
	}
	for _, tc := range cases {
		budget := Budget{CategoryID: 1, Amount: Money{Cents: tc.amount}, Month: 1, Year: 2030}
		p := ComputeProgress(budget, []Transaction{expenseTx(1, tc.spent, 2030, 1, 1)})
		if got := p.WholePercent(); got != tc.want {
			t.Fatalf("%d/%d expected %d%%, got %d%%", tc.spent, tc.amount, tc.want, got)
		}
	}
}

func TestComputePeriodSummary(t *testing.T) {
	txs := []TransactionWithCategory{
		{Transaction: expenseTx(1, 40_000_000, 2024, 6, 5), CategoryName: "Food"},
		{Transaction: expenseTx(1, 70_000_000, 2024, 6, 20), CategoryName: "Food"},
		{Transaction: expenseTx(1, 10_000_000, 2024, 7, 1), CategoryName: "Food"}, // outside June
		{Transaction: Transaction{CategoryID: 9, Amount: Money{Cents: 200_000_000}, Type: Income, Date: NewDate(2024, 6, 10)}, CategoryName: "Salary"},
	}

	s := ComputePeriodSummary(6, 2024, txs)

	if s.TotalIncome.Cents != 200_000_000 {
		t.Fatalf("expected income 200_000_000, got %d", s.TotalIncome.Cents)
	}
	if s.TotalExpense.Cents != 110_000_000 {
		t.Fatalf("expected expense 110_000_000, got %d", s.TotalExpense.Cents)
	}
	if s.NetAmount.Cents != 90_000_000 {
		t.Fatalf("expected net 90_000_000, got %d", s.NetAmount.Cents)
	}
	if s.TransactionCount != 3 {
		t.Fatalf("expected 3 transactions in period, got %d", s.TransactionCount)
	}
	if len(s.ExpensesByCategory) != 1 {
		t.Fatalf("expected one expense category, got %d", len(s.ExpensesByCategory))
	}
	row := s.ExpensesByCategory[0]
	if row.CategoryID != 1 || row.CategoryName != "Food" || row.Total.Cents != 110_000_000 {
		t.Fatalf("unexpected breakdown row: %+v", row)
	}
}

func TestComputePeriodSummarySortsByTotalDescending(t *testing.T) {
	txs := []TransactionWithCategory{
		{Transaction: expenseTx(1, 100, 2024, 6, 1), CategoryName: "Small"},
		{Transaction: expenseTx(2, 900, 2024, 6, 2), CategoryName: "Big"},
		{Transaction: expenseTx(3, 500, 2024, 6, 3), CategoryName: "Mid"},
		{Transaction: expenseTx(1, 150, 2024, 6, 4), CategoryName: "Small"},
	}

	s := ComputePeriodSummary(6, 2024, txs)

	want := []string{"Big", "Mid", "Small"}
	if len(s.ExpensesByCategory) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(s.ExpensesByCategory))
	}
	for i, name := range want {
		if s.ExpensesByCategory[i].CategoryName != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, s.ExpensesByCategory[i].CategoryName)
		}
	}
}

func TestComputePeriodSummaryEmpty(t *testing.T) {
	s := ComputePeriodSummary(6, 2024, nil)
	if s.TransactionCount != 0 || s.TotalIncome.Cents != 0 || s.TotalExpense.Cents != 0 {
		t.Fatalf("expected empty summary, got %+v", s)
	}
	if len(s.ExpensesByCategory) != 0 {
		t.Fatalf("expected no breakdown rows")
	}
}

func TestComputePeriodSummaryNegativeNet(t *testing.T) {
	txs := []TransactionWithCategory{
		{Transaction: expenseTx(1, 500, 2024, 6, 1), CategoryName: "Food"},
		{Transaction: Transaction{CategoryID: 9, Amount: Money{Cents: 200}, Type: Income, Date: NewDate(2024, 6, 2)}, CategoryName: "Salary"},
	}

	s := ComputePeriodSummary(6, 2024, txs)

	if s.NetAmount.Cents != -300 {
		t.Fatalf("expected net -300, got %d", s.NetAmount.Cents)
	}
}
