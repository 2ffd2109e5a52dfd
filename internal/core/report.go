package core

import (
	"math"
	"sort"
)

type (
	// CategoryTotal is one row of a per-category expense breakdown.
	CategoryTotal struct {
		CategoryID   int64
		CategoryName string
		Total        Money
	}

	// BudgetProgress is the computed spend-vs-budget view for one
	// budget over its calendar month. It is derived on demand and
	// never persisted.
	BudgetProgress struct {
		Budget      Budget
		SpentAmount Money
		// ProgressPercent is capped at 100 for display. Exceeded and
		// ExceedAmount use the uncapped comparison.
		ProgressPercent float64
		Exceeded        bool
		ExceedAmount    Money
	}

	// PeriodSummary aggregates one user's transactions over one
	// calendar month.
	PeriodSummary struct {
		Month              int
		Year               int
		TotalIncome        Money
		TotalExpense       Money
		NetAmount          Money
		ExpensesByCategory []CategoryTotal
		TransactionCount   int
	}

	// TransactionWithCategory is a transaction with its category's
	// name and type attached, as listings and reports return it. The
	// category data travels with the row so the aggregation engine
	// stays independent of the store.
	TransactionWithCategory struct {
		Transaction
		CategoryName string
		CategoryType EntryType
	}
)

// ComputeProgress derives the spend-vs-budget state of one budget from
// a transaction set. Only Expense transactions of the budget's category
// whose date falls in the budget's calendar month count toward spend.
// The transaction set may contain anything else; it is filtered here.
func ComputeProgress(budget Budget, transactions []Transaction) BudgetProgress {
	var spent int64
	for _, t := range transactions {
		if t.CategoryID != budget.CategoryID || t.Type != Expense {
			continue
		}
		if !t.Date.In(budget.Month, budget.Year) {
			continue
		}
		spent += t.Amount.Cents
	}

	return NewBudgetProgress(budget, Money{Cents: spent})
}

// NewBudgetProgress builds the progress view from an already computed
// spent amount.
func NewBudgetProgress(budget Budget, spent Money) BudgetProgress {
	p := BudgetProgress{
		Budget:      budget,
		SpentAmount: spent,
	}
	if budget.Amount.Cents > 0 {
		pct := float64(spent.Cents) / float64(budget.Amount.Cents) * 100
		p.ProgressPercent = math.Min(pct, 100)
	}
	if spent.Cents > budget.Amount.Cents {
		p.Exceeded = true
		p.ExceedAmount = Money{Cents: spent.Cents - budget.Amount.Cents}
	}
	return p
}

// WholePercent returns the progress rounded to the nearest whole
// percent, which is what dashboards display.
func (p BudgetProgress) WholePercent() int {
	return int(math.Round(p.ProgressPercent))
}

// ComputePeriodSummary aggregates the given transactions over the
// calendar month month/year: income and expense totals, net amount,
// and expense totals grouped by category sorted largest first. The
// order of equal totals is stable but otherwise unspecified.
func ComputePeriodSummary(month, year int, transactions []TransactionWithCategory) PeriodSummary {
	s := PeriodSummary{Month: month, Year: year}

	totals := make(map[int64]*CategoryTotal)
	var order []int64

	for _, t := range transactions {
		if !t.Date.In(month, year) {
			continue
		}
		s.TransactionCount++
		switch t.Type {
		case Income:
			s.TotalIncome.Cents += t.Amount.Cents
		case Expense:
			s.TotalExpense.Cents += t.Amount.Cents
			ct, ok := totals[t.CategoryID]
			if !ok {
				ct = &CategoryTotal{CategoryID: t.CategoryID, CategoryName: t.CategoryName}
				totals[t.CategoryID] = ct
				order = append(order, t.CategoryID)
			}
			ct.Total.Cents += t.Amount.Cents
		}
	}

	s.NetAmount = s.TotalIncome.Sub(s.TotalExpense)

	s.ExpensesByCategory = make([]CategoryTotal, 0, len(order))
	for _, id := range order {
		s.ExpensesByCategory = append(s.ExpensesByCategory, *totals[id])
	}
	sort.SliceStable(s.ExpensesByCategory, func(i, j int) bool {
		return s.ExpensesByCategory[i].Total.Cents > s.ExpensesByCategory[j].Total.Cents
	})

	return s
}
