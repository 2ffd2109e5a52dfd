package http

import (
	"fintrack/internal/core"
)

// Wire representations. Amounts travel as decimal strings, dates as
// YYYY-MM-DD.
type (
	categoryResponse struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	}

	transactionResponse struct {
		ID           int64  `json:"id"`
		CategoryID   int64  `json:"category_id"`
		CategoryName string `json:"category_name,omitempty"`
		Amount       string `json:"amount"`
		Type         string `json:"type"`
		Description  string `json:"description,omitempty"`
		Date         string `json:"date"`
	}

	budgetResponse struct {
		ID         int64  `json:"id"`
		CategoryID int64  `json:"category_id"`
		Amount     string `json:"amount"`
		Month      int    `json:"month"`
		Year       int    `json:"year"`
	}

	progressResponse struct {
		Budget          budgetResponse `json:"budget"`
		SpentAmount     string         `json:"spent_amount"`
		ProgressPercent float64        `json:"progress_percent"`
		Exceeded        bool           `json:"exceeded"`
		ExceedAmount    string         `json:"exceed_amount"`
	}

	categoryTotalResponse struct {
		CategoryID   int64  `json:"category_id"`
		CategoryName string `json:"category_name"`
		Total        string `json:"total"`
	}

	summaryResponse struct {
		Month              int                     `json:"month"`
		Year               int                     `json:"year"`
		TotalIncome        string                  `json:"total_income"`
		TotalExpense       string                  `json:"total_expense"`
		NetAmount          string                  `json:"net_amount"`
		ExpensesByCategory []categoryTotalResponse `json:"expenses_by_category"`
		TransactionCount   int                     `json:"transaction_count"`
	}

	userResponse struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
)

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Type: string(c.Type)}
}

func toCategoryResponses(cs []core.Category) []categoryResponse {
	out := make([]categoryResponse, len(cs))
	for i, c := range cs {
		out[i] = toCategoryResponse(c)
	}
	return out
}

func toTransactionResponse(t core.Transaction, categoryName string) transactionResponse {
	return transactionResponse{
		ID:           t.ID,
		CategoryID:   t.CategoryID,
		CategoryName: categoryName,
		Amount:       t.Amount.String(),
		Type:         string(t.Type),
		Description:  t.Description,
		Date:         t.Date.Format("2006-01-02"),
	}
}

func toTransactionResponses(ts []core.TransactionWithCategory) []transactionResponse {
	out := make([]transactionResponse, len(ts))
	for i, t := range ts {
		out[i] = toTransactionResponse(t.Transaction, t.CategoryName)
	}
	return out
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:         b.ID,
		CategoryID: b.CategoryID,
		Amount:     b.Amount.String(),
		Month:      b.Month,
		Year:       b.Year,
	}
}

func toProgressResponse(p core.BudgetProgress) progressResponse {
	return progressResponse{
		Budget:          toBudgetResponse(p.Budget),
		SpentAmount:     p.SpentAmount.String(),
		ProgressPercent: p.ProgressPercent,
		Exceeded:        p.Exceeded,
		ExceedAmount:    p.ExceedAmount.String(),
	}
}

func toSummaryResponse(s core.PeriodSummary) summaryResponse {
	byCategory := make([]categoryTotalResponse, len(s.ExpensesByCategory))
	for i, ct := range s.ExpensesByCategory {
		byCategory[i] = categoryTotalResponse{
			CategoryID:   ct.CategoryID,
			CategoryName: ct.CategoryName,
			Total:        ct.Total.String(),
		}
	}
	return summaryResponse{
		Month:              s.Month,
		Year:               s.Year,
		TotalIncome:        s.TotalIncome.String(),
		TotalExpense:       s.TotalExpense.String(),
		NetAmount:          s.NetAmount.String(),
		ExpensesByCategory: byCategory,
		TransactionCount:   s.TransactionCount,
	}
}
