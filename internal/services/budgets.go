package services

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// BudgetStore is the persistence surface the budget service needs.
type BudgetStore interface {
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	GetBudget(ctx context.Context, userID, id int64) (core.Budget, error)
	ListBudgets(ctx context.Context, userID int64, month, year int) ([]core.Budget, error)
	UpdateBudgetAmount(ctx context.Context, userID, id int64, amount core.Money) (core.Budget, error)
	DeleteBudget(ctx context.Context, userID, id int64) error
	GetCategory(ctx context.Context, userID, id int64) (core.Category, error)
	SumExpenses(ctx context.Context, userID, categoryID int64, month, year int) (core.Money, error)
	ListTransactions(ctx context.Context, userID int64, f core.TransactionFilter) ([]core.TransactionWithCategory, error)
}

type BudgetService struct {
	store  BudgetStore
	logger *log.Logger
}

func NewBudgetService(store BudgetStore, logger *log.Logger) *BudgetService {
	return &BudgetService{
		store:  store,
		logger: logger.WithComponent(log.ComponentService),
	}
}

// Create sets a monthly limit on an owned Expense category. The
// (user, category, month, year) uniqueness is enforced by the store.
func (s *BudgetService) Create(ctx context.Context, ownerUserID, categoryID int64, amount core.Money, month, year int) (core.Budget, error) {
	b := core.Budget{
		UserID:     ownerUserID,
		CategoryID: categoryID,
		Amount:     amount,
		Month:      month,
		Year:       year,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	category, err := s.store.GetCategory(ctx, ownerUserID, categoryID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Budget{}, core.ErrInvalidCategory
		}
		return core.Budget{}, err
	}
	if category.Type != core.Expense {
		return core.Budget{}, core.ErrInvalidCategory
	}

	created, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}

	s.logger.InfoContext(ctx, "budget created",
		log.FieldUserID, ownerUserID,
		log.FieldBudgetID, created.ID,
		log.FieldCategoryID, categoryID,
		log.FieldMonth, month,
		log.FieldYear, year,
		log.FieldAmount, amount.Cents)
	return created, nil
}

func (s *BudgetService) Get(ctx context.Context, ownerUserID, id int64) (core.Budget, error) {
	return s.store.GetBudget(ctx, ownerUserID, id)
}

// List returns the caller's budgets, optionally scoped to one period.
// Month and year come together or not at all.
func (s *BudgetService) List(ctx context.Context, ownerUserID int64, month, year int) ([]core.Budget, error) {
	if (month == 0) != (year == 0) {
		return nil, fmt.Errorf("%w: month and year must be provided together", core.ErrValidation)
	}
	if month != 0 {
		if err := core.ValidateMonth(month); err != nil {
			return nil, err
		}
	}
	return s.store.ListBudgets(ctx, ownerUserID, month, year)
}

// UpdateAmount is the only mutation a budget supports.
func (s *BudgetService) UpdateAmount(ctx context.Context, ownerUserID, id int64, amount core.Money) (core.Budget, error) {
	if err := amount.Validate(); err != nil {
		return core.Budget{}, err
	}
	updated, err := s.store.UpdateBudgetAmount(ctx, ownerUserID, id, amount)
	if err != nil {
		return core.Budget{}, err
	}
	s.logger.InfoContext(ctx, "budget amount updated",
		log.FieldUserID, ownerUserID,
		log.FieldBudgetID, id,
		log.FieldAmount, amount.Cents)
	return updated, nil
}

func (s *BudgetService) Delete(ctx context.Context, ownerUserID, id int64) error {
	if err := s.store.DeleteBudget(ctx, ownerUserID, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "budget deleted",
		log.FieldUserID, ownerUserID,
		log.FieldBudgetID, id)
	return nil
}

// Progress reports every budget for the period with its spent amount,
// capped percentage and exceedance.
func (s *BudgetService) Progress(ctx context.Context, ownerUserID int64, month, year int) ([]core.BudgetProgress, error) {
	if err := core.ValidateMonth(month); err != nil {
		return nil, err
	}

	budgets, err := s.store.ListBudgets(ctx, ownerUserID, month, year)
	if err != nil {
		return nil, err
	}

	out := make([]core.BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		spent, err := s.store.SumExpenses(ctx, ownerUserID, b.CategoryID, month, year)
		if err != nil {
			return nil, err
		}
		out = append(out, core.NewBudgetProgress(b, spent))
	}
	return out, nil
}

// PeriodSummary aggregates one calendar month of the caller's
// transactions.
func (s *BudgetService) PeriodSummary(ctx context.Context, ownerUserID int64, month, year int) (core.PeriodSummary, error) {
	if err := core.ValidateMonth(month); err != nil {
		return core.PeriodSummary{}, err
	}

	txs, err := s.store.ListTransactions(ctx, ownerUserID, core.TransactionFilter{Month: month, Year: year})
	if err != nil {
		return core.PeriodSummary{}, err
	}
	return core.ComputePeriodSummary(month, year, txs), nil
}
