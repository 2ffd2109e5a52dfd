package services

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// TransactionStore is the persistence surface the transaction service needs.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, userID, id int64) (core.TransactionWithCategory, error)
	ListTransactions(ctx context.Context, userID int64, f core.TransactionFilter) ([]core.TransactionWithCategory, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id int64) error
	SumExpenses(ctx context.Context, userID, categoryID int64, month, year int) (core.Money, error)
	GetCategory(ctx context.Context, userID, id int64) (core.Category, error)
	FindBudget(ctx context.Context, userID, categoryID int64, month, year int) (core.Budget, error)
}

// AlertPublisher emits budget-exceeded events. Publishing is best
// effort: a failure is logged and never fails the write that caused it.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, alert amqp.BudgetAlertMessage) error
}

type CreateTransactionInput struct {
	CategoryID  int64
	Amount      core.Money
	Type        core.EntryType
	Description string
	Date        core.Date
}

// UpdateTransactionInput carries a partial update. Nil fields are left
// untouched; ClearDescription distinguishes "set to empty" from
// "omitted".
type UpdateTransactionInput struct {
	CategoryID       *int64
	Amount           *core.Money
	Type             *core.EntryType
	Description      *string
	ClearDescription bool
	Date             *core.Date
}

type TransactionService struct {
	store  TransactionStore
	alerts AlertPublisher
	logger *log.Logger
}

// NewTransactionService wires the service. alerts may be nil when no
// broker is configured.
func NewTransactionService(store TransactionStore, alerts AlertPublisher, logger *log.Logger) *TransactionService {
	return &TransactionService{
		store:  store,
		alerts: alerts,
		logger: logger.WithComponent(log.ComponentService),
	}
}

func (s *TransactionService) Create(ctx context.Context, ownerUserID int64, in CreateTransactionInput) (core.Transaction, error) {
	t := core.Transaction{
		UserID:      ownerUserID,
		CategoryID:  in.CategoryID,
		Amount:      in.Amount,
		Type:        in.Type,
		Description: in.Description,
		Date:        in.Date,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	category, err := s.store.GetCategory(ctx, ownerUserID, in.CategoryID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Transaction{}, core.ErrInvalidCategory
		}
		return core.Transaction{}, err
	}
	if category.Type != t.Type {
		return core.Transaction{}, core.ErrTypeMismatch
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "transaction created",
		log.FieldUserID, ownerUserID,
		log.FieldTxID, created.ID,
		log.FieldCategoryID, created.CategoryID,
		log.FieldAmount, created.Amount.Cents,
		"type", string(created.Type))

	s.checkBudget(ctx, created)
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, ownerUserID, id int64) (core.TransactionWithCategory, error) {
	return s.store.GetTransaction(ctx, ownerUserID, id)
}

func (s *TransactionService) List(ctx context.Context, ownerUserID int64, f core.TransactionFilter) ([]core.TransactionWithCategory, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, ownerUserID, f)
}

// Update applies a partial update. When the category or type changes,
// the pair must still agree: a new category is checked against the
// effective type, and a type change alone must match the current
// category.
func (s *TransactionService) Update(ctx context.Context, ownerUserID, id int64, in UpdateTransactionInput) (core.TransactionWithCategory, error) {
	existing, err := s.store.GetTransaction(ctx, ownerUserID, id)
	if err != nil {
		return core.TransactionWithCategory{}, err
	}

	t := existing.Transaction
	categoryType := existing.CategoryType

	if in.CategoryID != nil && *in.CategoryID != t.CategoryID {
		category, err := s.store.GetCategory(ctx, ownerUserID, *in.CategoryID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.TransactionWithCategory{}, core.ErrInvalidCategory
			}
			return core.TransactionWithCategory{}, err
		}
		t.CategoryID = category.ID
		categoryType = category.Type
	}
	if in.Type != nil {
		t.Type = *in.Type
	}
	if in.Amount != nil {
		t.Amount = *in.Amount
	}
	if in.Date != nil {
		t.Date = *in.Date
	}
	if in.ClearDescription {
		t.Description = ""
	} else if in.Description != nil {
		t.Description = *in.Description
	}

	if err := t.Validate(); err != nil {
		return core.TransactionWithCategory{}, err
	}
	if t.Type != categoryType {
		return core.TransactionWithCategory{}, core.ErrTypeMismatch
	}

	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return core.TransactionWithCategory{}, err
	}

	s.logger.InfoContext(ctx, "transaction updated",
		log.FieldUserID, ownerUserID,
		log.FieldTxID, id)

	s.checkBudget(ctx, t)
	return s.store.GetTransaction(ctx, ownerUserID, id)
}

func (s *TransactionService) Delete(ctx context.Context, ownerUserID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, ownerUserID, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "transaction deleted",
		log.FieldUserID, ownerUserID,
		log.FieldTxID, id)
	return nil
}

// checkBudget publishes an alert when the transaction's category is
// over budget for the month it falls in. Best effort only.
func (s *TransactionService) checkBudget(ctx context.Context, t core.Transaction) {
	if s.alerts == nil || t.Type != core.Expense {
		return
	}
	month, year := t.Date.Month(), t.Date.Year()

	budget, err := s.store.FindBudget(ctx, t.UserID, t.CategoryID, month, year)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			s.logger.WarnContext(ctx, "budget lookup for alert failed", log.FieldError, err)
		}
		return
	}

	spent, err := s.store.SumExpenses(ctx, t.UserID, t.CategoryID, month, year)
	if err != nil {
		s.logger.WarnContext(ctx, "spent sum for alert failed", log.FieldError, err)
		return
	}
	if spent.Cents <= budget.Amount.Cents {
		return
	}

	alert := amqp.BudgetAlertMessage{
		BudgetID:   budget.ID,
		UserID:     t.UserID,
		CategoryID: t.CategoryID,
		Month:      month,
		Year:       year,
		SpentCents: spent.Cents,
		LimitCents: budget.Amount.Cents,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.alerts.PublishBudgetAlert(ctx, alert); err != nil {
		s.logger.WarnContext(ctx, "budget alert publish failed",
			log.FieldBudgetID, budget.ID,
			log.FieldError, err)
		return
	}
	s.logger.InfoContext(ctx, "budget alert published",
		log.FieldBudgetID, budget.ID,
		log.FieldUserID, t.UserID,
		"spent_cents", spent.Cents,
		"limit_cents", budget.Amount.Cents)
}
