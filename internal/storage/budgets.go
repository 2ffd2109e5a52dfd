package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category_id, amount_cents, month, year)
		 VALUES (?, ?, ?, ?, ?)`,
		b.UserID, b.CategoryID, b.Amount.Cents, b.Month, b.Year)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", mapErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget id: %w", err)
	}
	b.ID = id
	return b, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, userID, id int64) (core.Budget, error) {
	var b core.Budget
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category_id, amount_cents, month, year FROM budgets
		 WHERE id = ? AND user_id = ?`,
		id, userID).Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount.Cents, &b.Month, &b.Year)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", mapErr(err))
	}
	return b, nil
}

// ListBudgets returns the caller's budgets, most recent period first.
// When month and year are both nonzero only that period is returned.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64, month, year int) ([]core.Budget, error) {
	query := `SELECT id, user_id, category_id, amount_cents, month, year FROM budgets
	          WHERE user_id = ?`
	args := []any{userID}
	if month != 0 && year != 0 {
		query += ` AND month = ? AND year = ?`
		args = append(args, month, year)
	}
	query += ` ORDER BY year DESC, month DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount.Cents, &b.Month, &b.Year); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budgets rows: %w", err)
	}
	return out, nil
}

// FindBudget looks up the budget covering one category in one period,
// used when a new expense may cross a budget limit.
func (r *SQLiteRepository) FindBudget(ctx context.Context, userID, categoryID int64, month, year int) (core.Budget, error) {
	var b core.Budget
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category_id, amount_cents, month, year FROM budgets
		 WHERE user_id = ? AND category_id = ? AND month = ? AND year = ?`,
		userID, categoryID, month, year).Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount.Cents, &b.Month, &b.Year)
	if err != nil {
		return core.Budget{}, fmt.Errorf("find budget: %w", mapErr(err))
	}
	return b, nil
}

// UpdateBudgetAmount changes the limit. Category and period are fixed
// at creation.
func (r *SQLiteRepository) UpdateBudgetAmount(ctx context.Context, userID, id int64, amount core.Money) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET amount_cents = ? WHERE id = ? AND user_id = ?`,
		amount.Cents, id, userID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget amount: %w", mapErr(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget count: %w", err)
	}
	if n == 0 {
		return core.Budget{}, core.ErrNotFound
	}
	return r.GetBudget(ctx, userID, id)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget count: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
