package storage

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// BudgetAlertRecord is the persisted trace of a budget-exceeded
// notification handled by the worker.
type BudgetAlertRecord struct {
	ID        int64
	BudgetID  int64
	UserID    int64
	Spent     core.Money
	Limit     core.Money
	CreatedAt time.Time
}

func (r *SQLiteRepository) RecordBudgetAlert(ctx context.Context, a BudgetAlertRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budget_alerts (budget_id, user_id, spent_cents, limit_cents)
		 VALUES (?, ?, ?, ?)`,
		a.BudgetID, a.UserID, a.Spent.Cents, a.Limit.Cents)
	if err != nil {
		return 0, fmt.Errorf("record budget alert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record budget alert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListBudgetAlerts(ctx context.Context, userID int64, limit int) ([]BudgetAlertRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, budget_id, user_id, spent_cents, limit_cents, created_at
		 FROM budget_alerts WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list budget alerts: %w", err)
	}
	defer rows.Close()

	var out []BudgetAlertRecord
	for rows.Next() {
		var a BudgetAlertRecord
		if err := rows.Scan(&a.ID, &a.BudgetID, &a.UserID, &a.Spent.Cents, &a.Limit.Cents, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan budget alert: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budget alerts rows: %w", err)
	}
	return out, nil
}
