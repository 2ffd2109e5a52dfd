package storage

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// Dates are stored as TEXT in ISO form so range filters stay plain
// lexicographic comparisons.
const dateLayout = "2006-01-02"

func dateText(d core.Date) string {
	return d.Format(dateLayout)
}

func scanDate(s string) (core.Date, error) {
	return core.ParseDate(s)
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, category_id, amount_cents, type, description, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, t.CategoryID, t.Amount.Cents, string(t.Type), t.Description, dateText(t.Date))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", mapErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction id: %w", err)
	}
	t.ID = id
	return t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (core.TransactionWithCategory, error) {
	var (
		t    core.TransactionWithCategory
		date string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT t.id, t.user_id, t.category_id, t.amount_cents, t.type, t.description, t.date,
		        c.name, c.type
		 FROM transactions t JOIN categories c ON c.id = t.category_id
		 WHERE t.id = ? AND t.user_id = ?`,
		id, userID).Scan(&t.ID, &t.UserID, &t.CategoryID, &t.Amount.Cents, &t.Type,
		&t.Description, &date, &t.CategoryName, &t.CategoryType)
	if err != nil {
		return core.TransactionWithCategory{}, fmt.Errorf("get transaction: %w", mapErr(err))
	}
	if t.Date, err = scanDate(date); err != nil {
		return core.TransactionWithCategory{}, fmt.Errorf("get transaction date: %w", err)
	}
	return t, nil
}

// ListTransactions returns the caller's transactions newest first,
// narrowed by the filter. An explicit start/end range wins over the
// month/year pair.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, f core.TransactionFilter) ([]core.TransactionWithCategory, error) {
	var (
		where = []string{"t.user_id = ?"}
		args  = []any{userID}
	)
	if f.Search != "" {
		where = append(where, "t.description LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}
	if f.CategoryID != 0 {
		where = append(where, "t.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Type != "" {
		where = append(where, "t.type = ?")
		args = append(args, string(f.Type))
	}
	if start, end, ok := f.DateRange(); ok {
		if !start.IsZero() {
			where = append(where, "t.date >= ?")
			args = append(args, dateText(start))
		}
		if !end.IsZero() {
			where = append(where, "t.date <= ?")
			args = append(args, dateText(end))
		}
	}

	query := `SELECT t.id, t.user_id, t.category_id, t.amount_cents, t.type, t.description, t.date,
	                 c.name, c.type
	          FROM transactions t JOIN categories c ON c.id = t.category_id
	          WHERE ` + strings.Join(where, " AND ") + `
	          ORDER BY t.date DESC, t.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.TransactionWithCategory
	for rows.Next() {
		var (
			t    core.TransactionWithCategory
			date string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.Amount.Cents, &t.Type,
			&t.Description, &date, &t.CategoryName, &t.CategoryType); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = scanDate(date); err != nil {
			return nil, fmt.Errorf("scan transaction date: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions rows: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET category_id = ?, amount_cents = ?, type = ?, description = ?, date = ?
		 WHERE id = ? AND user_id = ?`,
		t.CategoryID, t.Amount.Cents, string(t.Type), t.Description, dateText(t.Date), t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", mapErr(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction count: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction count: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// SumExpenses totals Expense transactions for one category inside one
// calendar month.
func (r *SQLiteRepository) SumExpenses(ctx context.Context, userID, categoryID int64, month, year int) (core.Money, error) {
	start, end := core.MonthRange(month, year)
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
		 WHERE user_id = ? AND category_id = ? AND type = 'Expense' AND date >= ? AND date <= ?`,
		userID, categoryID,
		start.Format(dateLayout), end.Format(dateLayout)).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money{Cents: cents}, nil
}
