package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, type) VALUES (?, ?, ?)`,
		c.UserID, c.Name, string(c.Type))
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", mapErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("create category id: %w", err)
	}
	c.ID = id
	return c, nil
}

// GetCategory fetches a category owned by userID. A category belonging
// to another user comes back as not found.
func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type FROM categories WHERE id = ? AND user_id = ?`,
		id, userID).Scan(&c.ID, &c.UserID, &c.Name, &c.Type)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", mapErr(err))
	}
	return c, nil
}

// ListCategories returns the user's categories ordered by name. An
// empty typ returns both types.
func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64, typ core.EntryType) ([]core.Category, error) {
	query := `SELECT id, user_id, name, type FROM categories WHERE user_id = ?`
	args := []any{userID}
	if typ != "" {
		query += ` AND type = ?`
		args = append(args, string(typ))
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories rows: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, userID, id int64, name string, typ core.EntryType) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ? WHERE id = ? AND user_id = ?`,
		name, string(typ), id, userID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", mapErr(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Category{}, fmt.Errorf("update category count: %w", err)
	}
	if n == 0 {
		return core.Category{}, core.ErrNotFound
	}
	return r.GetCategory(ctx, userID, id)
}

// CategoryRefCounts reports how many transactions and budgets still
// reference a category. Deletion is allowed only when both are zero.
func (r *SQLiteRepository) CategoryRefCounts(ctx context.Context, id int64) (transactions, budgets int64, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM transactions WHERE category_id = ?),
			(SELECT COUNT(*) FROM budgets WHERE category_id = ?)`,
		id, id).Scan(&transactions, &budgets)
	if err != nil {
		return 0, 0, fmt.Errorf("category ref counts: %w", err)
	}
	return transactions, budgets, nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category count: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
