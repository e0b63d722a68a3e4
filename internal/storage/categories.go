package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"tally/internal/core"
)

// CreateCategory inserts a category. A duplicate (name, type) pair is a
// conflict.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, category_type) VALUES (?, ?)`,
		cat.Name, string(cat.Type),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, core.ErrConflict
		}
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	cat.ID = id

	slog.InfoContext(ctx, "Category created", "id", cat.ID, "name", cat.Name, "type", cat.Type)
	return cat, nil
}

// GetCategory fetches a category by id.
func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var cat core.Category
	var typ string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, category_type FROM categories WHERE id = ?`, id,
	).Scan(&cat.ID, &cat.Name, &typ)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("query category: %w", err)
	}
	cat.Type = core.CategoryType(typ)
	return cat, nil
}

// ListCategories returns all categories ordered by name, optionally
// filtered by type. Categories are shared across principals.
func (r *SQLiteRepository) ListCategories(ctx context.Context, typeFilter *core.CategoryType) ([]core.Category, error) {
	query := `SELECT id, name, category_type FROM categories`
	args := []any{}
	if typeFilter != nil {
		query += ` WHERE category_type = ?`
		args = append(args, string(*typeFilter))
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var cat core.Category
		var typ string
		if err := rows.Scan(&cat.ID, &cat.Name, &typ); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cat.Type = core.CategoryType(typ)
		cats = append(cats, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

// UpdateCategory rewrites a category's name and type.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, category_type = ? WHERE id = ?`,
		cat.Name, string(cat.Type), cat.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, core.ErrConflict
		}
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Category{}, fmt.Errorf("update category result: %w", err)
	}
	if affected == 0 {
		return core.Category{}, core.ErrNotFound
	}
	return cat, nil
}

// DeleteCategory removes a category unless transactions still reference
// it, in which case the blocking counts are reported to the caller.
// Budgets for the category do not block: they are deleted with it.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	var expenseCount, incomeCount int64
	err = tx.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM expenses WHERE category_id = ?),
			(SELECT COUNT(*) FROM income WHERE category_id = ?)`,
		id, id,
	).Scan(&expenseCount, &incomeCount)
	if err != nil {
		return fmt.Errorf("count category references: %w", err)
	}

	if expenseCount > 0 || incomeCount > 0 {
		return &core.CategoryInUseError{ExpenseCount: expenseCount, IncomeCount: incomeCount}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM budgets WHERE category_id = ?`, id); err != nil {
		return fmt.Errorf("delete category budgets: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category result: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete category: %w", err)
	}

	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}
