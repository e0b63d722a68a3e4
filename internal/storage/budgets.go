package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"tally/internal/core"
)

const budgetColumns = `b.id, b.owner_id, b.start_date, b.end_date, b.amount, b.note,
	b.frequency, b.dates, b.current_spending, b.remaining_amount, b.percentage,
	c.id, c.name, c.category_type`

func scanBudget(scan func(dest ...any) error) (core.Budget, error) {
	var b core.Budget
	var start, amount, frequency, spending, remaining, percentage, catType string
	var end, note sql.NullString
	err := scan(
		&b.ID, &b.OwnerID, &start, &end, &amount, &note,
		&frequency, &b.Dates, &spending, &remaining, &percentage,
		&b.Category.ID, &b.Category.Name, &catType,
	)
	if err != nil {
		return core.Budget{}, err
	}
	if b.StartDate, err = core.ParseDate(start); err != nil {
		return core.Budget{}, fmt.Errorf("parse start date %q: %w", start, err)
	}
	if end.Valid {
		d, err := core.ParseDate(end.String)
		if err != nil {
			return core.Budget{}, fmt.Errorf("parse end date %q: %w", end.String, err)
		}
		b.EndDate = &d
	}
	for _, f := range []struct {
		dst *decimal.Decimal
		raw string
	}{
		{&b.Amount, amount},
		{&b.Spending, spending},
		{&b.Remaining, remaining},
		{&b.Percentage, percentage},
	} {
		if *f.dst, err = decimal.NewFromString(f.raw); err != nil {
			return core.Budget{}, fmt.Errorf("parse budget amount %q: %w", f.raw, err)
		}
	}
	b.Note = note.String
	b.Frequency = core.Frequency(frequency)
	b.Category.Type = core.CategoryType(catType)
	return b, nil
}

func endDateArg(b core.Budget) any {
	if b.EndDate == nil {
		return nil
	}
	return b.EndDate.String()
}

// CreateBudget inserts a budget with its derived fields. A duplicate
// (category, start, end) range is a conflict.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (owner_id, category_id, start_date, end_date, amount, note,
			frequency, dates, current_spending, remaining_amount, percentage)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.OwnerID, b.Category.ID, b.StartDate.String(), endDateArg(b),
		core.FormatAmount(b.Amount), nullify(b.Note), string(b.Frequency), b.Dates,
		core.FormatAmount(b.Spending), core.FormatAmount(b.Remaining), core.FormatAmount(b.Percentage),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Budget{}, core.ErrConflict
		}
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget id: %w", err)
	}

	slog.InfoContext(ctx, "Budget created",
		"id", id, "owner_id", b.OwnerID, "category_id", b.Category.ID,
		"amount", core.FormatAmount(b.Amount), "frequency", b.Frequency)

	return r.GetBudget(ctx, b.OwnerID, id)
}

// GetBudget fetches one budget scoped to its owner.
func (r *SQLiteRepository) GetBudget(ctx context.Context, ownerID, id int64) (core.Budget, error) {
	query := `SELECT ` + budgetColumns + `
		FROM budgets b JOIN categories c ON b.category_id = c.id
		WHERE b.id = ? AND b.owner_id = ?`
	b, err := scanBudget(r.db.QueryRowContext(ctx, query, id, ownerID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("query budget: %w", err)
	}
	return b, nil
}

// ListBudgets returns the owner's budgets, latest start date first.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, ownerID int64) ([]core.Budget, error) {
	return r.listBudgets(ctx, ownerID, 0)
}

// RecentBudgets returns the owner's most recent budgets, capped.
func (r *SQLiteRepository) RecentBudgets(ctx context.Context, ownerID int64, limit int) ([]core.Budget, error) {
	return r.listBudgets(ctx, ownerID, limit)
}

func (r *SQLiteRepository) listBudgets(ctx context.Context, ownerID int64, limit int) ([]core.Budget, error) {
	query := `SELECT ` + budgetColumns + `
		FROM budgets b JOIN categories c ON b.category_id = c.id
		WHERE b.owner_id = ? ORDER BY b.start_date DESC, b.id DESC`
	args := []any{ownerID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return budgets, nil
}

// ListBudgetsByCategory returns the owner's budgets for one category.
func (r *SQLiteRepository) ListBudgetsByCategory(ctx context.Context, ownerID, categoryID int64) ([]core.Budget, error) {
	query := `SELECT ` + budgetColumns + `
		FROM budgets b JOIN categories c ON b.category_id = c.id
		WHERE b.owner_id = ? AND b.category_id = ?
		ORDER BY b.start_date DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("query budgets by category: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets by category: %w", err)
	}
	return budgets, nil
}

// UpdateBudget rewrites a budget including its derived fields. Used by
// full-record updates that already revalidated and recomputed.
func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET category_id = ?, start_date = ?, end_date = ?, amount = ?,
			note = ?, frequency = ?, dates = ?, current_spending = ?,
			remaining_amount = ?, percentage = ?
		 WHERE id = ? AND owner_id = ?`,
		b.Category.ID, b.StartDate.String(), endDateArg(b), core.FormatAmount(b.Amount),
		nullify(b.Note), string(b.Frequency), b.Dates, core.FormatAmount(b.Spending),
		core.FormatAmount(b.Remaining), core.FormatAmount(b.Percentage),
		b.ID, b.OwnerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Budget{}, core.ErrConflict
		}
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget result: %w", err)
	}
	if affected == 0 {
		return core.Budget{}, core.ErrNotFound
	}
	return r.GetBudget(ctx, b.OwnerID, b.ID)
}

// UpdateBudgetDerived persists the outcome of a recomputation: target,
// spending, and both derived fields in one statement, so no reader ever
// observes remaining and percentage disagreeing.
func (r *SQLiteRepository) UpdateBudgetDerived(ctx context.Context, b core.Budget) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET amount = ?, current_spending = ?, remaining_amount = ?, percentage = ?
		 WHERE id = ? AND owner_id = ?`,
		core.FormatAmount(b.Amount), core.FormatAmount(b.Spending),
		core.FormatAmount(b.Remaining), core.FormatAmount(b.Percentage),
		b.ID, b.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update budget derived fields: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update budget derived result: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Budget progress recomputed",
		"id", b.ID, "owner_id", b.OwnerID,
		"remaining", core.FormatAmount(b.Remaining), "percentage", core.FormatAmount(b.Percentage))
	return nil
}

// UpdateBudgetNote rewrites only the note; derived fields are untouched.
func (r *SQLiteRepository) UpdateBudgetNote(ctx context.Context, ownerID, id int64, note string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET note = ? WHERE id = ? AND owner_id = ?`,
		nullify(note), id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("update budget note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update budget note result: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteBudget removes a budget scoped to its owner.
func (r *SQLiteRepository) DeleteBudget(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget result: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// CountBudgets returns how many budgets the owner holds.
func (r *SQLiteRepository) CountBudgets(ctx context.Context, ownerID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM budgets WHERE owner_id = ?`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count budgets: %w", err)
	}
	return n, nil
}
