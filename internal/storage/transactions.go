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

// Expense and income rows are structurally identical; every query here
// is parametrized by the ledger kind, whose Table() returns one of the
// two fixed table names.

const txColumns = `t.id, t.owner_id, t.amount, t.date, t.note, t.created_at,
	c.id, c.name, c.category_type`

func scanTransaction(scan func(dest ...any) error) (core.Transaction, error) {
	var tx core.Transaction
	var amount, date, catType string
	var note sql.NullString
	err := scan(
		&tx.ID, &tx.OwnerID, &amount, &date, &note, &tx.CreatedAt,
		&tx.Category.ID, &tx.Category.Name, &catType,
	)
	if err != nil {
		return core.Transaction{}, err
	}
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if tx.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	tx.Note = note.String
	tx.Category.Type = core.CategoryType(catType)
	return tx, nil
}

// CreateTransaction appends a record to the given ledger.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, kind core.LedgerKind, tx core.Transaction) (core.Transaction, error) {
	query := fmt.Sprintf(
		`INSERT INTO %s (owner_id, category_id, amount, date, note) VALUES (?, ?, ?, ?, ?)`,
		kind.Table(),
	)
	res, err := r.db.ExecContext(ctx, query,
		tx.OwnerID, tx.Category.ID, core.FormatAmount(tx.Amount), tx.Date.String(), nullify(tx.Note),
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert %s: %w", kind, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%s id: %w", kind, err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"ledger", kind, "id", id, "owner_id", tx.OwnerID,
		"amount", core.FormatAmount(tx.Amount), "date", tx.Date.String())

	return r.GetTransaction(ctx, kind, tx.OwnerID, id)
}

// GetTransaction fetches one record scoped to its owner. A record owned
// by someone else reads as not found.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, kind core.LedgerKind, ownerID, id int64) (core.Transaction, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM %s t JOIN categories c ON t.category_id = c.id
		 WHERE t.id = ? AND t.owner_id = ?`,
		txColumns, kind.Table(),
	)
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id, ownerID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("query %s: %w", kind, err)
	}
	return tx, nil
}

// ListTransactions returns the owner's records, newest date first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, kind core.LedgerKind, ownerID int64) ([]core.Transaction, error) {
	return r.listTransactions(ctx, kind, ownerID, 0)
}

// RecentTransactions returns the owner's most recent records, capped.
func (r *SQLiteRepository) RecentTransactions(ctx context.Context, kind core.LedgerKind, ownerID int64, limit int) ([]core.Transaction, error) {
	return r.listTransactions(ctx, kind, ownerID, limit)
}

func (r *SQLiteRepository) listTransactions(ctx context.Context, kind core.LedgerKind, ownerID int64, limit int) ([]core.Transaction, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM %s t JOIN categories c ON t.category_id = c.id
		 WHERE t.owner_id = ? ORDER BY t.date DESC, t.id DESC`,
		txColumns, kind.Table(),
	)
	args := []any{ownerID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s list: %w", kind, err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s list: %w", kind, err)
	}
	return txs, nil
}

// ListTransactionsByCategory returns the owner's records for one
// category, newest date first.
func (r *SQLiteRepository) ListTransactionsByCategory(ctx context.Context, kind core.LedgerKind, ownerID, categoryID int64) ([]core.Transaction, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM %s t JOIN categories c ON t.category_id = c.id
		 WHERE t.owner_id = ? AND t.category_id = ? ORDER BY t.date DESC, t.id DESC`,
		txColumns, kind.Table(),
	)
	rows, err := r.db.QueryContext(ctx, query, ownerID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("query %s by category: %w", kind, err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s by category: %w", kind, err)
	}
	return txs, nil
}

// UpdateTransaction rewrites a record's mutable fields. The owner does
// not change; a cross-owner id reads as not found.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, kind core.LedgerKind, tx core.Transaction) (core.Transaction, error) {
	query := fmt.Sprintf(
		`UPDATE %s SET category_id = ?, amount = ?, date = ?, note = ?
		 WHERE id = ? AND owner_id = ?`,
		kind.Table(),
	)
	res, err := r.db.ExecContext(ctx, query,
		tx.Category.ID, core.FormatAmount(tx.Amount), tx.Date.String(), nullify(tx.Note),
		tx.ID, tx.OwnerID,
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update %s: %w", kind, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update %s result: %w", kind, err)
	}
	if affected == 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return r.GetTransaction(ctx, kind, tx.OwnerID, tx.ID)
}

// DeleteTransaction removes a record scoped to its owner.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, kind core.LedgerKind, ownerID, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND owner_id = ?`, kind.Table())
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s result: %w", kind, err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Transaction deleted", "ledger", kind, "id", id, "owner_id", ownerID)
	return nil
}

// SumTransactions totals the owner's ledger for the dashboard.
func (r *SQLiteRepository) SumTransactions(ctx context.Context, kind core.LedgerKind, ownerID int64) (decimal.Decimal, error) {
	query := fmt.Sprintf(`SELECT amount FROM %s WHERE owner_id = ?`, kind.Table())
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("query %s amounts: %w", kind, err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, fmt.Errorf("scan %s amount: %w", kind, err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse %s amount %q: %w", kind, raw, err)
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("iterate %s amounts: %w", kind, err)
	}
	return total, nil
}

func nullify(s string) any {
	if s == "" {
		return nil
	}
	return s
}
