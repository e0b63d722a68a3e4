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

func scanGoal(scan func(dest ...any) error) (core.Goal, error) {
	var g core.Goal
	var target, deadline string
	var note sql.NullString
	err := scan(&g.ID, &g.OwnerID, &g.Name, &target, &deadline, &note, &g.Status)
	if err != nil {
		return core.Goal{}, err
	}
	if g.Target, err = decimal.NewFromString(target); err != nil {
		return core.Goal{}, fmt.Errorf("parse target %q: %w", target, err)
	}
	if g.Deadline, err = core.ParseDate(deadline); err != nil {
		return core.Goal{}, fmt.Errorf("parse deadline %q: %w", deadline, err)
	}
	g.Note = note.String
	return g, nil
}

// CreateGoal inserts a goal.
func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (owner_id, name, target, deadline, note, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.OwnerID, g.Name, core.FormatAmount(g.Target), g.Deadline.String(),
		nullify(g.Note), g.Status,
	)
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal id: %w", err)
	}
	g.ID = id

	slog.InfoContext(ctx, "Goal created",
		"id", g.ID, "owner_id", g.OwnerID, "name", g.Name,
		"target", core.FormatAmount(g.Target), "deadline", g.Deadline.String())
	return g, nil
}

// GetGoal fetches one goal scoped to its owner.
func (r *SQLiteRepository) GetGoal(ctx context.Context, ownerID, id int64) (core.Goal, error) {
	g, err := scanGoal(r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, target, deadline, note, status
		 FROM goals WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, core.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("query goal: %w", err)
	}
	return g, nil
}

// ListGoals returns the owner's goals, nearest deadline first.
func (r *SQLiteRepository) ListGoals(ctx context.Context, ownerID int64) ([]core.Goal, error) {
	return r.listGoals(ctx, ownerID, 0)
}

// RecentGoals returns the owner's nearest-deadline goals, capped.
func (r *SQLiteRepository) RecentGoals(ctx context.Context, ownerID int64, limit int) ([]core.Goal, error) {
	return r.listGoals(ctx, ownerID, limit)
}

func (r *SQLiteRepository) listGoals(ctx context.Context, ownerID int64, limit int) ([]core.Goal, error) {
	query := `SELECT id, owner_id, name, target, deadline, note, status
		FROM goals WHERE owner_id = ? ORDER BY deadline, id`
	args := []any{ownerID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return goals, nil
}

// UpdateGoal rewrites a goal's mutable fields scoped to its owner.
func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET name = ?, target = ?, deadline = ?, note = ?, status = ?
		 WHERE id = ? AND owner_id = ?`,
		g.Name, core.FormatAmount(g.Target), g.Deadline.String(), nullify(g.Note), g.Status,
		g.ID, g.OwnerID,
	)
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal result: %w", err)
	}
	if affected == 0 {
		return core.Goal{}, core.ErrNotFound
	}
	return g, nil
}

// DeleteGoal removes a goal scoped to its owner.
func (r *SQLiteRepository) DeleteGoal(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal result: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// CountGoals returns how many goals the owner holds.
func (r *SQLiteRepository) CountGoals(ctx context.Context, ownerID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM goals WHERE owner_id = ?`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count goals: %w", err)
	}
	return n, nil
}
