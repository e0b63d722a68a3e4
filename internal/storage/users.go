package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tally/internal/core"
)

// User is an account that owns ledger records. The token is the bearer
// credential presented by API clients.
type User struct {
	ID        int64
	Username  string
	Token     string
	CreatedAt time.Time
}

// CreateUser registers a user and mints a fresh API token for it.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username string) (User, error) {
	u := User{
		Username: username,
		Token:    uuid.NewString(),
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, token) VALUES (?, ?)`,
		u.Username, u.Token,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, core.ErrConflict
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("user id: %w", err)
	}
	u.ID = id

	slog.InfoContext(ctx, "User created", "id", u.ID, "username", u.Username)
	return u, nil
}

// GetUserByToken resolves a bearer token to its user.
func (r *SQLiteRepository) GetUserByToken(ctx context.Context, token string) (User, error) {
	var u User
	var created string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, token, created_at FROM users WHERE token = ?`,
		token,
	).Scan(&u.ID, &u.Username, &u.Token, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, core.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("query user by token: %w", err)
	}
	u.CreatedAt = parseTimestamp(created)
	return u, nil
}

// GetUserByUsername looks a user up by name.
func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	var created string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, token, created_at FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.Token, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, core.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("query user by username: %w", err)
	}
	u.CreatedAt = parseTimestamp(created)
	return u, nil
}

// GetOrCreateUser resolves a username, registering it on first use. The
// local CLI relies on this to bootstrap its principal.
func (r *SQLiteRepository) GetOrCreateUser(ctx context.Context, username string) (User, error) {
	u, err := r.GetUserByUsername(ctx, username)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return User{}, err
	}
	u, err = r.CreateUser(ctx, username)
	if errors.Is(err, core.ErrConflict) {
		// Lost a race with a concurrent registration.
		return r.GetUserByUsername(ctx, username)
	}
	return u, err
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
