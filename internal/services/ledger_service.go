package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"tally/internal/core"
	"tally/internal/storage"
)

// LedgerService records expenses and income. One instance serves both
// ledgers, parametrized by the ledger kind.
type LedgerService struct {
	storage *storage.SQLiteRepository
	kind    core.LedgerKind
}

func NewLedgerService(storage *storage.SQLiteRepository, kind core.LedgerKind) *LedgerService {
	return &LedgerService{storage: storage, kind: kind}
}

// Kind returns which ledger this service writes to.
func (s *LedgerService) Kind() core.LedgerKind { return s.kind }

// resolveCategory merges a missing-category violation into the field
// error map so callers see it alongside the format violations.
func (s *LedgerService) resolveCategory(ctx context.Context, id int64, errs core.FieldErrors) (core.Category, core.FieldErrors) {
	cat, err := s.storage.GetCategory(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		errs.Add("category_id", core.MsgInvalidRef)
		return core.Category{}, errs
	}
	if err != nil {
		slog.ErrorContext(ctx, "Category lookup failed", "category_id", id, "error", err)
		errs.Add("category_id", core.MsgInvalidRef)
		return core.Category{}, errs
	}
	if cat.Type != s.kind.CategoryType() {
		slog.WarnContext(ctx, "Category type differs from ledger",
			"category_id", id, "category_type", cat.Type, "ledger", s.kind)
	}
	return cat, errs
}

// Create validates and records a transaction for the owner.
func (s *LedgerService) Create(ctx context.Context, ownerID int64, in core.TransactionInput) (core.Transaction, error) {
	tx, errs := in.Validate()
	if !errs.Has("category_id") {
		tx.Category, errs = s.resolveCategory(ctx, *in.CategoryID, errs)
	}
	if err := errs.AsError(); err != nil {
		return core.Transaction{}, err
	}

	tx.OwnerID = ownerID
	created, err := s.storage.CreateTransaction(ctx, s.kind, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create %s: %w", s.kind, err)
	}
	return created, nil
}

// Get fetches one of the owner's transactions.
func (s *LedgerService) Get(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, s.kind, ownerID, id)
}

// List returns the owner's transactions, most recent date first.
func (s *LedgerService) List(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, s.kind, ownerID)
}

// ListByCategory returns the owner's transactions in one category.
func (s *LedgerService) ListByCategory(ctx context.Context, ownerID, categoryID int64) ([]core.Transaction, error) {
	return s.storage.ListTransactionsByCategory(ctx, s.kind, ownerID, categoryID)
}

// Update validates and rewrites one of the owner's transactions.
func (s *LedgerService) Update(ctx context.Context, ownerID, id int64, in core.TransactionInput) (core.Transaction, error) {
	tx, errs := in.Validate()
	if !errs.Has("category_id") {
		tx.Category, errs = s.resolveCategory(ctx, *in.CategoryID, errs)
	}
	if err := errs.AsError(); err != nil {
		return core.Transaction{}, err
	}

	tx.ID = id
	tx.OwnerID = ownerID
	updated, err := s.storage.UpdateTransaction(ctx, s.kind, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update %s: %w", s.kind, err)
	}
	return updated, nil
}

// Delete removes one of the owner's transactions.
func (s *LedgerService) Delete(ctx context.Context, ownerID, id int64) error {
	return s.storage.DeleteTransaction(ctx, s.kind, ownerID, id)
}

// Total sums the owner's ledger.
func (s *LedgerService) Total(ctx context.Context, ownerID int64) (decimal.Decimal, error) {
	return s.storage.SumTransactions(ctx, s.kind, ownerID)
}
