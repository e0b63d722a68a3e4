package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tally/internal/core"
	"tally/internal/storage"
)

// BudgetService manages budgets and keeps their derived fields
// (remaining amount, spending percentage) consistent across edits.
type BudgetService struct {
	storage *storage.SQLiteRepository
}

func NewBudgetService(storage *storage.SQLiteRepository) *BudgetService {
	return &BudgetService{storage: storage}
}

func (s *BudgetService) resolveCategory(ctx context.Context, id int64, errs core.FieldErrors) (core.Category, core.FieldErrors) {
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
	return cat, errs
}

// Create validates the input, resolves the category, and persists the
// budget with its initial derived fields.
func (s *BudgetService) Create(ctx context.Context, ownerID int64, in core.BudgetInput) (core.Budget, error) {
	b, errs := in.Validate()
	if !errs.Has("category_id") {
		b.Category, errs = s.resolveCategory(ctx, *in.CategoryID, errs)
	}
	if err := errs.AsError(); err != nil {
		return core.Budget{}, err
	}

	b.OwnerID = ownerID
	created, err := s.storage.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return created, nil
}

// Get fetches one of the owner's budgets.
func (s *BudgetService) Get(ctx context.Context, ownerID, id int64) (core.Budget, error) {
	return s.storage.GetBudget(ctx, ownerID, id)
}

// List returns the owner's budgets, most recent start date first.
func (s *BudgetService) List(ctx context.Context, ownerID int64) ([]core.Budget, error) {
	return s.storage.ListBudgets(ctx, ownerID)
}

// ListByCategory returns the owner's budgets for one category.
func (s *BudgetService) ListByCategory(ctx context.Context, ownerID, categoryID int64) ([]core.Budget, error) {
	return s.storage.ListBudgetsByCategory(ctx, ownerID, categoryID)
}

// Update validates and fully rewrites one of the owner's budgets,
// including the derived fields for the new amount and spending.
func (s *BudgetService) Update(ctx context.Context, ownerID, id int64, in core.BudgetInput) (core.Budget, error) {
	b, errs := in.Validate()
	if !errs.Has("category_id") {
		b.Category, errs = s.resolveCategory(ctx, *in.CategoryID, errs)
	}
	if err := errs.AsError(); err != nil {
		return core.Budget{}, err
	}

	b.ID = id
	b.OwnerID = ownerID
	updated, err := s.storage.UpdateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	return updated, nil
}

// UpdateSpending replaces the budget's current spending and persists
// the recomputed remaining amount and percentage atomically.
func (s *BudgetService) UpdateSpending(ctx context.Context, ownerID, id int64, raw string) (core.Budget, error) {
	spending, err := core.ParseNonNegativeAmount(raw)
	if err != nil {
		errs := core.FieldErrors{}
		errs.Add("current_spending", core.MsgInvalidNumber)
		return core.Budget{}, errs.AsError()
	}
	return s.recompute(ctx, ownerID, id, func(b *core.Budget) error {
		return b.Recompute(nil, &spending)
	})
}

// UpdateAmount replaces the budget's target amount and persists the
// recomputed remaining amount and percentage atomically.
func (s *BudgetService) UpdateAmount(ctx context.Context, ownerID, id int64, raw string) (core.Budget, error) {
	amount, err := core.ParseAmount(raw)
	if err != nil {
		errs := core.FieldErrors{}
		errs.Add("amount", core.MsgInvalidNumber)
		return core.Budget{}, errs.AsError()
	}
	return s.recompute(ctx, ownerID, id, func(b *core.Budget) error {
		return b.Recompute(&amount, nil)
	})
}

func (s *BudgetService) recompute(ctx context.Context, ownerID, id int64, apply func(*core.Budget) error) (core.Budget, error) {
	b, err := s.storage.GetBudget(ctx, ownerID, id)
	if err != nil {
		return core.Budget{}, err
	}
	if err := apply(&b); err != nil {
		return core.Budget{}, fmt.Errorf("recompute budget %d: %w", id, err)
	}
	if err := s.storage.UpdateBudgetDerived(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("persist budget progress: %w", err)
	}
	return b, nil
}

// EditNote replaces only the budget's note.
func (s *BudgetService) EditNote(ctx context.Context, ownerID, id int64, note string) (core.Budget, error) {
	if len(note) > core.MaxNoteLen {
		errs := core.FieldErrors{}
		errs.Add("note", core.MsgMaxLength(core.MaxNoteLen))
		return core.Budget{}, errs.AsError()
	}
	if err := s.storage.UpdateBudgetNote(ctx, ownerID, id, note); err != nil {
		return core.Budget{}, err
	}
	return s.storage.GetBudget(ctx, ownerID, id)
}

// Delete removes one of the owner's budgets.
func (s *BudgetService) Delete(ctx context.Context, ownerID, id int64) error {
	return s.storage.DeleteBudget(ctx, ownerID, id)
}
