// Package services provides business logic and orchestration on top of
// the storage layer: validation-before-write, owner scoping, and the
// derived-field recomputation rules for budgets and goals.
package services

import (
	"context"
	"fmt"

	"tally/internal/core"
	"tally/internal/storage"
)

// CategoryService manages the shared category registry.
type CategoryService struct {
	storage *storage.SQLiteRepository
}

func NewCategoryService(storage *storage.SQLiteRepository) *CategoryService {
	return &CategoryService{storage: storage}
}

// Create validates the input and registers the category.
func (s *CategoryService) Create(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	cat, errs := in.Validate()
	if err := errs.AsError(); err != nil {
		return core.Category{}, err
	}

	created, err := s.storage.CreateCategory(ctx, cat)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// Get fetches one category by ID.
func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	return s.storage.GetCategory(ctx, id)
}

// List returns categories, optionally filtered by type.
func (s *CategoryService) List(ctx context.Context, typeFilter *core.CategoryType) ([]core.Category, error) {
	return s.storage.ListCategories(ctx, typeFilter)
}

// Update validates the input and rewrites an existing category.
func (s *CategoryService) Update(ctx context.Context, id int64, in core.CategoryInput) (core.Category, error) {
	cat, errs := in.Validate()
	if err := errs.AsError(); err != nil {
		return core.Category{}, err
	}
	cat.ID = id

	updated, err := s.storage.UpdateCategory(ctx, cat)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

// Delete removes a category. Categories referenced by any ledger record
// are refused with a CategoryInUseError.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return s.storage.DeleteCategory(ctx, id)
}
