package services

import (
	"context"
	"fmt"

	"tally/internal/core"
	"tally/internal/storage"
)

// GoalService manages savings goals. Progress against a goal is never
// stored; it is computed on demand from a caller-supplied saved amount.
type GoalService struct {
	storage *storage.SQLiteRepository
}

func NewGoalService(storage *storage.SQLiteRepository) *GoalService {
	return &GoalService{storage: storage}
}

// Create validates the input and records the goal.
func (s *GoalService) Create(ctx context.Context, ownerID int64, in core.GoalInput) (core.Goal, error) {
	g, errs := in.Validate()
	if err := errs.AsError(); err != nil {
		return core.Goal{}, err
	}

	g.OwnerID = ownerID
	created, err := s.storage.CreateGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return created, nil
}

// Get fetches one of the owner's goals.
func (s *GoalService) Get(ctx context.Context, ownerID, id int64) (core.Goal, error) {
	return s.storage.GetGoal(ctx, ownerID, id)
}

// List returns the owner's goals, nearest deadline first.
func (s *GoalService) List(ctx context.Context, ownerID int64) ([]core.Goal, error) {
	return s.storage.ListGoals(ctx, ownerID)
}

// Update validates and rewrites one of the owner's goals.
func (s *GoalService) Update(ctx context.Context, ownerID, id int64, in core.GoalInput) (core.Goal, error) {
	g, errs := in.Validate()
	if err := errs.AsError(); err != nil {
		return core.Goal{}, err
	}

	g.ID = id
	g.OwnerID = ownerID
	updated, err := s.storage.UpdateGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	return updated, nil
}

// Delete removes one of the owner's goals.
func (s *GoalService) Delete(ctx context.Context, ownerID, id int64) error {
	return s.storage.DeleteGoal(ctx, ownerID, id)
}

// Progress computes transient progress for a goal from the raw saved
// amount. Nothing is persisted; the stored status is untouched.
func (s *GoalService) Progress(ctx context.Context, ownerID, id int64, rawSaved string) (core.Goal, core.GoalProgress, error) {
	g, err := s.storage.GetGoal(ctx, ownerID, id)
	if err != nil {
		return core.Goal{}, core.GoalProgress{}, err
	}

	saved, err := core.ParseNonNegativeAmount(rawSaved)
	if err != nil {
		errs := core.FieldErrors{}
		errs.Add("saved_amount", core.MsgInvalidNumber)
		return core.Goal{}, core.GoalProgress{}, errs.AsError()
	}

	return g, g.Progress(saved, core.Today()), nil
}
