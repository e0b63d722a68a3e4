package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"tally/internal/core"
	"tally/internal/storage"
)

const dashboardRecentLimit = 3

// Dashboard is an owner-scoped snapshot: the most recent records of
// each kind plus ledger totals and entity counts.
type Dashboard struct {
	RecentExpenses []core.Transaction
	RecentIncome   []core.Transaction
	RecentBudgets  []core.Budget
	RecentGoals    []core.Goal
	IncomeTotal    decimal.Decimal
	ExpenseTotal   decimal.Decimal
	NetTotal       decimal.Decimal
	BudgetCount    int64
	GoalCount      int64
}

// DashboardService assembles the read-only overview.
type DashboardService struct {
	storage *storage.SQLiteRepository
}

func NewDashboardService(storage *storage.SQLiteRepository) *DashboardService {
	return &DashboardService{storage: storage}
}

// Build gathers the owner's snapshot.
func (s *DashboardService) Build(ctx context.Context, ownerID int64) (Dashboard, error) {
	var d Dashboard
	var err error

	if d.RecentExpenses, err = s.storage.RecentTransactions(ctx, core.LedgerExpense, ownerID, dashboardRecentLimit); err != nil {
		return Dashboard{}, fmt.Errorf("recent expenses: %w", err)
	}
	if d.RecentIncome, err = s.storage.RecentTransactions(ctx, core.LedgerIncome, ownerID, dashboardRecentLimit); err != nil {
		return Dashboard{}, fmt.Errorf("recent income: %w", err)
	}
	if d.RecentBudgets, err = s.storage.RecentBudgets(ctx, ownerID, dashboardRecentLimit); err != nil {
		return Dashboard{}, fmt.Errorf("recent budgets: %w", err)
	}
	if d.RecentGoals, err = s.storage.RecentGoals(ctx, ownerID, dashboardRecentLimit); err != nil {
		return Dashboard{}, fmt.Errorf("recent goals: %w", err)
	}

	if d.ExpenseTotal, err = s.storage.SumTransactions(ctx, core.LedgerExpense, ownerID); err != nil {
		return Dashboard{}, fmt.Errorf("expense total: %w", err)
	}
	if d.IncomeTotal, err = s.storage.SumTransactions(ctx, core.LedgerIncome, ownerID); err != nil {
		return Dashboard{}, fmt.Errorf("income total: %w", err)
	}
	d.NetTotal = d.IncomeTotal.Sub(d.ExpenseTotal)

	if d.BudgetCount, err = s.storage.CountBudgets(ctx, ownerID); err != nil {
		return Dashboard{}, fmt.Errorf("budget count: %w", err)
	}
	if d.GoalCount, err = s.storage.CountGoals(ctx, ownerID); err != nil {
		return Dashboard{}, fmt.Errorf("goal count: %w", err)
	}

	return d, nil
}
