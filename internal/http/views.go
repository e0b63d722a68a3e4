package http

import (
	"tally/internal/core"
	"tally/internal/services"
)

// Wire representations. Writes take a bare category_id; reads expand
// the full category object. Amounts travel as fixed two-decimal
// strings.

type categoryView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"category_type"`
}

func toCategoryView(c core.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, Type: string(c.Type)}
}

func toCategoryViews(cats []core.Category) []categoryView {
	views := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		views = append(views, toCategoryView(c))
	}
	return views
}

type transactionView struct {
	ID       int64        `json:"id"`
	OwnerID  int64        `json:"owner_id"`
	Category categoryView `json:"category"`
	Amount   string       `json:"amount"`
	Date     string       `json:"date"`
	Note     string       `json:"note"`
}

func toTransactionView(t core.Transaction) transactionView {
	return transactionView{
		ID:       t.ID,
		OwnerID:  t.OwnerID,
		Category: toCategoryView(t.Category),
		Amount:   core.FormatAmount(t.Amount),
		Date:     t.Date.String(),
		Note:     t.Note,
	}
}

func toTransactionViews(txs []core.Transaction) []transactionView {
	views := make([]transactionView, 0, len(txs))
	for _, t := range txs {
		views = append(views, toTransactionView(t))
	}
	return views
}

type budgetView struct {
	ID              int64        `json:"id"`
	OwnerID         int64        `json:"owner_id"`
	Category        categoryView `json:"category"`
	StartDate       string       `json:"start_date"`
	EndDate         *string      `json:"end_date"`
	Amount          string       `json:"amount"`
	Note            string       `json:"note"`
	Frequency       string       `json:"frequency"`
	Dates           string       `json:"dates"`
	CurrentSpending string       `json:"current_spending"`
	RemainingAmount string       `json:"remaining_amount"`
	Percentage      string       `json:"percentage"`
}

func toBudgetView(b core.Budget) budgetView {
	v := budgetView{
		ID:              b.ID,
		OwnerID:         b.OwnerID,
		Category:        toCategoryView(b.Category),
		StartDate:       b.StartDate.String(),
		Amount:          core.FormatAmount(b.Amount),
		Note:            b.Note,
		Frequency:       string(b.Frequency),
		Dates:           b.Dates,
		CurrentSpending: core.FormatAmount(b.Spending),
		RemainingAmount: core.FormatAmount(b.Remaining),
		Percentage:      core.FormatAmount(b.Percentage),
	}
	if b.EndDate != nil {
		end := b.EndDate.String()
		v.EndDate = &end
	}
	return v
}

func toBudgetViews(budgets []core.Budget) []budgetView {
	views := make([]budgetView, 0, len(budgets))
	for _, b := range budgets {
		views = append(views, toBudgetView(b))
	}
	return views
}

type goalView struct {
	ID       int64  `json:"id"`
	OwnerID  int64  `json:"owner_id"`
	Name     string `json:"name"`
	Target   string `json:"target"`
	Deadline string `json:"deadline"`
	Note     string `json:"note"`
	Status   string `json:"status"`
}

func toGoalView(g core.Goal) goalView {
	return goalView{
		ID:       g.ID,
		OwnerID:  g.OwnerID,
		Name:     g.Name,
		Target:   core.FormatAmount(g.Target),
		Deadline: g.Deadline.String(),
		Note:     g.Note,
		Status:   g.Status,
	}
}

func toGoalViews(goals []core.Goal) []goalView {
	views := make([]goalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, toGoalView(g))
	}
	return views
}

type dashboardView struct {
	RecentExpenses []transactionView `json:"recent_expenses"`
	RecentIncome   []transactionView `json:"recent_income"`
	RecentBudgets  []budgetView      `json:"recent_budgets"`
	RecentGoals    []goalView        `json:"recent_goals"`
	IncomeTotal    string            `json:"income_total"`
	ExpenseTotal   string            `json:"expense_total"`
	NetTotal       string            `json:"net_total"`
	BudgetCount    int64             `json:"number_of_budgets"`
	GoalCount      int64             `json:"number_of_goals"`
}

func toDashboardView(d services.Dashboard) dashboardView {
	return dashboardView{
		RecentExpenses: toTransactionViews(d.RecentExpenses),
		RecentIncome:   toTransactionViews(d.RecentIncome),
		RecentBudgets:  toBudgetViews(d.RecentBudgets),
		RecentGoals:    toGoalViews(d.RecentGoals),
		IncomeTotal:    core.FormatAmount(d.IncomeTotal),
		ExpenseTotal:   core.FormatAmount(d.ExpenseTotal),
		NetTotal:       core.FormatAmount(d.NetTotal),
		BudgetCount:    d.BudgetCount,
		GoalCount:      d.GoalCount,
	}
}
