// Package menu implements the interactive terminal workflow: a
// numbered main menu, prompt/confirm entry flows for every record
// kind, and progress views. All operations run as one local owner
// against the shared repository.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"tally/internal/core"
	"tally/internal/services"
	"tally/internal/storage"
)

type command int

const (
	cmdAddExpense command = iota + 1
	cmdViewExpenses
	cmdViewExpensesByCategory
	cmdAddIncome
	cmdViewIncome
	cmdViewIncomeByCategory
	cmdSetBudget
	cmdViewBudgets
	cmdSetGoal
	cmdGoalProgress
	cmdUpdateAmount
	cmdManageCategories
	cmdQuit
)

var menuLines = []string{
	"1. Add expense",
	"2. View expenses",
	"3. View expenses by category",
	"4. Add income",
	"5. View income",
	"6. View income by category",
	"7. Set budget for a category",
	"8. View budgets for a category",
	"9. Set financial goals",
	"10. View progress towards financial goals",
	"11. Update an expense or income amount",
	"12. Manage categories",
	"13. Quit",
}

// Menu drives the interactive session.
type Menu struct {
	in  *bufio.Scanner
	out io.Writer

	categories *services.CategoryService
	expenses   *services.LedgerService
	income     *services.LedgerService
	budgets    *services.BudgetService
	goals      *services.GoalService

	owner storage.User
}

func New(in io.Reader, out io.Writer, repo *storage.SQLiteRepository, owner storage.User) *Menu {
	return &Menu{
		in:         bufio.NewScanner(in),
		out:        out,
		categories: services.NewCategoryService(repo),
		expenses:   services.NewLedgerService(repo, core.LedgerExpense),
		income:     services.NewLedgerService(repo, core.LedgerIncome),
		budgets:    services.NewBudgetService(repo),
		goals:      services.NewGoalService(repo),
		owner:      owner,
	}
}

// Run loops until the user quits or input is exhausted.
func (m *Menu) Run(ctx context.Context) error {
	for {
		for _, line := range menuLines {
			fmt.Fprintln(m.out, line)
		}

		raw, err := m.readLine("Please select a number from the list to perform the relevant function: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		selection, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			fmt.Fprintln(m.out, "Error. Please enter a valid number and try again.")
			continue
		}
		cmd := command(selection)
		if cmd < cmdAddExpense || cmd > cmdQuit {
			fmt.Fprintln(m.out, "Value not in the menu. Please try again.")
			continue
		}
		if cmd == cmdQuit {
			return nil
		}

		if err := m.dispatch(ctx, cmd); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, errTooManyAttempts) {
				fmt.Fprintln(m.out, "Too many invalid attempts. Returning to main menu.")
			} else {
				slog.ErrorContext(ctx, "Menu action failed", "command", int(cmd), "error", err)
				fmt.Fprintln(m.out, "Something went wrong. Returning to main menu.")
			}
		}

		again, err := m.promptYesNo("Would you like to view the main menu again? y/n: ")
		if err != nil || !again {
			return nil
		}
	}
}

func (m *Menu) dispatch(ctx context.Context, cmd command) error {
	switch cmd {
	case cmdAddExpense:
		return m.addTransaction(ctx, m.expenses)
	case cmdViewExpenses:
		return m.viewTransactions(ctx, m.expenses)
	case cmdViewExpensesByCategory:
		return m.viewTransactionsByCategory(ctx, m.expenses)
	case cmdAddIncome:
		return m.addTransaction(ctx, m.income)
	case cmdViewIncome:
		return m.viewTransactions(ctx, m.income)
	case cmdViewIncomeByCategory:
		return m.viewTransactionsByCategory(ctx, m.income)
	case cmdSetBudget:
		return m.setBudget(ctx)
	case cmdViewBudgets:
		return m.viewBudgets(ctx)
	case cmdSetGoal:
		return m.setGoal(ctx)
	case cmdGoalProgress:
		return m.goalProgress(ctx)
	case cmdUpdateAmount:
		return m.updateAmount(ctx)
	case cmdManageCategories:
		return m.manageCategories(ctx)
	}
	return nil
}
