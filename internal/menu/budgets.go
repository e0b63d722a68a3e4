package menu

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"tally/internal/core"
)

// setBudget walks the budget entry flow: pick an expense category,
// choose between a one-off date range and a recurring cadence, collect
// the amount and any spending already made, then confirm or edit.
func (m *Menu) setBudget(ctx context.Context) error {
	cat, err := m.chooseCategory(ctx, core.CategoryExpense)
	if err != nil {
		return err
	}

	frequency, startDate, endDate, err := m.promptBudgetPeriod()
	if err != nil {
		return err
	}
	amount, err := m.promptAmount("budget")
	if err != nil {
		return err
	}
	spending, err := m.promptInitialSpending()
	if err != nil {
		return err
	}
	note, err := m.promptNote()
	if err != nil {
		return err
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		fmt.Fprintln(m.out, "\nPlease confirm the budget details:")
		fmt.Fprintf(m.out, "1. Amount: $%s\n", amount.StringFixed(2))
		fmt.Fprintf(m.out, "2. Period: %s\n", periodSummary(frequency, startDate, endDate))
		fmt.Fprintf(m.out, "3. Current spending: $%s\n", spending.StringFixed(2))
		fmt.Fprintf(m.out, "4. Note: %s\n", note)
		fmt.Fprintf(m.out, "Category: %s\n", cat.Name)

		choice, err := m.readLine("Enter Y to confirm, N to cancel, or 1-4 to edit: ")
		if err != nil {
			return err
		}
		switch choice {
		case "y", "Y":
			return m.createBudget(ctx, cat, frequency, startDate, endDate, amount, spending, note)
		case "n", "N":
			fmt.Fprintln(m.out, "Budget cancelled.")
			return nil
		case "1":
			if amount, err = m.promptAmount("budget"); err != nil {
				return err
			}
		case "2":
			if frequency, startDate, endDate, err = m.promptBudgetPeriod(); err != nil {
				return err
			}
		case "3":
			if spending, err = m.promptInitialSpending(); err != nil {
				return err
			}
		case "4":
			if note, err = m.readLine("Please write your optional note: "); err != nil {
				return err
			}
		default:
			fmt.Fprintln(m.out, "Invalid option. Please try again.")
		}
	}
	return errTooManyAttempts
}

func (m *Menu) createBudget(ctx context.Context, cat core.Category, frequency core.Frequency, startDate core.Date, endDate *core.Date, amount, spending decimal.Decimal, note string) error {
	amountStr := amount.StringFixed(2)
	startStr := startDate.String()
	frequencyStr := string(frequency)
	spendingStr := spending.StringFixed(2)
	in := core.BudgetInput{
		CategoryID:      &cat.ID,
		Amount:          &amountStr,
		StartDate:       &startStr,
		Frequency:       &frequencyStr,
		CurrentSpending: &spendingStr,
		Note:            &note,
	}
	if endDate != nil {
		endStr := endDate.String()
		in.EndDate = &endStr
	}

	budget, err := m.budgets.Create(ctx, m.owner.ID, in)
	if errors.Is(err, core.ErrConflict) {
		fmt.Fprintln(m.out, "A budget for this category and start date already exists.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Budget of $%s set for '%s' (%s).\n", budget.Amount.StringFixed(2), cat.Name, budget.PeriodLabel())
	return nil
}

// promptBudgetPeriod asks one-off vs recurring and collects the dates
// or the cadence accordingly. One-off budgets echo the period length in
// days; recurring ones run until cancelled.
func (m *Menu) promptBudgetPeriod() (core.Frequency, core.Date, *core.Date, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := m.readLine("Is this a ONE-OFF or RECURRING budget? ")
		if err != nil {
			return "", core.Date{}, nil, err
		}
		switch raw {
		case "ONE-OFF", "one-off", "o", "O":
			start, err := m.promptDate("Please enter the start date (YYYY-MM-DD), or press Enter for today: ", true)
			if err != nil {
				return "", core.Date{}, nil, err
			}
			end, err := m.promptEndDate(start)
			if err != nil {
				return "", core.Date{}, nil, err
			}
			fmt.Fprintf(m.out, "Budget period: %d days\n", start.DaysUntil(end))
			return core.FrequencyOneOff, start, &end, nil
		case "RECURRING", "recurring", "r", "R":
			frequency, err := m.promptCadence()
			if err != nil {
				return "", core.Date{}, nil, err
			}
			start, err := m.promptDate("Please enter the start date (YYYY-MM-DD), or press Enter for today: ", true)
			if err != nil {
				return "", core.Date{}, nil, err
			}
			fmt.Fprintf(m.out, "This budget will recur %s, %s.\n", frequency, core.IndefiniteLabel)
			return frequency, start, nil, nil
		}
		fmt.Fprintln(m.out, "Invalid option. Please enter ONE-OFF or RECURRING.")
	}
	return "", core.Date{}, nil, errTooManyAttempts
}

func (m *Menu) promptEndDate(start core.Date) (core.Date, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		end, err := m.promptDate("Please enter the end date (YYYY-MM-DD): ", false)
		if err != nil {
			return core.Date{}, err
		}
		if start.DaysUntil(end) > 0 {
			return end, nil
		}
		fmt.Fprintln(m.out, "End date must be after start date.")
	}
	return core.Date{}, errTooManyAttempts
}

func (m *Menu) promptCadence() (core.Frequency, error) {
	options := []core.Frequency{core.FrequencyDaily, core.FrequencyWeekly, core.FrequencyMonthly, core.FrequencyYearly}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		fmt.Fprintln(m.out, "\nBudget cadence:")
		for i, opt := range options {
			suffix := ""
			if opt == core.FrequencyMonthly {
				suffix = " (default)"
			}
			fmt.Fprintf(m.out, "%d. %s%s\n", i+1, opt, suffix)
		}
		raw, err := m.readLine("Select cadence (1-4) or press Enter for default: ")
		if err != nil {
			return "", err
		}
		if raw == "" {
			return core.FrequencyMonthly, nil
		}
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		fmt.Fprintln(m.out, "Invalid choice. Please select 1-4 or press Enter for default.")
	}
	return "", errTooManyAttempts
}

func (m *Menu) promptInitialSpending() (decimal.Decimal, error) {
	spent, err := m.promptYesNo("Have you already spent anything in this period? y/n: ")
	if err != nil {
		return decimal.Zero, err
	}
	if !spent {
		return decimal.Zero, nil
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := m.readLine("Please type the amount already spent (in dollars): ")
		if err != nil {
			return decimal.Zero, err
		}
		amount, err := core.ParseNonNegativeAmount(raw)
		if err == nil {
			return amount, nil
		}
		fmt.Fprintln(m.out, "Invalid amount. Please enter a valid number.")
	}
	return decimal.Zero, errTooManyAttempts
}

func periodSummary(frequency core.Frequency, start core.Date, end *core.Date) string {
	if frequency.Recurring() {
		return fmt.Sprintf("%s from %s (%s)", frequency, start, core.IndefiniteLabel)
	}
	endLabel := core.IndefiniteLabel
	if end != nil {
		endLabel = end.String()
	}
	return fmt.Sprintf("%s to %s", start, endLabel)
}

// viewBudgets lists every budget for a chosen category with its derived
// progress figures.
func (m *Menu) viewBudgets(ctx context.Context) error {
	cat, err := m.chooseCategory(ctx, core.CategoryExpense)
	if err != nil {
		return err
	}
	budgets, err := m.budgets.ListByCategory(ctx, m.owner.ID, cat.ID)
	if err != nil {
		return err
	}
	if len(budgets) == 0 {
		fmt.Fprintf(m.out, "No budgets found for '%s'.\n", cat.Name)
		return nil
	}

	fmt.Fprintf(m.out, "\nBudgets for '%s':\n", cat.Name)
	for _, b := range budgets {
		fmt.Fprintf(m.out, "%d: %s\n", b.ID, b.PeriodLabel())
		fmt.Fprintf(m.out, "   Amount: $%s | Spent: $%s | Remaining: $%s (%s%% used)\n",
			b.Amount.StringFixed(2), b.Spending.StringFixed(2), b.Remaining.StringFixed(2), b.Percentage.StringFixed(2))
		if b.Note != "" {
			fmt.Fprintf(m.out, "   Note: %s\n", b.Note)
		}
	}
	return nil
}
