package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tally/internal/core"
	"tally/internal/services"
)

// addTransaction walks the entry flow for one ledger: pick a category,
// collect amount, date and note, then show a summary the user can
// confirm, cancel, or edit field by field before anything is saved.
func (m *Menu) addTransaction(ctx context.Context, svc *services.LedgerService) error {
	label := strings.ToLower(svc.Kind().DisplayName())

	cat, err := m.chooseCategory(ctx, svc.Kind().CategoryType())
	if err != nil {
		return err
	}
	amount, err := m.promptAmount(label)
	if err != nil {
		return err
	}
	date, err := m.promptDate("Please enter the date (YYYY-MM-DD), or press Enter for today: ", true)
	if err != nil {
		return err
	}
	note, err := m.promptNote()
	if err != nil {
		return err
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		fmt.Fprintf(m.out, "\nPlease confirm the %s details:\n", label)
		fmt.Fprintf(m.out, "1. Amount: $%s\n", amount.StringFixed(2))
		fmt.Fprintf(m.out, "2. Date: %s\n", date)
		fmt.Fprintf(m.out, "3. Note: %s\n", note)
		fmt.Fprintf(m.out, "Category: %s\n", cat.Name)

		choice, err := m.readLine("Enter Y to confirm, N to cancel, or 1-3 to edit: ")
		if err != nil {
			return err
		}
		switch choice {
		case "y", "Y":
			amountStr := amount.StringFixed(2)
			dateStr := date.String()
			_, err := svc.Create(ctx, m.owner.ID, core.TransactionInput{
				CategoryID: &cat.ID,
				Amount:     &amountStr,
				Date:       &dateStr,
				Note:       &note,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(m.out, "%s added successfully!\n", svc.Kind().DisplayName())
			return nil
		case "n", "N":
			fmt.Fprintf(m.out, "%s cancelled.\n", svc.Kind().DisplayName())
			return nil
		case "1":
			if amount, err = m.promptAmount(label); err != nil {
				return err
			}
		case "2":
			if date, err = m.promptDate("Please enter the date (YYYY-MM-DD), or press Enter for today: ", true); err != nil {
				return err
			}
		case "3":
			if note, err = m.readLine("Please write your optional note: "); err != nil {
				return err
			}
		default:
			fmt.Fprintln(m.out, "Invalid option. Please try again.")
		}
	}
	return errTooManyAttempts
}

func (m *Menu) viewTransactions(ctx context.Context, svc *services.LedgerService) error {
	txs, err := svc.List(ctx, m.owner.ID)
	if err != nil {
		return err
	}
	return m.printTransactions(svc.Kind(), txs)
}

func (m *Menu) viewTransactionsByCategory(ctx context.Context, svc *services.LedgerService) error {
	cat, err := m.chooseCategory(ctx, svc.Kind().CategoryType())
	if err != nil {
		return err
	}
	txs, err := svc.ListByCategory(ctx, m.owner.ID, cat.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "\n%s records for '%s':\n", svc.Kind().DisplayName(), cat.Name)
	return m.printTransactions(svc.Kind(), txs)
}

func (m *Menu) printTransactions(kind core.LedgerKind, txs []core.Transaction) error {
	if len(txs) == 0 {
		fmt.Fprintf(m.out, "No %s records found.\n", strings.ToLower(kind.DisplayName()))
		return nil
	}
	total := decimal.Zero
	for _, tx := range txs {
		note := tx.Note
		if note == "" {
			note = "-"
		}
		fmt.Fprintf(m.out, "%d: %s | %s | $%s | %s\n", tx.ID, tx.Date, tx.Category.Name, tx.Amount.StringFixed(2), note)
		total = total.Add(tx.Amount)
	}
	fmt.Fprintf(m.out, "Total: $%s\n", total.StringFixed(2))
	return nil
}

// updateAmount edits the amount on an existing expense or income
// record, leaving every other field as it is.
func (m *Menu) updateAmount(ctx context.Context) error {
	var svc *services.LedgerService
	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := m.readLine("Update an EXPENSE or INCOME amount? ")
		if err != nil {
			return err
		}
		if t, ok := core.ParseCategoryType(strings.ToUpper(raw)); ok {
			if t == core.CategoryExpense {
				svc = m.expenses
			} else {
				svc = m.income
			}
			break
		}
		fmt.Fprintln(m.out, "Invalid option. Please enter EXPENSE or INCOME.")
	}
	if svc == nil {
		return errTooManyAttempts
	}

	txs, err := svc.List(ctx, m.owner.ID)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintf(m.out, "No %s records found.\n", strings.ToLower(svc.Kind().DisplayName()))
		return nil
	}
	if err := m.printTransactions(svc.Kind(), txs); err != nil {
		return err
	}

	valid := make(map[int64]bool, len(txs))
	byID := make(map[int64]core.Transaction, len(txs))
	for _, tx := range txs {
		valid[tx.ID] = true
		byID[tx.ID] = tx
	}
	id, err := m.promptID("Enter the ID of the record to update: ", valid)
	if err != nil {
		return err
	}
	current := byID[id]
	fmt.Fprintf(m.out, "Current amount: $%s\n", current.Amount.StringFixed(2))

	amount, err := m.promptAmount(strings.ToLower(svc.Kind().DisplayName()))
	if err != nil {
		return err
	}
	ok, err := m.promptYesNo(fmt.Sprintf("Change the amount to $%s? y/n: ", amount.StringFixed(2)))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(m.out, "Update cancelled.")
		return nil
	}

	amountStr := amount.StringFixed(2)
	dateStr := current.Date.String()
	_, err = svc.Update(ctx, m.owner.ID, id, core.TransactionInput{
		CategoryID: &current.Category.ID,
		Amount:     &amountStr,
		Date:       &dateStr,
		Note:       &current.Note,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Amount updated successfully!")
	return nil
}
