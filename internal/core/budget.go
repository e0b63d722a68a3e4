package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Frequency classifies a budget as a fixed date range or an open-ended
// recurring cadence.
type Frequency string

const (
	FrequencyOneOff  Frequency = "one-off"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// IndefiniteLabel is the deadline shown for recurring budgets.
const IndefiniteLabel = "Indefinitely"

// ParseFrequency validates a raw frequency string.
func ParseFrequency(s string) (Frequency, bool) {
	switch Frequency(strings.ToLower(strings.TrimSpace(s))) {
	case FrequencyOneOff, FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return Frequency(strings.ToLower(strings.TrimSpace(s))), true
	}
	return "", false
}

// Recurring reports whether the frequency is an open-ended cadence
// rather than a fixed one-off range.
func (f Frequency) Recurring() bool {
	return f != FrequencyOneOff
}

// Budget is a spending target for a category over a date range, with
// derived progress fields. Remaining and Percentage are recomputed
// together whenever Amount or Spending changes; they are never edited
// independently.
type Budget struct {
	ID        int64
	OwnerID   int64
	Category  Category
	StartDate Date
	EndDate   *Date // nil for recurring budgets
	Amount    decimal.Decimal
	Note      string
	Frequency Frequency
	// Dates is the free-text checkpoint string summarizing the range,
	// e.g. "2024-01-01,2024-03-31" or "2024-01-01,Indefinitely".
	Dates      string
	Spending   decimal.Decimal
	Remaining  decimal.Decimal
	Percentage decimal.Decimal
}

// BudgetInput carries raw budget fields prior to validation.
type BudgetInput struct {
	CategoryID      *int64
	Amount          *string
	StartDate       *string
	EndDate         *string
	Frequency       *string
	Note            *string
	CurrentSpending *string
}

// Validate checks every field, applies the cross-field date rule, and
// computes the derived fields for the initial state. All violations
// accumulate into one map.
func (in BudgetInput) Validate() (Budget, FieldErrors) {
	errs := FieldErrors{}
	b := Budget{Frequency: FrequencyOneOff}

	if in.Frequency != nil && *in.Frequency != "" {
		if f, ok := ParseFrequency(*in.Frequency); ok {
			b.Frequency = f
		} else {
			errs.Add("frequency", MsgInvalidChoice)
		}
	}

	if in.Amount == nil {
		errs.Add("amount", MsgRequired)
	} else if amount, err := ParseAmount(*in.Amount); err != nil {
		if _, numErr := decimal.NewFromString(strings.TrimSpace(*in.Amount)); numErr != nil {
			errs.Add("amount", MsgInvalidNumber)
		} else {
			errs.Add("amount", MsgNotPositive)
		}
	} else {
		b.Amount = amount
	}

	if in.StartDate == nil || *in.StartDate == "" {
		errs.Add("start_date", MsgRequired)
	} else if start, err := ParseDate(*in.StartDate); err != nil {
		errs.Add("start_date", MsgInvalidDate)
	} else {
		b.StartDate = start
	}

	switch {
	case in.EndDate == nil || *in.EndDate == "":
		// One-off budgets need a fixed range; recurring ones run until
		// cancelled.
		if !b.Frequency.Recurring() {
			errs.Add("end_date", MsgRequired)
		}
	default:
		if end, err := ParseDate(*in.EndDate); err != nil {
			errs.Add("end_date", MsgInvalidDate)
		} else {
			b.EndDate = &end
		}
	}

	if in.CategoryID == nil {
		errs.Add("category_id", MsgRequired)
	} else {
		b.Category.ID = *in.CategoryID
	}

	if in.Note != nil {
		if len(*in.Note) > MaxNoteLen {
			errs.Add("note", MsgMaxLength(MaxNoteLen))
		} else {
			b.Note = *in.Note
		}
	}

	if in.CurrentSpending != nil && *in.CurrentSpending != "" {
		if spending, err := ParseNonNegativeAmount(*in.CurrentSpending); err != nil {
			errs.Add("current_spending", MsgInvalidNumber)
		} else {
			b.Spending = spending
		}
	}

	// Cross-field rule, checked only once both dates parsed cleanly.
	if !errs.Has("start_date") && b.EndDate != nil && !b.EndDate.After(b.StartDate.Time) {
		errs.Add("end_date", MsgDateOrder)
	}

	if len(errs) > 0 {
		return Budget{}, errs
	}

	b.Dates = checkpointString(b.StartDate, b.EndDate)
	b.Remaining, b.Percentage = deriveProgress(b.Amount, b.Spending)
	return b, errs
}

// deriveProgress computes both derived fields from the target amount
// and the spending against it. A zero amount yields a zero percentage
// rather than a division error.
func deriveProgress(amount, spending decimal.Decimal) (remaining, percentage decimal.Decimal) {
	remaining = amount.Sub(spending)
	if amount.IsPositive() {
		percentage = spending.Div(amount).Mul(decimal.NewFromInt(100)).Round(2)
	} else {
		percentage = decimal.Zero
	}
	return remaining, percentage
}

// ErrAmbiguousRecompute rejects Recompute calls that change neither or
// both of amount and spending; the edit operations are mutually
// exclusive.
var ErrAmbiguousRecompute = errors.New("exactly one of amount or spending must change")

// Recompute applies an edit to either the target amount or the current
// spending (never both in one call) and recalculates Remaining and
// Percentage together. The caller persists all four fields in a single
// statement so no torn state is ever observable.
func (b *Budget) Recompute(newAmount, newSpending *decimal.Decimal) error {
	if (newAmount == nil) == (newSpending == nil) {
		return ErrAmbiguousRecompute
	}
	if newAmount != nil {
		if !newAmount.IsPositive() {
			return ErrInvalidAmount
		}
		b.Amount = newAmount.Round(2)
	}
	if newSpending != nil {
		if newSpending.IsNegative() {
			return ErrInvalidAmount
		}
		b.Spending = newSpending.Round(2)
	}
	b.Remaining, b.Percentage = deriveProgress(b.Amount, b.Spending)
	return nil
}

// PeriodLabel classifies the budget for display: one-off budgets show
// their literal date range, recurring budgets their cadence. The
// classification is derived from the stored frequency alone.
func (b Budget) PeriodLabel() string {
	if b.Frequency.Recurring() {
		return string(b.Frequency) + " (" + IndefiniteLabel + ")"
	}
	end := IndefiniteLabel
	if b.EndDate != nil {
		end = b.EndDate.String()
	}
	return b.StartDate.String() + " to " + end
}

// PeriodDays returns the length of a one-off budget's range in days,
// zero for recurring budgets.
func (b Budget) PeriodDays() int {
	if b.Frequency.Recurring() || b.EndDate == nil {
		return 0
	}
	return b.StartDate.DaysUntil(*b.EndDate)
}

func checkpointString(start Date, end *Date) string {
	if end == nil {
		return start.String() + "," + IndefiniteLabel
	}
	return start.String() + "," + end.String()
}
