package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func int64Ptr(i int64) *int64 { return &i }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validBudgetInput() BudgetInput {
	return BudgetInput{
		CategoryID: int64Ptr(1),
		Amount:     strPtr("500.00"),
		StartDate:  strPtr("2024-01-01"),
		EndDate:    strPtr("2024-03-31"),
	}
}

func TestBudgetInputValidate(t *testing.T) {
	b, errs := validBudgetInput().Validate()
	if len(errs) != 0 {
		t.Fatalf("expected valid input, got %v", errs)
	}
	if b.Frequency != FrequencyOneOff {
		t.Fatalf("expected one-off default, got %q", b.Frequency)
	}
	if got := b.Remaining.StringFixed(2); got != "500.00" {
		t.Fatalf("remaining = %s, want 500.00", got)
	}
	if !b.Percentage.IsZero() {
		t.Fatalf("percentage = %s, want 0", b.Percentage)
	}
	if b.Dates != "2024-01-01,2024-03-31" {
		t.Fatalf("dates checkpoint = %q", b.Dates)
	}
}

func TestBudgetInputValidateInitialSpending(t *testing.T) {
	in := validBudgetInput()
	in.CurrentSpending = strPtr("125.00")
	b, errs := in.Validate()
	if len(errs) != 0 {
		t.Fatalf("expected valid input, got %v", errs)
	}
	if got := b.Remaining.StringFixed(2); got != "375.00" {
		t.Fatalf("remaining = %s, want 375.00", got)
	}
	if got := b.Percentage.StringFixed(2); got != "25.00" {
		t.Fatalf("percentage = %s, want 25.00", got)
	}
}

func TestBudgetInputValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*BudgetInput)
		field  string
		msg    string
	}{
		{"missing amount", func(in *BudgetInput) { in.Amount = nil }, "amount", MsgRequired},
		{"amount not a number", func(in *BudgetInput) { in.Amount = strPtr("abc") }, "amount", MsgInvalidNumber},
		{"amount zero", func(in *BudgetInput) { in.Amount = strPtr("0") }, "amount", MsgNotPositive},
		{"amount negative", func(in *BudgetInput) { in.Amount = strPtr("-500.00") }, "amount", MsgNotPositive},
		{"missing start date", func(in *BudgetInput) { in.StartDate = nil }, "start_date", MsgRequired},
		{"bad start date", func(in *BudgetInput) { in.StartDate = strPtr("01/01/2024") }, "start_date", MsgInvalidDate},
		{"missing end date on one-off", func(in *BudgetInput) { in.EndDate = nil }, "end_date", MsgRequired},
		{"bad end date", func(in *BudgetInput) { in.EndDate = strPtr("not-a-date") }, "end_date", MsgInvalidDate},
		{"missing category", func(in *BudgetInput) { in.CategoryID = nil }, "category_id", MsgRequired},
		{"bad frequency", func(in *BudgetInput) { in.Frequency = strPtr("fortnightly") }, "frequency", MsgInvalidChoice},
		{"note too long", func(in *BudgetInput) { in.Note = strPtr(longString(251)) }, "note", MsgMaxLength(MaxNoteLen)},
		{"bad spending", func(in *BudgetInput) { in.CurrentSpending = strPtr("-1") }, "current_spending", MsgInvalidNumber},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validBudgetInput()
			tc.mutate(&in)
			_, errs := in.Validate()
			if !errs.Has(tc.field) {
				t.Fatalf("expected violation on %q, got %v", tc.field, errs)
			}
			if errs[tc.field][0] != tc.msg {
				t.Fatalf("message = %q, want %q", errs[tc.field][0], tc.msg)
			}
		})
	}
}

func TestBudgetInputValidateDateOrdering(t *testing.T) {
	for _, end := range []string{"2023-12-31", "2024-01-01"} {
		in := validBudgetInput()
		in.EndDate = strPtr(end)
		_, errs := in.Validate()
		if !errs.Has("end_date") {
			t.Fatalf("end_date %s: expected ordering violation", end)
		}
		if errs["end_date"][0] != MsgDateOrder {
			t.Fatalf("end_date %s: message = %q", end, errs["end_date"][0])
		}
	}
}

func TestBudgetInputValidateMapAcceptsMergedViolations(t *testing.T) {
	// Services merge the category-reference check into the map returned
	// by Validate, so the success path must hand back a usable map, not
	// a nil one.
	_, errs := validBudgetInput().Validate()
	if errs == nil {
		t.Fatal("valid input returned a nil map")
	}
	errs.Add("category_id", MsgInvalidRef)
	if len(errs["category_id"]) != 1 || errs["category_id"][0] != MsgInvalidRef {
		t.Fatalf("merged violation lost: %v", errs)
	}
}

func TestBudgetInputValidateCollectsAllViolations(t *testing.T) {
	in := BudgetInput{Amount: strPtr("-5"), Note: strPtr(longString(300))}
	_, errs := in.Validate()
	for _, field := range []string{"amount", "start_date", "end_date", "category_id", "note"} {
		if !errs.Has(field) {
			t.Fatalf("expected violation on %q, got %v", field, errs)
		}
	}
}

func TestBudgetInputValidateRecurring(t *testing.T) {
	in := BudgetInput{
		CategoryID: int64Ptr(1),
		Amount:     strPtr("200.00"),
		StartDate:  strPtr("2024-01-01"),
		Frequency:  strPtr("monthly"),
	}
	b, errs := in.Validate()
	if len(errs) != 0 {
		t.Fatalf("expected valid recurring budget, got %v", errs)
	}
	if b.EndDate != nil {
		t.Fatal("recurring budget should have no end date")
	}
	if b.Dates != "2024-01-01,"+IndefiniteLabel {
		t.Fatalf("dates checkpoint = %q", b.Dates)
	}
	if got := b.PeriodLabel(); got != "monthly (Indefinitely)" {
		t.Fatalf("period label = %q", got)
	}
}

func TestBudgetRecompute(t *testing.T) {
	b, errs := validBudgetInput().Validate()
	if len(errs) != 0 {
		t.Fatalf("setup: %v", errs)
	}

	if err := b.Recompute(nil, decPtr("250.00")); err != nil {
		t.Fatalf("recompute spending: %v", err)
	}
	if got := b.Remaining.StringFixed(2); got != "250.00" {
		t.Fatalf("remaining = %s, want 250.00", got)
	}
	if got := b.Percentage.StringFixed(2); got != "50.00" {
		t.Fatalf("percentage = %s, want 50.00", got)
	}

	if err := b.Recompute(decPtr("1000.00"), nil); err != nil {
		t.Fatalf("recompute amount: %v", err)
	}
	if got := b.Remaining.StringFixed(2); got != "750.00" {
		t.Fatalf("remaining = %s, want 750.00", got)
	}
	if got := b.Percentage.StringFixed(2); got != "25.00" {
		t.Fatalf("percentage = %s, want 25.00", got)
	}
}

func TestBudgetRecomputeRejectsAmbiguousEdits(t *testing.T) {
	b, _ := validBudgetInput().Validate()
	if err := b.Recompute(nil, nil); err != ErrAmbiguousRecompute {
		t.Fatalf("expected ErrAmbiguousRecompute, got %v", err)
	}
	if err := b.Recompute(decPtr("10"), decPtr("5")); err != ErrAmbiguousRecompute {
		t.Fatalf("expected ErrAmbiguousRecompute, got %v", err)
	}
	if err := b.Recompute(decPtr("-10"), nil); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestBudgetRecomputeInvariant(t *testing.T) {
	// remaining == amount - spending and percentage == spending/amount*100
	// must hold simultaneously after every recompute.
	b, _ := validBudgetInput().Validate()
	for _, spending := range []string{"0", "100.00", "500.00", "750.50"} {
		if err := b.Recompute(nil, decPtr(spending)); err != nil {
			t.Fatalf("recompute(%s): %v", spending, err)
		}
		wantRemaining := b.Amount.Sub(b.Spending)
		if !b.Remaining.Equal(wantRemaining) {
			t.Fatalf("spending %s: remaining %s != %s", spending, b.Remaining, wantRemaining)
		}
		wantPct := b.Spending.Div(b.Amount).Mul(decimal.NewFromInt(100)).Round(2)
		if !b.Percentage.Equal(wantPct) {
			t.Fatalf("spending %s: percentage %s != %s", spending, b.Percentage, wantPct)
		}
	}
}

func TestDeriveProgressZeroAmountGuard(t *testing.T) {
	remaining, percentage := deriveProgress(decimal.Zero, decimal.RequireFromString("50"))
	if got := remaining.StringFixed(2); got != "-50.00" {
		t.Fatalf("remaining = %s", got)
	}
	if !percentage.IsZero() {
		t.Fatalf("percentage = %s, want 0", percentage)
	}
}

func TestBudgetPeriodLabelOneOff(t *testing.T) {
	b, _ := validBudgetInput().Validate()
	if got := b.PeriodLabel(); got != "2024-01-01 to 2024-03-31" {
		t.Fatalf("period label = %q", got)
	}
	if got := b.PeriodDays(); got != 90 {
		t.Fatalf("period days = %d, want 90", got)
	}
}

func longString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}
