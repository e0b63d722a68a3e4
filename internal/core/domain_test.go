package core

import "testing"

func validTransactionInput() TransactionInput {
	return TransactionInput{
		CategoryID: int64Ptr(1),
		Amount:     strPtr("50.00"),
		Date:       strPtr("2024-01-15"),
	}
}

func TestTransactionInputValidate(t *testing.T) {
	tx, errs := validTransactionInput().Validate()
	if len(errs) != 0 {
		t.Fatalf("expected valid input, got %v", errs)
	}
	if got := tx.Amount.StringFixed(2); got != "50.00" {
		t.Fatalf("amount = %s", got)
	}
	if tx.Date.String() != "2024-01-15" {
		t.Fatalf("date = %s", tx.Date)
	}
}

func TestTransactionInputValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*TransactionInput)
		field  string
		msg    string
	}{
		{"missing amount", func(in *TransactionInput) { in.Amount = nil }, "amount", MsgRequired},
		{"amount not a number", func(in *TransactionInput) { in.Amount = strPtr("ten") }, "amount", MsgInvalidNumber},
		{"negative amount", func(in *TransactionInput) { in.Amount = strPtr("-10.00") }, "amount", MsgNotPositive},
		{"zero amount", func(in *TransactionInput) { in.Amount = strPtr("0.00") }, "amount", MsgNotPositive},
		{"missing date", func(in *TransactionInput) { in.Date = nil }, "date", MsgRequired},
		{"bad date", func(in *TransactionInput) { in.Date = strPtr("15-01-2024") }, "date", MsgInvalidDate},
		{"missing category", func(in *TransactionInput) { in.CategoryID = nil }, "category_id", MsgRequired},
		{"note too long", func(in *TransactionInput) { in.Note = strPtr(longString(251)) }, "note", MsgMaxLength(MaxNoteLen)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validTransactionInput()
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

func TestTransactionInputValidateCollectsAllViolations(t *testing.T) {
	_, errs := TransactionInput{}.Validate()
	for _, field := range []string{"amount", "date", "category_id"} {
		if !errs.Has(field) {
			t.Fatalf("expected violation on %q, got %v", field, errs)
		}
	}
}

func TestCategoryInputValidate(t *testing.T) {
	name, typ := "Groceries", "EXPENSE"
	cat, errs := (CategoryInput{Name: &name, Type: &typ}).Validate()
	if len(errs) != 0 {
		t.Fatalf("expected valid input, got %v", errs)
	}
	if cat.Name != "Groceries" || cat.Type != CategoryExpense {
		t.Fatalf("unexpected category %+v", cat)
	}

	bad := "savings"
	_, errs = (CategoryInput{Name: &name, Type: &bad}).Validate()
	if !errs.Has("category_type") {
		t.Fatalf("expected type violation, got %v", errs)
	}

	long := longString(101)
	_, errs = (CategoryInput{Name: &long, Type: &typ}).Validate()
	if !errs.Has("name") {
		t.Fatalf("expected name violation, got %v", errs)
	}
}

func TestLedgerKind(t *testing.T) {
	if LedgerExpense.Table() != "expenses" || LedgerIncome.Table() != "income" {
		t.Fatal("ledger tables misconfigured")
	}
	if LedgerExpense.CategoryType() != CategoryExpense {
		t.Fatal("expense ledger should draw from EXPENSE categories")
	}
	if LedgerIncome.DisplayName() != "Income" {
		t.Fatal("income display name")
	}
}

func TestFieldErrorsError(t *testing.T) {
	errs := FieldErrors{}
	errs.Add("amount", MsgRequired)
	errs.Add("date", MsgInvalidDate)
	want := "validation failed: amount: " + MsgRequired + "; date: " + MsgInvalidDate
	if errs.Error() != want {
		t.Fatalf("error = %q, want %q", errs.Error(), want)
	}
	if (FieldErrors{}).AsError() != nil {
		t.Fatal("empty map must not escape as an error")
	}
}
