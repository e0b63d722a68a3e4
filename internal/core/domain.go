package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Field length limits shared by the validation rules and the schema.
const (
	MaxCategoryNameLen = 100
	MaxGoalNameLen     = 150
	MaxNoteLen         = 250
)

// CategoryType distinguishes expense categories from income categories.
type CategoryType string

const (
	CategoryExpense CategoryType = "EXPENSE"
	CategoryIncome  CategoryType = "INCOME"
)

// ParseCategoryType validates a raw type string.
func ParseCategoryType(s string) (CategoryType, bool) {
	switch CategoryType(s) {
	case CategoryExpense, CategoryIncome:
		return CategoryType(s), true
	}
	return "", false
}

// Category is a transaction category. Categories are shared across all
// principals rather than owner-scoped.
type Category struct {
	ID   int64
	Name string
	Type CategoryType
}

// CategoryInput carries raw category fields. Nil pointers mark absent
// fields so required-field violations can be reported distinctly.
type CategoryInput struct {
	Name *string
	Type *string
}

// Validate checks every field and returns the validated category along
// with the full set of violations.
func (in CategoryInput) Validate() (Category, FieldErrors) {
	errs := FieldErrors{}
	var cat Category

	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		errs.Add("name", MsgRequired)
	} else if len(*in.Name) > MaxCategoryNameLen {
		errs.Add("name", MsgMaxLength(MaxCategoryNameLen))
	} else {
		cat.Name = strings.TrimSpace(*in.Name)
	}

	if in.Type == nil || *in.Type == "" {
		errs.Add("category_type", MsgRequired)
	} else if t, ok := ParseCategoryType(*in.Type); ok {
		cat.Type = t
	} else {
		errs.Add("category_type", MsgInvalidChoice)
	}

	return cat, errs
}

// LedgerKind selects one of the two structurally identical ledgers.
type LedgerKind string

const (
	LedgerExpense LedgerKind = "expense"
	LedgerIncome  LedgerKind = "income"
)

// Table returns the backing table name for the ledger.
func (k LedgerKind) Table() string {
	if k == LedgerIncome {
		return "income"
	}
	return "expenses"
}

// DisplayName returns the capitalized record name for messages.
func (k LedgerKind) DisplayName() string {
	if k == LedgerIncome {
		return "Income"
	}
	return "Expense"
}

// CategoryType returns the category type a ledger conventionally draws
// from. The pairing is advisory: it drives list filtering, not a hard
// constraint on stored records.
func (k LedgerKind) CategoryType() CategoryType {
	if k == LedgerIncome {
		return CategoryIncome
	}
	return CategoryExpense
}

// Transaction is a dated monetary record in either ledger, scoped to
// its owner.
type Transaction struct {
	ID        int64
	OwnerID   int64
	Category  Category
	Amount    decimal.Decimal
	Date      Date
	Note      string
	CreatedAt time.Time
}

// TransactionInput carries raw expense/income fields prior to
// validation. Category existence is checked separately by the service,
// which merges its violation into the same error map.
type TransactionInput struct {
	CategoryID *int64
	Amount     *string
	Date       *string
	Note       *string
}

// Validate checks every field and accumulates all violations.
func (in TransactionInput) Validate() (Transaction, FieldErrors) {
	errs := FieldErrors{}
	var tx Transaction

	if in.Amount == nil {
		errs.Add("amount", MsgRequired)
	} else if amount, err := ParseAmount(*in.Amount); err != nil {
		if _, numErr := decimal.NewFromString(strings.TrimSpace(*in.Amount)); numErr != nil {
			errs.Add("amount", MsgInvalidNumber)
		} else {
			errs.Add("amount", MsgNotPositive)
		}
	} else {
		tx.Amount = amount
	}

	if in.Date == nil || *in.Date == "" {
		errs.Add("date", MsgRequired)
	} else if date, err := ParseDate(*in.Date); err != nil {
		errs.Add("date", MsgInvalidDate)
	} else {
		tx.Date = date
	}

	if in.CategoryID == nil {
		errs.Add("category_id", MsgRequired)
	} else {
		tx.Category.ID = *in.CategoryID
	}

	if in.Note != nil {
		if len(*in.Note) > MaxNoteLen {
			errs.Add("note", MsgMaxLength(MaxNoteLen))
		} else {
			tx.Note = *in.Note
		}
	}

	return tx, errs
}
