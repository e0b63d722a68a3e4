package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"tally/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustCategory(t *testing.T, repo *SQLiteRepository, name string, ct core.CategoryType) core.Category {
	t.Helper()
	cat, err := repo.CreateCategory(context.Background(), core.Category{Name: name, Type: ct})
	if err != nil {
		t.Fatalf("CreateCategory(%q): %v", name, err)
	}
	return cat
}

func mustUser(t *testing.T, repo *SQLiteRepository, username string) User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), username)
	if err != nil {
		t.Fatalf("CreateUser(%q): %v", username, err)
	}
	return u
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}

func TestCategoryCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cat := mustCategory(t, repo, "Groceries", core.CategoryExpense)
	if cat.ID == 0 {
		t.Fatal("expected non-zero category id")
	}

	got, err := repo.GetCategory(ctx, cat.ID)
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if got.Name != "Groceries" || got.Type != core.CategoryExpense {
		t.Errorf("got %+v, want Groceries/EXPENSE", got)
	}

	got.Name = "Food"
	if _, err := repo.UpdateCategory(ctx, got); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	got, err = repo.GetCategory(ctx, cat.ID)
	if err != nil {
		t.Fatalf("GetCategory after update: %v", err)
	}
	if got.Name != "Food" {
		t.Errorf("rename not persisted, got %q", got.Name)
	}

	if err := repo.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if _, err := repo.GetCategory(ctx, cat.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetCategory after delete: got %v, want ErrNotFound", err)
	}
	if err := repo.DeleteCategory(ctx, cat.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second DeleteCategory: got %v, want ErrNotFound", err)
	}
}

func TestCategoryUniquePerType(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCategory(t, repo, "Consulting", core.CategoryIncome)

	_, err := repo.CreateCategory(ctx, core.Category{Name: "Consulting", Type: core.CategoryIncome})
	if !errors.Is(err, core.ErrConflict) {
		t.Errorf("duplicate name+type: got %v, want ErrConflict", err)
	}

	// Same name under the other type is a distinct category.
	if _, err := repo.CreateCategory(ctx, core.Category{Name: "Consulting", Type: core.CategoryExpense}); err != nil {
		t.Errorf("same name, other type: %v", err)
	}
}

func TestCategoryListFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCategory(t, repo, "Rent", core.CategoryExpense)
	mustCategory(t, repo, "Groceries", core.CategoryExpense)
	mustCategory(t, repo, "Salary", core.CategoryIncome)

	all, err := repo.ListCategories(ctx, nil)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d categories, want 3", len(all))
	}

	expense := core.CategoryExpense
	filtered, err := repo.ListCategories(ctx, &expense)
	if err != nil {
		t.Fatalf("ListCategories filtered: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("got %d expense categories, want 2", len(filtered))
	}
	// Alphabetical within the filter.
	if filtered[0].Name != "Groceries" || filtered[1].Name != "Rent" {
		t.Errorf("unexpected order: %q, %q", filtered[0].Name, filtered[1].Name)
	}
}

func TestDeleteCategoryInUse(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner := mustUser(t, repo, "alice")
	cat := mustCategory(t, repo, "Groceries", core.CategoryExpense)

	for i := 0; i < 2; i++ {
		_, err := repo.CreateTransaction(ctx, core.LedgerExpense, core.Transaction{
			OwnerID:  owner.ID,
			Category: cat,
			Amount:   dec(t, "10.00"),
			Date:     core.NewDate(2024, 3, 1+i),
		})
		if err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}
	if _, err := repo.CreateTransaction(ctx, core.LedgerIncome, core.Transaction{
		OwnerID:  owner.ID,
		Category: cat,
		Amount:   dec(t, "99.00"),
		Date:     core.NewDate(2024, 3, 5),
	}); err != nil {
		t.Fatalf("CreateTransaction income: %v", err)
	}

	err := repo.DeleteCategory(ctx, cat.ID)
	var inUse *core.CategoryInUseError
	if !errors.As(err, &inUse) {
		t.Fatalf("got %v, want CategoryInUseError", err)
	}
	if inUse.ExpenseCount != 2 || inUse.IncomeCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", inUse.ExpenseCount, inUse.IncomeCount)
	}

	// The category must survive a refused delete.
	if _, err := repo.GetCategory(ctx, cat.ID); err != nil {
		t.Errorf("category gone after refused delete: %v", err)
	}
}

func TestDeleteCategoryCascadesBudgets(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner := mustUser(t, repo, "alice")
	cat := mustCategory(t, repo, "Groceries", core.CategoryExpense)

	budget, err := repo.CreateBudget(ctx, testBudget(owner, cat))
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	// Budgets reference the category but do not block its deletion;
	// they go with it.
	if err := repo.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if _, err := repo.GetCategory(ctx, cat.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetCategory after delete: %v, want ErrNotFound", err)
	}
	if _, err := repo.GetBudget(ctx, owner.ID, budget.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetBudget after category delete: %v, want ErrNotFound", err)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner := mustUser(t, repo, "alice")
	cat := mustCategory(t, repo, "Groceries", core.CategoryExpense)

	created, err := repo.CreateTransaction(ctx, core.LedgerExpense, core.Transaction{
		OwnerID:  owner.ID,
		Category: cat,
		Amount:   dec(t, "45.50"),
		Date:     core.NewDate(2024, 3, 15),
		Note:     "weekly shop",
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected non-zero id")
	}
	if created.Category.Name != "Groceries" {
		t.Errorf("category not expanded on create: %+v", created.Category)
	}

	got, err := repo.GetTransaction(ctx, core.LedgerExpense, owner.ID, created.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if !got.Amount.Equal(dec(t, "45.50")) || got.Note != "weekly shop" {
		t.Errorf("got %+v", got)
	}

	got.Amount = dec(t, "50.00")
	got.Note = ""
	if _, err := repo.UpdateTransaction(ctx, core.LedgerExpense, got); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	got, err = repo.GetTransaction(ctx, core.LedgerExpense, owner.ID, created.ID)
	if err != nil {
		t.Fatalf("GetTransaction after update: %v", err)
	}
	if !got.Amount.Equal(dec(t, "50.00")) || got.Note != "" {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := repo.DeleteTransaction(ctx, core.LedgerExpense, owner.ID, created.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, core.LedgerExpense, owner.ID, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestTransactionOwnerScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	alice := mustUser(t, repo, "alice")
	bob := mustUser(t, repo, "bob")
	cat := mustCategory(t, repo, "Groceries", core.CategoryExpense)

	created, err := repo.CreateTransaction(ctx, core.LedgerExpense, core.Transaction{
		OwnerID:  alice.ID,
		Category: cat,
		Amount:   dec(t, "20.00"),
		Date:     core.NewDate(2024, 3, 1),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	// Another owner's record is indistinguishable from a missing one.
	if _, err := repo.GetTransaction(ctx, core.LedgerExpense, bob.ID, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-owner get: got %v, want ErrNotFound", err)
	}
	if err := repo.DeleteTransaction(ctx, core.LedgerExpense, bob.ID, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-owner delete: got %v, want ErrNotFound", err)
	}
	created.OwnerID = bob.ID
	if _, err := repo.UpdateTransaction(ctx, core.LedgerExpense, created); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-owner update: got %v, want ErrNotFound", err)
	}

	list, err := repo.ListTransactions(ctx, core.LedgerExpense, bob.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("bob sees %d of alice's expenses", len(list))
	}
}

func TestTransactionOrderingAndSum(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner := mustUser(t, repo, "alice")
	cat := mustCategory(t, repo, "Groceries", core.CategoryExpense)

	for _, day := range []int{10, 25, 3} {
		_, err := repo.CreateTransaction(ctx, core.LedgerExpense, core.Transaction{
			OwnerID:  owner.ID,
			Category: cat,
			Amount:   dec(t, "10.00"),
			Date:     core.NewDate(2024, 3, day),
		})
		if err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	list, err := repo.ListTransactions(ctx, core.LedgerExpense, owner.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	want := []string{"2024-03-25", "2024-03-10", "2024-03-03"}
	for i, tx := range list {
		if tx.Date.String() != want[i] {
			t.Errorf("position %d: date %s, want %s", i, tx.Date, want[i])
		}
	}

	recent, err := repo.RecentTransactions(ctx, core.LedgerExpense, owner.ID, 2)
	if err != nil {
		t.Fatalf("RecentTransactions: %v", err)
	}
	if len(recent) != 2 || recent[0].Date.String() != "2024-03-25" {
		t.Errorf("recent = %d rows starting %s", len(recent), recent[0].Date)
	}

	sum, err := repo.SumTransactions(ctx, core.LedgerExpense, owner.ID)
	if err != nil {
		t.Fatalf("SumTransactions: %v", err)
	}
	if !sum.Equal(dec(t, "30.00")) {
		t.Errorf("sum = %s, want 30.00", sum)
	}

	// Income ledger stays empty and sums to zero.
	incomeSum, err := repo.SumTransactions(ctx, core.LedgerIncome, owner.ID)
	if err != nil {
		t.Fatalf("SumTransactions income: %v", err)
	}
	if !incomeSum.IsZero() {
		t.Errorf("income sum = %s, want 0", incomeSum)
	}
}

func testBudget(owner User, cat core.Category) core.Budget {
	end := core.NewDate(2024, 3, 31)
	b := core.Budget{
		OwnerID:   owner.ID,
		Category:  cat,
		StartDate: core.NewDate(2024, 1, 1),
		EndDate:   &end,
		Amount:    decimal.NewFromInt(400),
		Frequency: core.FrequencyOneOff,
		Dates:     "2024-01-01,2024-03-31",
		Spending:  decimal.NewFromInt(100),
	}
	b.Remaining = b.Amount.Sub(b.Spending)
	b.Percentage = decimal.NewFromInt(25)
	return b
}

func TestBudgetLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner := mustUser(t, repo, "alice")
	cat := mustCategory(t, repo, "Groceries", core.CategoryExpense)

	created, err := repo.CreateBudget(ctx, testBudget(owner, cat))
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected non-zero id")
	}

	got, err := repo.GetBudget(ctx, owner.ID, created.ID)
	if err != nil {
		t.Fatalf("GetBudget: %v", err)
	}
	if !got.Remaining.Equal(dec(t, "300.00")) || !got.Percentage.Equal(dec(t, "25.00")) {
		t.Errorf("derived fields: remaining=%s percentage=%s", got.Remaining, got.Percentage)
	}
	if got.EndDate == nil || got.EndDate.String() != "2024-03-31" {
		t.Errorf("end date not round-tripped: %v", got.EndDate)
	}

	// Same category and date range again is a conflict.
	if _, err := repo.CreateBudget(ctx, testBudget(owner, cat)); !errors.Is(err, core.ErrConflict) {
		t.Errorf("duplicate budget: got %v, want ErrConflict", err)
	}

	got.Spending = dec(t, "250.00")
	got.Remaining = dec(t, "150.00")
	got.Percentage = dec(t, "62.50")
	if err := repo.UpdateBudgetDerived(ctx, got); err != nil {
		t.Fatalf("UpdateBudgetDerived: %v", err)
	}
	got, err = repo.GetBudget(ctx, owner.ID, created.ID)
	if err != nil {
		t.Fatalf("GetBudget after recompute: %v", err)
	}
	if !got.Spending.Equal(dec(t, "250.00")) || !got.Remaining.Equal(dec(t, "150.00")) || !got.Percentage.Equal(dec(t, "62.50")) {
		t.Errorf("recompute not persisted: %+v", got)
	}

	if err := repo.UpdateBudgetNote(ctx, owner.ID, created.ID, "tight quarter"); err != nil {
		t.Fatalf("UpdateBudgetNote: %v", err)
	}
	got, _ = repo.GetBudget(ctx, owner.ID, created.ID)
	if got.Note != "tight quarter" {
		t.Errorf("note = %q", got.Note)
	}

	if err := repo.DeleteBudget(ctx, owner.ID, created.ID); err != nil {
		t.Fatalf("DeleteBudget: %v", err)
	}
	if _, err := repo.GetBudget(ctx, owner.ID, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("after delete: got %v, want ErrNotFound", err)
	}
}

func TestRecurringBudgetNilEndDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner := mustUser(t, repo, "alice")
	cat := mustCategory(t, repo, "Rent", core.CategoryExpense)

	b := testBudget(owner, cat)
	b.EndDate = nil
	b.Frequency = core.FrequencyMonthly
	b.Dates = "2024-01-01," + core.IndefiniteLabel

	created, err := repo.CreateBudget(ctx, b)
	if err != nil {
		t.Fatalf("CreateBudget recurring: %v", err)
	}
	got, err := repo.GetBudget(ctx, owner.ID, created.ID)
	if err != nil {
		t.Fatalf("GetBudget: %v", err)
	}
	if got.EndDate != nil {
		t.Errorf("recurring budget came back with end date %v", got.EndDate)
	}
	if got.Frequency != core.FrequencyMonthly {
		t.Errorf("frequency = %q", got.Frequency)
	}
	if got.Dates != "2024-01-01,Indefinitely" {
		t.Errorf("dates checkpoint = %q", got.Dates)
	}
}

func TestBudgetOrderingAndCount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner := mustUser(t, repo, "alice")
	cat := mustCategory(t, repo, "Groceries", core.CategoryExpense)

	for _, month := range []int{2, 6, 4} {
		b := testBudget(owner, cat)
		b.StartDate = core.NewDate(2024, month, 1)
		end := core.NewDate(2024, month, 28)
		b.EndDate = &end
		if _, err := repo.CreateBudget(ctx, b); err != nil {
			t.Fatalf("CreateBudget month %d: %v", month, err)
		}
	}

	list, err := repo.ListBudgets(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	want := []string{"2024-06-01", "2024-04-01", "2024-02-01"}
	for i, b := range list {
		if b.StartDate.String() != want[i] {
			t.Errorf("position %d: start %s, want %s", i, b.StartDate, want[i])
		}
	}

	n, err := repo.CountBudgets(ctx, owner.ID)
	if err != nil {
		t.Fatalf("CountBudgets: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	other := mustUser(t, repo, "bob")
	n, err = repo.CountBudgets(ctx, other.ID)
	if err != nil {
		t.Fatalf("CountBudgets other: %v", err)
	}
	if n != 0 {
		t.Errorf("other owner's count = %d, want 0", n)
	}
}

func TestGoalLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner := mustUser(t, repo, "alice")

	created, err := repo.CreateGoal(ctx, core.Goal{
		OwnerID:  owner.ID,
		Name:     "Emergency fund",
		Target:   dec(t, "2000.00"),
		Deadline: core.NewDate(2024, 12, 31),
		Status:   core.StatusOnTrack,
	})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	got, err := repo.GetGoal(ctx, owner.ID, created.ID)
	if err != nil {
		t.Fatalf("GetGoal: %v", err)
	}
	if got.Name != "Emergency fund" || !got.Target.Equal(dec(t, "2000.00")) {
		t.Errorf("got %+v", got)
	}

	got.Status = core.StatusCompleted
	got.Note = "done early"
	if _, err := repo.UpdateGoal(ctx, got); err != nil {
		t.Fatalf("UpdateGoal: %v", err)
	}
	got, _ = repo.GetGoal(ctx, owner.ID, created.ID)
	if got.Status != core.StatusCompleted || got.Note != "done early" {
		t.Errorf("update not persisted: %+v", got)
	}

	other := mustUser(t, repo, "bob")
	if _, err := repo.GetGoal(ctx, other.ID, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-owner get: got %v, want ErrNotFound", err)
	}

	if err := repo.DeleteGoal(ctx, owner.ID, created.ID); err != nil {
		t.Fatalf("DeleteGoal: %v", err)
	}
	if err := repo.DeleteGoal(ctx, owner.ID, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestGoalOrderingByDeadline(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner := mustUser(t, repo, "alice")

	for _, g := range []struct {
		name  string
		month int
	}{
		{"Holiday", 9},
		{"Laptop", 3},
		{"Emergency fund", 6},
	} {
		_, err := repo.CreateGoal(ctx, core.Goal{
			OwnerID:  owner.ID,
			Name:     g.name,
			Target:   dec(t, "500.00"),
			Deadline: core.NewDate(2024, g.month, 1),
			Status:   core.StatusOnTrack,
		})
		if err != nil {
			t.Fatalf("CreateGoal(%q): %v", g.name, err)
		}
	}

	list, err := repo.ListGoals(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListGoals: %v", err)
	}
	want := []string{"Laptop", "Emergency fund", "Holiday"}
	for i, g := range list {
		if g.Name != want[i] {
			t.Errorf("position %d: %q, want %q", i, g.Name, want[i])
		}
	}

	recent, err := repo.RecentGoals(ctx, owner.ID, 2)
	if err != nil {
		t.Fatalf("RecentGoals: %v", err)
	}
	if len(recent) != 2 || recent[0].Name != "Laptop" {
		t.Errorf("recent = %+v", recent)
	}

	n, err := repo.CountGoals(ctx, owner.ID)
	if err != nil {
		t.Fatalf("CountGoals: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestUsers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := mustUser(t, repo, "alice")
	if u.Token == "" {
		t.Fatal("expected minted token")
	}

	byToken, err := repo.GetUserByToken(ctx, u.Token)
	if err != nil {
		t.Fatalf("GetUserByToken: %v", err)
	}
	if byToken.ID != u.ID || byToken.Username != "alice" {
		t.Errorf("got %+v", byToken)
	}

	if _, err := repo.GetUserByToken(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown token: got %v, want ErrNotFound", err)
	}

	if _, err := repo.CreateUser(ctx, "alice"); !errors.Is(err, core.ErrConflict) {
		t.Errorf("duplicate username: got %v, want ErrConflict", err)
	}

	same, err := repo.GetOrCreateUser(ctx, "alice")
	if err != nil {
		t.Fatalf("GetOrCreateUser existing: %v", err)
	}
	if same.ID != u.ID {
		t.Errorf("GetOrCreateUser returned a different user: %+v", same)
	}

	fresh, err := repo.GetOrCreateUser(ctx, "bob")
	if err != nil {
		t.Fatalf("GetOrCreateUser new: %v", err)
	}
	if fresh.ID == u.ID || fresh.Token == u.Token {
		t.Errorf("new user shares identity with existing: %+v", fresh)
	}
}
