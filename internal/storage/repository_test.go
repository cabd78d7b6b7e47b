package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "gastos.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedOwner(t *testing.T, repo *SQLiteRepository) core.Owner {
	t.Helper()
	o := core.Owner{
		ID:     uuid.New(),
		Email:  "test@example.com",
		Name:   "Test",
		Status: core.OwnerActive,
	}
	if err := repo.CreateOwner(context.Background(), o); err != nil {
		t.Fatalf("CreateOwner: %v", err)
	}
	return o
}

func seedCategory(t *testing.T, repo *SQLiteRepository, ownerID uuid.UUID, name string) core.Category {
	t.Helper()
	c := core.Category{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Icon:      "cart",
		Color:     "#00AA00",
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateCategory(context.Background(), c); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return c
}

func seedExpense(t *testing.T, repo *SQLiteRepository, ownerID, categoryID uuid.UUID, amount string, date core.Date) core.Expense {
	t.Helper()
	now := time.Now().UTC()
	e := core.Expense{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		CategoryID:  categoryID,
		Description: "test expense",
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.CreateExpense(context.Background(), e); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	return e
}

func TestExpenseRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo)
	cat := seedCategory(t, repo, owner.ID, "Groceries")
	e := seedExpense(t, repo, owner.ID, cat.ID, "12.34", core.NewDate(2026, 3, 10))

	got, err := repo.GetExpense(context.Background(), owner.ID, e.ID)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if !got.Amount.Equal(decimal.RequireFromString("12.34")) {
		t.Fatalf("amount = %s, want 12.34", got.Amount)
	}
	if got.Date.String() != "2026-03-10" {
		t.Fatalf("date = %s, want 2026-03-10", got.Date)
	}
}

func TestGetExpenseWrongOwner(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo)
	cat := seedCategory(t, repo, owner.ID, "Groceries")
	e := seedExpense(t, repo, owner.ID, cat.ID, "5.00", core.NewDate(2026, 3, 10))

	_, err := repo.GetExpense(context.Background(), uuid.New(), e.ID)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSumExpensesRangeAndCategory(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo)
	food := seedCategory(t, repo, owner.ID, "Food")
	travel := seedCategory(t, repo, owner.ID, "Travel")

	seedExpense(t, repo, owner.ID, food.ID, "10.00", core.NewDate(2026, 3, 1))
	seedExpense(t, repo, owner.ID, food.ID, "2.50", core.NewDate(2026, 3, 15))
	seedExpense(t, repo, owner.ID, travel.ID, "100.00", core.NewDate(2026, 3, 15))
	seedExpense(t, repo, owner.ID, food.ID, "7.00", core.NewDate(2026, 4, 1)) // outside range

	from, to := core.NewDate(2026, 3, 1), core.NewDate(2026, 3, 31)

	all, err := repo.SumExpenses(context.Background(), owner.ID, from, to, nil)
	if err != nil {
		t.Fatalf("SumExpenses: %v", err)
	}
	if !all.Total.Equal(decimal.RequireFromString("112.50")) || all.Count != 3 {
		t.Fatalf("all = %s/%d, want 112.50/3", all.Total, all.Count)
	}

	onlyFood, err := repo.SumExpenses(context.Background(), owner.ID, from, to, &food.ID)
	if err != nil {
		t.Fatalf("SumExpenses with category: %v", err)
	}
	if !onlyFood.Total.Equal(decimal.RequireFromString("12.50")) || onlyFood.Count != 2 {
		t.Fatalf("food = %s/%d, want 12.50/2", onlyFood.Total, onlyFood.Count)
	}
}

func TestSumExpensesEmptyRange(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo)

	res, err := repo.SumExpenses(context.Background(), owner.ID, core.NewDate(2026, 1, 1), core.NewDate(2026, 1, 31), nil)
	if err != nil {
		t.Fatalf("SumExpenses: %v", err)
	}
	if !res.Total.IsZero() || res.Count != 0 {
		t.Fatalf("res = %s/%d, want 0/0", res.Total, res.Count)
	}
}

func TestDailyTotalsGroupsByDate(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo)
	cat := seedCategory(t, repo, owner.ID, "Food")

	day := core.NewDate(2026, 3, 5)
	seedExpense(t, repo, owner.ID, cat.ID, "3.00", day)
	seedExpense(t, repo, owner.ID, cat.ID, "4.00", day)
	seedExpense(t, repo, owner.ID, cat.ID, "1.00", core.NewDate(2026, 3, 6))

	totals, err := repo.DailyTotals(context.Background(), owner.ID, core.NewDate(2026, 3, 1), core.NewDate(2026, 3, 31))
	if err != nil {
		t.Fatalf("DailyTotals: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("len(totals) = %d, want 2", len(totals))
	}
	if got := totals[day]; !got.Equal(decimal.RequireFromString("7.00")) {
		t.Fatalf("totals[%s] = %s, want 7.00", day, got)
	}
}

func TestCreateBudgetOverlapRejected(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo)
	cat := seedCategory(t, repo, owner.ID, "Food")

	first := core.Budget{
		ID:              uuid.New(),
		OwnerID:         owner.ID,
		CategoryID:      &cat.ID,
		Amount:          decimal.RequireFromString("300.00"),
		Period:          core.Monthly,
		StartDate:       core.NewDate(2026, 3, 1),
		EndDate:         core.NewDate(2026, 3, 31),
		AlertPercentage: 80,
		CreatedAt:       time.Now().UTC(),
	}
	if err := repo.CreateBudget(context.Background(), first); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	second := first
	second.ID = uuid.New()
	second.StartDate = core.NewDate(2026, 3, 31)
	second.EndDate = core.NewDate(2026, 4, 30)

	err := repo.CreateBudget(context.Background(), second)
	var overlap *core.OverlapError
	if !errors.As(err, &overlap) {
		t.Fatalf("err = %v, want OverlapError", err)
	}
	if overlap.ExistingID != first.ID {
		t.Fatalf("existing id = %s, want %s", overlap.ExistingID, first.ID)
	}
	if !errors.Is(err, core.ErrBudgetOverlap) {
		t.Fatalf("err does not unwrap to ErrBudgetOverlap")
	}
}

func TestCreateBudgetUmbrellaAndCategoryCoexist(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo)
	cat := seedCategory(t, repo, owner.ID, "Food")

	umbrella := core.Budget{
		ID:              uuid.New(),
		OwnerID:         owner.ID,
		Amount:          decimal.RequireFromString("1000.00"),
		Period:          core.Monthly,
		StartDate:       core.NewDate(2026, 3, 1),
		EndDate:         core.NewDate(2026, 3, 31),
		AlertPercentage: 80,
		CreatedAt:       time.Now().UTC(),
	}
	scoped := umbrella
	scoped.ID = uuid.New()
	scoped.CategoryID = &cat.ID

	if err := repo.CreateBudget(context.Background(), umbrella); err != nil {
		t.Fatalf("CreateBudget umbrella: %v", err)
	}
	if err := repo.CreateBudget(context.Background(), scoped); err != nil {
		t.Fatalf("CreateBudget scoped: %v", err)
	}
}

func TestUpdateBudgetSkipsSelfInOverlapCheck(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo)

	b := core.Budget{
		ID:              uuid.New(),
		OwnerID:         owner.ID,
		Amount:          decimal.RequireFromString("500.00"),
		Period:          core.Monthly,
		StartDate:       core.NewDate(2026, 3, 1),
		EndDate:         core.NewDate(2026, 3, 31),
		AlertPercentage: 80,
		CreatedAt:       time.Now().UTC(),
	}
	if err := repo.CreateBudget(context.Background(), b); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	b.EndDate = core.NewDate(2026, 4, 15)
	if err := repo.UpdateBudget(context.Background(), b); err != nil {
		t.Fatalf("UpdateBudget: %v", err)
	}

	got, err := repo.GetBudget(context.Background(), owner.ID, b.ID)
	if err != nil {
		t.Fatalf("GetBudget: %v", err)
	}
	if got.EndDate.String() != "2026-04-15" {
		t.Fatalf("end date = %s, want 2026-04-15", got.EndDate)
	}
}

func TestListBudgetsFiltersExpired(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo)

	expired := core.Budget{
		ID:              uuid.New(),
		OwnerID:         owner.ID,
		Amount:          decimal.RequireFromString("100.00"),
		Period:          core.Monthly,
		StartDate:       core.NewDate(2026, 1, 1),
		EndDate:         core.NewDate(2026, 1, 31),
		AlertPercentage: 80,
		CreatedAt:       time.Now().UTC(),
	}
	active := expired
	active.ID = uuid.New()
	active.StartDate = core.NewDate(2026, 3, 1)
	active.EndDate = core.NewDate(2026, 3, 31)

	for _, b := range []core.Budget{expired, active} {
		if err := repo.CreateBudget(context.Background(), b); err != nil {
			t.Fatalf("CreateBudget: %v", err)
		}
	}

	today := core.NewDate(2026, 3, 10)
	got, err := repo.ListBudgets(context.Background(), owner.ID, false, today)
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if len(got) != 1 || got[0].ID != active.ID {
		t.Fatalf("got %d budgets, want only the active one", len(got))
	}

	all, err := repo.ListBudgets(context.Background(), owner.ID, true, today)
	if err != nil {
		t.Fatalf("ListBudgets all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d budgets, want 2", len(all))
	}
}

func TestCategoryNameTakenCaseInsensitive(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo)
	seedCategory(t, repo, owner.ID, "Groceries")

	taken, err := repo.CategoryNameTaken(context.Background(), owner.ID, "GROCERIES", uuid.Nil)
	if err != nil {
		t.Fatalf("CategoryNameTaken: %v", err)
	}
	if !taken {
		t.Fatal("expected name to be taken")
	}

	free, err := repo.CategoryNameTaken(context.Background(), owner.ID, "Rent", uuid.Nil)
	if err != nil {
		t.Fatalf("CategoryNameTaken: %v", err)
	}
	if free {
		t.Fatal("expected name to be free")
	}
}

func TestDeleteCategoryCascade(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo)
	cat := seedCategory(t, repo, owner.ID, "Food")
	e := seedExpense(t, repo, owner.ID, cat.ID, "5.00", core.NewDate(2026, 3, 1))

	if err := repo.DeleteCategory(context.Background(), owner.ID, cat.ID, true); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if _, err := repo.GetExpense(context.Background(), owner.ID, e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expense survived cascade: %v", err)
	}
}

func TestSettingsDefaultsAndUpsert(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo)

	s, err := repo.SettingsFor(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("SettingsFor: %v", err)
	}
	if !s.MonthlyBudget.Equal(decimal.RequireFromString("1000")) {
		t.Fatalf("default monthly budget = %s, want 1000", s.MonthlyBudget)
	}

	s.ID = uuid.New()
	s.MonthlyBudget = decimal.RequireFromString("2500.00")
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	if err := repo.SaveSettings(context.Background(), s); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	got, err := repo.SettingsFor(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("SettingsFor: %v", err)
	}
	if !got.MonthlyBudget.Equal(decimal.RequireFromString("2500.00")) {
		t.Fatalf("monthly budget = %s, want 2500.00", got.MonthlyBudget)
	}

	if err := repo.DeleteSettings(context.Background(), owner.ID); err != nil {
		t.Fatalf("DeleteSettings: %v", err)
	}
	back, err := repo.SettingsFor(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("SettingsFor after delete: %v", err)
	}
	if !back.MonthlyBudget.Equal(decimal.RequireFromString("1000")) {
		t.Fatalf("monthly budget after reset = %s, want 1000", back.MonthlyBudget)
	}
}

func TestRecentExpensesLimit(t *testing.T) {
	repo := newTestRepo(t)
	owner := seedOwner(t, repo)
	cat := seedCategory(t, repo, owner.ID, "Food")

	for i := 0; i < 8; i++ {
		seedExpense(t, repo, owner.ID, cat.ID, "1.00", core.NewDate(2026, 3, 1+i))
	}

	rows, err := repo.RecentExpenses(context.Background(), owner.ID, 5)
	if err != nil {
		t.Fatalf("RecentExpenses: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("len(rows) = %d, want 5", len(rows))
	}
	if rows[0].CategoryName != "Food" {
		t.Fatalf("category name = %q, want Food", rows[0].CategoryName)
	}
}
