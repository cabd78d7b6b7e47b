package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
	"gastos/internal/storage/memory"
)

func TestCategoryCreateRejectsDuplicateName(t *testing.T) {
	store := memory.New()
	ownerID := seedOwner(t, store, core.OwnerActive)
	svc := NewCategoryService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, ownerID, CreateCategoryInput{Name: "Groceries", Icon: "cart", Color: "#0A0"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Create(ctx, ownerID, CreateCategoryInput{Name: "  groceries ", Icon: "cart", Color: "#0A0"})
	if !errors.Is(err, core.ErrNameTaken) {
		t.Fatalf("err = %v, want ErrNameTaken", err)
	}
}

func TestCategoryNameUniquePerOwner(t *testing.T) {
	store := memory.New()
	first := seedOwner(t, store, core.OwnerActive)
	second := seedOwner(t, store, core.OwnerActive)
	svc := NewCategoryService(store)
	ctx := context.Background()

	if _, err := svc.Create(ctx, first, CreateCategoryInput{Name: "Groceries", Icon: "cart", Color: "#0A0"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, second, CreateCategoryInput{Name: "Groceries", Icon: "cart", Color: "#0A0"}); err != nil {
		t.Fatalf("same name under another owner rejected: %v", err)
	}
}

func TestCategoryUpdateKeepingOwnNameAllowed(t *testing.T) {
	store := memory.New()
	ownerID := seedOwner(t, store, core.OwnerActive)
	svc := NewCategoryService(store)
	ctx := context.Background()

	c, err := svc.Create(ctx, ownerID, CreateCategoryInput{Name: "Groceries", Icon: "cart", Color: "#0A0"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sameName := "Groceries"
	newColor := "#FFF"
	got, err := svc.Update(ctx, ownerID, c.ID, UpdateCategoryInput{Name: &sameName, Color: &newColor})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Color != "#FFF" {
		t.Fatalf("color = %q, want #FFF", got.Color)
	}
}

func TestCategoryDeleteInUse(t *testing.T) {
	store := memory.New()
	ownerID := seedOwner(t, store, core.OwnerActive)
	cat := seedCategory(t, store, ownerID, "Food")
	seedExpense(t, store, ownerID, cat.ID, "5.00", core.NewDate(2026, 3, 1))
	svc := NewCategoryService(store)
	ctx := context.Background()

	err := svc.Delete(ctx, ownerID, cat.ID, false)
	if !errors.Is(err, core.ErrCategoryInUse) {
		t.Fatalf("err = %v, want ErrCategoryInUse", err)
	}

	if err := svc.Delete(ctx, ownerID, cat.ID, true); err != nil {
		t.Fatalf("force delete: %v", err)
	}
	if _, err := store.GetCategory(ctx, ownerID, cat.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("category survived force delete: %v", err)
	}
	res, err := store.CategoryTotals(ctx, ownerID, cat.ID)
	if err != nil {
		t.Fatalf("CategoryTotals: %v", err)
	}
	if res.Count != 0 {
		t.Fatalf("expenses survived cascade: %d", res.Count)
	}
}

func TestCategoryStats(t *testing.T) {
	store := memory.New()
	ownerID := seedOwner(t, store, core.OwnerActive)
	cat := seedCategory(t, store, ownerID, "Food")
	seedExpense(t, store, ownerID, cat.ID, "5.00", core.NewDate(2026, 3, 1))
	seedExpense(t, store, ownerID, cat.ID, "7.50", core.NewDate(2026, 3, 2))
	svc := NewCategoryService(store)

	stats, err := svc.Stats(context.Background(), ownerID, cat.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if !stats.TotalExpenses.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("total = %s, want 12.50", stats.TotalExpenses)
	}
	if stats.ExpenseCount != 2 {
		t.Fatalf("count = %d, want 2", stats.ExpenseCount)
	}
}

func TestCategoryMostUsedOrder(t *testing.T) {
	store := memory.New()
	ownerID := seedOwner(t, store, core.OwnerActive)
	food := seedCategory(t, store, ownerID, "Food")
	travel := seedCategory(t, store, ownerID, "Travel")

	seedExpense(t, store, ownerID, food.ID, "1.00", core.NewDate(2026, 3, 1))
	seedExpense(t, store, ownerID, food.ID, "1.00", core.NewDate(2026, 3, 2))
	seedExpense(t, store, ownerID, travel.ID, "100.00", core.NewDate(2026, 3, 3))

	svc := NewCategoryService(store)
	got, err := svc.MostUsed(context.Background(), ownerID, 0)
	if err != nil {
		t.Fatalf("MostUsed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Category.Name != "Food" || got[0].ExpenseCount != 2 {
		t.Fatalf("first = %s/%d, want Food/2", got[0].Category.Name, got[0].ExpenseCount)
	}
}

func TestCategoryValidation(t *testing.T) {
	store := memory.New()
	ownerID := seedOwner(t, store, core.OwnerActive)
	svc := NewCategoryService(store)

	_, err := svc.Create(context.Background(), ownerID, CreateCategoryInput{Name: "", Icon: "cart", Color: "#0A0"})
	if !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("err = %v, want ErrEmptyName", err)
	}
}
