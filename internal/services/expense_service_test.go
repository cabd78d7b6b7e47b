package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/storage/memory"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages []*amqp.BudgetAlertMessage
	fail     bool
}

func (p *fakePublisher) PublishBudgetAlert(_ context.Context, msg *amqp.BudgetAlertMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *fakePublisher) published() []*amqp.BudgetAlertMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*amqp.BudgetAlertMessage(nil), p.messages...)
}

func seedOwner(t *testing.T, store *memory.Store, status core.OwnerStatus) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := store.CreateOwner(context.Background(), core.Owner{
		ID:     id,
		Email:  "owner@example.com",
		Name:   "Owner",
		Status: status,
	})
	if err != nil {
		t.Fatalf("CreateOwner: %v", err)
	}
	return id
}

func seedCategory(t *testing.T, store *memory.Store, ownerID uuid.UUID, name string) core.Category {
	t.Helper()
	c := core.Category{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Icon:      "tag",
		Color:     "#112233",
		CreatedAt: time.Now().UTC(),
	}
	if err := store.CreateCategory(context.Background(), c); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return c
}

func seedBudget(t *testing.T, store *memory.Store, ownerID uuid.UUID, categoryID *uuid.UUID, amount string, alertPct int, from, to core.Date) core.Budget {
	t.Helper()
	b := core.Budget{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		CategoryID:      categoryID,
		Amount:          decimal.RequireFromString(amount),
		Period:          core.Monthly,
		StartDate:       from,
		EndDate:         to,
		AlertPercentage: alertPct,
		CreatedAt:       time.Now().UTC(),
	}
	if err := store.CreateBudget(context.Background(), b); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	return b
}

func TestCreateExpenseRejectsDisabledOwner(t *testing.T) {
	store := memory.New()
	ownerID := seedOwner(t, store, core.OwnerDisabled)
	cat := seedCategory(t, store, ownerID, "Food")
	svc := NewExpenseService(store, nil)

	_, err := svc.Create(context.Background(), ownerID, CreateExpenseInput{
		CategoryID:  cat.ID,
		Description: "coffee",
		Amount:      decimal.RequireFromString("3.50"),
		Date:        core.NewDate(2026, 3, 1),
	})
	if !errors.Is(err, core.ErrOwnerDisabled) {
		t.Fatalf("err = %v, want ErrOwnerDisabled", err)
	}
}

func TestCreateExpenseRejectsForeignCategory(t *testing.T) {
	store := memory.New()
	ownerID := seedOwner(t, store, core.OwnerActive)
	otherID := seedOwner(t, store, core.OwnerActive)
	foreign := seedCategory(t, store, otherID, "Food")
	svc := NewExpenseService(store, nil)

	_, err := svc.Create(context.Background(), ownerID, CreateExpenseInput{
		CategoryID:  foreign.ID,
		Description: "coffee",
		Amount:      decimal.RequireFromString("3.50"),
		Date:        core.NewDate(2026, 3, 1),
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	store := memory.New()
	ownerID := seedOwner(t, store, core.OwnerActive)
	cat := seedCategory(t, store, ownerID, "Food")
	svc := NewExpenseService(store, nil)

	_, err := svc.Create(context.Background(), ownerID, CreateExpenseInput{
		CategoryID:  cat.ID,
		Description: "   ",
		Amount:      decimal.RequireFromString("3.50"),
		Date:        core.NewDate(2026, 3, 1),
	})
	if !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("err = %v, want ErrEmptyDescription", err)
	}

	_, err = svc.Create(context.Background(), ownerID, CreateExpenseInput{
		CategoryID:  cat.ID,
		Description: "coffee",
		Amount:      decimal.Zero,
		Date:        core.NewDate(2026, 3, 1),
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestExpenseAlertsOnThresholdCrossing(t *testing.T) {
	store := memory.New()
	ownerID := seedOwner(t, store, core.OwnerActive)
	cat := seedCategory(t, store, ownerID, "Food")
	budget := seedBudget(t, store, ownerID, &cat.ID, "100.00", 80,
		core.NewDate(2026, 3, 1), core.NewDate(2026, 3, 31))

	pub := &fakePublisher{}
	svc := NewExpenseService(store, pub)
	ctx := context.Background()

	create := func(amount string) {
		t.Helper()
		_, err := svc.Create(ctx, ownerID, CreateExpenseInput{
			CategoryID:  cat.ID,
			Description: "groceries",
			Amount:      decimal.RequireFromString(amount),
			Date:        core.NewDate(2026, 3, 10),
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	create("50.00") // 50 of 100, below the 80% line
	if got := pub.published(); len(got) != 0 {
		t.Fatalf("alerts after first expense = %d, want 0", len(got))
	}

	create("35.00") // 85, crosses 80%
	got := pub.published()
	if len(got) != 1 {
		t.Fatalf("alerts after crossing = %d, want 1", len(got))
	}
	if got[0].Kind != amqp.AlertThreshold {
		t.Fatalf("kind = %q, want %q", got[0].Kind, amqp.AlertThreshold)
	}
	if got[0].BudgetID != budget.ID {
		t.Fatalf("budget id = %s, want %s", got[0].BudgetID, budget.ID)
	}
	if !got[0].Spent.Equal(decimal.RequireFromString("85.00")) {
		t.Fatalf("spent = %s, want 85.00", got[0].Spent)
	}

	create("10.00") // 95, already past the line, no second threshold alert
	if got := pub.published(); len(got) != 1 {
		t.Fatalf("alerts after staying past line = %d, want 1", len(got))
	}

	create("10.00") // 105, crosses the full amount
	got = pub.published()
	if len(got) != 2 {
		t.Fatalf("alerts after exceeding = %d, want 2", len(got))
	}
	if got[1].Kind != amqp.AlertExceeded {
		t.Fatalf("kind = %q, want %q", got[1].Kind, amqp.AlertExceeded)
	}
}

func TestExpenseAlertIgnoresOtherCategory(t *testing.T) {
	store := memory.New()
	ownerID := seedOwner(t, store, core.OwnerActive)
	food := seedCategory(t, store, ownerID, "Food")
	travel := seedCategory(t, store, ownerID, "Travel")
	seedBudget(t, store, ownerID, &food.ID, "100.00", 80,
		core.NewDate(2026, 3, 1), core.NewDate(2026, 3, 31))

	pub := &fakePublisher{}
	svc := NewExpenseService(store, pub)

	_, err := svc.Create(context.Background(), ownerID, CreateExpenseInput{
		CategoryID:  travel.ID,
		Description: "flight",
		Amount:      decimal.RequireFromString("500.00"),
		Date:        core.NewDate(2026, 3, 10),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := pub.published(); len(got) != 0 {
		t.Fatalf("alerts = %d, want 0 for other category", len(got))
	}
}

func TestExpenseAlertUmbrellaBudget(t *testing.T) {
	store := memory.New()
	ownerID := seedOwner(t, store, core.OwnerActive)
	food := seedCategory(t, store, ownerID, "Food")
	seedBudget(t, store, ownerID, nil, "100.00", 80,
		core.NewDate(2026, 3, 1), core.NewDate(2026, 3, 31))

	pub := &fakePublisher{}
	svc := NewExpenseService(store, pub)

	_, err := svc.Create(context.Background(), ownerID, CreateExpenseInput{
		CategoryID:  food.ID,
		Description: "big shop",
		Amount:      decimal.RequireFromString("90.00"),
		Date:        core.NewDate(2026, 3, 10),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got := pub.published()
	if len(got) != 1 || got[0].Kind != amqp.AlertThreshold {
		t.Fatalf("alerts = %v, want one threshold alert", got)
	}
}

func TestExpensePublishFailureDoesNotFailWrite(t *testing.T) {
	store := memory.New()
	ownerID := seedOwner(t, store, core.OwnerActive)
	cat := seedCategory(t, store, ownerID, "Food")
	seedBudget(t, store, ownerID, &cat.ID, "10.00", 80,
		core.NewDate(2026, 3, 1), core.NewDate(2026, 3, 31))

	pub := &fakePublisher{fail: true}
	svc := NewExpenseService(store, pub)

	e, err := svc.Create(context.Background(), ownerID, CreateExpenseInput{
		CategoryID:  cat.ID,
		Description: "groceries",
		Amount:      decimal.RequireFromString("9.00"),
		Date:        core.NewDate(2026, 3, 10),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.GetExpense(context.Background(), ownerID, e.ID); err != nil {
		t.Fatalf("expense not stored: %v", err)
	}
}

func TestUpdateExpenseAlertUsesAmountDelta(t *testing.T) {
	store := memory.New()
	ownerID := seedOwner(t, store, core.OwnerActive)
	cat := seedCategory(t, store, ownerID, "Food")
	seedBudget(t, store, ownerID, &cat.ID, "100.00", 80,
		core.NewDate(2026, 3, 1), core.NewDate(2026, 3, 31))

	pub := &fakePublisher{}
	svc := NewExpenseService(store, pub)
	ctx := context.Background()

	e, err := svc.Create(ctx, ownerID, CreateExpenseInput{
		CategoryID:  cat.ID,
		Description: "groceries",
		Amount:      decimal.RequireFromString("70.00"),
		Date:        core.NewDate(2026, 3, 10),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := pub.published(); len(got) != 0 {
		t.Fatalf("alerts after create = %d, want 0", len(got))
	}

	// 70 -> 85 crosses the 80% line.
	newAmount := decimal.RequireFromString("85.00")
	if _, err := svc.Update(ctx, ownerID, e.ID, UpdateExpenseInput{Amount: &newAmount}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got := pub.published()
	if len(got) != 1 || got[0].Kind != amqp.AlertThreshold {
		t.Fatalf("alerts after update = %v, want one threshold alert", got)
	}
}

func TestListExpensesRejectsInvertedRange(t *testing.T) {
	store := memory.New()
	ownerID := seedOwner(t, store, core.OwnerActive)
	svc := NewExpenseService(store, nil)

	_, err := svc.List(context.Background(), ownerID,
		core.NewDate(2026, 3, 31), core.NewDate(2026, 3, 1), nil)
	if !errors.Is(err, core.ErrInvalidDateRange) {
		t.Fatalf("err = %v, want ErrInvalidDateRange", err)
	}
}

func TestGetExpenseUnknownOwner(t *testing.T) {
	store := memory.New()
	svc := NewExpenseService(store, nil)

	_, err := svc.Get(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
