package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/amqp"
	"gastos/internal/core"
)

// ExpenseService orchestrates expense writes: ownership checks, validation,
// persistence, and budget alert evaluation after each write.
type ExpenseService struct {
	store     ExpenseStore
	publisher AlertPublisher
}

func NewExpenseService(store ExpenseStore, publisher AlertPublisher) *ExpenseService {
	return &ExpenseService{store: store, publisher: publisher}
}

type CreateExpenseInput struct {
	CategoryID  uuid.UUID
	Description string
	Amount      decimal.Decimal
	Date        core.Date
}

// UpdateExpenseInput patches an expense. Nil fields keep their stored value.
type UpdateExpenseInput struct {
	CategoryID  *uuid.UUID
	Description *string
	Amount      *decimal.Decimal
	Date        *core.Date
}

func (s *ExpenseService) Create(ctx context.Context, ownerID uuid.UUID, in CreateExpenseInput) (core.Expense, error) {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return core.Expense{}, err
	}
	if _, err := s.store.GetCategory(ctx, ownerID, in.CategoryID); err != nil {
		return core.Expense{}, fmt.Errorf("resolve category: %w", err)
	}

	now := time.Now().UTC()
	e := core.Expense{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		CategoryID:  in.CategoryID,
		Description: in.Description,
		Amount:      in.Amount,
		Date:        in.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	if err := s.store.CreateExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.evaluateAlerts(ctx, e, nil)
	return e, nil
}

func (s *ExpenseService) Get(ctx context.Context, ownerID, id uuid.UUID) (core.Expense, error) {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return core.Expense{}, err
	}
	return s.store.GetExpense(ctx, ownerID, id)
}

func (s *ExpenseService) List(ctx context.Context, ownerID uuid.UUID, from, to core.Date, categoryID *uuid.UUID) ([]core.Expense, error) {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return nil, err
	}
	if to.Before(from.Time) {
		return nil, core.ErrInvalidDateRange
	}
	return s.store.ListExpenses(ctx, ownerID, from, to, categoryID)
}

func (s *ExpenseService) Update(ctx context.Context, ownerID, id uuid.UUID, in UpdateExpenseInput) (core.Expense, error) {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return core.Expense{}, err
	}

	e, err := s.store.GetExpense(ctx, ownerID, id)
	if err != nil {
		return core.Expense{}, err
	}
	old := e

	if in.CategoryID != nil && *in.CategoryID != e.CategoryID {
		if _, err := s.store.GetCategory(ctx, ownerID, *in.CategoryID); err != nil {
			return core.Expense{}, fmt.Errorf("resolve category: %w", err)
		}
		e.CategoryID = *in.CategoryID
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.Amount != nil {
		e.Amount = *in.Amount
	}
	if in.Date != nil {
		e.Date = *in.Date
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	s.evaluateAlerts(ctx, e, &old)
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return err
	}
	return s.store.DeleteExpense(ctx, ownerID, id)
}

// evaluateAlerts publishes an alert for each budget whose spend the write
// pushed across its alert percentage or its full amount. Alerting never
// fails the write; errors are only logged.
func (s *ExpenseService) evaluateAlerts(ctx context.Context, e core.Expense, old *core.Expense) {
	if s.publisher == nil {
		return
	}

	budgets, err := s.store.BudgetsCovering(ctx, e.OwnerID, e.Date, e.CategoryID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load budgets for alert check",
			"owner_id", e.OwnerID, "error", err)
		return
	}

	for _, b := range budgets {
		res, err := s.store.SumExpenses(ctx, b.OwnerID, b.StartDate, b.EndDate, b.CategoryID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to sum budget spend for alert check",
				"budget_id", b.ID, "error", err)
			continue
		}
		newSpent := res.Total

		// Spend attributable to this write: the full amount on create, the
		// difference on update when the old expense also counted here.
		delta := e.Amount
		if old != nil && budgetCovers(b, *old) {
			delta = e.Amount.Sub(old.Amount)
		}
		prevSpent := newSpent.Sub(delta)

		threshold := b.Amount.Mul(decimal.NewFromInt(int64(b.AlertPercentage))).Div(hundred)

		var kind string
		switch {
		case prevSpent.LessThanOrEqual(b.Amount) && newSpent.GreaterThan(b.Amount):
			kind = amqp.AlertExceeded
		case prevSpent.LessThan(threshold) && newSpent.GreaterThanOrEqual(threshold):
			kind = amqp.AlertThreshold
		default:
			continue
		}

		pct := 0.0
		if b.Amount.IsPositive() {
			pct, _ = newSpent.Div(b.Amount).Mul(hundred).Float64()
		}
		msg := amqp.NewBudgetAlertMessage(b.ID, b.OwnerID, b.CategoryID, kind, newSpent, b.Amount, pct)
		if err := s.publisher.PublishBudgetAlert(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish budget alert",
				"budget_id", b.ID, "kind", kind, "error", err)
		}
	}
}

// budgetCovers reports whether the budget's range and category scope take
// the expense into account.
func budgetCovers(b core.Budget, e core.Expense) bool {
	if e.Date.Before(b.StartDate.Time) || e.Date.After(b.EndDate.Time) {
		return false
	}
	return b.CategoryID == nil || *b.CategoryID == e.CategoryID
}
