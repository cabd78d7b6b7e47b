// Package services holds the business logic layer: owner gating,
// validation, orchestration of the record store, and alert publication.
package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/amqp"
	"gastos/internal/core"
)

// OwnerReader resolves owners. Every service call starts here so disabled
// owners are rejected uniformly.
type OwnerReader interface {
	GetOwner(ctx context.Context, id uuid.UUID) (core.Owner, error)
}

type CategoryStore interface {
	OwnerReader
	CreateCategory(ctx context.Context, c core.Category) error
	GetCategory(ctx context.Context, ownerID, id uuid.UUID) (core.Category, error)
	Categories(ctx context.Context, ownerID uuid.UUID) ([]core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	CategoryNameTaken(ctx context.Context, ownerID uuid.UUID, name string, exclude uuid.UUID) (bool, error)
	CategoryRecordCounts(ctx context.Context, ownerID, id uuid.UUID) (expenses, budgets int, err error)
	DeleteCategory(ctx context.Context, ownerID, id uuid.UUID, cascade bool) error
	CategoryTotals(ctx context.Context, ownerID, id uuid.UUID) (core.SpendResult, error)
	MostUsedCategories(ctx context.Context, ownerID uuid.UUID, limit int) ([]core.CategoryUsage, error)
}

type ExpenseStore interface {
	OwnerReader
	GetCategory(ctx context.Context, ownerID, id uuid.UUID) (core.Category, error)
	CreateExpense(ctx context.Context, e core.Expense) error
	GetExpense(ctx context.Context, ownerID, id uuid.UUID) (core.Expense, error)
	UpdateExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, ownerID, id uuid.UUID) error
	ListExpenses(ctx context.Context, ownerID uuid.UUID, from, to core.Date, categoryID *uuid.UUID) ([]core.Expense, error)
	SumExpenses(ctx context.Context, ownerID uuid.UUID, from, to core.Date, categoryID *uuid.UUID) (core.SpendResult, error)
	BudgetsCovering(ctx context.Context, ownerID uuid.UUID, date core.Date, categoryID uuid.UUID) ([]core.Budget, error)
}

type BudgetStore interface {
	OwnerReader
	GetCategory(ctx context.Context, ownerID, id uuid.UUID) (core.Category, error)
	CreateBudget(ctx context.Context, b core.Budget) error
	UpdateBudget(ctx context.Context, b core.Budget) error
	GetBudget(ctx context.Context, ownerID, id uuid.UUID) (core.Budget, error)
	ListBudgets(ctx context.Context, ownerID uuid.UUID, includeExpired bool, today core.Date) ([]core.Budget, error)
	DeleteBudget(ctx context.Context, ownerID, id uuid.UUID) error
	SumExpenses(ctx context.Context, ownerID uuid.UUID, from, to core.Date, categoryID *uuid.UUID) (core.SpendResult, error)
}

type SettingsStore interface {
	OwnerReader
	SettingsFor(ctx context.Context, ownerID uuid.UUID) (core.Settings, error)
	SaveSettings(ctx context.Context, s core.Settings) error
	DeleteSettings(ctx context.Context, ownerID uuid.UUID) error
}

// AlertPublisher pushes budget alerts to the broker. A nil publisher
// disables alerting without touching the write path.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
}

var hundred = decimal.NewFromInt(100)

// requireActiveOwner resolves the owner and rejects disabled ones.
func requireActiveOwner(ctx context.Context, store OwnerReader, ownerID uuid.UUID) (core.Owner, error) {
	owner, err := store.GetOwner(ctx, ownerID)
	if err != nil {
		return core.Owner{}, err
	}
	if owner.Status != core.OwnerActive {
		return core.Owner{}, core.ErrOwnerDisabled
	}
	return owner, nil
}
