// Package analytics derives budget and spend figures from stored records:
// period-scoped aggregation, budget status, daily trend series and the
// composed dashboard and report views.
//
// Every operation is a pure read. Nothing is cached or carried between
// calls; results are re-derived from the store on each invocation, so they
// are safe to run with unbounded concurrency.
package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

// ExpenseRow is an expense joined with its category metadata, the read model
// the composer groups by day, month and category name.
type ExpenseRow struct {
	core.Expense
	CategoryName  string
	CategoryIcon  string
	CategoryColor string
}

// Store is the read-only port onto the record store. Implementations must
// scope every query to the given owner.
type Store interface {
	// SumExpenses returns the exact total and count of the owner's expenses
	// with date in [from, to], optionally restricted to one category.
	SumExpenses(ctx context.Context, ownerID uuid.UUID, from, to core.Date, categoryID *uuid.UUID) (core.SpendResult, error)

	// DailyTotals returns per-day expense sums for days that have expenses.
	// Days without expenses are absent from the map.
	DailyTotals(ctx context.Context, ownerID uuid.UUID, from, to core.Date) (map[core.Date]decimal.Decimal, error)

	// ExpensesWithCategory returns the owner's expenses in [from, to] with
	// category metadata attached.
	ExpensesWithCategory(ctx context.Context, ownerID uuid.UUID, from, to core.Date) ([]ExpenseRow, error)

	// Categories returns all of the owner's categories.
	Categories(ctx context.Context, ownerID uuid.UUID) ([]core.Category, error)

	// RecentExpenses returns the owner's most recently created expenses,
	// newest first, with category metadata attached.
	RecentExpenses(ctx context.Context, ownerID uuid.UUID, limit int) ([]ExpenseRow, error)
}

// SettingsReader supplies the owner settings the composer consumes
// read-only (monthly budget, alert preference).
type SettingsReader interface {
	SettingsFor(ctx context.Context, ownerID uuid.UUID) (core.Settings, error)
}

// Engine wires the analytic components to their collaborators.
type Engine struct {
	store    Store
	settings SettingsReader
}

// New creates an analytics engine over the given store and settings source.
func New(store Store, settings SettingsReader) *Engine {
	return &Engine{store: store, settings: settings}
}

func percentOf(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		// Degenerate division resolves to zero, never an error.
		return 0
	}
	f, _ := part.Div(whole).Mul(decimal.NewFromInt(100)).Float64()
	return f
}
