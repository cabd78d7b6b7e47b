package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"gastos/internal/core"
)

const recentExpenseLimit = 5

// Dashboard composes the owner's landing view for the given instant:
// current-month and current-year totals, monthly budget usage, the month's
// top category and the five most recently created expenses.
//
// The independent reads fan out concurrently; all of them are pure.
func (e *Engine) Dashboard(ctx context.Context, ownerID uuid.UUID, now time.Time) (core.DashboardMetrics, error) {
	today := core.DateOf(now)
	monthStart := core.NewDate(today.Year(), int(today.Month()), 1)
	yearStart := core.NewDate(today.Year(), 1, 1)

	var (
		monthSpend core.SpendResult
		yearSpend  core.SpendResult
		monthRows  []ExpenseRow
		recent     []ExpenseRow
		settings   core.Settings
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		monthSpend, err = e.store.SumExpenses(gctx, ownerID, monthStart, today, nil)
		if err != nil {
			return fmt.Errorf("month total: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		yearSpend, err = e.store.SumExpenses(gctx, ownerID, yearStart, today, nil)
		if err != nil {
			return fmt.Errorf("year total: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		monthRows, err = e.store.ExpensesWithCategory(gctx, ownerID, monthStart, today)
		if err != nil {
			return fmt.Errorf("month expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recent, err = e.store.RecentExpenses(gctx, ownerID, recentExpenseLimit)
		if err != nil {
			return fmt.Errorf("recent expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		settings, err = e.settings.SettingsFor(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("owner settings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.DashboardMetrics{}, err
	}

	metrics := core.DashboardMetrics{
		TotalExpensesMonth:   monthSpend.Total,
		TotalExpensesYear:    yearSpend.Total,
		MonthlyBudget:        settings.MonthlyBudget,
		BudgetUsedPercentage: percentOf(monthSpend.Total, settings.MonthlyBudget),
		ExpensesCountMonth:   monthSpend.Count,
		TopCategory:          topCategory(monthRows),
		RecentExpenses:       make([]core.RecentExpense, 0, len(recent)),
	}
	for _, r := range recent {
		metrics.RecentExpenses = append(metrics.RecentExpenses, core.RecentExpense{
			ID:            r.ID,
			Description:   r.Description,
			Amount:        r.Amount,
			Date:          r.Date,
			CategoryName:  r.CategoryName,
			CategoryIcon:  r.CategoryIcon,
			CategoryColor: r.CategoryColor,
		})
	}

	return metrics, nil
}

// topCategory picks the category with the highest total spend. Ties break
// to the lexicographically smaller name so the result is deterministic
// regardless of store iteration order.
func topCategory(rows []ExpenseRow) string {
	totals := make(map[string]decimal.Decimal)
	for _, r := range rows {
		totals[r.CategoryName] = totals[r.CategoryName].Add(r.Amount)
	}

	var best string
	var bestTotal decimal.Decimal
	for name, total := range totals {
		switch {
		case best == "":
			best, bestTotal = name, total
		case total.GreaterThan(bestTotal):
			best, bestTotal = name, total
		case total.Equal(bestTotal) && name < best:
			best = name
		}
	}
	return best
}
