package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

// ComputeStatus derives a budget's status from the amount spent inside its
// own date range. Pure; today decides the days-remaining figure.
func ComputeStatus(b core.Budget, spent decimal.Decimal, today core.Date) core.BudgetStatus {
	days := today.DaysUntil(b.EndDate)
	if days < 0 {
		days = 0
	}
	return core.BudgetStatus{
		Spent:          spent,
		Remaining:      b.Amount.Sub(spent),
		UsedPercentage: percentOf(spent, b.Amount),
		Exceeded:       spent.GreaterThan(b.Amount),
		DaysRemaining:  days,
	}
}

// BudgetStatus aggregates the spend inside the budget's range and category,
// then derives spent, remaining, usage percentage and days remaining.
// Status always reflects the latest stored expenses.
func (e *Engine) BudgetStatus(ctx context.Context, b core.Budget) (core.BudgetStatus, error) {
	res, err := e.store.SumExpenses(ctx, b.OwnerID, b.StartDate, b.EndDate, b.CategoryID)
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("sum budget expenses: %w", err)
	}
	return ComputeStatus(b, res.Total, core.Today()), nil
}
