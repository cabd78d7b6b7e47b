package analytics

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

var weekdayLabels = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var four = decimal.NewFromInt(4)

// WeekStart returns the Monday of the week containing d.
func WeekStart(d core.Date) core.Date {
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDays(-offset)
}

// WeeklyProgress reports the current Monday-start week: per-weekday totals
// under fixed day labels, the total of the immediately preceding 7-day
// window, and the share of one quarter of the owner's monthly budget.
func (e *Engine) WeeklyProgress(ctx context.Context, ownerID uuid.UUID, today core.Date) (core.WeeklyProgress, error) {
	weekStart := WeekStart(today)
	weekEnd := weekStart.AddDays(6)

	totals, err := e.store.DailyTotals(ctx, ownerID, weekStart, weekEnd)
	if err != nil {
		return core.WeeklyProgress{}, fmt.Errorf("week totals: %w", err)
	}

	progress := core.WeeklyProgress{
		WeekStart:      weekStart,
		WeekEnd:        weekEnd,
		TotalExpenses:  decimal.Zero,
		DailyBreakdown: make(map[string]decimal.Decimal, 7),
	}
	for i := 0; i < 7; i++ {
		day := weekStart.AddDays(i)
		amount, ok := totals[day]
		if !ok {
			amount = decimal.Zero
		}
		progress.DailyBreakdown[weekdayLabels[i]] = amount
		progress.TotalExpenses = progress.TotalExpenses.Add(amount)
	}

	lastWeek, err := e.store.SumExpenses(ctx, ownerID, weekStart.AddDays(-7), weekEnd.AddDays(-7), nil)
	if err != nil {
		return core.WeeklyProgress{}, fmt.Errorf("previous week total: %w", err)
	}
	progress.ComparisonLastWeek = lastWeek.Total

	settings, err := e.settings.SettingsFor(ctx, ownerID)
	if err != nil {
		return core.WeeklyProgress{}, fmt.Errorf("owner settings: %w", err)
	}
	if settings.MonthlyBudget.IsPositive() {
		weeklyBudget := settings.MonthlyBudget.Div(four)
		pct := percentOf(progress.TotalExpenses, weeklyBudget)
		progress.BudgetPercentage = &pct
	}

	return progress, nil
}
