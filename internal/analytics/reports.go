package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

var twelve = decimal.NewFromInt(12)

// ErrInvalidMonth rejects month numbers outside the calendar.
var ErrInvalidMonth = errors.New("month must be between 1 and 12")

// MonthlyReport totals one calendar month and groups the same expense set
// two ways: by day of month and by category name.
func (e *Engine) MonthlyReport(ctx context.Context, ownerID uuid.UUID, year, month int) (core.MonthlyReport, error) {
	if month < 1 || month > 12 {
		return core.MonthlyReport{}, ErrInvalidMonth
	}

	from := core.NewDate(year, month, 1)
	to := core.Date{Time: from.AddDate(0, 1, -1)}

	rows, err := e.store.ExpensesWithCategory(ctx, ownerID, from, to)
	if err != nil {
		return core.MonthlyReport{}, fmt.Errorf("month expenses: %w", err)
	}

	report := core.MonthlyReport{
		Year:          year,
		Month:         month,
		TotalExpenses: decimal.Zero,
	}
	if len(rows) == 0 {
		return report, nil
	}

	report.ExpenseCount = len(rows)
	report.DailyExpenses = make(map[int]decimal.Decimal)
	report.CategoryBreakdown = make(map[string]decimal.Decimal)
	for _, r := range rows {
		report.TotalExpenses = report.TotalExpenses.Add(r.Amount)
		day := r.Date.Day()
		report.DailyExpenses[day] = report.DailyExpenses[day].Add(r.Amount)
		report.CategoryBreakdown[r.CategoryName] = report.CategoryBreakdown[r.CategoryName].Add(r.Amount)
	}

	if settings, err := e.settings.SettingsFor(ctx, ownerID); err == nil && settings.MonthlyBudget.IsPositive() {
		mb := settings.MonthlyBudget
		report.BudgetComparison = &mb
	}

	return report, nil
}

// YearlyReport totals one calendar year, grouped by month and by category
// name, with the average monthly spend over all twelve months.
func (e *Engine) YearlyReport(ctx context.Context, ownerID uuid.UUID, year int) (core.YearlyReport, error) {
	from := core.NewDate(year, 1, 1)
	to := core.NewDate(year, 12, 31)

	rows, err := e.store.ExpensesWithCategory(ctx, ownerID, from, to)
	if err != nil {
		return core.YearlyReport{}, fmt.Errorf("year expenses: %w", err)
	}

	report := core.YearlyReport{
		Year:           year,
		TotalExpenses:  decimal.Zero,
		AverageMonthly: decimal.Zero,
	}
	if len(rows) == 0 {
		return report, nil
	}

	report.ExpenseCount = len(rows)
	report.MonthlyExpenses = make(map[int]decimal.Decimal)
	report.CategoryTotals = make(map[string]decimal.Decimal)
	for _, r := range rows {
		report.TotalExpenses = report.TotalExpenses.Add(r.Amount)
		month := int(r.Date.Month())
		report.MonthlyExpenses[month] = report.MonthlyExpenses[month].Add(r.Amount)
		report.CategoryTotals[r.CategoryName] = report.CategoryTotals[r.CategoryName].Add(r.Amount)
	}
	report.AverageMonthly = report.TotalExpenses.Div(twelve)

	return report, nil
}

// TopExpenses ranks the owner's largest expenses in [from, to], biggest
// first. Limit is clamped to 1..50.
func (e *Engine) TopExpenses(ctx context.Context, ownerID uuid.UUID, from, to core.Date, limit int) ([]core.TopExpense, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}
	if to.Before(from.Time) {
		return nil, core.ErrInvalidDateRange
	}

	rows, err := e.store.ExpensesWithCategory(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("period expenses: %w", err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Amount.GreaterThan(rows[j].Amount)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}

	top := make([]core.TopExpense, len(rows))
	for i, r := range rows {
		top[i] = core.TopExpense{
			ID:           r.ID,
			Description:  r.Description,
			Amount:       r.Amount,
			Date:         r.Date,
			CategoryName: r.CategoryName,
			CategoryIcon: r.CategoryIcon,
		}
	}
	return top, nil
}

// MonthBounds returns the first and last day of a calendar month.
func MonthBounds(year int, month time.Month) (core.Date, core.Date) {
	from := core.NewDate(year, int(month), 1)
	return from, core.Date{Time: from.AddDate(0, 1, -1)}
}
