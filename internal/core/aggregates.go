package core

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SpendResult is the output of the spend aggregator: the exact sum of the
// matching expense amounts and how many expenses matched.
type SpendResult struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// BudgetStatus is derived from a budget and the spend inside its own range.
type BudgetStatus struct {
	Spent          decimal.Decimal `json:"spent"`
	Remaining      decimal.Decimal `json:"remaining"`
	UsedPercentage float64         `json:"used_percentage"`
	Exceeded       bool            `json:"exceeded"`
	DaysRemaining  int             `json:"days_remaining"`
}

// BudgetOverview pairs a budget with its computed status and the category
// metadata a client needs to render it.
type BudgetOverview struct {
	Budget       Budget       `json:"budget"`
	Status       BudgetStatus `json:"status"`
	CategoryName string       `json:"category_name,omitempty"`
	CategoryIcon string       `json:"category_icon,omitempty"`
}

// BudgetRollup summarizes all of an owner's active budgets.
type BudgetRollup struct {
	TotalBudgets      int             `json:"total_budgets"`
	ActiveBudgets     int             `json:"active_budgets"`
	ExceededBudgets   int             `json:"exceeded_budgets"`
	TotalBudgetAmount decimal.Decimal `json:"total_budget_amount"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
	OverallPercentage float64         `json:"overall_percentage"`
}

// DailyPoint is one day of a trend series. MovingAverage is nil for the
// first six points of a window, where the trailing mean is undefined.
type DailyPoint struct {
	Date          Date             `json:"date"`
	Amount        decimal.Decimal  `json:"amount"`
	MovingAverage *decimal.Decimal `json:"moving_average,omitempty"`
}

// MonthlyReport groups one month's expenses by day and by category name.
type MonthlyReport struct {
	Year              int                        `json:"year"`
	Month             int                        `json:"month"`
	TotalExpenses     decimal.Decimal            `json:"total_expenses"`
	ExpenseCount      int                        `json:"expense_count"`
	DailyExpenses     map[int]decimal.Decimal    `json:"daily_expenses,omitempty"`
	CategoryBreakdown map[string]decimal.Decimal `json:"category_breakdown,omitempty"`
	BudgetComparison  *decimal.Decimal           `json:"budget_comparison,omitempty"`
}

// YearlyReport groups one year's expenses by month and by category name.
type YearlyReport struct {
	Year            int                        `json:"year"`
	TotalExpenses   decimal.Decimal            `json:"total_expenses"`
	ExpenseCount    int                        `json:"expense_count"`
	MonthlyExpenses map[int]decimal.Decimal    `json:"monthly_expenses,omitempty"`
	CategoryTotals  map[string]decimal.Decimal `json:"category_totals,omitempty"`
	AverageMonthly  decimal.Decimal            `json:"average_monthly"`
}

// CategoryShare is one category's slice of the spend in a date range.
type CategoryShare struct {
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Color        string          `json:"category_color,omitempty"`
	Icon         string          `json:"category_icon,omitempty"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	ExpenseCount int             `json:"expense_count"`
	Percentage   float64         `json:"percentage"`
}

// WeeklyProgress covers the current Monday-start week, with a comparison
// against the immediately preceding 7-day window.
type WeeklyProgress struct {
	WeekStart          Date                       `json:"week_start"`
	WeekEnd            Date                       `json:"week_end"`
	TotalExpenses      decimal.Decimal            `json:"total_expenses"`
	DailyBreakdown     map[string]decimal.Decimal `json:"daily_breakdown"`
	BudgetPercentage   *float64                   `json:"budget_percentage,omitempty"`
	ComparisonLastWeek decimal.Decimal            `json:"comparison_last_week"`
}

// RecentExpense is an expense with its category metadata attached, as shown
// on the dashboard.
type RecentExpense struct {
	ID            uuid.UUID       `json:"id"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Date          Date            `json:"date"`
	CategoryName  string          `json:"category_name"`
	CategoryIcon  string          `json:"category_icon"`
	CategoryColor string          `json:"category_color"`
}

// DashboardMetrics is the owner's landing view: current month and year
// totals, monthly budget usage, and the most recent activity.
type DashboardMetrics struct {
	TotalExpensesMonth   decimal.Decimal `json:"total_expenses_month"`
	TotalExpensesYear    decimal.Decimal `json:"total_expenses_year"`
	MonthlyBudget        decimal.Decimal `json:"monthly_budget"`
	BudgetUsedPercentage float64         `json:"budget_used_percentage"`
	ExpensesCountMonth   int             `json:"expenses_count_month"`
	TopCategory          string          `json:"top_category,omitempty"`
	RecentExpenses       []RecentExpense `json:"recent_expenses"`
}

// TopExpense is one entry of the largest-expenses ranking for a period.
type TopExpense struct {
	ID           uuid.UUID       `json:"id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Date         Date            `json:"date"`
	CategoryName string          `json:"category_name"`
	CategoryIcon string          `json:"category_icon,omitempty"`
}

// CategoryUsage ranks a category by how often it is used.
type CategoryUsage struct {
	Category     Category        `json:"category"`
	ExpenseCount int             `json:"expense_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// CategoryStats is a category with its lifetime totals.
type CategoryStats struct {
	Category      Category        `json:"category"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	ExpenseCount  int             `json:"expense_count"`
}
