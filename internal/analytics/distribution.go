package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

// CategoryDistribution groups the spend in [from, to] by category. Every
// category of the owner participates in the grouping, then categories whose
// total is exactly zero are dropped. Shares are percentages of the summed
// category totals, ordered by total descending (name ascending on ties).
func (e *Engine) CategoryDistribution(ctx context.Context, ownerID uuid.UUID, from, to core.Date) ([]core.CategoryShare, error) {
	if to.Before(from.Time) {
		return nil, core.ErrInvalidDateRange
	}

	categories, err := e.store.Categories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	rows, err := e.store.ExpensesWithCategory(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("period expenses: %w", err)
	}

	totals := make(map[uuid.UUID]decimal.Decimal, len(categories))
	counts := make(map[uuid.UUID]int, len(categories))
	for _, c := range categories {
		totals[c.ID] = decimal.Zero
	}
	for _, r := range rows {
		totals[r.CategoryID] = totals[r.CategoryID].Add(r.Amount)
		counts[r.CategoryID]++
	}

	grandTotal := decimal.Zero
	for _, t := range totals {
		grandTotal = grandTotal.Add(t)
	}

	shares := make([]core.CategoryShare, 0, len(categories))
	for _, c := range categories {
		total := totals[c.ID]
		if total.IsZero() {
			continue
		}
		shares = append(shares, core.CategoryShare{
			CategoryID:   c.ID,
			CategoryName: c.Name,
			Color:        c.Color,
			Icon:         c.Icon,
			TotalAmount:  total,
			ExpenseCount: counts[c.ID],
			Percentage:   percentOf(total, grandTotal),
		})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		if !shares[i].TotalAmount.Equal(shares[j].TotalAmount) {
			return shares[i].TotalAmount.GreaterThan(shares[j].TotalAmount)
		}
		return shares[i].CategoryName < shares[j].CategoryName
	})

	return shares, nil
}
