package analytics

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gastos/internal/core"
)

// Spend sums the owner's expense amounts over the inclusive range [from, to],
// optionally filtered to one category. A range with no matching expenses
// yields a zero total and zero count.
func (e *Engine) Spend(ctx context.Context, ownerID uuid.UUID, from, to core.Date, categoryID *uuid.UUID) (core.SpendResult, error) {
	if err := from.Validate(); err != nil {
		return core.SpendResult{}, err
	}
	if err := to.Validate(); err != nil {
		return core.SpendResult{}, err
	}
	if to.Before(from.Time) {
		return core.SpendResult{}, core.ErrInvalidDateRange
	}

	res, err := e.store.SumExpenses(ctx, ownerID, from, to, categoryID)
	if err != nil {
		return core.SpendResult{}, fmt.Errorf("sum expenses: %w", err)
	}
	return res, nil
}
