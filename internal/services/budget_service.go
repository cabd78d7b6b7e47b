package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/analytics"
	"gastos/internal/core"
)

// BudgetService owns the budget lifecycle. The overlap guarantee lives in
// the store's transactional write; this layer validates, defaults, and
// derives per-budget status.
type BudgetService struct {
	store BudgetStore
	today func() core.Date
}

func NewBudgetService(store BudgetStore) *BudgetService {
	return &BudgetService{store: store, today: core.Today}
}

type CreateBudgetInput struct {
	CategoryID      *uuid.UUID
	Amount          decimal.Decimal
	Period          core.Period
	StartDate       core.Date
	EndDate         core.Date
	AlertPercentage int // 0 means the default
}

// UpdateBudgetInput patches a budget. Nil fields keep their stored value.
type UpdateBudgetInput struct {
	Amount          *decimal.Decimal
	Period          *core.Period
	StartDate       *core.Date
	EndDate         *core.Date
	AlertPercentage *int
}

func (s *BudgetService) Create(ctx context.Context, ownerID uuid.UUID, in CreateBudgetInput) (core.Budget, error) {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return core.Budget{}, err
	}
	if in.CategoryID != nil {
		if _, err := s.store.GetCategory(ctx, ownerID, *in.CategoryID); err != nil {
			return core.Budget{}, fmt.Errorf("resolve category: %w", err)
		}
	}

	alert := in.AlertPercentage
	if alert == 0 {
		alert = core.DefaultAlertPercentage
	}
	b := core.Budget{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		CategoryID:      in.CategoryID,
		Amount:          in.Amount,
		Period:          in.Period,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		AlertPercentage: alert,
		CreatedAt:       time.Now().UTC(),
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	if err := s.store.CreateBudget(ctx, b); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *BudgetService) Update(ctx context.Context, ownerID, id uuid.UUID, in UpdateBudgetInput) (core.Budget, error) {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return core.Budget{}, err
	}

	b, err := s.store.GetBudget(ctx, ownerID, id)
	if err != nil {
		return core.Budget{}, err
	}

	if in.Amount != nil {
		b.Amount = *in.Amount
	}
	if in.Period != nil {
		b.Period = *in.Period
	}
	if in.StartDate != nil {
		b.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		b.EndDate = *in.EndDate
	}
	if in.AlertPercentage != nil {
		b.AlertPercentage = *in.AlertPercentage
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	if err := s.store.UpdateBudget(ctx, b); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// Get returns the budget with its live status and category metadata.
func (s *BudgetService) Get(ctx context.Context, ownerID, id uuid.UUID) (core.BudgetOverview, error) {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return core.BudgetOverview{}, err
	}
	b, err := s.store.GetBudget(ctx, ownerID, id)
	if err != nil {
		return core.BudgetOverview{}, err
	}
	return s.overview(ctx, b)
}

// List returns the owner's budgets with status, expired ones only on
// request.
func (s *BudgetService) List(ctx context.Context, ownerID uuid.UUID, includeExpired bool) ([]core.BudgetOverview, error) {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return nil, err
	}
	budgets, err := s.store.ListBudgets(ctx, ownerID, includeExpired, s.today())
	if err != nil {
		return nil, err
	}

	overviews := make([]core.BudgetOverview, 0, len(budgets))
	for _, b := range budgets {
		o, err := s.overview(ctx, b)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, o)
	}
	return overviews, nil
}

// Rollup summarizes the owner's non-expired budgets.
func (s *BudgetService) Rollup(ctx context.Context, ownerID uuid.UUID) (core.BudgetRollup, error) {
	overviews, err := s.List(ctx, ownerID, false)
	if err != nil {
		return core.BudgetRollup{}, err
	}

	today := s.today()
	rollup := core.BudgetRollup{
		TotalBudgets:      len(overviews),
		TotalBudgetAmount: decimal.Zero,
		TotalSpent:        decimal.Zero,
	}
	for _, o := range overviews {
		if o.Budget.Active(today) && !today.Before(o.Budget.StartDate.Time) {
			rollup.ActiveBudgets++
		}
		if o.Status.Exceeded {
			rollup.ExceededBudgets++
		}
		rollup.TotalBudgetAmount = rollup.TotalBudgetAmount.Add(o.Budget.Amount)
		rollup.TotalSpent = rollup.TotalSpent.Add(o.Status.Spent)
	}
	if rollup.TotalBudgetAmount.IsPositive() {
		pct, _ := rollup.TotalSpent.Div(rollup.TotalBudgetAmount).Mul(hundred).Float64()
		rollup.OverallPercentage = pct
	}
	return rollup, nil
}

func (s *BudgetService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return err
	}
	return s.store.DeleteBudget(ctx, ownerID, id)
}

func (s *BudgetService) overview(ctx context.Context, b core.Budget) (core.BudgetOverview, error) {
	res, err := s.store.SumExpenses(ctx, b.OwnerID, b.StartDate, b.EndDate, b.CategoryID)
	if err != nil {
		return core.BudgetOverview{}, fmt.Errorf("sum budget expenses: %w", err)
	}

	o := core.BudgetOverview{
		Budget: b,
		Status: analytics.ComputeStatus(b, res.Total, s.today()),
	}
	if b.CategoryID != nil {
		c, err := s.store.GetCategory(ctx, b.OwnerID, *b.CategoryID)
		if err == nil {
			o.CategoryName = c.Name
			o.CategoryIcon = c.Icon
		}
	}
	return o, nil
}
