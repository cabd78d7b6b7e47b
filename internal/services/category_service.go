package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"gastos/internal/core"
)

const defaultMostUsedLimit = 5

// CategoryService enforces the per-owner unique category name and guards
// deletion of categories that still have records.
type CategoryService struct {
	store CategoryStore
}

func NewCategoryService(store CategoryStore) *CategoryService {
	return &CategoryService{store: store}
}

type CreateCategoryInput struct {
	Name  string
	Icon  string
	Color string
}

// UpdateCategoryInput patches a category. Nil fields keep their stored
// value.
type UpdateCategoryInput struct {
	Name  *string
	Icon  *string
	Color *string
}

func (s *CategoryService) Create(ctx context.Context, ownerID uuid.UUID, in CreateCategoryInput) (core.Category, error) {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return core.Category{}, err
	}

	c := core.Category{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(in.Name),
		Icon:      in.Icon,
		Color:     in.Color,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	taken, err := s.store.CategoryNameTaken(ctx, ownerID, c.Name, uuid.Nil)
	if err != nil {
		return core.Category{}, fmt.Errorf("check category name: %w", err)
	}
	if taken {
		return core.Category{}, core.ErrNameTaken
	}

	if err := s.store.CreateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	return c, nil
}

func (s *CategoryService) Get(ctx context.Context, ownerID, id uuid.UUID) (core.Category, error) {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return core.Category{}, err
	}
	return s.store.GetCategory(ctx, ownerID, id)
}

func (s *CategoryService) List(ctx context.Context, ownerID uuid.UUID) ([]core.Category, error) {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return nil, err
	}
	return s.store.Categories(ctx, ownerID)
}

func (s *CategoryService) Update(ctx context.Context, ownerID, id uuid.UUID, in UpdateCategoryInput) (core.Category, error) {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return core.Category{}, err
	}

	c, err := s.store.GetCategory(ctx, ownerID, id)
	if err != nil {
		return core.Category{}, err
	}

	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Icon != nil {
		c.Icon = *in.Icon
	}
	if in.Color != nil {
		c.Color = *in.Color
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	if in.Name != nil {
		taken, err := s.store.CategoryNameTaken(ctx, ownerID, c.Name, id)
		if err != nil {
			return core.Category{}, fmt.Errorf("check category name: %w", err)
		}
		if taken {
			return core.Category{}, core.ErrNameTaken
		}
	}

	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

// Delete removes a category. Without force it refuses while expenses or
// budgets still reference the category; with force those records go too.
func (s *CategoryService) Delete(ctx context.Context, ownerID, id uuid.UUID, force bool) error {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return err
	}
	if _, err := s.store.GetCategory(ctx, ownerID, id); err != nil {
		return err
	}

	expenses, budgets, err := s.store.CategoryRecordCounts(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("count category records: %w", err)
	}
	if !force && (expenses > 0 || budgets > 0) {
		return fmt.Errorf("%w: %d expenses, %d budgets", core.ErrCategoryInUse, expenses, budgets)
	}

	if err := s.store.DeleteCategory(ctx, ownerID, id, force); err != nil {
		return err
	}
	if force {
		slog.InfoContext(ctx, "Category force-deleted with records",
			"category_id", id,
			"owner_id", ownerID,
			"expenses", expenses,
			"budgets", budgets)
	}
	return nil
}

// Stats returns a category with its lifetime totals.
func (s *CategoryService) Stats(ctx context.Context, ownerID, id uuid.UUID) (core.CategoryStats, error) {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return core.CategoryStats{}, err
	}

	c, err := s.store.GetCategory(ctx, ownerID, id)
	if err != nil {
		return core.CategoryStats{}, err
	}
	res, err := s.store.CategoryTotals(ctx, ownerID, id)
	if err != nil {
		return core.CategoryStats{}, fmt.Errorf("category totals: %w", err)
	}
	return core.CategoryStats{
		Category:      c,
		TotalExpenses: res.Total,
		ExpenseCount:  res.Count,
	}, nil
}

// MostUsed ranks categories by expense count. Limit falls back to 5 and is
// capped at 20.
func (s *CategoryService) MostUsed(ctx context.Context, ownerID uuid.UUID, limit int) ([]core.CategoryUsage, error) {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = defaultMostUsedLimit
	}
	if limit > 20 {
		limit = 20
	}
	return s.store.MostUsedCategories(ctx, ownerID, limit)
}
