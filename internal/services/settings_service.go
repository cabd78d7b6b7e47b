package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

// SettingsService reads and writes per-owner settings. Owners without a
// stored record see the defaults; the record materializes on first write.
type SettingsService struct {
	store SettingsStore
}

func NewSettingsService(store SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

// UpdateSettingsInput patches settings. Nil fields keep their current
// value.
type UpdateSettingsInput struct {
	MonthlyBudget   *decimal.Decimal
	RenewalDay      *int
	AlertPercentage *int
	Notifications   *core.NotificationSettings
}

func (s *SettingsService) Get(ctx context.Context, ownerID uuid.UUID) (core.Settings, error) {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return core.Settings{}, err
	}
	return s.store.SettingsFor(ctx, ownerID)
}

func (s *SettingsService) Update(ctx context.Context, ownerID uuid.UUID, in UpdateSettingsInput) (core.Settings, error) {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return core.Settings{}, err
	}

	current, err := s.store.SettingsFor(ctx, ownerID)
	if err != nil {
		return core.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	if in.MonthlyBudget != nil {
		current.MonthlyBudget = *in.MonthlyBudget
	}
	if in.RenewalDay != nil {
		current.RenewalDay = *in.RenewalDay
	}
	if in.AlertPercentage != nil {
		current.AlertPercentage = *in.AlertPercentage
	}
	if in.Notifications != nil {
		current.Notifications = *in.Notifications
	}
	if err := current.Validate(); err != nil {
		return core.Settings{}, err
	}

	now := time.Now().UTC()
	if current.ID == uuid.Nil {
		current.ID = uuid.New()
		current.CreatedAt = now
	}
	current.UpdatedAt = now

	if err := s.store.SaveSettings(ctx, current); err != nil {
		return core.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return current, nil
}

// Reset drops the stored record, reverting the owner to the defaults.
func (s *SettingsService) Reset(ctx context.Context, ownerID uuid.UUID) (core.Settings, error) {
	if _, err := requireActiveOwner(ctx, s.store, ownerID); err != nil {
		return core.Settings{}, err
	}
	if err := s.store.DeleteSettings(ctx, ownerID); err != nil {
		return core.Settings{}, fmt.Errorf("reset settings: %w", err)
	}
	return core.DefaultSettings(ownerID), nil
}
