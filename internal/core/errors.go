package core

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound covers records that are absent or owned by another owner.
// The two cases look identical to callers so that one owner can never probe
// for the existence of another owner's data.
var ErrNotFound = errors.New("not found")

// ErrOwnerDisabled is returned when a resolved owner has status disabled.
var ErrOwnerDisabled = errors.New("owner is disabled")

// ErrNameTaken is returned when a category name collides with an existing one
// for the same owner (case-insensitive).
var ErrNameTaken = errors.New("category name already in use")

// ErrBudgetOverlap marks a budget whose date range conflicts with an existing
// budget for the same owner and category.
var ErrBudgetOverlap = errors.New("budget period overlaps an existing budget")

// ErrCategoryInUse is returned when deleting a category that still has
// expenses or budgets and force was not requested.
var ErrCategoryInUse = errors.New("category has associated records")

// OverlapError identifies the clashing budget on an overlap rejection.
type OverlapError struct {
	ExistingID uuid.UUID
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("budget period overlaps existing budget %s", e.ExistingID)
}

func (e *OverlapError) Unwrap() error { return ErrBudgetOverlap }
