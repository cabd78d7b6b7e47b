package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Alert kinds. Threshold fires when spend crosses the budget's alert
// percentage, exceeded when it crosses the full amount.
const (
	AlertThreshold = "threshold"
	AlertExceeded  = "exceeded"
)

// BudgetAlertMessage is published when an expense write pushes a budget's
// spend over one of its alert lines. Consumers get the full picture and do
// not need to re-query the database.
type BudgetAlertMessage struct {
	BudgetID   uuid.UUID       `json:"budget_id"`
	OwnerID    uuid.UUID       `json:"owner_id"`
	CategoryID *uuid.UUID      `json:"category_id,omitempty"`
	Kind       string          `json:"kind"`
	Spent      decimal.Decimal `json:"spent"`
	Limit      decimal.Decimal `json:"limit"`
	Percentage float64         `json:"percentage"`
	Timestamp  time.Time       `json:"timestamp"`
}

func NewBudgetAlertMessage(budgetID, ownerID uuid.UUID, categoryID *uuid.UUID, kind string, spent, limit decimal.Decimal, percentage float64) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		BudgetID:   budgetID,
		OwnerID:    ownerID,
		CategoryID: categoryID,
		Kind:       kind,
		Spent:      spent,
		Limit:      limit,
		Percentage: percentage,
		Timestamp:  time.Now().UTC(),
	}
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
