package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/amqp"
)

func TestSinkAppendAndRecords(t *testing.T) {
	sink := New()
	msg := amqp.NewBudgetAlertMessage(
		uuid.New(), uuid.New(), nil,
		amqp.AlertExceeded,
		decimal.RequireFromString("120.00"),
		decimal.RequireFromString("100.00"),
		120,
	)

	ref, err := sink.Append(context.Background(), msg)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ref != "mem:1" {
		t.Fatalf("ref = %q, want mem:1", ref)
	}

	records := sink.Records()
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Kind != amqp.AlertExceeded {
		t.Fatalf("kind = %q, want %q", records[0].Kind, amqp.AlertExceeded)
	}
}
