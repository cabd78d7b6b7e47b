package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/amqp"
	"gastos/internal/export/memory"
)

type failingSink struct{}

func (failingSink) Append(context.Context, *amqp.BudgetAlertMessage) (string, error) {
	return "", errors.New("sheet unavailable")
}

func newAlert(kind string) *amqp.BudgetAlertMessage {
	return amqp.NewBudgetAlertMessage(
		uuid.New(), uuid.New(), nil, kind,
		decimal.RequireFromString("85.00"),
		decimal.RequireFromString("100.00"),
		85,
	)
}

func TestHandleAlertArchives(t *testing.T) {
	sink := memory.New()
	w := NewAlertWorker(sink)

	if err := w.HandleAlert(context.Background(), newAlert(amqp.AlertThreshold)); err != nil {
		t.Fatalf("HandleAlert: %v", err)
	}
	if got := sink.Records(); len(got) != 1 {
		t.Fatalf("records = %d, want 1", len(got))
	}
}

func TestHandleAlertSinkFailure(t *testing.T) {
	w := NewAlertWorker(failingSink{})
	if err := w.HandleAlert(context.Background(), newAlert(amqp.AlertExceeded)); err == nil {
		t.Fatal("expected error when sink fails")
	}
}

func TestHandleAlertUnknownKindStillArchived(t *testing.T) {
	sink := memory.New()
	w := NewAlertWorker(sink)

	if err := w.HandleAlert(context.Background(), newAlert("mystery")); err != nil {
		t.Fatalf("HandleAlert: %v", err)
	}
	if got := sink.Records(); len(got) != 1 {
		t.Fatalf("records = %d, want 1", len(got))
	}
}
