// Package worker consumes budget alerts from the broker and archives them.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"gastos/internal/amqp"
	"gastos/internal/export"
)

type AlertWorker struct {
	sink export.AlertSink
}

func NewAlertWorker(sink export.AlertSink) *AlertWorker {
	return &AlertWorker{sink: sink}
}

// HandleAlert archives one alert. Returning an error requeues the delivery.
func (w *AlertWorker) HandleAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	switch msg.Kind {
	case amqp.AlertThreshold, amqp.AlertExceeded:
	default:
		// Unknown kinds are archived anyway but flagged: a newer producer
		// may be running against an older worker.
		slog.WarnContext(ctx, "Unknown alert kind", "kind", msg.Kind, "budget_id", msg.BudgetID)
	}

	ref, err := w.sink.Append(ctx, msg)
	if err != nil {
		return fmt.Errorf("archive alert: %w", err)
	}

	slog.InfoContext(ctx, "Alert archived",
		"budget_id", msg.BudgetID,
		"owner_id", msg.OwnerID,
		"kind", msg.Kind,
		"ref", ref)
	return nil
}
