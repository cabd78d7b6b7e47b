// Package export defines the outbound port for archiving budget alerts and
// its adapters.
package export

import (
	"context"

	"gastos/internal/amqp"
)

// AlertSink appends a consumed budget alert to an external log. The row
// reference identifies where the alert landed.
type AlertSink interface {
	Append(ctx context.Context, msg *amqp.BudgetAlertMessage) (rowRef string, err error)
}
