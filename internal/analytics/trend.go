package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

// movingAverageWindow is the number of trailing points the moving average
// spans. The average is undefined before the window is full.
const movingAverageWindow = 7

// maxTrendDays bounds a trend window to roughly one year.
const maxTrendDays = 365

var seven = decimal.NewFromInt(movingAverageWindow)

// ErrWindowTooLarge rejects trend ranges spanning more than a year.
var ErrWindowTooLarge = errors.New("trend window exceeds 365 days")

// ErrInvalidTrendDays rejects day counts outside [7, 365].
var ErrInvalidTrendDays = errors.New("trend days must be between 7 and 365")

// Trend builds a gapless daily spend series over the inclusive range
// [from, to], in ascending date order, with days that have no expenses set
// to zero. Each point from the seventh onward carries the trailing 7-day
// moving average; earlier points leave it unset.
func (e *Engine) Trend(ctx context.Context, ownerID uuid.UUID, from, to core.Date) ([]core.DailyPoint, error) {
	if err := from.Validate(); err != nil {
		return nil, err
	}
	if err := to.Validate(); err != nil {
		return nil, err
	}
	span := from.DaysUntil(to)
	if span < 0 {
		return nil, core.ErrInvalidDateRange
	}
	if span > maxTrendDays {
		return nil, ErrWindowTooLarge
	}

	totals, err := e.store.DailyTotals(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}

	points := make([]core.DailyPoint, 0, span+1)
	for d := from; !d.After(to.Time); d = d.AddDays(1) {
		amount, ok := totals[d]
		if !ok {
			amount = decimal.Zero
		}
		points = append(points, core.DailyPoint{Date: d, Amount: amount})
	}

	for i := movingAverageWindow - 1; i < len(points); i++ {
		sum := decimal.Zero
		for j := i - (movingAverageWindow - 1); j <= i; j++ {
			sum = sum.Add(points[j].Amount)
		}
		avg := sum.Div(seven)
		points[i].MovingAverage = &avg
	}

	return points, nil
}

// TrendDays computes the trend for the trailing window ending today. The
// series covers days+1 points, from days ago through today inclusive.
func (e *Engine) TrendDays(ctx context.Context, ownerID uuid.UUID, days int) ([]core.DailyPoint, error) {
	if days < 7 || days > maxTrendDays {
		return nil, ErrInvalidTrendDays
	}
	end := core.Today()
	return e.Trend(ctx, ownerID, end.AddDays(-days), end)
}
