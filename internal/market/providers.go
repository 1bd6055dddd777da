package market

import (
	"context"
	"time"
)

// Calendar reports whether trading is currently permitted and when the next
// session boundaries fall.
type Calendar interface {
	Clock(ctx context.Context) (Clock, error)
}

// HistoryProvider returns ordered bars for a symbol over a window. Any error is
// treated by callers as "data unavailable, skip this symbol for the cycle".
type HistoryProvider interface {
	GetBars(ctx context.Context, symbol string, start, end time.Time, g Granularity) ([]Bar, error)
}

// QuoteProvider returns the latest traded price for a symbol. A false ok means
// the quote is unavailable right now; callers skip rather than fail.
type QuoteProvider interface {
	LatestPrice(ctx context.Context, symbol string) (float64, bool)
}
