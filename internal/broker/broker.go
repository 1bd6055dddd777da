// Package broker handles order submission to the execution venue.
package broker

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agyin3/investing-bro-bot/internal/metrics"
)

// Side enumerates order directions used by the gateway.
type Side string

const (
	// Buy indicates a long order.
	Buy Side = "BUY"
	// Sell indicates a closing order.
	Sell Side = "SELL"
)

// Order represents a placement request a gateway can process. Market orders
// only; the loop never works with resting limit orders.
type Order struct {
	Symbol      string
	Side        Side
	Qty         int
	TimeInForce string // "day" or "gtc"
}

// Gateway accepts an order and reports definitive success or failure. The loop
// waits for that answer before touching any other state for the symbol.
type Gateway interface {
	Submit(ctx context.Context, order Order) error
}

// Paper accepts every order and only logs it; used for dry runs and tests.
type Paper struct{ log zerolog.Logger }

// NewPaper wraps a zerolog logger for simulated order submissions.
func NewPaper(log zerolog.Logger) *Paper { return &Paper{log: log} }

// Submit records the order as accepted without touching a venue.
func (p *Paper) Submit(_ context.Context, order Order) error {
	metrics.OrdersTotal.WithLabelValues(order.Symbol, string(order.Side)).Inc()
	p.log.Info().Str("sym", order.Symbol).Str("side", string(order.Side)).Int("qty", order.Qty).Str("tif", order.TimeInForce).Msg("paper order accepted")
	return nil
}
