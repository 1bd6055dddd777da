package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/agyin3/investing-bro-bot/internal/broker"
	"github.com/agyin3/investing-bro-bot/internal/ledger"
	"github.com/agyin3/investing-bro-bot/internal/position"
)

func TestCheckExitPrecedence(t *testing.T) {
	pos := position.Position{Symbol: "AAPL", StopLoss: 95, TakeProfit: 105}

	if got := CheckExit(pos, 95); got != ActionStopLoss {
		t.Fatalf("price at stop must trigger stop-loss, got %s", got)
	}
	if got := CheckExit(pos, 105); got != ActionTakeProfit {
		t.Fatalf("price at target must trigger take-profit, got %s", got)
	}
	if got := CheckExit(pos, 100); got != ActionNone {
		t.Fatalf("price inside the bracket must trigger nothing, got %s", got)
	}

	// Degenerate bracket where one price satisfies both sides: capital
	// preservation wins.
	narrow := position.Position{Symbol: "AAPL", StopLoss: 100, TakeProfit: 100}
	if got := CheckExit(narrow, 100); got != ActionStopLoss {
		t.Fatalf("stop-loss must take precedence, got %s", got)
	}
}

func TestCheckExitIdempotent(t *testing.T) {
	pos := position.Position{Symbol: "AAPL", StopLoss: 95, TakeProfit: 105}
	first := CheckExit(pos, 94)
	for i := 0; i < 5; i++ {
		if got := CheckExit(pos, 94); got != first {
			t.Fatalf("repeated check changed verdict: %s vs %s", got, first)
		}
	}
}

// flakyGateway fails a configured number of submissions before accepting.
type flakyGateway struct {
	failures int
	orders   []broker.Order
}

func (g *flakyGateway) Submit(_ context.Context, order broker.Order) error {
	if g.failures > 0 {
		g.failures--
		return errors.New("gateway down")
	}
	g.orders = append(g.orders, order)
	return nil
}

// staticQuotes serves fixed prices.
type staticQuotes struct{ prices map[string]float64 }

func (q *staticQuotes) LatestPrice(_ context.Context, symbol string) (float64, bool) {
	px, ok := q.prices[symbol]
	return px, ok
}

func TestFailedExitKeepsPositionOpenForRetry(t *testing.T) {
	registry := position.NewRegistry()
	if _, err := registry.Open("AAPL", "swing", 10, 100, 0.02, 0.05); err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}

	gateway := &flakyGateway{failures: 1}
	e := New(Config{}, Deps{
		Quotes:   &staticQuotes{prices: map[string]float64{"AAPL": 90}},
		Gateway:  gateway,
		Ledger:   ledger.New(1000),
		Registry: registry,
		Log:      zerolog.Nop(),
	})

	// First sweep: the sell fails, the position must survive.
	e.runExits(context.Background())
	if !registry.Held("AAPL") {
		t.Fatalf("failed exit order must leave the position open")
	}

	// Next tick the identical check fires again and succeeds.
	e.runExits(context.Background())
	if registry.Held("AAPL") {
		t.Fatalf("position should be closed after the retried exit")
	}
	if len(gateway.orders) != 1 {
		t.Fatalf("expected exactly one accepted order, got %d", len(gateway.orders))
	}
	order := gateway.orders[0]
	if order.Side != broker.Sell || order.Qty != 10 {
		t.Fatalf("expected full-quantity sell, got %+v", order)
	}
}

func TestMissingQuoteSkipsExitCheck(t *testing.T) {
	registry := position.NewRegistry()
	if _, err := registry.Open("AAPL", "swing", 10, 100, 0.02, 0.05); err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}

	gateway := &flakyGateway{}
	e := New(Config{CallTimeout: time.Second}, Deps{
		Quotes:   &staticQuotes{prices: map[string]float64{}},
		Gateway:  gateway,
		Ledger:   ledger.New(1000),
		Registry: registry,
		Log:      zerolog.Nop(),
	})

	e.runExits(context.Background())
	if !registry.Held("AAPL") {
		t.Fatalf("missing quote must not close the position")
	}
	if len(gateway.orders) != 0 {
		t.Fatalf("missing quote must not submit orders")
	}
}
