package engine

import (
	"context"
	"fmt"

	"github.com/agyin3/investing-bro-bot/internal/broker"
	"github.com/agyin3/investing-bro-bot/internal/metrics"
	"github.com/agyin3/investing-bro-bot/internal/position"
)

// Action is the protective-exit verdict for one position at one price.
type Action int

const (
	ActionNone Action = iota
	ActionStopLoss
	ActionTakeProfit
)

func (a Action) String() string {
	switch a {
	case ActionStopLoss:
		return "stop_loss"
	case ActionTakeProfit:
		return "take_profit"
	default:
		return "none"
	}
}

// CheckExit compares a live price against the position's protective
// thresholds. Stop-loss wins when a degenerate bracket satisfies both sides:
// capital preservation beats profit-taking.
func CheckExit(pos position.Position, price float64) Action {
	switch {
	case price <= pos.StopLoss:
		return ActionStopLoss
	case price >= pos.TakeProfit:
		return ActionTakeProfit
	default:
		return ActionNone
	}
}

// runExits sweeps every open position before any new entry is considered.
// A failed sell leaves the position open; the identical check fires again
// next tick, so retries need no extra state.
func (e *Engine) runExits(ctx context.Context) {
	for _, pos := range e.registry.Snapshot() {
		tctx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
		price, ok := e.quotes.LatestPrice(tctx, pos.Symbol)
		cancel()
		if !ok {
			e.log.Debug().Str("sym", pos.Symbol).Msg("no quote, skipping exit check")
			continue
		}

		action := CheckExit(pos, price)
		if action == ActionNone {
			continue
		}

		order := broker.Order{Symbol: pos.Symbol, Side: broker.Sell, Qty: pos.Qty, TimeInForce: "day"}
		tctx, cancel = context.WithTimeout(ctx, e.cfg.CallTimeout)
		err := e.gateway.Submit(tctx, order)
		cancel()
		if err != nil {
			e.log.Error().Err(err).Str("sym", pos.Symbol).Str("action", action.String()).Msg("exit order failed, position stays open")
			e.notifier.Send(ctx, fmt.Sprintf("⚠️ Exit order failed for %s: %v", pos.Symbol, err))
			continue
		}

		closed, err := e.registry.Close(pos.Symbol)
		if err != nil {
			// A close failing here means the registry and the loop disagree
			// about held state; surface it loudly, it is not a data gap.
			e.log.Error().Err(err).Str("sym", pos.Symbol).Msg("close after exit order failed")
			continue
		}

		pnl := (price - closed.EntryPrice) * float64(closed.Qty)
		metrics.ExitsTotal.WithLabelValues(closed.Symbol, action.String()).Inc()
		e.log.Info().
			Str("sym", closed.Symbol).
			Str("action", action.String()).
			Float64("exit_price", price).
			Float64("pnl", pnl).
			Msg("position closed")

		switch action {
		case ActionStopLoss:
			e.notifier.Send(ctx, fmt.Sprintf("🚨 %s hit stop-loss at $%.2f (PnL $%.2f)", closed.Symbol, price, pnl))
		case ActionTakeProfit:
			e.notifier.Send(ctx, fmt.Sprintf("🎯 %s hit take-profit at $%.2f (PnL $%.2f)", closed.Symbol, price, pnl))
		}
	}
}
