package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/agyin3/investing-bro-bot/internal/broker"
	"github.com/agyin3/investing-bro-bot/internal/ledger"
	"github.com/agyin3/investing-bro-bot/internal/strategy"
)

// runEntries walks the approved pairs and opens budget-cleared positions.
// Every skip here is expected behavior, not an error: missing data, a
// non-buy signal, or an exhausted budget all just pass the symbol by.
func (e *Engine) runEntries(ctx context.Context) {
	for _, rec := range e.approvals.Active().Approved() {
		if e.registry.Held(rec.Symbol) {
			continue
		}
		strat, ok := e.strategies[rec.Strategy]
		if !ok {
			continue
		}

		sig, ok := e.liveSignal(ctx, rec.Symbol, strat)
		if !ok || sig != strategy.Buy {
			continue
		}

		tctx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
		price, priced := e.quotes.LatestPrice(tctx, rec.Symbol)
		cancel()
		if !priced {
			e.log.Debug().Str("sym", rec.Symbol).Msg("no quote, skipping entry")
			continue
		}

		qty, cost, sized := ledger.SizeOrder(e.ledger.Remaining(), e.ledger.PeriodLimit(), e.cfg.MaxFractionPerTrade, price)
		if !sized {
			continue
		}
		if !e.ledger.AuthorizeAndDebit(cost) {
			// Budget exhausted: the expected end-of-day state.
			continue
		}

		order := broker.Order{Symbol: rec.Symbol, Side: broker.Buy, Qty: qty, TimeInForce: timeInForce(rec.Strategy)}
		tctx, cancel = context.WithTimeout(ctx, e.cfg.CallTimeout)
		err := e.gateway.Submit(tctx, order)
		cancel()
		if err != nil {
			// The debited capital is not refunded here; this mirrors the
			// legacy budget policy and is the ledger's known limitation.
			e.log.Error().Err(err).Str("sym", rec.Symbol).Msg("entry order failed")
			e.notifier.Send(ctx, fmt.Sprintf("⚠️ Entry order failed for %s: %v", rec.Symbol, err))
			continue
		}

		pos, err := e.registry.Open(rec.Symbol, rec.Strategy, qty, price, e.cfg.StopLossPct, e.cfg.TakeProfitPct)
		if err != nil {
			e.log.Error().Err(err).Str("sym", rec.Symbol).Msg("open after entry order failed")
			continue
		}

		e.log.Info().
			Str("sym", pos.Symbol).
			Str("strategy", pos.Strategy).
			Int("qty", pos.Qty).
			Float64("entry", pos.EntryPrice).
			Float64("stop_loss", pos.StopLoss).
			Float64("take_profit", pos.TakeProfit).
			Msg("position opened")
		e.notifier.Send(ctx, fmt.Sprintf(
			"📈 Bought %d %s at $%.2f (stop $%.2f, target $%.2f)",
			pos.Qty, pos.Symbol, pos.EntryPrice, pos.StopLoss, pos.TakeProfit,
		))
	}
}

// liveSignal fetches the freshest bars for the pair's strategy and evaluates
// the latest bias. A false ok means data was unavailable this tick.
func (e *Engine) liveSignal(ctx context.Context, symbol string, strat strategy.Strategy) (strategy.Signal, bool) {
	end := time.Now()
	start := end.AddDate(0, 0, -strat.LookbackDays())

	tctx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
	defer cancel()
	bars, err := e.history.GetBars(tctx, symbol, start, end, strat.Granularity())
	if err != nil {
		e.log.Debug().Err(err).Str("sym", symbol).Msg("history unavailable, skipping entry")
		return strategy.Hold, false
	}
	return strat.Signal(bars), true
}

// timeInForce maps strategy style to order lifetime: swing entries rest until
// filled, intraday entries die with the session.
func timeInForce(strategyName string) string {
	if strategyName == "swing" {
		return "gtc"
	}
	return "day"
}
