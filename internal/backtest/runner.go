// Package backtest replays a strategy over historical bars and scores its
// simulated performance.
package backtest

import (
	"math"

	"github.com/agyin3/investing-bro-bot/internal/market"
	"github.com/agyin3/investing-bro-bot/internal/strategy"
)

// Result aggregates simulated performance for one symbol and strategy.
type Result struct {
	WinRate       float64 // percent of closed trades that were profitable
	ProfitLossPct float64 // total return over starting cash, percent
	TradeCount    int
}

// Runner replays long-only entries and exits over a bar series.
type Runner struct {
	startingCash float64
	minBars      int
}

// NewRunner constructs a runner. Zero arguments fall back to $10k starting
// cash and a 20-bar minimum.
func NewRunner(startingCash float64, minBars int) *Runner {
	if startingCash <= 0 {
		startingCash = 10000
	}
	if minBars <= 0 {
		minBars = 20
	}
	return &Runner{startingCash: startingCash, minBars: minBars}
}

// Evaluate replays strat over bars. A false ok means the series is too short
// to score; callers treat that as "skip this symbol", never as an error.
func (r *Runner) Evaluate(bars []market.Bar, strat strategy.Strategy) (Result, bool) {
	if len(bars) < r.minBars {
		return Result{}, false
	}

	cash := r.startingCash
	var (
		qty    int
		entry  float64
		wins   int
		trades int
	)

	for i := 1; i < len(bars); i++ {
		price := bars[i].Close
		if price <= 0 {
			continue
		}
		switch strat.Signal(bars[:i+1]) {
		case strategy.Buy:
			if qty != 0 {
				continue
			}
			qty = int(math.Floor(cash / price))
			if qty <= 0 {
				continue
			}
			entry = price
			cash -= float64(qty) * price
		case strategy.Sell:
			if qty == 0 {
				continue
			}
			cash += float64(qty) * price
			trades++
			if price > entry {
				wins++
			}
			qty = 0
		}
	}

	// Liquidate anything still held at the final close.
	if qty > 0 {
		price := bars[len(bars)-1].Close
		cash += float64(qty) * price
		trades++
		if price > entry {
			wins++
		}
	}

	res := Result{TradeCount: trades}
	if trades > 0 {
		res.WinRate = float64(wins) / float64(trades) * 100
	}
	res.ProfitLossPct = (cash - r.startingCash) / r.startingCash * 100
	return res, true
}
