package approval

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agyin3/investing-bro-bot/internal/backtest"
	"github.com/agyin3/investing-bro-bot/internal/market"
	"github.com/agyin3/investing-bro-bot/internal/metrics"
	"github.com/agyin3/investing-bro-bot/internal/strategy"
)

// Evaluator runs the simulated-performance gate across the watchlist and owns
// the active approval set.
type Evaluator struct {
	history      market.HistoryProvider
	runner       *backtest.Runner
	strategies   []strategy.Strategy
	minWinRate   float64
	minProfitPct float64
	workers      int
	log          zerolog.Logger

	mu     sync.RWMutex
	active *Set
}

// NewEvaluator constructs an evaluator with an empty active set. Zero
// thresholds fall back to the 60% win-rate / 5% return policy.
func NewEvaluator(history market.HistoryProvider, runner *backtest.Runner, strategies []strategy.Strategy, minWinRate, minProfitPct float64, workers int, log zerolog.Logger) *Evaluator {
	if minWinRate <= 0 {
		minWinRate = 60
	}
	if minProfitPct <= 0 {
		minProfitPct = 5
	}
	if workers <= 0 {
		workers = 4
	}
	return &Evaluator{
		history:      history,
		runner:       runner,
		strategies:   strategies,
		minWinRate:   minWinRate,
		minProfitPct: minProfitPct,
		workers:      workers,
		log:          log,
		active:       NewSet(nil),
	}
}

// Refresh evaluates every symbol/strategy pair on a bounded worker pool and
// returns the complete new set. Pairs with missing or too-short history are
// skipped for the cycle; they carry no record at all. The active set is not
// touched; callers install the result with Swap once it is fully built.
func (e *Evaluator) Refresh(ctx context.Context, symbols []string) *Set {
	type pair struct {
		symbol string
		strat  strategy.Strategy
	}

	jobs := make(chan pair)
	results := make(chan Record, len(symbols)*len(e.strategies))

	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				if rec, ok := e.evaluate(ctx, p.symbol, p.strat); ok {
					results <- rec
				}
			}
		}()
	}

	for _, sym := range symbols {
		for _, strat := range e.strategies {
			select {
			case jobs <- pair{symbol: sym, strat: strat}:
			case <-ctx.Done():
			}
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	records := make([]Record, 0, len(results))
	for rec := range results {
		records = append(records, rec)
	}
	return NewSet(records)
}

// evaluate scores one pair. A false ok means data was unavailable and the pair
// is skipped for this cycle.
func (e *Evaluator) evaluate(ctx context.Context, symbol string, strat strategy.Strategy) (Record, bool) {
	if ctx.Err() != nil {
		return Record{}, false
	}
	end := time.Now()
	start := end.AddDate(0, 0, -strat.LookbackDays())

	bars, err := e.history.GetBars(ctx, symbol, start, end, strat.Granularity())
	if err != nil {
		e.log.Debug().Err(err).Str("sym", symbol).Str("strategy", strat.Name()).Msg("history unavailable, skipping pair")
		return Record{}, false
	}
	res, ok := e.runner.Evaluate(bars, strat)
	if !ok {
		e.log.Debug().Str("sym", symbol).Str("strategy", strat.Name()).Int("bars", len(bars)).Msg("series too short, skipping pair")
		return Record{}, false
	}

	approved := e.approve(res)
	verdict := "rejected"
	if approved {
		verdict = "approved"
	}
	metrics.BacktestsTotal.WithLabelValues(strat.Name(), verdict).Inc()
	e.log.Info().
		Str("sym", symbol).
		Str("strategy", strat.Name()).
		Float64("win_rate", res.WinRate).
		Float64("pnl_pct", res.ProfitLossPct).
		Int("trades", res.TradeCount).
		Bool("approved", approved).
		Msg("backtest evaluated")

	return Record{
		Symbol:        symbol,
		Strategy:      strat.Name(),
		Approved:      approved,
		WinRate:       res.WinRate,
		ProfitLossPct: res.ProfitLossPct,
		TradeCount:    res.TradeCount,
		EvaluatedAt:   time.Now(),
	}, true
}

// approve applies the gate policy: both thresholds must hold.
func (e *Evaluator) approve(res backtest.Result) bool {
	return res.WinRate >= e.minWinRate && res.ProfitLossPct > e.minProfitPct
}

// Swap atomically installs a fully built set as the active one.
func (e *Evaluator) Swap(s *Set) {
	if s == nil {
		s = NewSet(nil)
	}
	e.mu.Lock()
	e.active = s
	e.mu.Unlock()
}

// Active returns the current set. Readers see either the fully old set or the
// fully new one, never a mix.
func (e *Evaluator) Active() *Set {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}
