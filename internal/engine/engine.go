// Package engine drives the trading control loop against the market-hours
// schedule. A single goroutine owns every decision; the ledger and registry
// are only mutated from here.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/agyin3/investing-bro-bot/internal/approval"
	"github.com/agyin3/investing-bro-bot/internal/broker"
	"github.com/agyin3/investing-bro-bot/internal/ledger"
	"github.com/agyin3/investing-bro-bot/internal/market"
	"github.com/agyin3/investing-bro-bot/internal/metrics"
	"github.com/agyin3/investing-bro-bot/internal/notify"
	"github.com/agyin3/investing-bro-bot/internal/position"
	"github.com/agyin3/investing-bro-bot/internal/strategy"
)

// State is the schedule phase derived from the market calendar each pass.
type State int

const (
	StateClosed State = iota
	StateOpeningSoon
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateOpeningSoon:
		return "opening_soon"
	default:
		return "closed"
	}
}

// ApprovalSource owns the active approval set and knows how to rebuild it.
// *approval.Evaluator is the production implementation.
type ApprovalSource interface {
	Refresh(ctx context.Context, symbols []string) *approval.Set
	Swap(*approval.Set)
	Active() *approval.Set
}

// Config carries the loop policy knobs.
type Config struct {
	Symbols             []string
	TickInterval        time.Duration
	OpeningSoonWindow   time.Duration
	MaxClosedSleep      time.Duration
	CallTimeout         time.Duration
	DailyLimit          float64
	MaxFractionPerTrade float64
	StopLossPct         float64
	TakeProfitPct       float64
}

// Deps wires the collaborators into the loop.
type Deps struct {
	Calendar   market.Calendar
	History    market.HistoryProvider
	Quotes     market.QuoteProvider
	Gateway    broker.Gateway
	Notifier   notify.Notifier
	Approvals  ApprovalSource
	Ledger     *ledger.Ledger
	Registry   *position.Registry
	Strategies []strategy.Strategy
	Log        zerolog.Logger

	// Sleep overrides the wait between loop passes; tests use it to step
	// through ticks. Nil means a context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration)
}

// Engine runs the per-tick decision cycle: exits for every open position
// first, then entries for approved pairs, under the daily capital budget.
type Engine struct {
	cfg        Config
	calendar   market.Calendar
	history    market.HistoryProvider
	quotes     market.QuoteProvider
	gateway    broker.Gateway
	notifier   notify.Notifier
	approvals  ApprovalSource
	ledger     *ledger.Ledger
	registry   *position.Registry
	strategies map[string]strategy.Strategy
	log        zerolog.Logger

	sleep func(ctx context.Context, d time.Duration)
}

// New constructs an engine, applying policy defaults for zero config values.
func New(cfg Config, deps Deps) *Engine {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Minute
	}
	if cfg.OpeningSoonWindow <= 0 {
		cfg.OpeningSoonWindow = 5 * time.Minute
	}
	if cfg.MaxClosedSleep <= 0 {
		cfg.MaxClosedSleep = 4 * time.Hour
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 5 * time.Second
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}
	strategies := make(map[string]strategy.Strategy, len(deps.Strategies))
	for _, strat := range deps.Strategies {
		strategies[strat.Name()] = strat
	}
	sleep := deps.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	return &Engine{
		cfg:        cfg,
		calendar:   deps.Calendar,
		history:    deps.History,
		quotes:     deps.Quotes,
		gateway:    deps.Gateway,
		notifier:   notifier,
		approvals:  deps.Approvals,
		ledger:     deps.Ledger,
		registry:   deps.Registry,
		strategies: strategies,
		log:        deps.Log,
		sleep:      sleep,
	}
}

// Run drives the schedule state machine until the context is canceled.
func (e *Engine) Run(ctx context.Context) error {
	// Treat process start as "was closed" so the first observed open session
	// triggers a refresh and a budget reset.
	wasClosed := true

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		clock, err := e.clock(ctx)
		if err != nil {
			e.log.Warn().Err(err).Msg("market clock unavailable")
			e.sleep(ctx, e.cfg.TickInterval)
			continue
		}

		state := e.classify(clock)
		if state != StateOpen {
			wasClosed = true
			e.idle(ctx, clock, state)
			continue
		}

		if wasClosed {
			wasClosed = false
			if e.openSession(ctx, clock) {
				// Nothing passed the gate; stay quiet until the session ends.
				continue
			}
		}

		e.tick(ctx)
		e.sleep(ctx, e.cfg.TickInterval)
	}
}

// openSession handles the closed-to-open edge: exactly one approval refresh
// followed by exactly one budget reset. Returns true when the approval set is
// empty and the engine should idle out the session.
func (e *Engine) openSession(ctx context.Context, clock market.Clock) bool {
	e.log.Info().Msg("market open, refreshing approvals")
	set := e.approvals.Refresh(ctx, e.cfg.Symbols)
	e.approvals.Swap(set)
	e.ledger.Reset(e.cfg.DailyLimit)

	approved := set.Approved()
	metrics.ApprovedPairs.Set(float64(len(approved)))
	metrics.BudgetRemaining.Set(e.ledger.Remaining())
	e.notifier.Send(ctx, fmt.Sprintf("🚀 Market open: %d approved pairs, budget $%.2f", len(approved), e.ledger.Remaining()))

	if set.Empty() {
		e.log.Info().Msg("no pairs passed the approval gate, idling until close")
		e.notifier.Send(ctx, "⚠️ No symbols passed the backtest gate today.")
		e.sleep(ctx, e.clampSleep(time.Until(clock.NextClose)))
		return true
	}
	return false
}

// tick runs one open-market iteration. All exits complete before any entry is
// considered, so capital freed by an exit is never spent in the same tick.
func (e *Engine) tick(ctx context.Context) {
	metrics.TicksTotal.Inc()
	e.runExits(ctx)
	e.runEntries(ctx)

	metrics.OpenPositions.Set(float64(e.registry.Len()))
	metrics.BudgetRemaining.Set(e.ledger.Remaining())
	e.log.Info().
		Int("approved", len(e.approvals.Active().Approved())).
		Int("open_positions", e.registry.Len()).
		Float64("budget_remaining", e.ledger.Remaining()).
		Msg("tick complete")
}

func (e *Engine) classify(clock market.Clock) State {
	if clock.IsOpen {
		return StateOpen
	}
	if until := time.Until(clock.NextOpen); until <= e.cfg.OpeningSoonWindow {
		return StateOpeningSoon
	}
	return StateClosed
}

// idle sleeps toward the next open without ever oversleeping past it.
func (e *Engine) idle(ctx context.Context, clock market.Clock, state State) {
	var d time.Duration
	switch state {
	case StateOpeningSoon:
		d = e.cfg.TickInterval
		if until := time.Until(clock.NextOpen); until > 0 && until < d {
			d = until
		}
	default:
		d = time.Until(clock.NextOpen) - e.cfg.OpeningSoonWindow
	}
	d = e.clampSleep(d)
	e.log.Info().Str("state", state.String()).Dur("sleep", d).Time("next_open", clock.NextOpen).Msg("market not open")
	e.sleep(ctx, d)
}

// clampSleep keeps idle sleeps within [tick interval, max closed sleep].
func (e *Engine) clampSleep(d time.Duration) time.Duration {
	if d > e.cfg.MaxClosedSleep {
		d = e.cfg.MaxClosedSleep
	}
	if d < e.cfg.TickInterval {
		d = e.cfg.TickInterval
	}
	return d
}

func (e *Engine) clock(ctx context.Context) (market.Clock, error) {
	tctx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
	defer cancel()
	return e.calendar.Clock(tctx)
}

// Status is the operator-facing snapshot served on /status.
type Status struct {
	ApprovedPairs   []approval.Record   `json:"approved_pairs"`
	OpenPositions   []position.Position `json:"open_positions"`
	BudgetRemaining float64             `json:"budget_remaining"`
	BudgetLimit     float64             `json:"budget_limit"`
}

// Status reports the current approvals, positions, and budget.
func (e *Engine) Status() Status {
	return Status{
		ApprovedPairs:   e.approvals.Active().Approved(),
		OpenPositions:   e.registry.Snapshot(),
		BudgetRemaining: e.ledger.Remaining(),
		BudgetLimit:     e.ledger.PeriodLimit(),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
