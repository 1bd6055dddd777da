package approval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/agyin3/investing-bro-bot/internal/backtest"
	"github.com/agyin3/investing-bro-bot/internal/market"
	"github.com/agyin3/investing-bro-bot/internal/strategy"
)

// fakeHistory serves canned bar series per symbol; missing symbols error.
type fakeHistory struct {
	mu    sync.Mutex
	bars  map[string][]market.Bar
	calls int
}

func (f *fakeHistory) GetBars(_ context.Context, symbol string, _, _ time.Time, _ market.Granularity) ([]market.Bar, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	bars, ok := f.bars[symbol]
	if !ok {
		return nil, errors.New("no data")
	}
	return bars, nil
}

// winOnceStrategy buys early and sells after the price step so every replay
// produces one winning trade.
type winOnceStrategy struct{ name string }

func (w *winOnceStrategy) Name() string                    { return w.name }
func (w *winOnceStrategy) Granularity() market.Granularity { return market.GranularityDay }
func (w *winOnceStrategy) LookbackDays() int               { return 30 }

func (w *winOnceStrategy) Signal(bars []market.Bar) strategy.Signal {
	switch len(bars) {
	case 4:
		return strategy.Buy
	case 16:
		return strategy.Sell
	default:
		return strategy.Hold
	}
}

func steppedBars(n int, before, after float64) []market.Bar {
	bars := make([]market.Bar, n)
	ts := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		px := before
		if i >= 10 {
			px = after
		}
		bars[i] = market.Bar{Ts: ts, Open: px, High: px, Low: px, Close: px, Volume: 500}
		ts = ts.Add(24 * time.Hour)
	}
	return bars
}

func TestApprovalGate(t *testing.T) {
	e := NewEvaluator(nil, nil, nil, 60, 5, 1, zerolog.Nop())

	cases := []struct {
		winRate float64
		pnlPct  float64
		want    bool
	}{
		{65, 6, true},
		{65, 3, false},
		{55, 10, false},
		{60, 5, false}, // return must strictly exceed the threshold
		{60, 5.1, true},
	}
	for _, tc := range cases {
		got := e.approve(backtest.Result{WinRate: tc.winRate, ProfitLossPct: tc.pnlPct})
		if got != tc.want {
			t.Fatalf("approve(win=%.1f pnl=%.1f) = %v, want %v", tc.winRate, tc.pnlPct, got, tc.want)
		}
	}
}

func TestRefreshEvaluatesAllPairsAndSkipsMissing(t *testing.T) {
	history := &fakeHistory{bars: map[string][]market.Bar{
		"AAPL": steppedBars(25, 100, 150),
		"TSLA": steppedBars(5, 100, 150), // too short: skipped, no record
	}}
	runner := backtest.NewRunner(10000, 20)
	strat := &winOnceStrategy{name: "swing"}
	e := NewEvaluator(history, runner, []strategy.Strategy{strat}, 60, 5, 2, zerolog.Nop())

	set := e.Refresh(context.Background(), []string{"AAPL", "TSLA", "MSFT"})

	if history.calls != 3 {
		t.Fatalf("expected every pair fetched once, got %d calls", history.calls)
	}
	if set.Len() != 1 {
		t.Fatalf("expected only AAPL to carry a record, got %d", set.Len())
	}
	if !set.IsApproved("AAPL", "swing") {
		t.Fatalf("AAPL should pass: one winning trade, +50%% return")
	}
	if set.IsApproved("TSLA", "swing") || set.IsApproved("MSFT", "swing") {
		t.Fatalf("skipped symbols must not be approved")
	}

	// Refresh must not install anything by itself.
	if e.Active().Len() != 0 {
		t.Fatalf("active set should still be empty before Swap")
	}
	e.Swap(set)
	if e.Active().Len() != 1 {
		t.Fatalf("active set not installed by Swap")
	}
}

func TestAtomicSwap(t *testing.T) {
	e := NewEvaluator(nil, nil, nil, 60, 5, 1, zerolog.Nop())
	now := time.Now()

	oldSet := NewSet([]Record{
		{Symbol: "A", Strategy: "swing", Approved: true, EvaluatedAt: now},
		{Symbol: "B", Strategy: "swing", Approved: true, EvaluatedAt: now},
	})
	newSet := NewSet([]Record{
		{Symbol: "C", Strategy: "swing", Approved: true, EvaluatedAt: now},
	})
	e.Swap(oldSet)

	done := make(chan struct{})
	var readerErr error
	go func() {
		defer close(done)
		for i := 0; i < 10000; i++ {
			approved := e.Active().Approved()
			switch len(approved) {
			case 2:
				if approved[0].Symbol != "A" || approved[1].Symbol != "B" {
					readerErr = errors.New("observed a mixed set")
					return
				}
			case 1:
				if approved[0].Symbol != "C" {
					readerErr = errors.New("observed a mixed set")
					return
				}
			default:
				readerErr = errors.New("observed a partial set")
				return
			}
		}
	}()

	for i := 0; i < 5000; i++ {
		e.Swap(oldSet)
		e.Swap(newSet)
	}
	<-done
	if readerErr != nil {
		t.Fatalf("atomicity violated: %v", readerErr)
	}
}

func TestSetLookupAndOrdering(t *testing.T) {
	now := time.Now()
	set := NewSet([]Record{
		{Symbol: "TSLA", Strategy: "day", Approved: true, EvaluatedAt: now},
		{Symbol: "AAPL", Strategy: "swing", Approved: true, EvaluatedAt: now},
		{Symbol: "AAPL", Strategy: "day", Approved: false, EvaluatedAt: now},
	})

	approved := set.Approved()
	if len(approved) != 2 || approved[0].Symbol != "AAPL" || approved[1].Symbol != "TSLA" {
		t.Fatalf("unexpected approved ordering: %+v", approved)
	}
	if set.IsApproved("AAPL", "day") {
		t.Fatalf("rejected pair must not read as approved")
	}
	rec, ok := set.Lookup("AAPL", "day")
	if !ok || rec.Approved {
		t.Fatalf("expected rejected record for AAPL/day, got %+v ok=%v", rec, ok)
	}
	if set.Empty() {
		t.Fatalf("set with approvals must not be empty")
	}
}
