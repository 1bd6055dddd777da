package position

import (
	"errors"
	"math"
	"testing"
)

func TestOpenComputesThresholds(t *testing.T) {
	r := NewRegistry()

	pos, err := r.Open("AAPL", "swing", 10, 100, 0.02, 0.05)
	if err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}
	if math.Abs(pos.StopLoss-98) > 1e-9 {
		t.Fatalf("expected stop loss 98, got %.4f", pos.StopLoss)
	}
	if math.Abs(pos.TakeProfit-105) > 1e-9 {
		t.Fatalf("expected take profit 105, got %.4f", pos.TakeProfit)
	}
	if pos.OpenedAt.IsZero() {
		t.Fatalf("expected opened timestamp to be set")
	}
}

func TestOpenTwiceFails(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Open("AAPL", "swing", 10, 100, 0.02, 0.05); err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}
	_, err := r.Open("AAPL", "day", 5, 101, 0.02, 0.05)
	if !errors.Is(err, ErrAlreadyOpen) {
		t.Fatalf("expected ErrAlreadyOpen, got %v", err)
	}

	// The original position must be untouched by the rejected open.
	pos, err := r.Close("AAPL")
	if err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if pos.Strategy != "swing" || pos.Qty != 10 {
		t.Fatalf("first position was overwritten: %+v", pos)
	}
}

func TestCloseMissingFails(t *testing.T) {
	r := NewRegistry()
	_, err := r.Close("TSLA")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCloseReturnsRecord(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Open("MSFT", "day", 3, 200, 0.02, 0.05); err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}

	pos, err := r.Close("MSFT")
	if err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if pos.Symbol != "MSFT" || pos.Qty != 3 || pos.EntryPrice != 200 {
		t.Fatalf("unexpected closed record: %+v", pos)
	}
	if r.Held("MSFT") {
		t.Fatalf("position should be gone after close")
	}
}

func TestOpenRejectsBadInputs(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Open("AAPL", "swing", 0, 100, 0.02, 0.05); err == nil {
		t.Fatalf("expected error for zero quantity")
	}
	if _, err := r.Open("AAPL", "swing", 10, 0, 0.02, 0.05); err == nil {
		t.Fatalf("expected error for zero entry price")
	}
}

func TestSnapshotIsConsistentCopy(t *testing.T) {
	r := NewRegistry()
	for _, sym := range []string{"TSLA", "AAPL", "MSFT"} {
		if _, err := r.Open(sym, "swing", 1, 100, 0.02, 0.05); err != nil {
			t.Fatalf("unexpected open error: %v", err)
		}
	}

	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(snap))
	}
	if snap[0].Symbol != "AAPL" || snap[1].Symbol != "MSFT" || snap[2].Symbol != "TSLA" {
		t.Fatalf("snapshot not ordered by symbol: %+v", snap)
	}

	// Closing after the snapshot must not change what the snapshot observed.
	if _, err := r.Close("MSFT"); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if len(snap) != 3 || snap[1].Symbol != "MSFT" {
		t.Fatalf("snapshot mutated by concurrent close: %+v", snap)
	}
}
