// Package position is the single source of truth for currently held instruments.
package position

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	// ErrAlreadyOpen reports an attempt to open a second position for a symbol.
	ErrAlreadyOpen = errors.New("position already open")
	// ErrNotFound reports a close for a symbol with no open position.
	ErrNotFound = errors.New("position not found")
)

// Position is an open long holding with protective thresholds fixed at entry
// time. Thresholds are never recomputed mid-trade; a re-entry gets fresh ones.
type Position struct {
	Symbol     string
	Strategy   string
	Qty        int
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	OpenedAt   time.Time
}

// Registry tracks open positions, at most one per symbol.
type Registry struct {
	mu        sync.Mutex
	positions map[string]Position
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{positions: make(map[string]Position)}
}

// Open inserts a new position, deriving the protective thresholds from the
// entry price. It fails with ErrAlreadyOpen when the symbol is already held.
func (r *Registry) Open(symbol, strategy string, qty int, entry, stopLossPct, takeProfitPct float64) (Position, error) {
	if qty <= 0 {
		return Position{}, errors.New("quantity must be positive")
	}
	if entry <= 0 {
		return Position{}, errors.New("entry price must be positive")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, held := r.positions[symbol]; held {
		return Position{}, ErrAlreadyOpen
	}
	pos := Position{
		Symbol:     symbol,
		Strategy:   strategy,
		Qty:        qty,
		EntryPrice: entry,
		StopLoss:   entry * (1 - stopLossPct),
		TakeProfit: entry * (1 + takeProfitPct),
		OpenedAt:   time.Now(),
	}
	r.positions[symbol] = pos
	return pos, nil
}

// Close removes and returns the position for a symbol. It fails with
// ErrNotFound when no position is held.
func (r *Registry) Close(symbol string) (Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, held := r.positions[symbol]
	if !held {
		return Position{}, ErrNotFound
	}
	delete(r.positions, symbol)
	return pos, nil
}

// Held reports whether a position is open for the symbol.
func (r *Registry) Held(symbol string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, held := r.positions[symbol]
	return held
}

// Len reports the number of open positions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.positions)
}

// Snapshot returns a consistent point-in-time copy of all open positions,
// ordered by symbol. Mutations after the call do not affect the returned slice.
func (r *Registry) Snapshot() []Position {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Position, 0, len(r.positions))
	for _, pos := range r.positions {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
