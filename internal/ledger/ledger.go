// Package ledger enforces the per-session capital budget shared by all entries.
package ledger

import "sync"

// Balances below epsilon count as exhausted so the loop never grinds out
// micro-trades against rounding dust.
const epsilon = 1e-9

// Ledger tracks the trading day's spending cap and its remaining balance.
// The remaining balance never leaves [0, period limit].
type Ledger struct {
	mu          sync.Mutex
	periodLimit float64
	remaining   float64
}

// New constructs a ledger with a full balance for the given period limit.
func New(limit float64) *Ledger {
	if limit < 0 {
		limit = 0
	}
	return &Ledger{periodLimit: limit, remaining: limit}
}

// AuthorizeAndDebit grants the requested spend and debits it in one step.
// It rejects non-positive amounts, anything above the remaining balance, and
// any request once the balance is effectively exhausted.
func (l *Ledger) AuthorizeAndDebit(amount float64) bool {
	if amount <= 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.remaining <= epsilon {
		return false
	}
	if amount > l.remaining+epsilon {
		return false
	}
	l.remaining -= amount
	if l.remaining < 0 {
		l.remaining = 0
	}
	return true
}

// Reset restores a full balance for a new trading day. Callers must invoke it
// only on the closed-to-open transition edge; calling it mid-session would
// double-grant budget.
func (l *Ledger) Reset(limit float64) {
	if limit < 0 {
		limit = 0
	}
	l.mu.Lock()
	l.periodLimit = limit
	l.remaining = limit
	l.mu.Unlock()
}

// Remaining reports the unspent balance for the current period.
func (l *Ledger) Remaining() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining
}

// PeriodLimit reports the cap the balance was last reset to.
func (l *Ledger) PeriodLimit() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.periodLimit
}
