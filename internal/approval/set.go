// Package approval decides which symbol/strategy pairs may trade this session.
package approval

import (
	"sort"
	"time"
)

// Record is one evaluated verdict, immutable until the next refresh cycle.
type Record struct {
	Symbol        string
	Strategy      string
	Approved      bool
	WinRate       float64
	ProfitLossPct float64
	TradeCount    int
	EvaluatedAt   time.Time
}

// Set is the complete approval table produced by one refresh cycle. A Set is
// never mutated after construction; refreshes build a new one and swap it in.
type Set struct {
	records  map[string]Record
	approved []Record
}

func pairKey(symbol, strategy string) string { return symbol + "/" + strategy }

// NewSet builds an immutable set from evaluated records.
func NewSet(records []Record) *Set {
	s := &Set{records: make(map[string]Record, len(records))}
	for _, rec := range records {
		s.records[pairKey(rec.Symbol, rec.Strategy)] = rec
		if rec.Approved {
			s.approved = append(s.approved, rec)
		}
	}
	sort.Slice(s.approved, func(i, j int) bool {
		if s.approved[i].Symbol != s.approved[j].Symbol {
			return s.approved[i].Symbol < s.approved[j].Symbol
		}
		return s.approved[i].Strategy < s.approved[j].Strategy
	})
	return s
}

// Approved returns a copy of the approved pairs, ordered by symbol then
// strategy.
func (s *Set) Approved() []Record {
	out := make([]Record, len(s.approved))
	copy(out, s.approved)
	return out
}

// IsApproved reports the verdict for one pair; unevaluated pairs read as false.
func (s *Set) IsApproved(symbol, strategy string) bool {
	rec, ok := s.records[pairKey(symbol, strategy)]
	return ok && rec.Approved
}

// Lookup returns the full record for a pair when it was evaluated this cycle.
func (s *Set) Lookup(symbol, strategy string) (Record, bool) {
	rec, ok := s.records[pairKey(symbol, strategy)]
	return rec, ok
}

// Len reports how many pairs were evaluated this cycle.
func (s *Set) Len() int { return len(s.records) }

// Empty reports whether no pair passed the gate.
func (s *Set) Empty() bool { return len(s.approved) == 0 }
