// Package strategy hosts the signal generators gating approvals and entries.
package strategy

import (
	"github.com/agyin3/investing-bro-bot/internal/market"
)

// Signal is the trading bias derived from a bar series.
type Signal int

const (
	Hold Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "hold"
	}
}

// Strategy defines behaviour shared by strategy implementations used by the bot.
type Strategy interface {
	Name() string
	// Signal evaluates the latest trading bias for an ordered bar series.
	// Series too short for the slowest indicator read as Hold.
	Signal(bars []market.Bar) Signal
	// Granularity reports the bar size this strategy expects.
	Granularity() market.Granularity
	// LookbackDays reports how much history to fetch before evaluating.
	LookbackDays() int
}
