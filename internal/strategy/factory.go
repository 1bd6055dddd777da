package strategy

import (
	"strings"
)

// Build returns the strategy implementation matching the configured mode.
func Build(mode string) Strategy {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "day", "day_trade":
		return NewDay()
	case "rsi", "rsi_reversal":
		return NewRSIReversal(14, 30, 70)
	case "ema", "ema_cross", "ema_crossover":
		return NewEMACross()
	default:
		return NewSwing()
	}
}

// BuildAll resolves each configured mode, deduplicating by strategy name.
func BuildAll(modes []string) []Strategy {
	seen := make(map[string]struct{}, len(modes))
	out := make([]Strategy, 0, len(modes))
	for _, mode := range modes {
		strat := Build(mode)
		if _, dup := seen[strat.Name()]; dup {
			continue
		}
		seen[strat.Name()] = struct{}{}
		out = append(out, strat)
	}
	return out
}
