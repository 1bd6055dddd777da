package strategy

import (
	talib "github.com/markcheno/go-talib"

	"github.com/agyin3/investing-bro-bot/internal/market"
)

// EMACross trades the 9/21 EMA regime on daily bars.
type EMACross struct {
	fast int
	slow int
}

// NewEMACross builds the EMA crossover strategy with its standard 9/21 windows.
func NewEMACross() *EMACross { return &EMACross{fast: 9, slow: 21} }

func (e *EMACross) Name() string                    { return "ema_cross" }
func (e *EMACross) Granularity() market.Granularity { return market.GranularityDay }
func (e *EMACross) LookbackDays() int               { return 120 }

func (e *EMACross) Signal(bars []market.Bar) Signal {
	if len(bars) <= e.slow {
		return Hold
	}
	closes := market.Closes(bars)
	fast := talib.Ema(closes, e.fast)
	slow := talib.Ema(closes, e.slow)

	i := len(closes) - 1
	switch {
	case fast[i] > slow[i]:
		return Buy
	case fast[i] < slow[i]:
		return Sell
	default:
		return Hold
	}
}
