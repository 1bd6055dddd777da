package strategy

import (
	talib "github.com/markcheno/go-talib"

	"github.com/agyin3/investing-bro-bot/internal/market"
)

// RSIReversal buys oversold and sells overbought daily RSI readings.
type RSIReversal struct {
	period     int
	oversold   float64
	overbought float64
}

// NewRSIReversal builds the RSI strategy, defaulting to 14/30/70.
func NewRSIReversal(period int, oversold, overbought float64) *RSIReversal {
	if period <= 0 {
		period = 14
	}
	if oversold <= 0 {
		oversold = 30
	}
	if overbought <= 0 || overbought <= oversold {
		overbought = 70
	}
	return &RSIReversal{period: period, oversold: oversold, overbought: overbought}
}

func (r *RSIReversal) Name() string                    { return "rsi" }
func (r *RSIReversal) Granularity() market.Granularity { return market.GranularityDay }
func (r *RSIReversal) LookbackDays() int               { return 120 }

func (r *RSIReversal) Signal(bars []market.Bar) Signal {
	if len(bars) <= r.period {
		return Hold
	}
	rsi := talib.Rsi(market.Closes(bars), r.period)

	switch last := rsi[len(rsi)-1]; {
	case last < r.oversold:
		return Buy
	case last > r.overbought:
		return Sell
	default:
		return Hold
	}
}
