package strategy

import (
	talib "github.com/markcheno/go-talib"

	"github.com/agyin3/investing-bro-bot/internal/market"
)

// Swing trades the golden-cross regime on daily bars: long while the 50-bar
// SMA sits above the 200-bar SMA and MACD momentum confirms.
type Swing struct {
	fast int
	slow int
}

// NewSwing builds the swing strategy with its standard 50/200 windows.
func NewSwing() *Swing { return &Swing{fast: 50, slow: 200} }

func (s *Swing) Name() string                    { return "swing" }
func (s *Swing) Granularity() market.Granularity { return market.GranularityDay }
func (s *Swing) LookbackDays() int               { return 300 }

func (s *Swing) Signal(bars []market.Bar) Signal {
	if len(bars) <= s.slow {
		return Hold
	}
	closes := market.Closes(bars)
	smaFast := talib.Sma(closes, s.fast)
	smaSlow := talib.Sma(closes, s.slow)
	macd, macdSignal, _ := talib.Macd(closes, 12, 26, 9)

	i := len(closes) - 1
	switch {
	case smaFast[i] > smaSlow[i] && macd[i] > macdSignal[i]:
		return Buy
	case smaFast[i] < smaSlow[i] && macd[i] < macdSignal[i]:
		return Sell
	default:
		return Hold
	}
}
