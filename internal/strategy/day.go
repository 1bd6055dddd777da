package strategy

import (
	talib "github.com/markcheno/go-talib"

	"github.com/agyin3/investing-bro-bot/internal/market"
)

// Day rides intraday momentum on five-minute bars: long while price holds
// above the 10-bar SMA with MACD confirmation.
type Day struct {
	window int
}

// NewDay builds the day-trade strategy with its standard 10-bar window.
func NewDay() *Day { return &Day{window: 10} }

func (d *Day) Name() string                    { return "day" }
func (d *Day) Granularity() market.Granularity { return market.GranularityFiveMin }
func (d *Day) LookbackDays() int               { return 5 }

func (d *Day) Signal(bars []market.Bar) Signal {
	// MACD's slow EMA needs the most history here.
	if len(bars) <= 35 {
		return Hold
	}
	closes := market.Closes(bars)
	sma := talib.Sma(closes, d.window)
	macd, macdSignal, _ := talib.Macd(closes, 12, 26, 9)

	i := len(closes) - 1
	switch {
	case closes[i] > sma[i] && macd[i] > macdSignal[i]:
		return Buy
	case closes[i] < sma[i] && macd[i] < macdSignal[i]:
		return Sell
	default:
		return Hold
	}
}
