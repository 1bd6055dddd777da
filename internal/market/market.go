// Package market standardizes payloads shared between data providers and the
// trading layers.
package market

import "time"

// Bar is one OHLCV candle at a fixed granularity.
type Bar struct {
	Ts     time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Granularity selects the bar size served by a history provider.
type Granularity string

const (
	GranularityDay     Granularity = "1Day"
	GranularityFiveMin Granularity = "5Min"
	GranularityMinute  Granularity = "1Min"
)

// Clock is a point-in-time view of the market session boundaries.
type Clock struct {
	IsOpen    bool
	NextOpen  time.Time
	NextClose time.Time
}

// Closes extracts the close series from bars in order.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
