package alpaca

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/agyin3/investing-bro-bot/internal/market"
)

type barPayload struct {
	Ts     time.Time `json:"t"`
	Open   float64   `json:"o"`
	High   float64   `json:"h"`
	Low    float64   `json:"l"`
	Close  float64   `json:"c"`
	Volume float64   `json:"v"`
}

type barsResponse struct {
	Bars          []barPayload `json:"bars"`
	NextPageToken *string      `json:"next_page_token"`
}

type latestTradeResponse struct {
	Trade struct {
		Price float64   `json:"p"`
		Ts    time.Time `json:"t"`
	} `json:"trade"`
}

// GetBars implements market.HistoryProvider, following pagination until the
// window is exhausted.
func (c *Client) GetBars(ctx context.Context, symbol string, start, end time.Time, g market.Granularity) ([]market.Bar, error) {
	var bars []market.Bar
	pageToken := ""
	for {
		query := url.Values{
			"timeframe":  {string(g)},
			"start":      {start.UTC().Format(time.RFC3339)},
			"end":        {end.UTC().Format(time.RFC3339)},
			"limit":      {"10000"},
			"adjustment": {"raw"},
			"feed":       {"iex"},
		}
		if pageToken != "" {
			query.Set("page_token", pageToken)
		}

		var out barsResponse
		u := c.dataURL("/v2/stocks/"+url.PathEscape(symbol)+"/bars", query)
		if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
			return nil, err
		}
		for _, b := range out.Bars {
			bars = append(bars, market.Bar{
				Ts:     b.Ts,
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: b.Volume,
			})
		}
		if out.NextPageToken == nil || *out.NextPageToken == "" {
			return bars, nil
		}
		pageToken = *out.NextPageToken
	}
}

// LatestPrice implements market.QuoteProvider. Any failure reads as
// unavailable; the caller skips the symbol for this tick.
func (c *Client) LatestPrice(ctx context.Context, symbol string) (float64, bool) {
	var out latestTradeResponse
	u := c.dataURL("/v2/stocks/"+url.PathEscape(symbol)+"/trades/latest", url.Values{"feed": {"iex"}})
	if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		c.log.Warn().Err(err).Str("sym", symbol).Msg("latest trade unavailable")
		return 0, false
	}
	if out.Trade.Price <= 0 {
		return 0, false
	}
	return out.Trade.Price, true
}
