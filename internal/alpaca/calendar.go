package alpaca

import (
	"context"
	"net/http"
	"time"

	"github.com/agyin3/investing-bro-bot/internal/market"
)

type clockResponse struct {
	IsOpen    bool      `json:"is_open"`
	NextOpen  time.Time `json:"next_open"`
	NextClose time.Time `json:"next_close"`
	Timestamp time.Time `json:"timestamp"`
}

// Clock implements market.Calendar against the trading API's clock endpoint.
func (c *Client) Clock(ctx context.Context) (market.Clock, error) {
	var out clockResponse
	if err := c.do(ctx, http.MethodGet, c.tradingBaseURL+"/v2/clock", nil, &out); err != nil {
		return market.Clock{}, err
	}
	return market.Clock{
		IsOpen:    out.IsOpen,
		NextOpen:  out.NextOpen,
		NextClose: out.NextClose,
	}, nil
}
