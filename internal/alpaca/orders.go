package alpaca

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/agyin3/investing-bro-bot/internal/broker"
	"github.com/agyin3/investing-bro-bot/internal/metrics"
)

type orderRequest struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	TimeInForce   string `json:"time_in_force"`
	ClientOrderID string `json:"client_order_id"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Submit implements broker.Gateway with a market order. The client order id is
// a fresh UUID so a retried submission never fills twice.
func (c *Client) Submit(ctx context.Context, order broker.Order) error {
	if order.Qty <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	tif := order.TimeInForce
	if tif == "" {
		tif = "day"
	}
	payload, err := json.Marshal(orderRequest{
		Symbol:        order.Symbol,
		Qty:           strconv.Itoa(order.Qty),
		Side:          strings.ToLower(string(order.Side)),
		Type:          "market",
		TimeInForce:   tif,
		ClientOrderID: uuid.NewString(),
	})
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	var out orderResponse
	if err := c.do(ctx, http.MethodPost, c.tradingBaseURL+"/v2/orders", bytes.NewReader(payload), &out); err != nil {
		metrics.OrderFailuresTotal.WithLabelValues(order.Symbol, string(order.Side)).Inc()
		return err
	}
	metrics.OrdersTotal.WithLabelValues(order.Symbol, string(order.Side)).Inc()
	c.log.Info().Str("sym", order.Symbol).Str("side", string(order.Side)).Int("qty", order.Qty).Str("order_id", out.ID).Str("status", out.Status).Msg("order submitted")
	return nil
}
