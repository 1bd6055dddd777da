package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/gorilla/websocket"
)

type streamEnvelope struct {
	Type   string  `json:"T"`
	Symbol string  `json:"S"`
	Price  float64 `json:"p"`
	Msg    string  `json:"msg"`
	Code   int     `json:"code"`
}

type streamAuth struct {
	Action string `json:"action"`
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

type streamSubscribe struct {
	Action string   `json:"action"`
	Trades []string `json:"trades"`
}

func (c *Cache) runStream(ctx context.Context) error {
	if c.streamURL == "" {
		return fmt.Errorf("stream provider requires a websocket url")
	}
	if len(c.symbols) == 0 {
		return fmt.Errorf("stream provider requires at least one symbol")
	}

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.consumeStream(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn().Err(err).Msg("trade stream disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (c *Cache) consumeStream(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.streamURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	auth, err := json.Marshal(streamAuth{Action: "auth", Key: c.key, Secret: c.secret})
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, auth); err != nil {
		return err
	}
	sub, err := json.Marshal(streamSubscribe{Action: "subscribe", Trades: c.symbols})
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, sub); err != nil {
		return err
	}

	c.log.Info().Str("provider", ProviderStream).Strs("symbols", c.symbols).Msg("connected trade stream")

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					c.log.Warn().Err(err).Msg("trade stream ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if err := c.handleMessage(message); err != nil {
			return err
		}
	}
}

// handleMessage applies one websocket payload to the cache. The stream sends
// arrays of envelopes; only trade events carry prices.
func (c *Cache) handleMessage(message []byte) error {
	var envelopes []streamEnvelope
	if err := json.Unmarshal(message, &envelopes); err != nil {
		c.log.Warn().Err(err).Msg("failed to decode stream message")
		return nil
	}
	for _, env := range envelopes {
		switch env.Type {
		case "t":
			c.store(env.Symbol, env.Price)
		case "error":
			return fmt.Errorf("trade stream error %d: %s", env.Code, env.Msg)
		}
	}
	return nil
}
