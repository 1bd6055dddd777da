// Package alpaca implements the brokerage collaborators over Alpaca's REST API:
// the market calendar, bar history, latest trades, and order submission.
package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	defaultTradingBaseURL = "https://paper-api.alpaca.markets"
	defaultDataBaseURL    = "https://data.alpaca.markets"
	defaultTimeout        = 5 * time.Second
	defaultRequestsPerMin = 180
)

// Client is a rate-limited, breaker-guarded HTTP client for Alpaca.
type Client struct {
	tradingBaseURL string
	dataBaseURL    string
	key            string
	secret         string
	httpClient     *http.Client
	limiter        *rate.Limiter
	breaker        *gobreaker.CircuitBreaker
	log            zerolog.Logger
}

// Option configures Client construction parameters.
type Option func(*Client)

// WithBaseURLs overrides the trading and data endpoints (tests, live accounts).
func WithBaseURLs(trading, data string) Option {
	return func(c *Client) {
		if trading != "" {
			c.tradingBaseURL = trading
		}
		if data != "" {
			c.dataBaseURL = data
		}
	}
}

// WithTimeout bounds each HTTP call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit caps outbound request throughput.
func WithRateLimit(requestsPerMin int) Option {
	return func(c *Client) {
		if requestsPerMin > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMin)/60), 10)
		}
	}
}

// NewClient constructs a client for the paper endpoints unless overridden.
func NewClient(key, secret string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		tradingBaseURL: defaultTradingBaseURL,
		dataBaseURL:    defaultDataBaseURL,
		key:            key,
		secret:         secret,
		httpClient:     &http.Client{Timeout: defaultTimeout},
		limiter:        rate.NewLimiter(rate.Limit(float64(defaultRequestsPerMin)/60), 10),
		log:            log,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "alpaca",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	return c
}

// do runs one request through the limiter and breaker, decoding JSON into out.
func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	_, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("APCA-API-KEY-ID", c.key)
		req.Header.Set("APCA-API-SECRET-KEY", c.secret)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("alpaca: %s %s returned %d: %s", method, req.URL.Path, resp.StatusCode, msg)
		}
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return nil, fmt.Errorf("decode response: %w", err)
			}
		}
		return nil, nil
	})
	return err
}

func (c *Client) dataURL(path string, query url.Values) string {
	u := c.dataBaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
