// Package quotes maintains the latest traded price per watched symbol.
package quotes

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agyin3/investing-bro-bot/internal/market"
	"github.com/agyin3/investing-bro-bot/internal/metrics"
)

const (
	// ProviderPoll refreshes prices over the REST latest-trade endpoint.
	ProviderPoll = "poll"
	// ProviderStream consumes the brokerage's websocket trade stream.
	ProviderStream = "stream"
)

const defaultPollInterval = 5 * time.Second

// Cache is a pluggable live-price source feeding the trading loop. It keeps
// the last seen price per symbol and falls back to the REST source on a miss.
type Cache struct {
	provider     string
	symbols      []string
	source       market.QuoteProvider
	pollInterval time.Duration
	streamURL    string
	key          string
	secret       string
	log          zerolog.Logger

	mu         sync.RWMutex
	lastPrices map[string]float64
}

// Option configures Cache construction parameters.
type Option func(*Cache)

// WithPollInterval overrides the default polling cadence.
func WithPollInterval(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithStream injects the websocket endpoint and credentials.
func WithStream(url, key, secret string) Option {
	return func(c *Cache) {
		c.streamURL = url
		c.key = key
		c.secret = secret
	}
}

// NewCache constructs a cache backed by the requested provider.
func NewCache(provider string, symbols []string, source market.QuoteProvider, log zerolog.Logger, opts ...Option) *Cache {
	c := &Cache{
		provider:     strings.ToLower(strings.TrimSpace(provider)),
		source:       source,
		pollInterval: defaultPollInterval,
		log:          log,
		lastPrices:   make(map[string]float64),
	}
	c.setSymbols(symbols)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) setSymbols(symbols []string) {
	unique := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		unique[sym] = struct{}{}
	}
	c.symbols = c.symbols[:0]
	for sym := range unique {
		c.symbols = append(c.symbols, sym)
	}
	sort.Strings(c.symbols)
}

func (c *Cache) store(symbol string, price float64) {
	if price <= 0 {
		return
	}
	c.mu.Lock()
	c.lastPrices[symbol] = price
	c.mu.Unlock()
	metrics.QuotesTotal.WithLabelValues(symbol).Inc()
}

// LatestPrice implements market.QuoteProvider from the cache, falling back to
// the REST source on a miss.
func (c *Cache) LatestPrice(ctx context.Context, symbol string) (float64, bool) {
	c.mu.RLock()
	px, ok := c.lastPrices[symbol]
	c.mu.RUnlock()
	if ok && px > 0 {
		return px, true
	}
	if c.source == nil {
		return 0, false
	}
	px, ok = c.source.LatestPrice(ctx, symbol)
	if ok {
		c.store(symbol, px)
	}
	return px, ok
}

// Run keeps the cache warm until the context is canceled.
func (c *Cache) Run(ctx context.Context) error {
	switch c.provider {
	case ProviderStream:
		return c.runStream(ctx)
	default:
		return c.runPoll(ctx)
	}
}

func (c *Cache) runPoll(ctx context.Context) error {
	if c.source == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, sym := range c.symbols {
				px, ok := c.source.LatestPrice(ctx, sym)
				if !ok {
					continue
				}
				c.store(sym, px)
			}
		}
	}
}
