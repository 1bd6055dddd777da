// Package notify delivers best-effort operator alerts. Delivery failures are
// logged and swallowed; they never propagate into trading decisions.
package notify

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Notifier sends a text alert. Implementations must never block trading on
// channel failures.
type Notifier interface {
	Send(ctx context.Context, text string)
}

// Nop discards alerts; used in tests and when no channel is configured.
type Nop struct{}

func (Nop) Send(context.Context, string) {}

const defaultTelegramBaseURL = "https://api.telegram.org"

// Telegram posts messages to a chat via the Bot API.
type Telegram struct {
	baseURL    string
	token      string
	chatID     string
	httpClient *http.Client
	enabled    bool
	log        zerolog.Logger
}

// Option configures Telegram construction parameters.
type Option func(*Telegram)

// WithBaseURL overrides the Bot API endpoint (tests).
func WithBaseURL(u string) Option {
	return func(t *Telegram) {
		if u != "" {
			t.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// NewTelegram builds a notifier; with missing credentials it stays disabled
// and silently drops every message.
func NewTelegram(token, chatID string, log zerolog.Logger, opts ...Option) *Telegram {
	t := &Telegram{
		baseURL:    defaultTelegramBaseURL,
		token:      token,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		enabled:    token != "" && chatID != "",
		log:        log,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send posts one message, fire-and-forget.
func (t *Telegram) Send(ctx context.Context, text string) {
	if !t.enabled {
		return
	}
	form := url.Values{
		"chat_id":    {t.chatID},
		"text":       {text},
		"parse_mode": {"Markdown"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/bot"+t.token+"/sendMessage", strings.NewReader(form.Encode()))
	if err != nil {
		t.log.Warn().Err(err).Msg("telegram request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.log.Warn().Err(err).Msg("telegram send failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		t.log.Warn().Int("status", resp.StatusCode).Msg("telegram rejected message")
	}
}
