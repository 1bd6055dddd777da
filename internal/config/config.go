// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Alpaca describes the brokerage connectivity parameters the bot expects.
// Credentials come from the environment, not from the YAML file.
type Alpaca struct {
	TradingBaseURL string `yaml:"trading_base_url"`
	DataBaseURL    string `yaml:"data_base_url"`
	StreamURL      string `yaml:"stream_url"`
	APIKey         string `yaml:"-"`
	APISecret      string `yaml:"-"`
	RequestsPerMin int    `yaml:"requests_per_min"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
}

// Market lists the watchlist and how live quotes are sourced.
type Market struct {
	Symbols        []string `yaml:"symbols"`
	QuoteProvider  string   `yaml:"quote_provider"` // "poll" or "stream"
	PollIntervalMs int      `yaml:"poll_interval_ms"`
}

// Approval tunes the simulated-performance gate run at each market open.
type Approval struct {
	MinWinRate       float64 `yaml:"min_win_rate"`
	MinProfitLossPct float64 `yaml:"min_profit_loss_pct"`
	MinBars          int     `yaml:"min_bars"`
	StartingCash     float64 `yaml:"starting_cash"`
	Workers          int     `yaml:"workers"`
}

// Ledger sets the daily capital budget and per-trade sizing cap.
type Ledger struct {
	DailyLimit          float64 `yaml:"daily_limit"`
	MaxFractionPerTrade float64 `yaml:"max_fraction_per_trade"`
}

// Risk fixes the protective thresholds applied to every new position.
type Risk struct {
	StopLossPct   float64 `yaml:"stop_loss_pct"`
	TakeProfitPct float64 `yaml:"take_profit_pct"`
}

// Engine controls loop cadence against the market-hours schedule.
type Engine struct {
	TickIntervalSecs   int `yaml:"tick_interval_secs"`
	OpeningSoonMins    int `yaml:"opening_soon_mins"`
	MaxClosedSleepMins int `yaml:"max_closed_sleep_mins"`
	CallTimeoutSecs    int `yaml:"call_timeout_secs"`
}

// Strategy selects which signal generators are in play.
type Strategy struct {
	Modes []string `yaml:"modes"`
}

// Broker selects the order gateway implementation.
type Broker struct {
	Gateway string `yaml:"gateway"` // "paper" or "alpaca"
}

// Telegram holds the alerting channel identity. Credentials come from the
// environment, not from the YAML file.
type Telegram struct {
	BotToken string `yaml:"-"`
	ChatID   string `yaml:"-"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Alpaca   Alpaca   `yaml:"alpaca"`
	Market   Market   `yaml:"market"`
	Approval Approval `yaml:"approval"`
	Ledger   Ledger   `yaml:"ledger"`
	Risk     Risk     `yaml:"risk"`
	Engine   Engine   `yaml:"engine"`
	Strategy Strategy `yaml:"strategy"`
	Broker   Broker   `yaml:"broker"`
	Telegram Telegram `yaml:"telegram"`
}

// Load reads a YAML file from disk and hydrates a Config struct, then overlays
// environment-sourced secrets.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	config.applyEnv()
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// applyEnv overlays secrets that must never live in the YAML file.
func (c *Config) applyEnv() {
	c.Alpaca.APIKey = os.Getenv("ALPACA_API_KEY")
	c.Alpaca.APISecret = os.Getenv("ALPACA_API_SECRET")
	c.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	c.Telegram.ChatID = os.Getenv("TELEGRAM_CHAT_ID")
}
