package main

import (
	"context"
	"errors"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/agyin3/investing-bro-bot/internal/alpaca"
	"github.com/agyin3/investing-bro-bot/internal/approval"
	"github.com/agyin3/investing-bro-bot/internal/backtest"
	"github.com/agyin3/investing-bro-bot/internal/broker"
	"github.com/agyin3/investing-bro-bot/internal/config"
	"github.com/agyin3/investing-bro-bot/internal/engine"
	"github.com/agyin3/investing-bro-bot/internal/ledger"
	"github.com/agyin3/investing-bro-bot/internal/metrics"
	"github.com/agyin3/investing-bro-bot/internal/notify"
	"github.com/agyin3/investing-bro-bot/internal/position"
	"github.com/agyin3/investing-bro-bot/internal/quotes"
	"github.com/agyin3/investing-bro-bot/internal/strategy"
	"github.com/agyin3/investing-bro-bot/internal/util"
)

func main() {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "internal/config/config.yaml"
	}

	log := util.NewLogger("info")
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log = util.NewLogger(cfg.App.LogLevel)

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := alpaca.NewClient(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, log,
		alpaca.WithBaseURLs(cfg.Alpaca.TradingBaseURL, cfg.Alpaca.DataBaseURL),
		alpaca.WithTimeout(time.Duration(cfg.Alpaca.TimeoutSecs)*time.Second),
		alpaca.WithRateLimit(cfg.Alpaca.RequestsPerMin),
	)

	cache := quotes.NewCache(cfg.Market.QuoteProvider, cfg.Market.Symbols, client, log,
		quotes.WithPollInterval(time.Duration(cfg.Market.PollIntervalMs)*time.Millisecond),
		quotes.WithStream(cfg.Alpaca.StreamURL, cfg.Alpaca.APIKey, cfg.Alpaca.APISecret),
	)
	go func() {
		if err := cache.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("quote cache stopped")
			cancel()
		}
	}()

	var gateway broker.Gateway
	switch cfg.Broker.Gateway {
	case "alpaca":
		gateway = client
	default:
		gateway = broker.NewPaper(log)
	}
	log.Info().Str("gateway", cfg.Broker.Gateway).Msg("order gateway selected")

	strategies := strategy.BuildAll(cfg.Strategy.Modes)
	runner := backtest.NewRunner(cfg.Approval.StartingCash, cfg.Approval.MinBars)
	evaluator := approval.NewEvaluator(client, runner, strategies,
		cfg.Approval.MinWinRate, cfg.Approval.MinProfitLossPct, cfg.Approval.Workers, log)

	eng := engine.New(engine.Config{
		Symbols:             cfg.Market.Symbols,
		TickInterval:        time.Duration(cfg.Engine.TickIntervalSecs) * time.Second,
		OpeningSoonWindow:   time.Duration(cfg.Engine.OpeningSoonMins) * time.Minute,
		MaxClosedSleep:      time.Duration(cfg.Engine.MaxClosedSleepMins) * time.Minute,
		CallTimeout:         time.Duration(cfg.Engine.CallTimeoutSecs) * time.Second,
		DailyLimit:          cfg.Ledger.DailyLimit,
		MaxFractionPerTrade: cfg.Ledger.MaxFractionPerTrade,
		StopLossPct:         cfg.Risk.StopLossPct,
		TakeProfitPct:       cfg.Risk.TakeProfitPct,
	}, engine.Deps{
		Calendar:   client,
		History:    client,
		Quotes:     cache,
		Gateway:    gateway,
		Notifier:   notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, log),
		Approvals:  evaluator,
		Ledger:     ledger.New(cfg.Ledger.DailyLimit),
		Registry:   position.NewRegistry(),
		Strategies: strategies,
		Log:        log,
	})

	_ = metrics.Serve(cfg.App.MetricsAddr, func() any { return eng.Status() })
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	log.Info().Strs("symbols", cfg.Market.Symbols).Msg("trading loop started")
	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("engine stopped")
	}
	log.Info().Msg("shutting down")
}
