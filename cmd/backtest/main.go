package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/agyin3/investing-bro-bot/internal/alpaca"
	"github.com/agyin3/investing-bro-bot/internal/approval"
	"github.com/agyin3/investing-bro-bot/internal/backtest"
	"github.com/agyin3/investing-bro-bot/internal/config"
	"github.com/agyin3/investing-bro-bot/internal/strategy"
	"github.com/agyin3/investing-bro-bot/internal/util"
)

// Runs the approval gate once over the configured watchlist and prints every
// verdict, without touching orders or the budget.
func main() {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "internal/config/config.yaml"
	}

	log := util.NewLogger("warn")
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	client := alpaca.NewClient(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, log,
		alpaca.WithBaseURLs(cfg.Alpaca.TradingBaseURL, cfg.Alpaca.DataBaseURL),
		alpaca.WithTimeout(time.Duration(cfg.Alpaca.TimeoutSecs)*time.Second),
		alpaca.WithRateLimit(cfg.Alpaca.RequestsPerMin),
	)

	strategies := strategy.BuildAll(cfg.Strategy.Modes)
	runner := backtest.NewRunner(cfg.Approval.StartingCash, cfg.Approval.MinBars)
	evaluator := approval.NewEvaluator(client, runner, strategies,
		cfg.Approval.MinWinRate, cfg.Approval.MinProfitLossPct, cfg.Approval.Workers, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	set := evaluator.Refresh(ctx, cfg.Market.Symbols)
	if set.Len() == 0 {
		fmt.Println("no symbol/strategy pair could be evaluated")
		os.Exit(1)
	}

	for _, sym := range cfg.Market.Symbols {
		for _, strat := range strategies {
			rec, ok := set.Lookup(sym, strat.Name())
			if !ok {
				fmt.Printf("%-6s %-12s skipped (no usable history)\n", sym, strat.Name())
				continue
			}
			verdict := "REJECTED"
			if rec.Approved {
				verdict = "APPROVED"
			}
			fmt.Printf("%-6s %-12s %s  win_rate=%.1f%% pnl=%.1f%% trades=%d\n",
				sym, strat.Name(), verdict, rec.WinRate, rec.ProfitLossPct, rec.TradeCount)
		}
	}
}
