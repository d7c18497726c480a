// Command portsure runs the portfolio risk scoring and exposure monitoring
// engine with a web dashboard.
//
// Usage:
//
//	portsure --config config.yaml
//	portsure --setup   (interactive configuration wizard)
//	portsure           (stock Equity/Bond/Derivative deployment)
//
// Evaluation events are journalled to an append-only WAL and replayed into
// the in-memory ledger at startup.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/vadiminshakov/portsure/config"
	"github.com/vadiminshakov/portsure/internal/domain"
	"github.com/vadiminshakov/portsure/internal/services/monitor"
	"github.com/vadiminshakov/portsure/internal/setup"
	"github.com/vadiminshakov/portsure/internal/storage/evaluations"
	"github.com/vadiminshakov/portsure/internal/web"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config")
	runSetup := flag.Bool("setup", false, "run interactive configuration wizard")
	flag.Parse()

	if *runSetup {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg, err := config.Get(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	universe, err := domain.NewUniverse(cfg.AssetClasses)
	if err != nil {
		logger.Fatal("invalid asset class set", zap.Error(err))
	}

	journal, err := evaluations.NewWALStore(cfg.WalDir)
	if err != nil {
		logger.Fatal("failed to open evaluation journal", zap.Error(err))
	}
	defer journal.Close()

	histories, err := journal.HistoryByPortfolio()
	if err != nil {
		logger.Fatal("failed to read evaluation journal", zap.Error(err))
	}

	engine, err := monitor.New(universe, cfg.Limits, cfg.Weights, cfg.Tiers, journal, logger)
	if err != nil {
		logger.Fatal("failed to construct risk monitor", zap.Error(err))
	}

	// seed portfolios, replay journalled history, then evaluate the initial
	// state; dedup keeps restarts from journalling already recorded breaches
	for _, seed := range cfg.Portfolios {
		if err := engine.Register(seed.ID, seed.Allocation); err != nil {
			logger.Fatal("failed to register portfolio", zap.String("portfolio", seed.ID), zap.Error(err))
		}
		if events, ok := histories[seed.ID]; ok {
			if err := engine.Restore(seed.ID, events); err != nil {
				logger.Fatal("failed to restore history", zap.String("portfolio", seed.ID), zap.Error(err))
			}
		}
		if err := engine.RecheckBreaches(seed.ID); err != nil {
			logger.Fatal("failed initial breach check", zap.String("portfolio", seed.ID), zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := web.NewServer(cfg.Listen, engine, journal)
	logger.Info("starting risk monitor",
		zap.String("listen", cfg.Listen),
		zap.Int("portfolios", len(cfg.Portfolios)))

	if err := server.Start(ctx); err != nil {
		logger.Fatal("web server failed", zap.Error(err))
	}
}
