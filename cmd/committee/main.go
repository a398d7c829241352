package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"committee-trade-bot-go/internal/config"
	"committee-trade-bot-go/internal/database"
	"committee-trade-bot-go/internal/ledger"
	"committee-trade-bot-go/internal/logger"
	"committee-trade-bot-go/internal/marketdata"
	"committee-trade-bot-go/internal/notifier"
	"committee-trade-bot-go/internal/pipeline"
	"committee-trade-bot-go/internal/reasoning"
	"committee-trade-bot-go/internal/scheduler"
	"committee-trade-bot-go/internal/server"
	"go.uber.org/zap"
)

// notifyingRunner runs the pipeline and pushes the formatted result to the
// notification channel. A failed send is logged and never fails the run.
type notifyingRunner struct {
	pipeline *pipeline.Pipeline
	notify   notifier.TextNotifier
	logger   *zap.Logger
}

func (r *notifyingRunner) Run(ctx context.Context, symbols []string, newsLimit int) *pipeline.Context {
	rc := r.pipeline.Run(ctx, symbols, newsLimit)
	if err := r.notify.SendText(notifier.FormatRunReport(rc)); err != nil {
		r.logger.Warn("Failed to send run notification", zap.Error(err))
	}
	return rc
}

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Ledger and zone store over the shared database handle
	book := ledger.New(db, log)
	zones := ledger.NewZoneStore(db)

	// Market data sources
	news := marketdata.NewNewsClient(&cfg.MarketData, log)
	bars := marketdata.NewBarsClient(&cfg.MarketData, log)
	indicators := marketdata.NewIndicatorClient(&cfg.MarketData, log)
	sentiment := marketdata.NewSentimentIndexClient(&cfg.MarketData, log)

	// Reasoning engine
	engine := reasoning.NewOpenAIEngine(&cfg.OpenAI, log)

	// Notification channel
	var notify notifier.TextNotifier = notifier.Noop{}
	if cfg.Telegram.Enabled {
		notify = notifier.NewTelegram(&cfg.Telegram, log)
		log.Info("Telegram notifications enabled")
	}

	// Analysis pipeline
	pipe := pipeline.New(pipeline.Deps{
		News:       news,
		Prices:     bars,
		Indicators: indicators,
		Sentiment:  sentiment,
		Zones:      zones,
		Portfolio:  book,
		Engine:     engine,
		Logger:     log,
	})
	runner := &notifyingRunner{pipeline: pipe, notify: notify, logger: log}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Scheduled twice-daily runs
	var schedule server.ScheduleReader
	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(&cfg.Scheduler, func(ctx context.Context) {
			runner.Run(ctx, cfg.Trading.Symbols, cfg.Trading.NewsLimit)
		}, log)
		if err != nil {
			log.Fatal("Failed to create scheduler", zap.Error(err))
		}
		go sched.Run(ctx)
		schedule = sched
	}

	// HTTP API
	api := server.New(&cfg.Server, runner, book, schedule, log)
	go func() {
		if err := api.Start(); err != nil {
			log.Error("API server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer shutdownCancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		log.Error("API server shutdown failed", zap.Error(err))
	}

	log.Info("Bot has been shut down.")
}
