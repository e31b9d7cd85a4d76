package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/couchcryptid/psychrometer-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/psychrometer-service/internal/adapter/kafka"
	"github.com/couchcryptid/psychrometer-service/internal/adapter/openai"
	"github.com/couchcryptid/psychrometer-service/internal/adapter/telegram"
	"github.com/couchcryptid/psychrometer-service/internal/config"
	"github.com/couchcryptid/psychrometer-service/internal/domain"
	"github.com/couchcryptid/psychrometer-service/internal/observability"
	"github.com/couchcryptid/psychrometer-service/internal/pipeline"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	table, err := loadTable(cfg)
	if err != nil {
		logger.Error("failed to load reference table", "error", err, "path", cfg.ReferenceTablePath)
		os.Exit(1)
	}
	calc := domain.NewCalculator(table)
	logger.Info("reference table loaded",
		"dataset", datasetName(cfg),
		"rows", table.Rows(),
		"cols", table.Cols(),
	)

	// Photo input is feature-flagged on OPENAI_API_KEY.
	var transcriber domain.Transcriber
	if cfg.TranscriptionEnabled() {
		client := openai.NewClient(cfg, metrics, logger)
		transcriber = openai.NewCachedTranscriber(client, cfg.TranscriptionCacheSize, metrics)
		metrics.TranscriptionEnabled.Set(1)
		logger.Info("photo transcription enabled", "model", cfg.OpenAIModel, "cache_size", cfg.TranscriptionCacheSize)
	} else {
		logger.Info("photo transcription disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	var ready sharedobs.ReadinessChecker = alwaysReady{}
	var closers []func() error

	if cfg.KafkaEnabled {
		reader := kafkaadapter.NewReader(cfg, logger)
		writer := kafkaadapter.NewWriter(cfg, logger)
		closers = append(closers, reader.Close, writer.Close)

		p := pipeline.New(reader, pipeline.NewTransformer(calc, metrics, logger), writer, logger, metrics, cfg.BatchSize)
		ready = p
		g.Go(func() error { return p.Run(gctx) })
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, calc, transcriber, metrics, logger)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.TelegramEnabled {
		api, err := tgbotapi.NewBotAPI(cfg.BotToken)
		if err != nil {
			logger.Error("failed to connect to telegram", "error", err)
			os.Exit(1)
		}
		logger.Info("telegram bot authorized", "username", api.Self.UserName)

		u := tgbotapi.NewUpdate(0)
		u.Timeout = cfg.TelegramPollTimeout
		updates := api.GetUpdatesChan(u)
		closers = append(closers, func() error { api.StopReceivingUpdates(); return nil })

		bot := telegram.NewBot(api, calc, transcriber, metrics, logger)
		g.Go(func() error { return bot.Run(gctx, updates) })
	}

	<-gctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, c := range closers {
		if err := c(); err != nil {
			logger.Error("close error", "error", err)
		}
	}

	if err := g.Wait(); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func loadTable(cfg *config.Config) (*domain.Table, error) {
	if cfg.ReferenceTablePath != "" {
		return domain.LoadTableFile(cfg.ReferenceTablePath)
	}
	return domain.DefaultTable()
}

func datasetName(cfg *config.Config) string {
	if cfg.ReferenceTablePath != "" {
		return cfg.ReferenceTablePath
	}
	return domain.DatasetVersion
}

// alwaysReady reports the service ready once the reference table is loaded,
// which happens before the server starts.
type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }
