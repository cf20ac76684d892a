package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/grand-market/grand-market-erp/internal/app"
	"github.com/grand-market/grand-market-erp/internal/insights"
	"github.com/grand-market/grand-market-erp/internal/ledger"
	"github.com/grand-market/grand-market-erp/internal/platform/cache"
	"github.com/grand-market/grand-market-erp/internal/shared"
	"github.com/grand-market/grand-market-erp/jobs"
)

// snapshotInventory reads the ledger persisted by the API process so the
// worker sees the same stock state without sharing memory.
type snapshotInventory struct {
	store    *ledger.SnapshotStore
	fallback string
	logger   *slog.Logger
}

func (s *snapshotInventory) Inventory() []ledger.InventoryRecord {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	records, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("load inventory snapshot", slog.Any("error", err))
		return nil
	}
	return records
}

func (s *snapshotInventory) Currency() string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	code, err := s.store.LoadCurrency(ctx, s.fallback)
	if err != nil {
		return s.fallback
	}
	return code
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	inventory := &snapshotInventory{
		store:    ledger.NewSnapshotStore(redisClient),
		fallback: cfg.Currency,
		logger:   logger,
	}

	insightsService := insights.NewService(insights.ServiceConfig{
		APIKey:            cfg.OpenAIAPIKey,
		Model:             cfg.OpenAIModel,
		Inventory:         inventory,
		Sales:             insights.NewSalesLog(0),
		LowStockThreshold: cfg.LowStockThreshold,
		Logger:            logger,
	})

	scanJob := jobs.NewLowStockScanJob(inventory, shared.NewAuditLogger(dbpool), logger)
	warmupJob := jobs.NewInsightsWarmupJob(insightsService, logger)

	scanTask, err := jobs.NewLowStockScanTask(cfg.LowStockThreshold)
	if err != nil {
		logger.Error("build scan task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewInsightsWarmupTask()
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskInventoryLowStockScan, Handler: scanJob.Handle},
			{Type: jobs.TaskInsightsWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 6 * * *", Task: scanTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 5 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(2)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
