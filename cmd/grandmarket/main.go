package main

import (
	"context"
	"log/slog"
	"net/http"
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
	"github.com/grand-market/grand-market-erp/internal/procure"
	"github.com/grand-market/grand-market-erp/internal/refdata"
	"github.com/grand-market/grand-market-erp/internal/shared"
	"github.com/grand-market/grand-market-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	now := time.Now().UTC()
	inventory := ledger.SeedInventory(now)
	currency := cfg.Currency

	var snapStore *ledger.SnapshotStore
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, inventory snapshots disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		snapStore = ledger.NewSnapshotStore(redisClient)
		saved, err := snapStore.Load(ctx)
		if err != nil {
			logger.Warn("load inventory snapshot", slog.Any("error", err))
		} else if len(saved) > 0 {
			inventory = saved
		}
		currency, err = snapStore.LoadCurrency(ctx, cfg.Currency)
		if err != nil {
			logger.Warn("load currency setting", slog.Any("error", err))
			currency = cfg.Currency
		}
	}

	directory := refdata.NewDirectory(refdata.DefaultSuppliers(), refdata.DefaultWarehouses())

	engine := procure.NewEngine(procure.EngineConfig{
		TaxRate:        cfg.TaxRateDecimal(),
		MatchTolerance: cfg.MatchToleranceDecimal(),
	})

	var snapshots procure.SnapshotPort
	if snapStore != nil {
		snapshots = snapStore
	}
	service := procure.NewService(procure.ServiceConfig{
		Engine:      engine,
		Directory:   directory,
		Snapshots:   snapshots,
		Audit:       shared.NewAuditLogger(dbpool),
		Idempotency: shared.NewIdempotencyStore(dbpool),
		Logger:      logger,
		Inventory:   inventory,
		Currency:    currency,
	})

	salesLog := insights.NewSalesLog(200)
	insights.SeedSales(salesLog, now)
	insightsService := insights.NewService(insights.ServiceConfig{
		APIKey:            cfg.OpenAIAPIKey,
		Model:             cfg.OpenAIModel,
		Inventory:         service,
		Sales:             salesLog,
		LowStockThreshold: cfg.LowStockThreshold,
		Logger:            logger,
	})

	if redisClient != nil {
		jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		if err != nil {
			logger.Warn("init job client", slog.Any("error", err))
		} else {
			if _, err := jobClient.EnqueueLowStockScan(ctx, cfg.LowStockThreshold); err != nil {
				logger.Warn("enqueue low stock scan", slog.Any("error", err))
			}
			if _, err := jobClient.EnqueueInsightsWarmup(ctx); err != nil {
				logger.Warn("enqueue insights warmup", slog.Any("error", err))
			}
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}
	}

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		ProcureHandler:  procure.NewHandler(logger, service),
		LedgerHandler:   ledger.NewHandler(logger, service, cfg.LowStockThreshold),
		InsightsHandler: insights.NewHandler(logger, insightsService),
		RefDataHandler:  refdata.NewHandler(logger, directory),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	if snapStore != nil {
		if err := snapStore.Save(shutdownCtx, service.Inventory()); err != nil {
			logger.Warn("final inventory snapshot", slog.Any("error", err))
		}
		if err := snapStore.SaveCurrency(shutdownCtx, service.Currency()); err != nil {
			logger.Warn("final currency save", slog.Any("error", err))
		}
	}
}
