package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/grand-market/grand-market-erp/internal/ledger"
	"github.com/grand-market/grand-market-erp/internal/shared"
)

// InventorySource exposes the live inventory ledger to background jobs.
type InventorySource interface {
	Inventory() []ledger.InventoryRecord
	Currency() string
}

// LowStockScanJob reports inventory items at or below the restock threshold.
type LowStockScanJob struct {
	Inventory InventorySource
	Audit     *shared.AuditLogger
	Logger    *slog.Logger
	clock     func() time.Time
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(inventory InventorySource, audit *shared.AuditLogger, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{
		Inventory: inventory,
		Audit:     audit,
		Logger:    logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes low-stock scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Inventory == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Threshold <= 0 {
		payload.Threshold = 10
	}

	started := j.now()
	low := ledger.LowStock(j.Inventory.Inventory(), payload.Threshold)
	logger := j.logger().With(slog.Int64("threshold", payload.Threshold))
	if len(low) == 0 {
		logger.Info("low stock scan clean", slog.Duration("duration", time.Since(started)))
		return nil
	}

	for _, rec := range low {
		logger.Warn("low stock item",
			slog.String("sku", rec.SKU),
			slog.String("name", rec.Name),
			slog.Int64("stock_level", rec.StockLevel))
	}
	if j.Audit != nil {
		if err := j.Audit.Record(ctx, shared.AuditLog{
			ActorID:  "worker",
			Action:   "STOCK_LOW_SCAN",
			Entity:   "inventory",
			EntityID: "ledger",
			Meta:     map[string]any{"threshold": payload.Threshold, "items": len(low)},
			At:       started,
		}); err != nil {
			logger.Warn("record scan audit", slog.Any("error", err))
		}
	}
	logger.Info("low stock scan complete",
		slog.Int("items", len(low)),
		slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *LowStockScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
