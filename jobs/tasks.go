package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskInventoryLowStockScan walks the inventory ledger and reports
	// items at or below the restock threshold.
	TaskInventoryLowStockScan = "inventory:low_stock_scan"
	// TaskInsightsWarmup pre-computes the standing insight prompts so the
	// first interactive request does not pay the model round-trip.
	TaskInsightsWarmup = "insights:warmup"
)

// LowStockScanPayload configures a low-stock scan run.
type LowStockScanPayload struct {
	Threshold int64 `json:"threshold"`
}

// NewLowStockScanTask constructs an Asynq task for a low-stock scan.
func NewLowStockScanTask(threshold int64) (*asynq.Task, error) {
	data, err := json.Marshal(LowStockScanPayload{Threshold: threshold})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInventoryLowStockScan, data), nil
}

// InsightsWarmupPayload configures an insights warmup run.
type InsightsWarmupPayload struct {
	Prompts []string `json:"prompts"`
}

// NewInsightsWarmupTask constructs an Asynq task for an insights warmup.
func NewInsightsWarmupTask(prompts ...string) (*asynq.Task, error) {
	data, err := json.Marshal(InsightsWarmupPayload{Prompts: prompts})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInsightsWarmup, data), nil
}
