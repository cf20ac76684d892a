package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/grand-market/grand-market-erp/internal/insights"
)

var defaultWarmupPrompts = []string{
	"Which items are running low on stock?",
	"Summarise recent sales revenue.",
}

// InsightsWarmupJob runs the standing insight prompts ahead of the first
// interactive request of the day.
type InsightsWarmupJob struct {
	Insights *insights.Service
	Logger   *slog.Logger
	clock    func() time.Time
}

// NewInsightsWarmupJob wires dependencies for the warmup handler.
func NewInsightsWarmupJob(svc *insights.Service, logger *slog.Logger) *InsightsWarmupJob {
	return &InsightsWarmupJob{
		Insights: svc,
		Logger:   logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes insights warmup tasks.
func (j *InsightsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Insights == nil {
		return errors.New("insights warmup: handler not configured")
	}
	var payload InsightsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	prompts := payload.Prompts
	if len(prompts) == 0 {
		prompts = defaultWarmupPrompts
	}

	started := j.now()
	for _, prompt := range prompts {
		promptCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		answer := j.Insights.Generate(promptCtx, prompt)
		cancel()
		j.logger().Debug("warmed insight prompt",
			slog.String("prompt", prompt),
			slog.Int("answer_len", len(answer)))
	}
	j.logger().Info("completed insights warmup",
		slog.Int("prompts", len(prompts)),
		slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *InsightsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *InsightsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
