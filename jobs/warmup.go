package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/brasa-analytics/brasa/internal/dashboard"
	"github.com/brasa-analytics/brasa/internal/filters"
	"github.com/brasa-analytics/brasa/internal/observability"
	"github.com/brasa-analytics/brasa/internal/products"
)

// defaultWarmupPeriods are the trailing windows the dashboard opens with.
var defaultWarmupPeriods = []string{"7d", "30d", "90d"}

// DashboardWarmupJob pre-populates the response caches for the default
// filter selections so the first dashboard load after a deploy or cache
// flush stays fast.
type DashboardWarmupJob struct {
	Dashboard *dashboard.Service
	Products  *products.Service
	Logger    *slog.Logger
	Metrics   *observability.Metrics
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(dash *dashboard.Service, prod *products.Service, logger *slog.Logger, metrics *observability.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{Dashboard: dash, Products: prod, Logger: logger, Metrics: metrics}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	periods := payload.Periods
	if len(periods) == 0 {
		periods = defaultWarmupPeriods
	}

	logger := j.logger()
	start := time.Now()
	logger.Info("starting dashboard warmup", slog.Int("periods", len(periods)))

	if err := j.warm(ctx, periods); err != nil {
		j.Metrics.ObserveJob(TaskDashboardWarmup, "error")
		logger.Error("dashboard warmup", slog.Any("error", err))
		return err
	}

	j.Metrics.ObserveJob(TaskDashboardWarmup, "success")
	logger.Info("completed dashboard warmup", slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *DashboardWarmupJob) warm(ctx context.Context, periods []string) error {
	if _, err := j.Dashboard.GetFilterOptions(ctx); err != nil {
		return err
	}
	for _, period := range periods {
		// Each window gets its own timeout so one slow aggregate cannot eat
		// the whole job budget.
		windowCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := j.warmWindow(windowCtx, filters.Set{Period: period})
		cancel()
		if err != nil {
			return err
		}
	}
	return nil
}

func (j *DashboardWarmupJob) warmWindow(ctx context.Context, set filters.Set) error {
	if _, err := j.Dashboard.GetMetrics(ctx, set); err != nil {
		return err
	}
	if _, err := j.Dashboard.GetRevenueTimeline(ctx, set); err != nil {
		return err
	}
	if _, err := j.Dashboard.GetChannelDistribution(ctx, set); err != nil {
		return err
	}
	if _, err := j.Dashboard.GetStorePerformance(ctx, set); err != nil {
		return err
	}
	if _, err := j.Dashboard.GetSalesByHour(ctx, set); err != nil {
		return err
	}
	if _, err := j.Dashboard.GetPaymentMethods(ctx, set); err != nil {
		return err
	}
	if _, err := j.Dashboard.GetCouponPerformance(ctx, set); err != nil {
		return err
	}
	if j.Products != nil {
		if _, err := j.Products.GetTopProducts(ctx, set, 0); err != nil {
			return err
		}
		if _, err := j.Products.GetTopItems(ctx, set, 0); err != nil {
			return err
		}
	}
	return nil
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}
