// Package jobs runs the background queue: the asynq worker, its scheduler
// and the dashboard cache warmup task.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup pre-populates the dashboard response caches.
	TaskDashboardWarmup = "analytics:dashboard_warmup"
)

// DashboardWarmupPayload selects which trailing windows to warm. Empty means
// the standard 7/30/90-day set.
type DashboardWarmupPayload struct {
	Periods []string `json:"periods,omitempty"`
}

// NewDashboardWarmupTask constructs an Asynq task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}
