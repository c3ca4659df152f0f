package jobs

import (
	"context"
	"time"

	"evalgrid/internal/model"
	"evalgrid/internal/selector"
	redisstore "evalgrid/pkg/store/redis"
)

// MetricsPublisherJob pushes vendor health snapshots to Redis for dashboard
// reads. Best effort: the registry stays authoritative in memory.
type MetricsPublisherJob struct {
	registry *selector.HealthRegistry
	metrics  *redisstore.MetricsRepository
	interval time.Duration
}

// NewMetricsPublisherJob creates the vendor metrics publisher
func NewMetricsPublisherJob(registry *selector.HealthRegistry, metrics *redisstore.MetricsRepository, interval time.Duration) *MetricsPublisherJob {
	return &MetricsPublisherJob{
		registry: registry,
		metrics:  metrics,
		interval: interval,
	}
}

func (j *MetricsPublisherJob) Name() string { return "metrics-publisher" }

func (j *MetricsPublisherJob) Interval() time.Duration { return j.interval }

func (j *MetricsPublisherJob) Run(ctx context.Context) error {
	snapshots := j.registry.SnapshotAll()
	if len(snapshots) == 0 {
		return nil
	}

	out := make([]*model.VendorMetrics, len(snapshots))
	for i := range snapshots {
		out[i] = &snapshots[i]
	}
	return j.metrics.SaveAll(ctx, out)
}
