package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"evalgrid/internal/model"

	"github.com/go-redis/redis/v8"
)

const (
	metricsKeyPrefix = "vendor:metrics:" // vendor:metrics:{modelID}
	metricsSetKey    = "vendor:metrics:ids"
	metricsTTL       = 5 * time.Minute
)

// MetricsRepository publishes vendor health snapshots to Redis so other
// instances and dashboards can read them. Entries expire on their own; a
// vendor that stops being published falls out of the set.
type MetricsRepository struct {
	redis *redis.Client
}

// NewMetricsRepository creates vendor metrics repository
func NewMetricsRepository(redisClient *RedisClient) *MetricsRepository {
	return &MetricsRepository{
		redis: redisClient.GetClient(),
	}
}

// SaveAll publishes a batch of vendor metrics snapshots in one pipeline.
func (r *MetricsRepository) SaveAll(ctx context.Context, metrics []*model.VendorMetrics) error {
	if len(metrics) == 0 {
		return nil
	}

	pipe := r.redis.Pipeline()
	for _, m := range metrics {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal vendor metrics: %w", err)
		}
		key := metricsKeyPrefix + strconv.FormatUint(uint64(m.ModelID), 10)
		pipe.Set(ctx, key, data, metricsTTL)
		pipe.SAdd(ctx, metricsSetKey, m.ModelID)
	}
	pipe.Expire(ctx, metricsSetKey, metricsTTL*2)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save vendor metrics: %w", err)
	}
	return nil
}

// Get retrieves one vendor's metrics snapshot.
func (r *MetricsRepository) Get(ctx context.Context, modelID uint) (*model.VendorMetrics, error) {
	key := metricsKeyPrefix + strconv.FormatUint(uint64(modelID), 10)
	data, err := r.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("vendor metrics not found: %d", modelID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vendor metrics: %w", err)
	}

	var m model.VendorMetrics
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vendor metrics: %w", err)
	}
	return &m, nil
}

// GetAll retrieves all published vendor metrics snapshots.
func (r *MetricsRepository) GetAll(ctx context.Context) ([]*model.VendorMetrics, error) {
	ids, err := r.redis.SMembers(ctx, metricsSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get vendor metrics ids: %w", err)
	}
	if len(ids) == 0 {
		return []*model.VendorMetrics{}, nil
	}

	pipe := r.redis.Pipeline()
	cmds := make([]*redis.StringCmd, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, pipe.Get(ctx, metricsKeyPrefix+id))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to fetch vendor metrics: %w", err)
	}

	out := make([]*model.VendorMetrics, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			// Snapshot expired, skip
			continue
		}
		var m model.VendorMetrics
		if err := json.Unmarshal([]byte(data), &m); err != nil {
			continue
		}
		out = append(out, &m)
	}
	return out, nil
}
