package mysql

import (
	"context"
	"fmt"

	mysqlModel "evalgrid/pkg/store/mysql/model"
)

// EventRepository handles task event persistence in MySQL
type EventRepository struct {
	ds *Datastore
}

// NewEventRepository creates a new event repository
func NewEventRepository(ds *Datastore) *EventRepository {
	return &EventRepository{ds: ds}
}

// Append records one event. The audit trail is append-only; failures here
// must not break the operation that produced the event, so callers log and
// continue on error.
func (r *EventRepository) Append(ctx context.Context, event *mysqlModel.TaskEvent) error {
	if err := r.ds.DB(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to append task event: %w", err)
	}
	return nil
}

// ListByTask retrieves a task's events in chronological order.
func (r *EventRepository) ListByTask(ctx context.Context, taskID string, limit int) ([]*mysqlModel.TaskEvent, error) {
	if limit <= 0 {
		limit = 200
	}

	var rows []*mysqlModel.TaskEvent
	err := r.ds.DB(ctx).Where("task_id = ?", taskID).
		Order("id").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list task events: %w", err)
	}
	return rows, nil
}
