package service

import (
	"context"

	"evalgrid/internal/model"
	"evalgrid/pkg/events"
	"evalgrid/pkg/logger"
	"evalgrid/pkg/store/mysql"
	mysqlModel "evalgrid/pkg/store/mysql/model"
)

// EventService appends audit events and pushes them to the live feed.
// Recording is best effort: an event write failure is logged, never
// propagated into the operation that produced the event.
type EventService struct {
	events *mysql.EventRepository
	broker *events.Broker
}

// NewEventService creates a new event service
func NewEventService(eventRepo *mysql.EventRepository, broker *events.Broker) *EventService {
	return &EventService{
		events: eventRepo,
		broker: broker,
	}
}

// Record appends one event for a task and publishes it to subscribers.
func (s *EventService) Record(ctx context.Context, taskID string, subtaskID uint, eventType model.EventType, detail string) {
	row := &mysqlModel.TaskEvent{
		TaskID:    taskID,
		SubtaskID: subtaskID,
		Type:      string(eventType),
		Detail:    detail,
	}
	if err := s.events.Append(ctx, row); err != nil {
		logger.WarnCtx(ctx, "failed to record task event %s for task %s: %v", eventType, taskID, err)
	}

	if s.broker != nil {
		event := mysql.ToEventDomain(row)
		s.broker.Publish(&event)
	}
}

// ListByTask retrieves a task's event history in chronological order.
func (s *EventService) ListByTask(ctx context.Context, taskID string, limit int) ([]model.TaskEvent, error) {
	rows, err := s.events.ListByTask(ctx, taskID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.TaskEvent, len(rows))
	for i, row := range rows {
		out[i] = mysql.ToEventDomain(row)
	}
	return out, nil
}
