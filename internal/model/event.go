package model

import "time"

// EventType task lifecycle event type
type EventType string

const (
	EventTaskCreated       EventType = "TASK_CREATED"
	EventSubtasksGenerated EventType = "SUBTASKS_GENERATED"
	EventSubtaskDispatched EventType = "SUBTASK_DISPATCHED"
	EventSubtaskCompleted  EventType = "SUBTASK_COMPLETED"
	EventSubtaskFailed     EventType = "SUBTASK_FAILED"
	EventRetryStarted      EventType = "RETRY_STARTED"
	EventAnalysisDone      EventType = "ANALYSIS_DONE"
)

// TaskEvent is one append-only audit record in a task's history. A copy of
// each event is also pushed to live event-feed subscribers.
type TaskEvent struct {
	ID        uint      `json:"id"`
	TaskID    string    `json:"task_id"`
	SubtaskID uint      `json:"subtask_id,omitempty"`
	Type      EventType `json:"type"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
