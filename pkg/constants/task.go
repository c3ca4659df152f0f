package constants

// TaskStatus evaluation task status
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "PENDING"   // created, no subtasks yet
	TaskStatusGenerated TaskStatus = "GENERATED" // subtask grid materialized
	TaskStatusRunning   TaskStatus = "RUNNING"   // at least one subtask dispatched
	TaskStatusCompleted TaskStatus = "COMPLETED"
	TaskStatusFailed    TaskStatus = "FAILED"
)

func (s TaskStatus) String() string {
	return string(s)
}
