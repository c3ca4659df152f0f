package model

import "time"

// TaskEvent MySQL model for task_events table (append-only audit trail).
type TaskEvent struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID    string    `gorm:"column:task_id;type:varchar(64);not null;index:idx_task_id" json:"task_id"`
	SubtaskID uint      `gorm:"column:subtask_id;not null;default:0" json:"subtask_id"`
	Type      string    `gorm:"column:type;type:varchar(40);not null" json:"type"`
	Detail    string    `gorm:"column:detail;type:text" json:"detail"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3);index:idx_created_at" json:"created_at"`
}

// TableName specifies the table name for TaskEvent
func (TaskEvent) TableName() string {
	return "task_events"
}
