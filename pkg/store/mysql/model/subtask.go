package model

import "time"

// SubTask MySQL model for sub_tasks table. The composite unique index on
// the generation key tuple is the race-safety backstop for idempotent
// subtask generation: a duplicate-key insert means another caller already
// generated this task's grid.
type SubTask struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID       string     `gorm:"column:task_id;type:varchar(64);not null;uniqueIndex:uk_generation_key,priority:1;index:idx_task_status,priority:1" json:"task_id"`
	TestCaseID   uint       `gorm:"column:test_case_id;not null;uniqueIndex:uk_generation_key,priority:2" json:"test_case_id"`
	ModelID      uint       `gorm:"column:model_id;not null;uniqueIndex:uk_generation_key,priority:3" json:"model_id"`
	DimensionID  string     `gorm:"column:dimension_id;type:varchar(64);not null;uniqueIndex:uk_generation_key,priority:4" json:"dimension_id"`
	EvaluatorID  string     `gorm:"column:evaluator_id;type:varchar(64);not null;uniqueIndex:uk_generation_key,priority:5" json:"evaluator_id"`
	RunIndex     int        `gorm:"column:run_index;type:int;not null;uniqueIndex:uk_generation_key,priority:6" json:"run_index"`
	Status       string     `gorm:"column:status;type:varchar(20);not null;default:PENDING;index:idx_task_status,priority:2" json:"status"`
	RetryCount   int        `gorm:"column:retry_count;type:int;not null;default:0" json:"retry_count"`
	VendorID     uint       `gorm:"column:vendor_id;not null;default:0" json:"vendor_id"`
	ErrorMessage string     `gorm:"column:error_message;type:text" json:"error_message"`
	IsTimeout    bool       `gorm:"column:is_timeout;not null;default:false" json:"is_timeout"`
	StartedAt    *time.Time `gorm:"column:started_at;type:datetime(3)" json:"started_at,omitempty"`
	CompletedAt  *time.Time `gorm:"column:completed_at;type:datetime(3)" json:"completed_at,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"updated_at"`
}

// TableName specifies the table name for SubTask
func (SubTask) TableName() string {
	return "sub_tasks"
}
