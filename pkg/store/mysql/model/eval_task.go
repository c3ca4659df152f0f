package model

import "time"

// EvalTask MySQL model for eval_tasks table.
type EvalTask struct {
	ID          int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID      string        `gorm:"column:task_id;type:varchar(64);not null;uniqueIndex:idx_task_id_unique" json:"task_id"`
	TemplateID  string        `gorm:"column:template_id;type:varchar(64);not null;index:idx_template" json:"template_id"`
	RunCount    int           `gorm:"column:run_count;type:int;not null;default:1" json:"run_count"`
	ModelIDs    JSONUintSlice `gorm:"column:model_ids;type:json" json:"model_ids"`
	TestCaseIDs JSONUintSlice `gorm:"column:test_case_ids;type:json" json:"test_case_ids"`
	Status      string        `gorm:"column:status;type:varchar(20);not null;default:PENDING;index:idx_status" json:"status"`
	CreatedAt   time.Time     `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3);index:idx_created_at" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"updated_at"`
}

// TableName specifies the table name for EvalTask
func (EvalTask) TableName() string {
	return "eval_tasks"
}
