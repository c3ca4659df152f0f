package model

import (
	"time"

	"evalgrid/pkg/constants"
)

// EvalTask is one benchmark evaluation run configuration. Its subtask grid
// is generated exactly once; the task row tracks overall lifecycle.
type EvalTask struct {
	ID          string               `json:"id"`
	TemplateID  string               `json:"template_id"`
	RunCount    int                  `json:"run_count"`
	ModelIDs    []uint               `json:"model_ids"`     // physical model ids, grouped at generation time
	TestCaseIDs []uint               `json:"test_case_ids"` // task-level selection, used when a mapping carries none
	Status      constants.TaskStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// CreateTaskRequest creates a new evaluation task.
type CreateTaskRequest struct {
	TemplateID  string `json:"template_id" binding:"required"`
	RunCount    int    `json:"run_count" binding:"required,min=1"`
	ModelIDs    []uint `json:"model_ids" binding:"required,min=1"`
	TestCaseIDs []uint `json:"test_case_ids"`
}

// TaskStatusResponse is the task detail view with subtask progress.
type TaskStatusResponse struct {
	ID          string               `json:"id"`
	TemplateID  string               `json:"template_id"`
	Status      constants.TaskStatus `json:"status"`
	RunCount    int                  `json:"run_count"`
	Subtasks    SubtaskCounts        `json:"subtasks"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// SubtaskCounts aggregates subtask statuses for one task.
type SubtaskCounts struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Running   int64 `json:"running"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}
