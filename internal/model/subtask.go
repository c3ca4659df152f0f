package model

import (
	"time"

	"evalgrid/pkg/constants"
)

// SubTask is one concrete (test case x model x dimension x evaluator x run)
// unit of evaluation work. The tuple (TaskID, TestCaseID, ModelID,
// DimensionID, EvaluatorID, RunIndex) is unique; the storage-level
// constraint on it is the race-safety backstop for idempotent generation.
type SubTask struct {
	ID           uint                    `json:"id"`
	TaskID       string                  `json:"task_id"`
	TestCaseID   uint                    `json:"test_case_id"`
	ModelID      uint                    `json:"model_id"` // logical group's primary id at generation time
	DimensionID  string                  `json:"dimension_id"`
	EvaluatorID  string                  `json:"evaluator_id"`
	RunIndex     int                     `json:"run_index"` // >= 1
	Status       constants.SubtaskStatus `json:"status"`
	RetryCount   int                     `json:"retry_count"`
	VendorID     uint                    `json:"vendor_id,omitempty"` // physical model that last executed this subtask
	ErrorMessage string                  `json:"error_message,omitempty"`
	IsTimeout    bool                    `json:"is_timeout,omitempty"` // executor-reported, or derived from the message
	StartedAt    *time.Time              `json:"started_at,omitempty"`
	CompletedAt  *time.Time              `json:"completed_at,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// GenerationSpec is the configuration slice the generator needs from a task.
type GenerationSpec struct {
	RunCount    int
	ModelIDs    []uint
	TestCaseIDs []uint
}

// GenerationResult reports the outcome of subtask generation.
type GenerationResult struct {
	Created       int  `json:"created"`
	AlreadyExists bool `json:"already_exists"`
}

// SubtaskFilter narrows subtask listing.
type SubtaskFilter struct {
	Statuses    []constants.SubtaskStatus
	ModelID     uint
	DimensionID string
}

// ExecutionRequest is one dispatch toward the external executor. The
// executor performs the vendor selection call itself, honoring the
// exclusion set, runs the evaluation, and reports back through the result
// ingestion endpoint.
type ExecutionRequest struct {
	SubtaskID        uint   `json:"subtask_id"`
	TaskID           string `json:"task_id"`
	LogicalName      string `json:"logical_name"`
	DimensionID      string `json:"dimension_id"`
	EvaluatorID      string `json:"evaluator_id"`
	TestCaseID       uint   `json:"test_case_id"`
	RunIndex         int    `json:"run_index"`
	Attempt          int    `json:"attempt"`
	ExcludeVendorIDs []uint `json:"exclude_vendor_ids,omitempty"`
}

// ExecutionResult is the outcome the executor reports for one subtask.
type ExecutionResult struct {
	Success    bool   `json:"success"`
	VendorID   uint   `json:"vendor_id"`
	Error      string `json:"error,omitempty"`
	IsTimeout  bool   `json:"is_timeout"`
	DurationMs int64  `json:"duration_ms"`
}
