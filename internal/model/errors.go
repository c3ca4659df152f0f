package model

import "errors"

// ErrorCode tags the orchestration error taxonomy. Selection and generation
// errors are returned to the immediate caller and never retried inside the
// core; retry policy belongs to the retry orchestrator alone.
type ErrorCode string

const (
	CodeNoModelGroup         ErrorCode = "NO_MODEL_GROUP"
	CodeNoAvailableVendor    ErrorCode = "NO_AVAILABLE_VENDOR"
	CodeTransientVendorError ErrorCode = "TRANSIENT_VENDOR_ERROR"
	CodeExhaustedVendorError ErrorCode = "EXHAUSTED_VENDOR_ERROR"
	CodeGenerationConflict   ErrorCode = "GENERATION_CONFLICT"
	CodeConfigError          ErrorCode = "CONFIG_ERROR"
)

// OrchestratorError is a typed domain error carrying the taxonomy code and,
// where relevant, the logical model it concerns.
type OrchestratorError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Model   string    `json:"model,omitempty"`
}

func (e *OrchestratorError) Error() string {
	return e.Message
}

// NewNoModelGroupError signals that a logical name is unresolvable even
// after a catalog reload.
func NewNoModelGroupError(logicalName string) *OrchestratorError {
	return &OrchestratorError{
		Code:    CodeNoModelGroup,
		Message: "no model group for logical model '" + logicalName + "'",
		Model:   logicalName,
	}
}

// NewNoAvailableVendorError signals that every candidate is excluded,
// unavailable, or at capacity.
func NewNoAvailableVendorError(logicalName string) *OrchestratorError {
	return &OrchestratorError{
		Code:    CodeNoAvailableVendor,
		Message: "no available vendor for logical model '" + logicalName + "'",
		Model:   logicalName,
	}
}

// NewGenerationConflictError signals a concurrent generation attempt; the
// caller should re-read the existing subtask count.
func NewGenerationConflictError(taskID string) *OrchestratorError {
	return &OrchestratorError{
		Code:    CodeGenerationConflict,
		Message: "subtask generation already in progress or done for task '" + taskID + "'",
	}
}

// NewConfigError signals an unusable generation configuration, e.g. no
// template mapping resolvable.
func NewConfigError(message string) *OrchestratorError {
	return &OrchestratorError{
		Code:    CodeConfigError,
		Message: message,
	}
}

// HasCode reports whether err is an OrchestratorError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var oe *OrchestratorError
	if errors.As(err, &oe) {
		return oe.Code == code
	}
	return false
}
