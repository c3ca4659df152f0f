package constants

// SubtaskStatus subtask execution status
type SubtaskStatus string

const (
	SubtaskStatusPending   SubtaskStatus = "PENDING"
	SubtaskStatusRunning   SubtaskStatus = "RUNNING"
	SubtaskStatusCompleted SubtaskStatus = "COMPLETED"
	SubtaskStatusFailed    SubtaskStatus = "FAILED"
	// SubtaskStatusError marks infrastructure errors (dispatch failures) as
	// opposed to evaluation failures reported by the executor.
	SubtaskStatusError SubtaskStatus = "ERROR"
)

func (s SubtaskStatus) String() string {
	return string(s)
}

// IsRetryable reports whether a subtask in this status may be re-dispatched.
func (s SubtaskStatus) IsRetryable() bool {
	return s == SubtaskStatusFailed || s == SubtaskStatusError
}
