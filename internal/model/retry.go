package model

// RetryRequest re-dispatches the failed members of a task, optionally
// excluding burned vendors and resetting their health state.
type RetryRequest struct {
	SubtaskIDs         []uint `json:"subtask_ids,omitempty"` // empty = all retryable subtasks of the task
	EvaluatorOverride  string `json:"evaluator_override,omitempty"`
	ExcludeVendorIDs   []uint `json:"exclude_vendor_ids,omitempty"`
	ResetVendorHistory bool   `json:"reset_vendor_history"`
}

// RetryFailure is one subtask that could not be re-dispatched.
type RetryFailure struct {
	SubtaskID uint   `json:"subtask_id"`
	Error     string `json:"error"`
}

// RetryOutcome reports a retry pass. Partial success is a result, not an
// error: callers decide whether to run another pass.
type RetryOutcome struct {
	Succeeded int            `json:"succeeded"`
	Failed    []RetryFailure `json:"failed"`
}
