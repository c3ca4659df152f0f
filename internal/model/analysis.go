package model

import "time"

// Recommendation is the single source of truth for whether an automated
// system may retry a task without human confirmation.
type Recommendation string

const (
	RecommendationProceed         Recommendation = "proceed"          // every failed group is safe to retry
	RecommendationUserChoice      Recommendation = "user_choice"      // mix of safe and exhausted groups
	RecommendationSkipProblematic Recommendation = "skip_problematic" // every failed group is vendor-exhausted
)

// FailureRecord is one failed subtask observation, resolved to its logical
// model and vendor identity. Derived during analysis, never persisted.
type FailureRecord struct {
	SubtaskID    uint      `json:"subtask_id"`
	LogicalName  string    `json:"logical_name"`
	VendorName   string    `json:"vendor_name"`
	ErrorMessage string    `json:"error_message"`
	IsTimeout    bool      `json:"is_timeout"`
	RetryCount   int       `json:"retry_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// FailedVendorDetail describes one burned vendor inside an exhausted group.
type FailedVendorDetail struct {
	Name      string    `json:"name"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
	IsTimeout bool      `json:"is_timeout"`
}

// ExhaustedModelDetail is the per-group payload for groups that need a human
// decision: every alternative vendor failed for a substantive reason.
type ExhaustedModelDetail struct {
	LogicalName             string               `json:"logical_name"`
	RepresentativeSubtaskID uint                 `json:"representative_subtask_id"`
	FailedVendors           []FailedVendorDetail `json:"failed_vendors"`
	TotalVendorCount        int                  `json:"total_vendor_count"`
}

// AnalysisSummary counts failed subtasks by retry classification.
type AnalysisSummary struct {
	SafeToRetry     int `json:"safe_to_retry"`
	NeedsUserChoice int `json:"needs_user_choice"`
	SkipRecommended int `json:"skip_recommended"` // past the automatic retry cap
}

// PreRetryAnalysis classifies a task's failures ahead of a retry pass.
// Group-level counts distinguish "some vendor hiccuped" from "every vendor
// for this model is exhausted".
type PreRetryAnalysis struct {
	TotalFailedSubtasks     int                    `json:"total_failed_subtasks"`
	AllVendorsFailedCount   int                    `json:"all_vendors_failed_count"`
	TimeoutFailedCount      int                    `json:"timeout_failed_count"`
	OtherFailedCount        int                    `json:"other_failed_count"`
	AllVendorsFailedDetails []ExhaustedModelDetail `json:"all_vendors_failed_details"`
	Recommendation          Recommendation         `json:"recommendation"`
	AnalysisSummary         AnalysisSummary        `json:"analysis_summary"`
}
