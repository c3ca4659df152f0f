package model

import "evalgrid/pkg/constants"

// SelectionRequest asks the selector for the best vendor backing a logical
// model, excluding vendors already proven bad for the current attempt.
type SelectionRequest struct {
	LogicalName      string                      `json:"logical_name" binding:"required"`
	Strategy         constants.SelectionStrategy `json:"strategy"`
	ExcludeVendorIDs []uint                      `json:"exclude_vendor_ids,omitempty"`
}

// SelectionResult is the selector's decision: the chosen vendor, up to three
// ranked alternates, and a human-readable justification for observability.
type SelectionResult struct {
	Selected         PhysicalModel   `json:"selected"`
	Alternatives     []PhysicalModel `json:"alternatives"`
	Justification    string          `json:"justification"`
	PerformanceScore float64         `json:"performance_score"`
}
