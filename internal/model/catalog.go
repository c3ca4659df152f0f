package model

import (
	"time"

	"evalgrid/pkg/constants"
)

// PhysicalModel is one concrete vendor-backed model endpoint from the
// external catalog. The orchestrator treats it as read-mostly input; only
// the catalog admin flows mutate it.
type PhysicalModel struct {
	ID              uint                  `json:"id"`
	Name            string                `json:"name"`
	LogicalName     string                `json:"logical_name"`
	VendorName      string                `json:"vendor_name"`
	Provider        string                `json:"provider"`
	Priority        int                   `json:"priority"`         // lower = preferred
	ConcurrentLimit int                   `json:"concurrent_limit"` // max in-flight calls
	SuccessRate     float64               `json:"success_rate"`     // 0..1, catalog-observed
	Status          constants.ModelStatus `json:"status"`
	InputCostPer1K  float64               `json:"input_cost_per_1k"`
	OutputCostPer1K float64               `json:"output_cost_per_1k"`
}

// IsActive reports whether the model may be offered for new selection.
func (m *PhysicalModel) IsActive() bool {
	return m.Status == constants.ModelStatusActive
}

// LogicalModelGroup is the set of physical models sharing one logical name,
// ordered deterministically. Groups are rebuilt from the catalog, never
// mutated in place.
type LogicalModelGroup struct {
	LogicalName string          `json:"logical_name"`
	Members     []PhysicalModel `json:"members"`
	PrimaryID   uint            `json:"primary_id"` // first member after ordering
}

// Member returns the group member with the given id, if present.
func (g *LogicalModelGroup) Member(id uint) (PhysicalModel, bool) {
	for _, m := range g.Members {
		if m.ID == id {
			return m, true
		}
	}
	return PhysicalModel{}, false
}

// VendorMetrics is the mutable health state of one physical model. It is
// owned exclusively by the vendor health registry; everything outside the
// registry sees copies.
type VendorMetrics struct {
	ModelID             uint          `json:"model_id"`
	CurrentLoad         int           `json:"current_load"`
	SuccessRate         float64       `json:"success_rate"`
	AvgResponseTime     time.Duration `json:"avg_response_time"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	LastFailureTime     *time.Time    `json:"last_failure_time,omitempty"`
	IsAvailable         bool          `json:"is_available"`
}

// TemplateMapping binds one evaluation dimension to an evaluator and an
// optional dimension-specific test case set. An empty TestCaseIDs means
// "use the task-level selection".
type TemplateMapping struct {
	DimensionID string `json:"dimension_id"`
	EvaluatorID string `json:"evaluator_id"`
	TestCaseIDs []uint `json:"test_case_ids"`
}
