package model

import "time"

// TemplateMapping MySQL model for template_mappings table. Binds one
// template dimension to an evaluator and an optional dimension-specific
// test case set (empty = use the task-level selection).
type TemplateMapping struct {
	ID          uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	TemplateID  string        `gorm:"column:template_id;type:varchar(64);not null;index:idx_template" json:"template_id"`
	DimensionID string        `gorm:"column:dimension_id;type:varchar(64);not null" json:"dimension_id"`
	EvaluatorID string        `gorm:"column:evaluator_id;type:varchar(64);not null" json:"evaluator_id"`
	TestCaseIDs JSONUintSlice `gorm:"column:test_case_ids;type:json" json:"test_case_ids"`
	CreatedAt   time.Time     `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"updated_at"`
}

// TableName specifies the table name for TemplateMapping
func (TemplateMapping) TableName() string {
	return "template_mappings"
}
