package model

import "time"

// PhysicalModel MySQL model for physical_models table. One row per
// vendor-specific credential/endpoint backing a logical model.
type PhysicalModel struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	LogicalName     string    `gorm:"column:logical_name;type:varchar(255);not null;default:'';index:idx_logical_name" json:"logical_name"`
	VendorName      string    `gorm:"column:vendor_name;type:varchar(255);not null" json:"vendor_name"`
	Provider        string    `gorm:"column:provider;type:varchar(100);not null" json:"provider"`
	Priority        int       `gorm:"column:priority;type:int;not null;default:1" json:"priority"`
	ConcurrentLimit int       `gorm:"column:concurrent_limit;type:int;not null;default:10" json:"concurrent_limit"`
	SuccessRate     float64   `gorm:"column:success_rate;type:decimal(5,4);not null;default:1" json:"success_rate"`
	Status          string    `gorm:"column:status;type:varchar(20);not null;default:active;index:idx_status" json:"status"`
	InputCostPer1K  float64   `gorm:"column:input_cost_per_1k;type:decimal(10,6);not null;default:0" json:"input_cost_per_1k"`
	OutputCostPer1K float64   `gorm:"column:output_cost_per_1k;type:decimal(10,6);not null;default:0" json:"output_cost_per_1k"`
	CreatedAt       time.Time `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"updated_at"`
}

// TableName specifies the table name for PhysicalModel
func (PhysicalModel) TableName() string {
	return "physical_models"
}
