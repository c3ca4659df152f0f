package mysql

import (
	"context"
	"fmt"

	"evalgrid/pkg/constants"
	mysqlModel "evalgrid/pkg/store/mysql/model"
)

// ModelRepository reads the physical model catalog. The catalog is owned by
// external admin flows; the orchestrator only reads it.
type ModelRepository struct {
	ds *Datastore
}

// NewModelRepository creates a new model repository
func NewModelRepository(ds *Datastore) *ModelRepository {
	return &ModelRepository{ds: ds}
}

// ListActive retrieves active physical models, optionally restricted to one
// logical name (empty = all).
func (r *ModelRepository) ListActive(ctx context.Context, logicalName string) ([]*mysqlModel.PhysicalModel, error) {
	query := r.ds.DB(ctx).
		Where("status = ?", constants.ModelStatusActive)
	if logicalName != "" {
		query = query.Where("logical_name = ?", logicalName)
	}

	var rows []*mysqlModel.PhysicalModel
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list active models: %w", err)
	}
	return rows, nil
}

// GetByIDs retrieves physical models by id regardless of status.
func (r *ModelRepository) GetByIDs(ctx context.Context, ids []uint) ([]*mysqlModel.PhysicalModel, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []*mysqlModel.PhysicalModel
	if err := r.ds.DB(ctx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get models by ids: %w", err)
	}
	return rows, nil
}
