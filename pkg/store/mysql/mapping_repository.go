package mysql

import (
	"context"
	"fmt"

	mysqlModel "evalgrid/pkg/store/mysql/model"
)

// MappingRepository reads template dimension mappings.
type MappingRepository struct {
	ds *Datastore
}

// NewMappingRepository creates a new mapping repository
func NewMappingRepository(ds *Datastore) *MappingRepository {
	return &MappingRepository{ds: ds}
}

// ListByTemplate retrieves all dimension mappings for a template, in a
// stable order.
func (r *MappingRepository) ListByTemplate(ctx context.Context, templateID string) ([]*mysqlModel.TemplateMapping, error) {
	var rows []*mysqlModel.TemplateMapping
	err := r.ds.DB(ctx).
		Where("template_id = ?", templateID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list template mappings: %w", err)
	}
	return rows, nil
}
