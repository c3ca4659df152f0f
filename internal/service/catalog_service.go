package service

import (
	"context"

	"evalgrid/internal/model"
	"evalgrid/internal/selector"
	"evalgrid/pkg/store/mysql"
)

// CatalogService reads the physical model catalog. It is the selector's
// CatalogSource and the place other services resolve model identity.
type CatalogService struct {
	models *mysql.ModelRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(models *mysql.ModelRepository) *CatalogService {
	return &CatalogService{models: models}
}

// ListActiveModels returns active physical models, optionally restricted to
// one logical name (empty = all).
func (s *CatalogService) ListActiveModels(ctx context.Context, logicalName string) ([]model.PhysicalModel, error) {
	rows, err := s.models.ListActive(ctx, logicalName)
	if err != nil {
		return nil, err
	}
	return mysql.ToModelDomainList(rows), nil
}

// GetModelsByIDs resolves physical models by id, regardless of status. Used
// by generation and analysis, which must also see models that went inactive
// after subtasks were created.
func (s *CatalogService) GetModelsByIDs(ctx context.Context, ids []uint) ([]model.PhysicalModel, error) {
	rows, err := s.models.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return mysql.ToModelDomainList(rows), nil
}

// ModelsByID returns an id-indexed view of the given model ids.
func (s *CatalogService) ModelsByID(ctx context.Context, ids []uint) (map[uint]model.PhysicalModel, error) {
	models, err := s.GetModelsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]model.PhysicalModel, len(models))
	for _, m := range models {
		out[m.ID] = m
	}
	return out, nil
}

// VendorCountByLogical counts active vendors per logical name, keyed the
// same way the grouper keys groups: the explicit logical_name column, else
// the name-derived logical name. Counting over the raw column would miss
// extraction-named models and make their groups look inexhaustible.
func (s *CatalogService) VendorCountByLogical(ctx context.Context) (map[string]int, error) {
	models, err := s.ListActiveModels(ctx, "")
	if err != nil {
		return nil, err
	}
	return countVendorsByLogical(models), nil
}

// countVendorsByLogical tallies models per resolved logical name.
func countVendorsByLogical(models []model.PhysicalModel) map[string]int {
	out := make(map[string]int, len(models))
	for _, m := range models {
		key := m.LogicalName
		if key == "" {
			key = selector.ExtractLogicalName(m.Name)
		}
		out[key]++
	}
	return out
}
