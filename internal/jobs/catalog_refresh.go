package jobs

import (
	"context"
	"time"

	"evalgrid/internal/selector"
	"evalgrid/internal/service"
	"evalgrid/pkg/logger"
)

// CatalogRefreshJob periodically rebuilds the selector's logical model
// groups from the catalog, so vendors added or retired by admin flows become
// visible without a restart.
type CatalogRefreshJob struct {
	selector *selector.Selector
	catalog  *service.CatalogService
	interval time.Duration
}

// NewCatalogRefreshJob creates the catalog refresh job
func NewCatalogRefreshJob(sel *selector.Selector, catalog *service.CatalogService, interval time.Duration) *CatalogRefreshJob {
	return &CatalogRefreshJob{
		selector: sel,
		catalog:  catalog,
		interval: interval,
	}
}

func (j *CatalogRefreshJob) Name() string { return "catalog-refresh" }

func (j *CatalogRefreshJob) Interval() time.Duration { return j.interval }

func (j *CatalogRefreshJob) Run(ctx context.Context) error {
	models, err := j.catalog.ListActiveModels(ctx, "")
	if err != nil {
		return err
	}

	j.selector.RebuildGroups(models)
	logger.DebugCtx(ctx, "catalog refreshed, models: %d, groups: %d", len(models), len(j.selector.Groups()))
	return nil
}
