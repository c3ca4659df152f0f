package main

import (
	"time"

	"evalgrid/internal/jobs"
	"evalgrid/pkg/logger"
)

// initJobs registers the periodic background tasks
func (app *Application) initJobs() error {
	if app.catalogService == nil && app.vendorSelector == nil {
		logger.WarnCtx(app.ctx, "Selector stack not initialized yet, skipping background task registration")
		return nil
	}

	manager := jobs.NewManager(app.ctx)

	catalogInterval := time.Duration(app.config.Jobs.CatalogRefreshInterval) * time.Second
	sweepInterval := time.Duration(app.config.Jobs.StaleSweepInterval) * time.Second
	staleTimeout := time.Duration(app.config.Jobs.StaleTimeout) * time.Second
	publishInterval := time.Duration(app.config.Jobs.MetricsPublishInterval) * time.Second

	manager.Register(jobs.NewCatalogRefreshJob(app.vendorSelector, app.catalogService, catalogInterval))
	manager.Register(jobs.NewStaleSweeperJob(app.mysqlRepo.Subtasks, staleTimeout, sweepInterval))
	manager.Register(jobs.NewMetricsPublisherJob(app.healthRegistry, app.metricsRepo, publishInterval))

	app.jobsManager = manager
	return nil
}
