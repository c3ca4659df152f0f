package main

import (
	"fmt"
	"net/http"
	"time"

	"evalgrid/app/handler"
	"evalgrid/app/router"
	"evalgrid/internal/selector"
	"evalgrid/internal/service"
	"evalgrid/pkg/config"
	"evalgrid/pkg/events"
	"evalgrid/pkg/logger"
	queuestore "evalgrid/pkg/queue/asynq"
	mysqlstore "evalgrid/pkg/store/mysql"
	redisstore "evalgrid/pkg/store/redis"

	"github.com/gin-gonic/gin"
)

// initConfig initializes configuration
func (app *Application) initConfig() error {
	if err := config.Init(); err != nil {
		return err
	}
	app.config = config.GlobalConfig
	return nil
}

// initLogger initializes logging
func (app *Application) initLogger() error {
	if err := logger.Init(); err != nil {
		return err
	}
	app.registerCleanup(func() {
		logger.Sync()
		logger.InfoCtx(app.ctx, "Logging system has been closed")
	})
	return nil
}

// initMySQL initializes MySQL
func (app *Application) initMySQL() error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		app.config.MySQL.User,
		app.config.MySQL.Password,
		app.config.MySQL.Host,
		app.config.MySQL.Port,
		app.config.MySQL.Database,
	)

	repo, err := mysqlstore.NewRepository(dsn)
	if err != nil {
		return err
	}

	app.mysqlRepo = repo
	app.registerCleanup(func() {
		repo.Close()
		logger.InfoCtx(app.ctx, "MySQL connection has been closed")
	})

	return nil
}

// initRedis initializes Redis
func (app *Application) initRedis() error {
	client, err := redisstore.NewRedisClient(app.config)
	if err != nil {
		return err
	}

	app.redisClient = client
	app.metricsRepo = redisstore.NewMetricsRepository(client)
	app.registerCleanup(func() {
		client.Close()
		logger.InfoCtx(app.ctx, "Redis connection has been closed")
	})

	return nil
}

// initQueue initializes the execution task queue
func (app *Application) initQueue() error {
	manager, err := queuestore.NewManager(app.config)
	if err != nil {
		return err
	}

	app.queueManager = manager
	app.registerCleanup(func() {
		manager.Close()
		logger.InfoCtx(app.ctx, "Task queue has been closed")
	})

	return nil
}

// initSelector initializes the vendor selection stack and primes the
// logical model groups from the current catalog.
func (app *Application) initSelector() error {
	app.broker = events.NewBroker()

	app.grouper = selector.NewGrouper(app.config.Selector.ProviderPriority)
	app.healthRegistry = selector.NewHealthRegistry(selector.RegistryConfig{
		FailureThreshold: app.config.Selector.FailureThreshold,
		Cooldown:         time.Duration(app.config.Selector.CooldownSeconds) * time.Second,
	})

	app.catalogService = service.NewCatalogService(app.mysqlRepo.Models)
	app.vendorSelector = selector.NewSelector(app.grouper, app.healthRegistry, app.catalogService)

	// Prime groups so selection works before the first refresh job tick.
	models, err := app.catalogService.ListActiveModels(app.ctx, "")
	if err != nil {
		logger.WarnCtx(app.ctx, "Initial catalog load failed, groups start empty: %v", err)
		return nil
	}
	app.vendorSelector.RebuildGroups(models)
	logger.InfoCtx(app.ctx, "Loaded %d active physical models into selector", len(models))

	return nil
}

// initServices initializes service layer
func (app *Application) initServices() error {
	app.eventService = service.NewEventService(app.mysqlRepo.Events, app.broker)

	app.taskService = service.NewTaskService(
		app.mysqlRepo.Tasks,
		app.mysqlRepo.Subtasks,
		app.eventService,
	)

	generationLock := redisstore.NewGenerationLock(
		app.redisClient,
		time.Duration(app.config.Generation.LockTTLSeconds)*time.Second,
	)
	app.generationService = service.NewGenerationService(
		app.mysqlRepo.Tasks,
		app.mysqlRepo.Subtasks,
		app.mysqlRepo.Mappings,
		app.catalogService,
		app.grouper,
		generationLock,
		app.eventService,
	)

	app.dispatchService = service.NewDispatchService(
		app.mysqlRepo.Tasks,
		app.mysqlRepo.Subtasks,
		app.catalogService,
		service.NewQueueExecutor(app.queueManager),
		app.eventService,
	)

	app.retryService = service.NewRetryService(
		app.mysqlRepo.Tasks,
		app.mysqlRepo.Subtasks,
		app.dispatchService,
		app.healthRegistry,
		app.eventService,
		app.config.Retry.MaxRetries,
	)

	app.analysisService = service.NewAnalysisService(
		app.mysqlRepo.Tasks,
		app.mysqlRepo.Subtasks,
		app.catalogService,
		app.eventService,
		app.config.Retry.MaxRetries,
	)

	app.resultService = service.NewResultService(
		app.mysqlRepo.Tasks,
		app.mysqlRepo.Subtasks,
		app.healthRegistry,
		app.eventService,
	)

	return nil
}

// initHandlers initializes handler layer
func (app *Application) initHandlers() error {
	app.taskHandler = handler.NewTaskHandler(app.taskService, app.generationService, app.dispatchService, app.eventService)
	app.selectionHandler = handler.NewSelectionHandler(app.vendorSelector)
	app.vendorHandler = handler.NewVendorHandler(app.vendorSelector, app.metricsRepo)
	app.analysisHandler = handler.NewAnalysisHandler(app.analysisService)
	app.retryHandler = handler.NewRetryHandler(app.retryService)
	app.resultHandler = handler.NewResultHandler(app.resultService)
	app.eventsHandler = handler.NewEventsHandler(app.broker)

	return nil
}

// initHTTPServer initializes HTTP server
func (app *Application) initHTTPServer() error {
	// Initialize router
	r := router.NewRouter(
		app.selectionHandler,
		app.taskHandler,
		app.retryHandler,
		app.analysisHandler,
		app.vendorHandler,
		app.resultHandler,
		app.eventsHandler,
	)

	// Set Gin mode
	gin.SetMode(app.config.Server.Mode)

	// Create Gin engine
	app.ginEngine = gin.New()
	app.ginEngine.Use(gin.Recovery())

	// Setup routes
	r.Setup(app.ginEngine)

	// Create HTTP server
	app.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: app.ginEngine,
	}

	return nil
}
