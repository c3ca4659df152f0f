package router

import (
	"evalgrid/app/handler"
	"evalgrid/app/middleware"

	"github.com/gin-gonic/gin"
)

// Router Router
type Router struct {
	selectionHandler *handler.SelectionHandler
	taskHandler      *handler.TaskHandler
	retryHandler     *handler.RetryHandler
	analysisHandler  *handler.AnalysisHandler
	vendorHandler    *handler.VendorHandler
	resultHandler    *handler.ResultHandler
	eventsHandler    *handler.EventsHandler
}

// NewRouter creates a new Router
func NewRouter(
	selectionHandler *handler.SelectionHandler,
	taskHandler *handler.TaskHandler,
	retryHandler *handler.RetryHandler,
	analysisHandler *handler.AnalysisHandler,
	vendorHandler *handler.VendorHandler,
	resultHandler *handler.ResultHandler,
	eventsHandler *handler.EventsHandler,
) *Router {
	return &Router{
		selectionHandler: selectionHandler,
		taskHandler:      taskHandler,
		retryHandler:     retryHandler,
		analysisHandler:  analysisHandler,
		vendorHandler:    vendorHandler,
		resultHandler:    resultHandler,
		eventsHandler:    eventsHandler,
	}
}

// Setup sets up routes
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())

	// V1 API - task management and selection
	v1 := engine.Group("/v1")
	{
		v1.POST("/tasks", r.taskHandler.Create)
		v1.GET("/tasks", r.taskHandler.List)
		v1.GET("/tasks/:task_id", r.taskHandler.Status)
		v1.POST("/tasks/:task_id/generate", r.taskHandler.Generate)
		v1.POST("/tasks/:task_id/start", r.taskHandler.Start)
		v1.GET("/tasks/:task_id/subtasks", r.taskHandler.Subtasks)
		v1.GET("/tasks/:task_id/events", r.taskHandler.Events)
		v1.GET("/tasks/:task_id/pre-retry-analysis", r.analysisHandler.PreRetryAnalysis)
		v1.POST("/tasks/:task_id/retry", r.retryHandler.Retry)

		v1.GET("/vendors/metrics", r.vendorHandler.Metrics)
		v1.GET("/vendors/metrics/published", r.vendorHandler.PublishedMetrics)
		v1.GET("/vendors/groups", r.vendorHandler.Groups)
		v1.POST("/vendors/reset", r.vendorHandler.Reset)

		// Executor-facing endpoints carry token authentication
		executor := v1.Group("")
		executor.Use(middleware.AuthMiddleware())
		{
			executor.POST("/selection", r.selectionHandler.Select)
			executor.POST("/results/:subtask_id", r.resultHandler.Ingest)
		}
	}

	// Live event feed for dashboards
	engine.GET("/ws/events", r.eventsHandler.Stream)

	// Health check
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
