package handler

import (
	"net/http"
	"strconv"
	"strings"

	"evalgrid/internal/model"
	"evalgrid/internal/service"
	"evalgrid/pkg/constants"
	"evalgrid/pkg/logger"

	"github.com/gin-gonic/gin"
)

// TaskHandler handles evaluation task operations
type TaskHandler struct {
	taskService       *service.TaskService
	generationService *service.GenerationService
	dispatchService   *service.DispatchService
	eventService      *service.EventService
}

// NewTaskHandler creates task handler
func NewTaskHandler(taskService *service.TaskService, generationService *service.GenerationService, dispatchService *service.DispatchService, eventService *service.EventService) *TaskHandler {
	return &TaskHandler{
		taskService:       taskService,
		generationService: generationService,
		dispatchService:   dispatchService,
		eventService:      eventService,
	}
}

// Create creates an evaluation task
// @Summary Create task
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body model.CreateTaskRequest true "Task request"
// @Success 200 {object} model.EvalTask
// @Router /v1/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req model.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.ErrorCtx(c.Request.Context(), "invalid create task request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), &req)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to create task: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, task)
}

// Status gets task status with subtask counts
// @Summary Get task status
// @Tags tasks
// @Produce json
// @Param task_id path string true "Task ID"
// @Success 200 {object} model.TaskStatusResponse
// @Router /v1/tasks/{task_id} [get]
func (h *TaskHandler) Status(c *gin.Context) {
	taskID := c.Param("task_id")

	resp, err := h.taskService.GetTaskStatus(c.Request.Context(), taskID)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to get task status, task_id: %s: %v", taskID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// List lists tasks, newest first
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Success 200 {array} model.EvalTask
// @Router /v1/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tasks, err := h.taskService.ListTasks(c.Request.Context(), limit, offset)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to list tasks: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// Generate materializes the subtask grid for a task
// @Summary Generate subtasks
// @Tags tasks
// @Produce json
// @Param task_id path string true "Task ID"
// @Success 200 {object} model.GenerationResult
// @Router /v1/tasks/{task_id}/generate [post]
func (h *TaskHandler) Generate(c *gin.Context) {
	taskID := c.Param("task_id")

	result, err := h.generationService.Generate(c.Request.Context(), taskID)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "generation failed, task_id: %s: %v", taskID, err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Start dispatches all pending subtasks of a task
// @Summary Start task execution
// @Tags tasks
// @Produce json
// @Param task_id path string true "Task ID"
// @Success 200 {object} map[string]int
// @Router /v1/tasks/{task_id}/start [post]
func (h *TaskHandler) Start(c *gin.Context) {
	taskID := c.Param("task_id")

	dispatched, err := h.dispatchService.StartTask(c.Request.Context(), taskID)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to start task, task_id: %s: %v", taskID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"dispatched": dispatched})
}

// Subtasks lists a task's subtasks with optional filters
// @Summary List subtasks
// @Tags tasks
// @Produce json
// @Param task_id path string true "Task ID"
// @Param status query string false "Comma-separated statuses"
// @Param model_id query int false "Generation-time model id"
// @Param dimension_id query string false "Dimension id"
// @Success 200 {array} model.SubTask
// @Router /v1/tasks/{task_id}/subtasks [get]
func (h *TaskHandler) Subtasks(c *gin.Context) {
	taskID := c.Param("task_id")

	filter := model.SubtaskFilter{
		DimensionID: c.Query("dimension_id"),
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, constants.SubtaskStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}
	if raw := c.Query("model_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model_id"})
			return
		}
		filter.ModelID = uint(id)
	}

	subtasks, err := h.taskService.ListSubtasks(c.Request.Context(), taskID, filter)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to list subtasks, task_id: %s: %v", taskID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subtasks": subtasks})
}

// Events lists a task's audit trail
// @Summary List task events
// @Tags tasks
// @Produce json
// @Param task_id path string true "Task ID"
// @Success 200 {array} model.TaskEvent
// @Router /v1/tasks/{task_id}/events [get]
func (h *TaskHandler) Events(c *gin.Context) {
	taskID := c.Param("task_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))

	events, err := h.eventService.ListByTask(c.Request.Context(), taskID, limit)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to list events, task_id: %s: %v", taskID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
