package service

import (
	"context"
	"fmt"

	"evalgrid/internal/model"
	"evalgrid/pkg/constants"
	"evalgrid/pkg/logger"
	"evalgrid/pkg/store/mysql"

	"github.com/google/uuid"
)

// TaskService manages evaluation task lifecycle
type TaskService struct {
	tasks    *mysql.TaskRepository
	subtasks *mysql.SubtaskRepository
	eventSvc *EventService
}

// NewTaskService creates a new task service
func NewTaskService(tasks *mysql.TaskRepository, subtasks *mysql.SubtaskRepository, eventSvc *EventService) *TaskService {
	return &TaskService{
		tasks:    tasks,
		subtasks: subtasks,
		eventSvc: eventSvc,
	}
}

// CreateTask creates a new evaluation task in pending state. The subtask
// grid is generated separately so a misconfigured task can be inspected and
// fixed before any work materializes.
func (s *TaskService) CreateTask(ctx context.Context, req *model.CreateTaskRequest) (*model.EvalTask, error) {
	task := &model.EvalTask{
		ID:          uuid.New().String(),
		TemplateID:  req.TemplateID,
		RunCount:    req.RunCount,
		ModelIDs:    req.ModelIDs,
		TestCaseIDs: req.TestCaseIDs,
		Status:      constants.TaskStatusPending,
	}

	if err := s.tasks.Create(ctx, mysql.FromTaskDomain(task)); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.eventSvc.Record(ctx, task.ID, 0, model.EventTaskCreated,
		fmt.Sprintf("template=%s runs=%d models=%d", task.TemplateID, task.RunCount, len(task.ModelIDs)))

	logger.InfoCtx(ctx, "task created, task_id: %s, template: %s", task.ID, task.TemplateID)
	return task, nil
}

// GetTask retrieves one task; returns nil when not found.
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*model.EvalTask, error) {
	row, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return mysql.ToTaskDomain(row), nil
}

// GetTaskStatus retrieves a task with its subtask progress counts.
func (s *TaskService) GetTaskStatus(ctx context.Context, taskID string) (*model.TaskStatusResponse, error) {
	row, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	counts, err := s.subtasks.CountByTaskAndStatus(ctx, taskID)
	if err != nil {
		return nil, err
	}

	sub := model.SubtaskCounts{
		Pending:   counts[constants.SubtaskStatusPending.String()],
		Running:   counts[constants.SubtaskStatusRunning.String()],
		Completed: counts[constants.SubtaskStatusCompleted.String()],
		Failed:    counts[constants.SubtaskStatusFailed.String()] + counts[constants.SubtaskStatusError.String()],
	}
	sub.Total = sub.Pending + sub.Running + sub.Completed + sub.Failed

	return &model.TaskStatusResponse{
		ID:         row.TaskID,
		TemplateID: row.TemplateID,
		Status:     constants.TaskStatus(row.Status),
		RunCount:   row.RunCount,
		Subtasks:   sub,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}

// ListTasks retrieves tasks, newest first.
func (s *TaskService) ListTasks(ctx context.Context, limit, offset int) ([]*model.EvalTask, error) {
	rows, err := s.tasks.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*model.EvalTask, len(rows))
	for i, row := range rows {
		out[i] = mysql.ToTaskDomain(row)
	}
	return out, nil
}

// ListSubtasks retrieves a task's subtasks with optional filters.
func (s *TaskService) ListSubtasks(ctx context.Context, taskID string, filter model.SubtaskFilter) ([]model.SubTask, error) {
	statuses := make([]string, len(filter.Statuses))
	for i, st := range filter.Statuses {
		statuses[i] = st.String()
	}

	rows, err := s.subtasks.ListByTask(ctx, taskID, statuses, filter.ModelID, filter.DimensionID)
	if err != nil {
		return nil, err
	}
	return mysql.ToSubtaskDomainList(rows), nil
}
