package mysql

import (
	"context"
	"fmt"

	mysqlModel "evalgrid/pkg/store/mysql/model"

	"gorm.io/gorm"
)

// TaskRepository handles evaluation task persistence in MySQL
type TaskRepository struct {
	ds *Datastore
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(ds *Datastore) *TaskRepository {
	return &TaskRepository{ds: ds}
}

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, task *mysqlModel.EvalTask) error {
	return r.ds.DB(ctx).Create(task).Error
}

// Get retrieves a task by task_id; returns nil when not found.
func (r *TaskRepository) Get(ctx context.Context, taskID string) (*mysqlModel.EvalTask, error) {
	var task mysqlModel.EvalTask
	err := r.ds.DB(ctx).Where("task_id = ?", taskID).First(&task).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

// UpdateStatus updates task status with atomic state transition (CAS).
// Returns error if the task is missing or its current status does not match
// fromStatus.
func (r *TaskRepository) UpdateStatus(ctx context.Context, taskID string, fromStatus, toStatus string) error {
	result := r.ds.DB(ctx).Model(&mysqlModel.EvalTask{}).
		Where("task_id = ? AND status = ?", taskID, fromStatus).
		Update("status", toStatus)

	if result.Error != nil {
		return fmt.Errorf("failed to update task status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("task not found or invalid status transition: task_id=%s, from=%s, to=%s", taskID, fromStatus, toStatus)
	}

	return nil
}

// UpdateStatusUnsafe updates task status without checking the current one.
func (r *TaskRepository) UpdateStatusUnsafe(ctx context.Context, taskID string, status string) error {
	return r.ds.DB(ctx).Model(&mysqlModel.EvalTask{}).
		Where("task_id = ?", taskID).
		Update("status", status).Error
}

// List retrieves tasks ordered by creation time, newest first.
func (r *TaskRepository) List(ctx context.Context, limit, offset int) ([]*mysqlModel.EvalTask, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []*mysqlModel.EvalTask
	err := r.ds.DB(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return rows, nil
}
