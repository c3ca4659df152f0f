package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"evalgrid/pkg/constants"
	mysqlModel "evalgrid/pkg/store/mysql/model"

	"gorm.io/gorm"
)

// ErrDuplicateSubtask signals a unique-constraint violation on the
// generation key tuple: the task's grid (or part of it) already exists.
var ErrDuplicateSubtask = errors.New("subtask already exists for generation key")

// SubtaskRepository handles subtask persistence in MySQL
type SubtaskRepository struct {
	ds *Datastore
}

// NewSubtaskRepository creates a new subtask repository
func NewSubtaskRepository(ds *Datastore) *SubtaskRepository {
	return &SubtaskRepository{ds: ds}
}

// BatchCreate inserts the full subtask grid for a task inside one
// transaction: either all rows land or none do. A duplicate-key error is
// mapped to ErrDuplicateSubtask so callers can treat a concurrent
// generation as "already generated" instead of a failure.
func (r *SubtaskRepository) BatchCreate(ctx context.Context, rows []*mysqlModel.SubTask) error {
	if len(rows) == 0 {
		return nil
	}

	err := r.ds.ExecTx(ctx, func(txCtx context.Context) error {
		return r.ds.DB(txCtx).CreateInBatches(rows, 200).Error
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateSubtask
		}
		return fmt.Errorf("failed to insert subtasks: %w", err)
	}
	return nil
}

// isDuplicateKeyError detects MySQL unique-constraint violations, both via
// gorm's translated error and the raw 1062 message.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}

// CountByTask counts all subtasks of a task.
func (r *SubtaskRepository) CountByTask(ctx context.Context, taskID string) (int64, error) {
	var count int64
	err := r.ds.DB(ctx).Model(&mysqlModel.SubTask{}).
		Where("task_id = ?", taskID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count subtasks: %w", err)
	}
	return count, nil
}

// CountByTaskAndStatus counts a task's subtasks per status.
func (r *SubtaskRepository) CountByTaskAndStatus(ctx context.Context, taskID string) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.ds.DB(ctx).Model(&mysqlModel.SubTask{}).
		Select("status, COUNT(*) as count").
		Where("task_id = ?", taskID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count subtasks by status: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

// ListByTask retrieves a task's subtasks with optional status/model/dimension filters.
func (r *SubtaskRepository) ListByTask(ctx context.Context, taskID string, statuses []string, modelID uint, dimensionID string) ([]*mysqlModel.SubTask, error) {
	query := r.ds.DB(ctx).Where("task_id = ?", taskID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if modelID > 0 {
		query = query.Where("model_id = ?", modelID)
	}
	if dimensionID != "" {
		query = query.Where("dimension_id = ?", dimensionID)
	}

	var rows []*mysqlModel.SubTask
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}
	return rows, nil
}

// GetByIDs retrieves subtasks by primary key.
func (r *SubtaskRepository) GetByIDs(ctx context.Context, ids []uint) ([]*mysqlModel.SubTask, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []*mysqlModel.SubTask
	if err := r.ds.DB(ctx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get subtasks by ids: %w", err)
	}
	return rows, nil
}

// Get retrieves one subtask; returns nil when not found.
func (r *SubtaskRepository) Get(ctx context.Context, id uint) (*mysqlModel.SubTask, error) {
	var row mysqlModel.SubTask
	err := r.ds.DB(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subtask: %w", err)
	}
	return &row, nil
}

// DeleteByTask removes all subtasks of a task. Used as compensating cleanup
// when generation fails after a partial insert.
func (r *SubtaskRepository) DeleteByTask(ctx context.Context, taskID string) error {
	return r.ds.DB(ctx).Where("task_id = ?", taskID).Delete(&mysqlModel.SubTask{}).Error
}

// MarkDispatched moves a retryable subtask into RUNNING and bumps its retry
// count. The status guard is a CAS: completed rows can never be
// re-dispatched, whatever the caller passed.
func (r *SubtaskRepository) MarkDispatched(ctx context.Context, id uint, now time.Time) error {
	result := r.ds.DB(ctx).Model(&mysqlModel.SubTask{}).
		Where("id = ? AND status IN ?", id, []string{
			constants.SubtaskStatusPending.String(),
			constants.SubtaskStatusFailed.String(),
			constants.SubtaskStatusError.String(),
		}).
		Updates(map[string]interface{}{
			"status":      constants.SubtaskStatusRunning.String(),
			"retry_count": gorm.Expr("retry_count + 1"),
			"started_at":  now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark subtask dispatched: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("subtask not dispatchable (missing or already running/completed): id=%d", id)
	}
	return nil
}

// MarkFirstDispatch moves a pending subtask into RUNNING without counting a
// retry. Used for the initial execution pass.
func (r *SubtaskRepository) MarkFirstDispatch(ctx context.Context, id uint, now time.Time) error {
	result := r.ds.DB(ctx).Model(&mysqlModel.SubTask{}).
		Where("id = ? AND status = ?", id, constants.SubtaskStatusPending.String()).
		Updates(map[string]interface{}{
			"status":     constants.SubtaskStatusRunning.String(),
			"started_at": now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark subtask dispatched: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("subtask not pending: id=%d", id)
	}
	return nil
}

// CompleteRunning finishes a RUNNING subtask with the executor's outcome.
// CAS on RUNNING keeps duplicate result deliveries harmless.
func (r *SubtaskRepository) CompleteRunning(ctx context.Context, id uint, status string, vendorID uint, errorMessage string, isTimeout bool, now time.Time) error {
	result := r.ds.DB(ctx).Model(&mysqlModel.SubTask{}).
		Where("id = ? AND status = ?", id, constants.SubtaskStatusRunning.String()).
		Updates(map[string]interface{}{
			"status":        status,
			"vendor_id":     vendorID,
			"error_message": errorMessage,
			"is_timeout":    isTimeout,
			"completed_at":  now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to complete subtask: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("subtask not running: id=%d", id)
	}
	return nil
}

// RecordLateVendor attaches the vendor identity to a terminal subtask that
// never saw a result, typically one the stale sweeper already failed. CAS
// on vendor_id = 0: the first late delivery wins, duplicates are no-ops.
// Returns whether this call recorded the vendor.
func (r *SubtaskRepository) RecordLateVendor(ctx context.Context, id uint, vendorID uint) (bool, error) {
	result := r.ds.DB(ctx).Model(&mysqlModel.SubTask{}).
		Where("id = ? AND vendor_id = 0 AND status IN ?", id, []string{
			constants.SubtaskStatusFailed.String(),
			constants.SubtaskStatusError.String(),
		}).
		Update("vendor_id", vendorID)

	if result.Error != nil {
		return false, fmt.Errorf("failed to record late vendor: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// MarkStaleRunningFailed fails RUNNING subtasks started before the cutoff,
// recording a timeout-shaped error message so the failure analyzer
// classifies them as transient. Returns the affected subtask ids.
func (r *SubtaskRepository) MarkStaleRunningFailed(ctx context.Context, cutoff time.Time) ([]uint, error) {
	var ids []uint
	err := r.ds.DB(ctx).Model(&mysqlModel.SubTask{}).
		Where("status = ? AND started_at < ?", constants.SubtaskStatusRunning.String(), cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find stale subtasks: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	err = r.ds.DB(ctx).Model(&mysqlModel.SubTask{}).
		Where("id IN ? AND status = ?", ids, constants.SubtaskStatusRunning.String()).
		Updates(map[string]interface{}{
			"status":        constants.SubtaskStatusFailed.String(),
			"error_message": "execution timed out waiting for executor result",
			"is_timeout":    true,
		}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to mark stale subtasks: %w", err)
	}
	return ids, nil
}
