package service

import (
	"context"
	"fmt"
	"time"

	"evalgrid/internal/model"
	"evalgrid/internal/selector"
	"evalgrid/pkg/constants"
	"evalgrid/pkg/logger"
	"evalgrid/pkg/store/mysql"
	mysqlModel "evalgrid/pkg/store/mysql/model"
)

// ResultService ingests execution outcomes reported by the external
// executor fleet and folds them into subtask state and vendor health.
type ResultService struct {
	tasks    *mysql.TaskRepository
	subtasks *mysql.SubtaskRepository
	registry *selector.HealthRegistry
	eventSvc *EventService
}

// NewResultService creates a new result service
func NewResultService(tasks *mysql.TaskRepository, subtasks *mysql.SubtaskRepository, registry *selector.HealthRegistry, eventSvc *EventService) *ResultService {
	return &ResultService{
		tasks:    tasks,
		subtasks: subtasks,
		registry: registry,
		eventSvc: eventSvc,
	}
}

// Ingest applies one executor result. The status update is a CAS on RUNNING,
// so a duplicate delivery of the same result is a logged no-op; a completed
// subtask can never regress.
func (s *ResultService) Ingest(ctx context.Context, subtaskID uint, res *model.ExecutionResult) error {
	sub, err := s.subtasks.Get(ctx, subtaskID)
	if err != nil {
		return err
	}
	if sub == nil {
		return fmt.Errorf("subtask not found: %d", subtaskID)
	}

	status := constants.SubtaskStatusCompleted
	eventType := model.EventSubtaskCompleted
	if !res.Success {
		status = constants.SubtaskStatusFailed
		eventType = model.EventSubtaskFailed
	}

	isTimeout := res.IsTimeout || IsTimeoutMessage(res.Error)
	if err := s.subtasks.CompleteRunning(ctx, subtaskID, status.String(), res.VendorID, res.Error, isTimeout, time.Now()); err != nil {
		s.reconcileLateResult(ctx, sub, res)
		return nil
	}

	s.applyVendorOutcome(res)

	s.eventSvc.Record(ctx, sub.TaskID, subtaskID, eventType,
		fmt.Sprintf("vendor=%d duration_ms=%d success=%t", res.VendorID, res.DurationMs, res.Success))

	s.maybeFinalizeTask(ctx, sub.TaskID)
	return nil
}

// reconcileLateResult handles a result whose subtask already left RUNNING.
// When the stale sweeper beat the executor to the row, the selection-time
// load slot was never released; the late result still names the vendor, so
// record it and release the slot. A true duplicate delivery already carries
// a recorded vendor and is dropped.
func (s *ResultService) reconcileLateResult(ctx context.Context, sub *mysqlModel.SubTask, res *model.ExecutionResult) {
	// Re-read: the sweeper may have moved the row after the initial load
	if fresh, err := s.subtasks.Get(ctx, sub.ID); err == nil && fresh != nil {
		sub = fresh
	}
	if !lateResultEligible(sub, res) {
		logger.WarnCtx(ctx, "result for subtask %d dropped (duplicate delivery or stale attempt)", sub.ID)
		return
	}

	recorded, err := s.subtasks.RecordLateVendor(ctx, sub.ID, res.VendorID)
	if err != nil {
		logger.ErrorCtx(ctx, "failed to record late vendor for subtask %d: %v", sub.ID, err)
		return
	}
	if !recorded {
		logger.WarnCtx(ctx, "result for subtask %d dropped (vendor already recorded)", sub.ID)
		return
	}

	s.applyVendorOutcome(res)
	logger.InfoCtx(ctx, "late result reconciled, subtask_id: %d, vendor_id: %d", sub.ID, res.VendorID)
}

// lateResultEligible reports whether a non-RUNNING subtask may still accept
// this result's vendor bookkeeping: the row is terminal without a vendor
// and the result names one.
func lateResultEligible(sub *mysqlModel.SubTask, res *model.ExecutionResult) bool {
	if res.VendorID == 0 || sub.VendorID != 0 {
		return false
	}
	status := constants.SubtaskStatus(sub.Status)
	return status == constants.SubtaskStatusFailed || status == constants.SubtaskStatusError
}

// applyVendorOutcome releases the load slot taken at selection time and
// folds the outcome into the vendor's health state.
func (s *ResultService) applyVendorOutcome(res *model.ExecutionResult) {
	if res.VendorID == 0 {
		return
	}
	s.registry.UpdateLoad(res.VendorID, -1)
	if res.DurationMs > 0 {
		s.registry.ObserveResponseTime(res.VendorID, time.Duration(res.DurationMs)*time.Millisecond)
	}
	if res.Success {
		s.registry.RecordSuccess(res.VendorID)
	} else {
		s.registry.RecordFailure(res.VendorID)
	}
}

// maybeFinalizeTask moves the task out of RUNNING once no subtask is pending
// or in flight. Best effort: a missed transition is repaired by the next
// result or the stale sweeper.
func (s *ResultService) maybeFinalizeTask(ctx context.Context, taskID string) {
	counts, err := s.subtasks.CountByTaskAndStatus(ctx, taskID)
	if err != nil {
		logger.WarnCtx(ctx, "failed to count subtasks for task %s: %v", taskID, err)
		return
	}

	open := counts[constants.SubtaskStatusPending.String()] + counts[constants.SubtaskStatusRunning.String()]
	if open > 0 {
		return
	}

	final := constants.TaskStatusCompleted
	if counts[constants.SubtaskStatusFailed.String()]+counts[constants.SubtaskStatusError.String()] > 0 {
		final = constants.TaskStatusFailed
	}

	if err := s.tasks.UpdateStatus(ctx, taskID,
		constants.TaskStatusRunning.String(), final.String()); err != nil {
		logger.DebugCtx(ctx, "task %s not finalized: %v", taskID, err)
		return
	}
	logger.InfoCtx(ctx, "task finalized, task_id: %s, status: %s", taskID, final)
}
