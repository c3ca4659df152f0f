package service

import (
	"context"
	"fmt"
	"sync"

	"evalgrid/internal/model"
	"evalgrid/internal/selector"
	"evalgrid/pkg/constants"
	"evalgrid/pkg/logger"
	"evalgrid/pkg/store/mysql"
	mysqlModel "evalgrid/pkg/store/mysql/model"
)

// RetryService re-dispatches the failed members of a task. Completed
// subtasks are never touched; the retry cap bounds automatic re-execution.
type RetryService struct {
	tasks      *mysql.TaskRepository
	subtasks   *mysql.SubtaskRepository
	dispatch   *DispatchService
	registry   *selector.HealthRegistry
	eventSvc   *EventService
	maxRetries int
}

// NewRetryService creates a new retry service
func NewRetryService(
	tasks *mysql.TaskRepository,
	subtasks *mysql.SubtaskRepository,
	dispatch *DispatchService,
	registry *selector.HealthRegistry,
	eventSvc *EventService,
	maxRetries int,
) *RetryService {
	if maxRetries <= 0 {
		maxRetries = 2
	}
	return &RetryService{
		tasks:      tasks,
		subtasks:   subtasks,
		dispatch:   dispatch,
		registry:   registry,
		eventSvc:   eventSvc,
		maxRetries: maxRetries,
	}
}

// Retry re-dispatches a task's retryable subtasks concurrently and waits for
// every dispatch to settle. Partial success is a result, not an error.
func (s *RetryService) Retry(ctx context.Context, taskID string, req *model.RetryRequest) (*model.RetryOutcome, error) {
	row, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("task not found: %s", taskID)
	}

	candidates, err := s.loadCandidates(ctx, taskID, req.SubtaskIDs)
	if err != nil {
		return nil, err
	}

	retryable, rejected := classifyRetryCandidates(candidates, s.maxRetries)
	outcome := &model.RetryOutcome{Failed: rejected}

	if len(retryable) == 0 {
		return outcome, nil
	}

	if req.ResetVendorHistory {
		s.registry.ResetAll(implicatedVendors(retryable, req.ExcludeVendorIDs))
	}

	logicalNames, err := s.dispatch.logicalNamesFor(ctx, retryable)
	if err != nil {
		return nil, err
	}

	s.eventSvc.Record(ctx, taskID, 0, model.EventRetryStarted,
		fmt.Sprintf("subtasks=%d exclude_vendors=%d", len(retryable), len(req.ExcludeVendorIDs)))

	// All-settled concurrent dispatch: every subtask gets its attempt and
	// individual failures land in the outcome, never abort the pass
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, sub := range retryable {
		wg.Add(1)
		go func(sub *mysqlModel.SubTask) {
			defer wg.Done()

			err := s.dispatch.dispatchOne(ctx, sub, logicalNames[sub.ModelID],
				sub.RetryCount+1, req.EvaluatorOverride, req.ExcludeVendorIDs)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				outcome.Failed = append(outcome.Failed, model.RetryFailure{
					SubtaskID: sub.ID,
					Error:     err.Error(),
				})
				return
			}
			outcome.Succeeded++
		}(sub)
	}
	wg.Wait()

	if outcome.Succeeded > 0 {
		if err := s.tasks.UpdateStatusUnsafe(ctx, taskID, constants.TaskStatusRunning.String()); err != nil {
			logger.WarnCtx(ctx, "task %s status not moved to RUNNING after retry: %v", taskID, err)
		}
	}

	logger.InfoCtx(ctx, "retry pass finished, task_id: %s, succeeded: %d, failed: %d",
		taskID, outcome.Succeeded, len(outcome.Failed))
	return outcome, nil
}

// classifyRetryCandidates splits candidates into dispatchable subtasks and
// rejections. Only failed/error rows under the retry cap pass; completed and
// in-flight rows are rejected, never re-dispatched.
func classifyRetryCandidates(candidates []*mysqlModel.SubTask, maxRetries int) ([]*mysqlModel.SubTask, []model.RetryFailure) {
	retryable := make([]*mysqlModel.SubTask, 0, len(candidates))
	rejected := []model.RetryFailure{}
	for _, sub := range candidates {
		if !constants.SubtaskStatus(sub.Status).IsRetryable() {
			rejected = append(rejected, model.RetryFailure{
				SubtaskID: sub.ID,
				Error:     "subtask is not in a retryable state: " + sub.Status,
			})
			continue
		}
		if sub.RetryCount >= maxRetries {
			rejected = append(rejected, model.RetryFailure{
				SubtaskID: sub.ID,
				Error:     fmt.Sprintf("retry limit reached (%d/%d)", sub.RetryCount, maxRetries),
			})
			continue
		}
		retryable = append(retryable, sub)
	}
	return retryable, rejected
}

// loadCandidates returns the requested subtasks, or every failed/error
// subtask of the task when no explicit ids were given.
func (s *RetryService) loadCandidates(ctx context.Context, taskID string, ids []uint) ([]*mysqlModel.SubTask, error) {
	if len(ids) == 0 {
		return s.subtasks.ListByTask(ctx, taskID, []string{
			constants.SubtaskStatusFailed.String(),
			constants.SubtaskStatusError.String(),
		}, 0, "")
	}

	rows, err := s.subtasks.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	// Ids from the request are untrusted; drop anything outside the task
	out := make([]*mysqlModel.SubTask, 0, len(rows))
	for _, sub := range rows {
		if sub.TaskID == taskID {
			out = append(out, sub)
		}
	}
	return out, nil
}

// implicatedVendors collects the distinct vendors to forgive: those that
// executed a failed subtask plus the explicitly excluded ones.
func implicatedVendors(subs []*mysqlModel.SubTask, excludeIDs []uint) []uint {
	seen := make(map[uint]bool)
	out := make([]uint, 0, len(subs))
	for _, sub := range subs {
		if sub.VendorID != 0 && !seen[sub.VendorID] {
			seen[sub.VendorID] = true
			out = append(out, sub.VendorID)
		}
	}
	for _, id := range excludeIDs {
		if id != 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
