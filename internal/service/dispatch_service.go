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

// DispatchService pushes pending subtasks toward the executor fleet.
type DispatchService struct {
	tasks    *mysql.TaskRepository
	subtasks *mysql.SubtaskRepository
	catalog  *CatalogService
	executor Executor
	eventSvc *EventService
}

// NewDispatchService creates a new dispatch service
func NewDispatchService(
	tasks *mysql.TaskRepository,
	subtasks *mysql.SubtaskRepository,
	catalog *CatalogService,
	executor Executor,
	eventSvc *EventService,
) *DispatchService {
	return &DispatchService{
		tasks:    tasks,
		subtasks: subtasks,
		catalog:  catalog,
		executor: executor,
		eventSvc: eventSvc,
	}
}

// StartTask dispatches all pending subtasks of a generated task and moves
// the task to running. Returns the number of subtasks dispatched.
func (s *DispatchService) StartTask(ctx context.Context, taskID string) (int, error) {
	row, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return 0, err
	}
	if row == nil {
		return 0, fmt.Errorf("task not found: %s", taskID)
	}

	pending, err := s.subtasks.ListByTask(ctx, taskID,
		[]string{constants.SubtaskStatusPending.String()}, 0, "")
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, fmt.Errorf("task has no pending subtasks: %s", taskID)
	}

	logicalNames, err := s.logicalNamesFor(ctx, pending)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, sub := range pending {
		if err := s.dispatchOne(ctx, sub, logicalNames[sub.ModelID], 0, "", nil); err != nil {
			logger.WarnCtx(ctx, "failed to dispatch subtask %d: %v", sub.ID, err)
			continue
		}
		dispatched++
	}

	if dispatched > 0 {
		if err := s.tasks.UpdateStatus(ctx, taskID,
			constants.TaskStatusGenerated.String(), constants.TaskStatusRunning.String()); err != nil {
			logger.WarnCtx(ctx, "task %s status not advanced to RUNNING: %v", taskID, err)
		}
	}

	logger.InfoCtx(ctx, "task started, task_id: %s, dispatched: %d/%d", taskID, dispatched, len(pending))
	return dispatched, nil
}

// dispatchOne moves a subtask into running and hands it to the executor.
// attempt 0 means first execution (does not count as a retry).
func (s *DispatchService) dispatchOne(ctx context.Context, sub *mysqlModel.SubTask, logicalName string, attempt int, evaluatorOverride string, excludeVendorIDs []uint) error {
	now := time.Now()
	if attempt == 0 {
		if err := s.subtasks.MarkFirstDispatch(ctx, sub.ID, now); err != nil {
			return err
		}
	} else {
		if err := s.subtasks.MarkDispatched(ctx, sub.ID, now); err != nil {
			return err
		}
	}

	evaluatorID := sub.EvaluatorID
	if evaluatorOverride != "" {
		evaluatorID = evaluatorOverride
	}

	req := &model.ExecutionRequest{
		SubtaskID:        sub.ID,
		TaskID:           sub.TaskID,
		LogicalName:      logicalName,
		DimensionID:      sub.DimensionID,
		EvaluatorID:      evaluatorID,
		TestCaseID:       sub.TestCaseID,
		RunIndex:         sub.RunIndex,
		Attempt:          attempt,
		ExcludeVendorIDs: excludeVendorIDs,
	}

	if err := s.executor.Execute(ctx, req); err != nil {
		// Dispatch failures are infrastructure errors; park the row in ERROR
		// so a retry pass picks it up
		if markErr := s.subtasks.CompleteRunning(ctx, sub.ID,
			constants.SubtaskStatusError.String(), 0, "dispatch failed: "+err.Error(), false, time.Now()); markErr != nil {
			logger.ErrorCtx(ctx, "failed to park subtask %d after dispatch error: %v", sub.ID, markErr)
		}
		return err
	}

	s.eventSvc.Record(ctx, sub.TaskID, sub.ID, model.EventSubtaskDispatched,
		fmt.Sprintf("attempt=%d model=%s", attempt, logicalName))
	return nil
}

// logicalNamesFor resolves each subtask's generation-time model id to its
// logical name for the execution request.
func (s *DispatchService) logicalNamesFor(ctx context.Context, subs []*mysqlModel.SubTask) (map[uint]string, error) {
	idSet := make(map[uint]bool, len(subs))
	ids := make([]uint, 0, len(subs))
	for _, sub := range subs {
		if !idSet[sub.ModelID] {
			idSet[sub.ModelID] = true
			ids = append(ids, sub.ModelID)
		}
	}

	byID, err := s.catalog.ModelsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[uint]string, len(byID))
	for id, m := range byID {
		name := m.LogicalName
		if name == "" {
			name = selector.ExtractLogicalName(m.Name)
		}
		out[id] = name
	}
	return out, nil
}
