package service

import (
	"context"
	"errors"
	"fmt"

	"evalgrid/internal/model"
	"evalgrid/internal/selector"
	"evalgrid/pkg/constants"
	"evalgrid/pkg/logger"
	"evalgrid/pkg/store/mysql"
	mysqlModel "evalgrid/pkg/store/mysql/model"
	redisstore "evalgrid/pkg/store/redis"
)

// GenerationService materializes a task's subtask grid exactly once.
//
// Idempotency is layered: an existing-count pre-check handles the common
// case, a per-task Redis lock keeps concurrent generators from duplicating
// the insert work, and the composite unique index on the generation key
// tuple is the authoritative backstop when both miss.
type GenerationService struct {
	tasks    *mysql.TaskRepository
	subtasks *mysql.SubtaskRepository
	mappings *mysql.MappingRepository
	catalog  *CatalogService
	grouper  *selector.Grouper
	lock     *redisstore.GenerationLock
	eventSvc *EventService
}

// NewGenerationService creates a new generation service
func NewGenerationService(
	tasks *mysql.TaskRepository,
	subtasks *mysql.SubtaskRepository,
	mappings *mysql.MappingRepository,
	catalog *CatalogService,
	grouper *selector.Grouper,
	lock *redisstore.GenerationLock,
	eventSvc *EventService,
) *GenerationService {
	return &GenerationService{
		tasks:    tasks,
		subtasks: subtasks,
		mappings: mappings,
		catalog:  catalog,
		grouper:  grouper,
		lock:     lock,
		eventSvc: eventSvc,
	}
}

// Generate creates the full subtask grid for a task:
// run 1..RunCount x logical model groups x template dimensions x effective
// test cases. Calling it again for the same task returns the existing count
// with AlreadyExists set, whatever state the task is in.
func (s *GenerationService) Generate(ctx context.Context, taskID string) (*model.GenerationResult, error) {
	row, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("task not found: %s", taskID)
	}
	task := mysql.ToTaskDomain(row)

	acquired, err := s.lock.Acquire(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("generation lock error: %w", err)
	}
	if !acquired {
		// The holder outlived the wait. If its grid is already committed
		// this is plain idempotent re-generation; only a holder still
		// mid-flight surfaces as a conflict.
		count, countErr := s.subtasks.CountByTask(ctx, taskID)
		if countErr == nil && count > 0 {
			return &model.GenerationResult{Created: int(count), AlreadyExists: true}, nil
		}
		return nil, model.NewGenerationConflictError(taskID)
	}
	defer func() {
		if err := s.lock.Unlock(context.Background(), taskID); err != nil {
			logger.WarnCtx(ctx, "failed to release generation lock for task %s: %v", taskID, err)
		}
	}()

	existing, err := s.subtasks.CountByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		logger.InfoCtx(ctx, "subtasks already generated, task_id: %s, count: %d", taskID, existing)
		return &model.GenerationResult{Created: int(existing), AlreadyExists: true}, nil
	}

	rows, err := s.buildGrid(ctx, task)
	if err != nil {
		return nil, err
	}

	if err := s.subtasks.BatchCreate(ctx, rows); err != nil {
		if errors.Is(err, mysql.ErrDuplicateSubtask) {
			// Lost the race to a concurrent generator; its grid is ours too
			count, countErr := s.subtasks.CountByTask(ctx, taskID)
			if countErr != nil {
				return nil, countErr
			}
			return &model.GenerationResult{Created: int(count), AlreadyExists: true}, nil
		}
		// The batch insert is transactional, but clean up in case the
		// failure left committed rows behind (e.g. lost connection mid-commit)
		if cleanupErr := s.subtasks.DeleteByTask(ctx, taskID); cleanupErr != nil {
			logger.ErrorCtx(ctx, "failed to clean up partial generation for task %s: %v", taskID, cleanupErr)
		}
		return nil, err
	}

	if err := s.tasks.UpdateStatus(ctx, taskID,
		constants.TaskStatusPending.String(), constants.TaskStatusGenerated.String()); err != nil {
		logger.WarnCtx(ctx, "task %s status not advanced to GENERATED: %v", taskID, err)
	}

	s.eventSvc.Record(ctx, taskID, 0, model.EventSubtasksGenerated,
		fmt.Sprintf("count=%d", len(rows)))

	logger.InfoCtx(ctx, "subtasks generated, task_id: %s, count: %d", taskID, len(rows))
	return &model.GenerationResult{Created: len(rows)}, nil
}

// buildGrid expands the task configuration into subtask rows.
func (s *GenerationService) buildGrid(ctx context.Context, task *model.EvalTask) ([]*mysqlModel.SubTask, error) {
	mappingRows, err := s.mappings.ListByTemplate(ctx, task.TemplateID)
	if err != nil {
		return nil, err
	}
	if len(mappingRows) == 0 {
		return nil, model.NewConfigError("no dimension mappings for template '" + task.TemplateID + "'")
	}
	mappings := mysql.ToMappingDomainList(mappingRows)

	models, err := s.catalog.GetModelsByIDs(ctx, task.ModelIDs)
	if err != nil {
		return nil, err
	}
	groups := s.grouper.GroupModels(models)
	if len(groups) == 0 {
		return nil, model.NewConfigError("no logical model groups resolvable from task model ids")
	}

	rows := make([]*mysqlModel.SubTask, 0, ExpectedCount(task.RunCount, len(groups), mappings, task.TestCaseIDs))
	for run := 1; run <= task.RunCount; run++ {
		for _, group := range groups {
			for _, mapping := range mappings {
				for _, testCaseID := range effectiveTestCases(mapping, task.TestCaseIDs) {
					rows = append(rows, &mysqlModel.SubTask{
						TaskID:      task.ID,
						TestCaseID:  testCaseID,
						ModelID:     group.PrimaryID,
						DimensionID: mapping.DimensionID,
						EvaluatorID: mapping.EvaluatorID,
						RunIndex:    run,
						Status:      constants.SubtaskStatusPending.String(),
					})
				}
			}
		}
	}

	if len(rows) == 0 {
		return nil, model.NewConfigError("generation grid is empty: no test cases selected")
	}
	return rows, nil
}

// effectiveTestCases returns the mapping's own test case set when present,
// the task-level selection otherwise.
func effectiveTestCases(mapping model.TemplateMapping, taskLevel []uint) []uint {
	if len(mapping.TestCaseIDs) > 0 {
		return mapping.TestCaseIDs
	}
	return taskLevel
}

// ExpectedCount is the generation grid size:
// runs x |groups| x sum over mappings of |effective test cases|.
func ExpectedCount(runCount, groupCount int, mappings []model.TemplateMapping, taskLevel []uint) int {
	perGroup := 0
	for _, mapping := range mappings {
		perGroup += len(effectiveTestCases(mapping, taskLevel))
	}
	return runCount * groupCount * perGroup
}
