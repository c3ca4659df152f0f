package service

import (
	"context"

	"evalgrid/internal/model"
	"evalgrid/pkg/queue/asynq"
)

// Executor is the dispatch port toward the external executor fleet. The
// executor runs the evaluation (performing its own vendor selection, honoring
// the exclusion set) and reports back through the result ingestion endpoint.
type Executor interface {
	Execute(ctx context.Context, req *model.ExecutionRequest) error
}

// QueueExecutor dispatches execution requests through the asynq queue.
type QueueExecutor struct {
	queue *asynq.Manager
}

// NewQueueExecutor creates an executor backed by the dispatch queue
func NewQueueExecutor(queue *asynq.Manager) *QueueExecutor {
	return &QueueExecutor{queue: queue}
}

// Execute enqueues one execution request.
func (e *QueueExecutor) Execute(ctx context.Context, req *model.ExecutionRequest) error {
	return e.queue.EnqueueExecution(ctx, req)
}
