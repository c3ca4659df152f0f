package asynq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"evalgrid/internal/model"
	"evalgrid/pkg/config"
	"evalgrid/pkg/logger"

	"github.com/hibiken/asynq"
)

const (
	TypeSubtaskExecute = "subtask:execute"
)

// Manager queue manager
type Manager struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewManager creates queue manager
func NewManager(cfg *config.Config) (*Manager, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Queue.Concurrency,
			Queues: map[string]int{
				"default": 10,
			},
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return time.Duration(n) * time.Second
			},
		},
	)

	mux := asynq.NewServeMux()

	return &Manager{
		client: client,
		server: server,
		mux:    mux,
	}, nil
}

// EnqueueExecution enqueues an execution request for one subtask attempt.
// The asynq task ID includes the attempt number so that a retry of the same
// subtask is never deduplicated against its earlier delivery.
func (m *Manager) EnqueueExecution(ctx context.Context, req *model.ExecutionRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal execution request: %w", err)
	}

	asynqTask := asynq.NewTask(TypeSubtaskExecute, payload)

	opts := []asynq.Option{
		asynq.TaskID(fmt.Sprintf("%d:%d", req.SubtaskID, req.Attempt)),
		asynq.Timeout(time.Duration(config.GlobalConfig.Queue.DispatchTimeout) * time.Second),
		asynq.MaxRetry(config.GlobalConfig.Queue.MaxRetry),
	}

	info, err := m.client.EnqueueContext(ctx, asynqTask, opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue execution: %w", err)
	}

	logger.InfoCtx(ctx, "execution enqueued, subtask_id: %d, attempt: %d, queue: %s",
		req.SubtaskID, req.Attempt, info.Queue)

	return nil
}

// CancelExecution removes a pending execution from the queue.
func (m *Manager) CancelExecution(subtaskID uint, attempt int) error {
	inspector := asynq.NewInspector(asynq.RedisClientOpt{
		Addr:     config.GlobalConfig.Redis.Addr,
		Password: config.GlobalConfig.Redis.Password,
		DB:       config.GlobalConfig.Redis.DB,
	})
	defer inspector.Close()

	taskID := fmt.Sprintf("%d:%d", subtaskID, attempt)
	if err := inspector.DeleteTask("default", taskID); err != nil {
		return fmt.Errorf("failed to cancel execution: %w", err)
	}

	logger.InfoCtx(context.Background(), "execution cancelled, subtask_id: %d, attempt: %d", subtaskID, attempt)
	return nil
}

// RegisterHandler registers task handler
func (m *Manager) RegisterHandler(pattern string, handler asynq.Handler) {
	m.mux.Handle(pattern, handler)
}

// Start starts queue processor
func (m *Manager) Start() error {
	logger.InfoCtx(context.Background(), "starting queue server")
	return m.server.Start(m.mux)
}

// Stop stops queue processor
func (m *Manager) Stop() {
	logger.InfoCtx(context.Background(), "stopping queue server")
	m.server.Stop()
	m.server.Shutdown()
}

// Close closes client
func (m *Manager) Close() error {
	return m.client.Close()
}

// GetPendingCount retrieves pending execution count
func (m *Manager) GetPendingCount() (int, error) {
	inspector := asynq.NewInspector(asynq.RedisClientOpt{
		Addr:     config.GlobalConfig.Redis.Addr,
		Password: config.GlobalConfig.Redis.Password,
		DB:       config.GlobalConfig.Redis.DB,
	})
	defer inspector.Close()

	stats, err := inspector.GetQueueInfo("default")
	if err != nil {
		return 0, err
	}

	return stats.Pending, nil
}
