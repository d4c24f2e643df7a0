package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	defaultPrefix       = "rentdesk"
	defaultMaxRetries   = 3
	defaultBaseDelay    = 5 * time.Second
	defaultQueueTimeout = 5 * time.Second
	defaultPollInterval = 2 * time.Second
	defaultMetricsTTL   = 24 * time.Hour
)

// RedisQueue implements Queue on a Redis list for ready tasks and a sorted set
// scored by execution time for delayed ones.
type RedisQueue struct {
	client          *redis.Client
	mainQueue       string
	delayedQueue    string
	processingQueue string
	dlq             string
	metricsPrefix   string
	retryManager    *RetryManager
	dlqHandler      DLQHandler
	config          *RedisQueueConfig
	stopChan        chan struct{}
	stopOnce        sync.Once
	startOnce       sync.Once
	wg              sync.WaitGroup
}

// RedisQueueConfig contains configuration for RedisQueue
type RedisQueueConfig struct {
	// Prefix namespaces every key the queue touches.
	Prefix string

	MaxRetries    int
	BaseDelay     time.Duration
	QueueTimeout  time.Duration
	PollInterval  time.Duration
	EnableDLQ     bool
	EnableMetrics bool
}

// DefaultRedisQueueConfig returns default configuration
func DefaultRedisQueueConfig() *RedisQueueConfig {
	return &RedisQueueConfig{
		Prefix:        defaultPrefix,
		MaxRetries:    defaultMaxRetries,
		BaseDelay:     defaultBaseDelay,
		QueueTimeout:  defaultQueueTimeout,
		PollInterval:  defaultPollInterval,
		EnableDLQ:     true,
		EnableMetrics: true,
	}
}

func (c *RedisQueueConfig) withDefaults() *RedisQueueConfig {
	out := *c
	if out.Prefix == "" {
		out.Prefix = defaultPrefix
	}
	if out.MaxRetries <= 0 {
		out.MaxRetries = defaultMaxRetries
	}
	if out.BaseDelay <= 0 {
		out.BaseDelay = defaultBaseDelay
	}
	if out.QueueTimeout <= 0 {
		out.QueueTimeout = defaultQueueTimeout
	}
	if out.PollInterval <= 0 {
		out.PollInterval = defaultPollInterval
	}
	return &out
}

// NewRedisQueue wraps an existing client. The caller keeps ownership of client.
func NewRedisQueue(client *redis.Client, cfg *RedisQueueConfig, retryManager *RetryManager, dlqHandler DLQHandler) (*RedisQueue, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg == nil {
		cfg = DefaultRedisQueueConfig()
	}
	cfg = cfg.withDefaults()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	q := &RedisQueue{
		client:          client,
		mainQueue:       cfg.Prefix + ":tasks",
		delayedQueue:    cfg.Prefix + ":tasks:delayed",
		processingQueue: cfg.Prefix + ":tasks:processing",
		dlq:             cfg.Prefix + ":dlq",
		metricsPrefix:   cfg.Prefix + ":metrics:",
		retryManager:    retryManager,
		dlqHandler:      dlqHandler,
		config:          cfg,
		stopChan:        make(chan struct{}),
	}
	if q.retryManager == nil {
		q.retryManager = NewRetryManager(cfg.MaxRetries, cfg.BaseDelay)
	}
	if q.dlqHandler == nil && cfg.EnableDLQ {
		q.dlqHandler = NewDefaultDLQHandler(client, q.dlq, q.mainQueue)
	}

	logrus.WithFields(logrus.Fields{
		"main":    q.mainQueue,
		"delayed": q.delayedQueue,
		"dlq":     q.dlq,
	}).Info("RedisQueue initialized")

	return q, nil
}

// Publish sends a task to the queue
func (r *RedisQueue) Publish(ctx context.Context, task *Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	if err := r.validateTask(task); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	taskData, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if task.ExecuteAt.After(time.Now()) {
		if err := r.client.ZAdd(ctx, r.delayedQueue, &redis.Z{
			Score:  score(task.ExecuteAt),
			Member: taskData,
		}).Err(); err != nil {
			return fmt.Errorf("failed to publish delayed task: %w", err)
		}
		r.incrementMetric(ctx, "tasks_delayed")
		logrus.WithFields(logrus.Fields{"task_id": task.ID, "execute_at": task.ExecuteAt}).Debug("task scheduled")
		return nil
	}

	if err := r.client.LPush(ctx, r.mainQueue, taskData).Err(); err != nil {
		return fmt.Errorf("failed to publish immediate task: %w", err)
	}
	r.incrementMetric(ctx, "tasks_queued")
	logrus.WithField("task_id", task.ID).Debug("task published")
	return nil
}

// Subscribe starts consuming tasks in the background until ctx ends or Close is called.
func (r *RedisQueue) Subscribe(ctx context.Context, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	started := false
	r.startOnce.Do(func() {
		started = true
		r.wg.Add(2)
		go r.processDelayedTasks(ctx)
		go r.processMainQueue(ctx, handler)
	})
	if !started {
		return fmt.Errorf("queue already has a subscriber")
	}

	logrus.Info("RedisQueue subscriber started")
	return nil
}

func (r *RedisQueue) processMainQueue(ctx context.Context, handler Handler) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		default:
		}

		if _, err := r.ProcessNext(ctx, handler); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logrus.Errorf("Error processing task: %v", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			case <-r.stopChan:
				return
			}
		}
	}
}

// ProcessNext waits up to QueueTimeout for one ready task and runs it.
// It reports whether a task was taken.
func (r *RedisQueue) ProcessNext(ctx context.Context, handler Handler) (bool, error) {
	taskData, err := r.client.BRPopLPush(ctx, r.mainQueue, r.processingQueue, r.config.QueueTimeout).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to move task to processing queue: %w", err)
	}
	defer func() {
		if err := r.client.LRem(ctx, r.processingQueue, 1, taskData).Err(); err != nil {
			logrus.Warnf("Failed to remove task from processing queue: %v", err)
		}
	}()

	var task Task
	if err := json.Unmarshal([]byte(taskData), &task); err != nil {
		r.moveCorruptToDLQ(ctx, taskData, err)
		return true, nil
	}

	task.Attempts++
	log := logrus.WithFields(logrus.Fields{
		"task_id":   task.ID,
		"task_type": task.Type,
		"attempt":   task.Attempts,
	})

	handlerErr := handler(ctx, &task)
	if handlerErr == nil {
		r.incrementMetric(ctx, "tasks_success")
		log.Debug("task completed")
		return true, nil
	}
	r.incrementMetric(ctx, "tasks_failure")

	if retry, delay := r.retryManager.ShouldRetry(&task, handlerErr); retry {
		log.Warnf("task failed, retrying in %v: %v", delay, handlerErr)
		task.ExecuteAt = time.Now().Add(delay)
		if err := r.Publish(ctx, &task); err != nil {
			return true, fmt.Errorf("failed to reschedule task %s: %w", task.ID, err)
		}
		return true, nil
	}

	log.Errorf("task failed permanently: %v", handlerErr)
	if r.dlqHandler != nil {
		r.dlqHandler.HandleFailedTask(&task, handlerErr)
		r.incrementMetric(ctx, "tasks_dlq")
	}
	return true, nil
}

func (r *RedisQueue) processDelayedTasks(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case <-ticker.C:
			if _, err := r.MoveReadyDelayedTasks(ctx); err != nil {
				logrus.Errorf("Failed to process delayed tasks: %v", err)
			}
		}
	}
}

// MoveReadyDelayedTasks promotes due tasks to the main queue. Only the replica
// whose ZREM succeeds pushes a task, so a task is promoted once.
func (r *RedisQueue) MoveReadyDelayedTasks(ctx context.Context) (int, error) {
	tasks, err := r.client.ZRangeByScore(ctx, r.delayedQueue, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%f", score(time.Now())),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get delayed tasks: %w", err)
	}

	moved := 0
	for _, taskData := range tasks {
		removed, err := r.client.ZRem(ctx, r.delayedQueue, taskData).Result()
		if err != nil {
			return moved, fmt.Errorf("failed to claim delayed task: %w", err)
		}
		if removed == 0 {
			continue
		}
		if err := r.client.LPush(ctx, r.mainQueue, taskData).Err(); err != nil {
			return moved, fmt.Errorf("failed to move delayed task: %w", err)
		}
		moved++
	}

	if moved > 0 {
		logrus.Debugf("Moved %d delayed tasks to main queue", moved)
	}
	return moved, nil
}

func (r *RedisQueue) moveCorruptToDLQ(ctx context.Context, taskData string, err error) {
	logrus.Errorf("Failed to unmarshal task: %v", err)
	if r.dlqHandler == nil {
		return
	}
	corrupted := &Task{
		ID:        fmt.Sprintf("corrupted_%d", time.Now().UnixNano()),
		Type:      "corrupted",
		Data:      map[string]interface{}{"raw_data": taskData},
		CreatedAt: time.Now(),
	}
	r.dlqHandler.HandleFailedTask(corrupted, fmt.Errorf("corrupted task: %w", err))
	r.incrementMetric(ctx, "tasks_dlq")
}

func (r *RedisQueue) validateTask(task *Task) error {
	if task.ID == "" {
		task.ID = fmt.Sprintf("%s_%d", task.Type, time.Now().UnixNano())
	}
	if err := task.Validate(); err != nil {
		return err
	}
	if task.MaxRetries == 0 {
		task.MaxRetries = r.config.MaxRetries
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	if task.ExecuteAt.IsZero() {
		task.ExecuteAt = time.Now()
	}
	return nil
}

func (r *RedisQueue) incrementMetric(ctx context.Context, metric string) {
	if !r.config.EnableMetrics {
		return
	}

	key := r.metricsPrefix + metric
	pipe := r.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, defaultMetricsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		logrus.Debugf("metric %s not recorded: %v", metric, err)
	}
}

// GetQueueStats returns current queue statistics
func (r *RedisQueue) GetQueueStats(ctx context.Context) (*QueueStats, error) {
	pipe := r.client.Pipeline()

	mainLen := pipe.LLen(ctx, r.mainQueue)
	delayedLen := pipe.ZCard(ctx, r.delayedQueue)
	processingLen := pipe.LLen(ctx, r.processingQueue)
	dlqLen := pipe.ZCard(ctx, r.dlq)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to get queue stats: %w", err)
	}

	return &QueueStats{
		MainQueue:       mainLen.Val(),
		DelayedQueue:    delayedLen.Val(),
		ProcessingQueue: processingLen.Val(),
		DLQ:             dlqLen.Val(),
		Timestamp:       time.Now(),
	}, nil
}

// Close stops the background processors. The Redis client is left open.
func (r *RedisQueue) Close() error {
	r.stopOnce.Do(func() { close(r.stopChan) })
	r.wg.Wait()
	logrus.Info("RedisQueue closed")
	return nil
}

// ErrDLQDisabled is returned by the DLQ accessors when the queue runs without one.
var ErrDLQDisabled = errors.New("dead letter queue is disabled")

// FailedTasks lists up to limit tasks that ended in the DLQ, newest first.
func (r *RedisQueue) FailedTasks(ctx context.Context, limit int) ([]*FailedTask, error) {
	if r.dlqHandler == nil {
		return nil, ErrDLQDisabled
	}
	return r.dlqHandler.GetFailedTasks(ctx, limit)
}

// RequeueFailed puts a DLQ task back on the main queue with a fresh attempt count.
func (r *RedisQueue) RequeueFailed(ctx context.Context, taskID string) error {
	if r.dlqHandler == nil {
		return ErrDLQDisabled
	}
	if err := r.dlqHandler.RequeueFailedTask(ctx, taskID); err != nil {
		return err
	}
	r.incrementMetric(ctx, "tasks_requeued")
	return nil
}

// HealthCheck performs a health check on the queue
func (r *RedisQueue) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// QueueStats contains statistics about queue state
type QueueStats struct {
	MainQueue       int64     `json:"main_queue"`
	DelayedQueue    int64     `json:"delayed_queue"`
	ProcessingQueue int64     `json:"processing_queue"`
	DLQ             int64     `json:"dlq"`
	Timestamp       time.Time `json:"timestamp"`
}

func score(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
