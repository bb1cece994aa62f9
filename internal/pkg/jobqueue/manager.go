package jobqueue

import (
	"context"
	"sync"

	"github.com/eubbbruno/instauto/internal/pkg/cache"
	"github.com/eubbbruno/instauto/internal/pkg/env"
	"github.com/gofiber/fiber/v2/log"
)

// Manager owns the process-wide queue
type Manager struct {
	queue *Queue
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// Enabled reports whether failed webhook reconciliations are retried in the
// background. Off unless BILLING_RETRY_ENABLED=true.
func Enabled() bool {
	return env.GetEnv("BILLING_RETRY_ENABLED", "false") == "true"
}

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = NewManager(NewQueue(cache.GetClient(), env.GetEnvInt("JOB_QUEUE_WORKERS", 2)))
	})
	return globalManager
}

// NewManager wraps an existing queue.
func NewManager(q *Queue) *Manager {
	return &Manager{queue: q}
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

func (m *Manager) Start() {
	log.Info("[JobQueue Manager] Starting job queue")
	m.queue.Start()
}

func (m *Manager) Stop() {
	m.queue.Stop()
	log.Info("[JobQueue Manager] Stopped")
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	return m.queue.IsRunning()
}

// EnqueueSubscriptionSync schedules a background re-read of a subscription
// whose webhook could not be applied.
func (m *Manager) EnqueueSubscriptionSync(ctx context.Context, subscriptionID, reason string) error {
	_, err := m.queue.EnqueueJob(ctx, JobTypeSubscriptionSync, SubscriptionSyncJobPayload{
		SubscriptionID: subscriptionID,
		Reason:         reason,
	}.ToMap())
	return err
}
