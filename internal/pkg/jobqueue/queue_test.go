package jobqueue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueue(t *testing.T) {
	tests := []struct {
		name            string
		workers         int
		expectedWorkers int
	}{
		{"Valid worker count", 5, 5},
		{"Zero workers", 0, 3},
		{"Negative workers", -1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := NewQueue(nil, tt.workers)

			assert.Equal(t, tt.expectedWorkers, queue.workers)
			assert.Equal(t, tt.expectedWorkers, cap(queue.workerPool))
			assert.False(t, queue.IsRunning())
		})
	}
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "job:", JobKeyPrefix)
	assert.Equal(t, "job_queue", JobQueueKey)
	assert.Equal(t, "job_processing", JobProcessingKey)
	assert.Equal(t, "job_stats", JobStatsKey)
	assert.Equal(t, 3, DefaultMaxRetries)
	assert.Equal(t, 24*time.Hour, JobTTL)
}

type recordingSyncer struct {
	mu    sync.Mutex
	calls []string
	errs  []error
}

func (s *recordingSyncer) ResyncSubscription(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, id)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return err
	}
	return nil
}

func (s *recordingSyncer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func TestProcessSubscriptionSyncJob_Validation(t *testing.T) {
	q := NewQueue(nil, 1)
	ctx := context.Background()

	err := q.processSubscriptionSyncJob(ctx, &Job{Payload: SubscriptionSyncJobPayload{SubscriptionID: "pre-1"}.ToMap()})
	assert.ErrorIs(t, err, errNoSyncer)

	syncer := &recordingSyncer{}
	q.SetSubscriptionSyncer(syncer)

	err = q.processSubscriptionSyncJob(ctx, &Job{Payload: SubscriptionSyncJobPayload{SubscriptionID: "  "}.ToMap()})
	assert.Error(t, err)
	assert.Zero(t, syncer.count())

	require.NoError(t, q.processSubscriptionSyncJob(ctx, &Job{Payload: SubscriptionSyncJobPayload{SubscriptionID: "pre-1"}.ToMap()}))
	assert.Equal(t, []string{"pre-1"}, syncer.calls)
}

func TestHandle_UnknownJobType(t *testing.T) {
	q := NewQueue(nil, 1)
	err := q.handle(context.Background(), &Job{Type: "mystery"})
	assert.ErrorContains(t, err, "unknown job type")
}

func TestQueue_EnqueueAndProcess(t *testing.T) {
	client := newIsolatedRedisClient(t, isolatedJobQueueTestRedisDB)
	q := NewQueue(client, 1)
	q.retryDelay = 10 * time.Millisecond
	syncer := &recordingSyncer{errs: []error{errors.New("mp down")}}
	q.SetSubscriptionSyncer(syncer)

	m := NewManager(q)
	ctx := context.Background()
	require.NoError(t, m.EnqueueSubscriptionSync(ctx, "pre-1", "status_fetch_failed"))

	size, err := q.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	m.Start()
	defer m.Stop()

	// first attempt fails, the retry succeeds
	require.Eventually(t, func() bool { return syncer.count() == 2 }, 5*time.Second, 20*time.Millisecond)
	require.Eventually(t, func() bool {
		stats, err := q.GetJobStats(ctx)
		return err == nil && stats[JobStatusCompleted] == 1
	}, 5*time.Second, 20*time.Millisecond)

	processing, err := q.GetProcessingSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, processing)
}

func TestQueue_RecoverStuckJobs(t *testing.T) {
	client := newIsolatedRedisClient(t, isolatedJobQueueTestRedisDB)
	q := NewQueue(client, 1)
	ctx := context.Background()

	job, err := q.EnqueueJob(ctx, JobTypeSubscriptionSync, SubscriptionSyncJobPayload{SubscriptionID: "pre-1"}.ToMap())
	require.NoError(t, err)

	dequeued, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	require.Equal(t, job.ID, dequeued.ID)

	dequeued.MarkAsProcessing()
	started := time.Now().Add(-time.Hour)
	dequeued.ProcessedAt = &started
	q.updateJob(ctx, dequeued)

	assert.Equal(t, 1, q.recoverStuckJobs(ctx, 10*time.Minute, time.Now()))

	pending, err := q.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusPending, stored.Status)

	_, err = q.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, redis.Nil)
}
