package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicJobConstants(t *testing.T) {
	assert.Equal(t, "subscription_sync", string(JobTypeSubscriptionSync))
	assert.Equal(t, "pending", string(JobStatusPending))
	assert.Equal(t, "processing", string(JobStatusProcessing))
	assert.Equal(t, "completed", string(JobStatusCompleted))
	assert.Equal(t, "failed", string(JobStatusFailed))
	assert.Equal(t, "retrying", string(JobStatusRetrying))
}

func TestJob_StatusTransitions(t *testing.T) {
	job := &Job{Status: JobStatusFailed, RetryCount: 1, MaxRetries: 3}
	assert.True(t, job.IsRetryable())

	job.RetryCount = 3
	assert.False(t, job.IsRetryable())

	before := time.Now()
	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)
	assert.False(t, job.UpdatedAt.Before(before))

	job.MarkAsFailed("mp down")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "mp down", job.ErrorMsg)
	assert.Equal(t, 4, job.RetryCount)

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.NotNil(t, job.CompletedAt)
	assert.Empty(t, job.ErrorMsg)
}

func TestSubscriptionSyncPayload_MapRoundTrip(t *testing.T) {
	in := SubscriptionSyncJobPayload{SubscriptionID: "pre-1", Reason: "status_fetch_failed"}
	out, err := SubscriptionSyncJobPayloadFromMap(in.ToMap())
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestEnabled(t *testing.T) {
	t.Setenv("BILLING_RETRY_ENABLED", "")
	assert.False(t, Enabled())

	t.Setenv("BILLING_RETRY_ENABLED", "true")
	assert.True(t, Enabled())
}
