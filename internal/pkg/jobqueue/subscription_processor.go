package jobqueue

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// SubscriptionSyncer re-applies the processor's current status for one
// subscription. A non-nil error schedules another attempt.
type SubscriptionSyncer interface {
	ResyncSubscription(ctx context.Context, subscriptionID string) error
}

var errNoSyncer = errors.New("no subscription syncer configured")

func (q *Queue) processSubscriptionSyncJob(ctx context.Context, job *Job) error {
	payload, err := SubscriptionSyncJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid subscription sync payload: %w", err)
	}
	if strings.TrimSpace(payload.SubscriptionID) == "" {
		return errors.New("subscription sync job without subscription id")
	}

	q.mu.Lock()
	syncer := q.syncer
	q.mu.Unlock()
	if syncer == nil {
		return errNoSyncer
	}

	return syncer.ResyncSubscription(ctx, payload.SubscriptionID)
}
