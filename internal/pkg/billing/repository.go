package billing

import (
	"context"
	"time"

	"github.com/eubbbruno/instauto/app/models"
)

// Repository provides the plan record operations used by the billing service.
// Lookups return gorm.ErrRecordNotFound when nothing matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Workshop, error)
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*models.Workshop, error)
	UpdatePlanState(ctx context.Context, id string, status models.SubscriptionStatus, plan models.PlanType, at time.Time) error
	SetSubscriptionID(ctx context.Context, id, subscriptionID string, at time.Time) error
}

// Gateway is the payment processor API.
type Gateway interface {
	GetPreapproval(ctx context.Context, id string) (*Preapproval, error)
	CreateSubscription(ctx context.Context, in SubscriptionRequest) (*Preapproval, error)
}

// Retrier queues a later resync of a subscription.
type Retrier interface {
	EnqueueSubscriptionSync(ctx context.Context, subscriptionID, reason string) error
}
