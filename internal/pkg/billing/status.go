package billing

import (
	"strings"
	"time"

	"github.com/eubbbruno/instauto/app/models"
)

// Event categories Mercado Pago uses for subscription notifications.
const (
	EventSubscriptionPreapproval = "subscription_preapproval"
	EventPreapproval             = "preapproval"
)

// IsSubscriptionEvent reports whether a notification category concerns a preapproval.
func IsSubscriptionEvent(category string) bool {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case EventSubscriptionPreapproval, EventPreapproval:
		return true
	default:
		return false
	}
}

// MapPreapprovalStatus converts a raw preapproval status into the local
// subscription status. Unknown values pass through lower-cased.
func MapPreapprovalStatus(raw string) models.SubscriptionStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "authorized":
		return models.SubscriptionActive
	case "paused":
		return models.SubscriptionPaused
	case "cancelled", "canceled":
		return models.SubscriptionCancelled
	case "pending":
		return models.SubscriptionTrial
	case "":
		return models.SubscriptionUnknown
	default:
		return models.SubscriptionStatus(s)
	}
}

// DerivePlanType computes the plan after a status change. Only an active
// subscription grants pro; cancelled or paused drops to free once the trial
// window has passed. Everything else keeps the current plan.
func DerivePlanType(status models.SubscriptionStatus, current models.PlanType, trialEndsAt *time.Time, now time.Time) models.PlanType {
	switch status {
	case models.SubscriptionActive:
		return models.PlanPro
	case models.SubscriptionCancelled, models.SubscriptionPaused:
		if trialEndsAt == nil || !now.Before(*trialEndsAt) {
			return models.PlanFree
		}
		return current
	default:
		return current
	}
}
