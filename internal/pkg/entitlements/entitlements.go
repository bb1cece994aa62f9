package entitlements

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/eubbbruno/instauto/app/models"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// Decision is the access verdict for one workshop at one instant.
type Decision struct {
	HasAccess             bool                      `json:"hasAccess"`
	IsPro                 bool                      `json:"isPro"`
	IsTrialActive         bool                      `json:"isTrialActive"`
	DaysSinceTrialExpired int                       `json:"daysSinceTrialExpired"`
	TrialDaysLeft         int                       `json:"trialDaysLeft"`
	PlanType              models.PlanType           `json:"planType,omitempty"`
	SubscriptionStatus    models.SubscriptionStatus `json:"subscriptionStatus,omitempty"`
	TrialEndsAt           *time.Time                `json:"trialEndsAt,omitempty"`
	Found                 bool                      `json:"found"`
}

const day = 24 * time.Hour

// Evaluate computes access from a plan record. A nil record never has access.
func Evaluate(ws *models.Workshop, now time.Time) Decision {
	if ws == nil {
		return Decision{}
	}

	d := Decision{
		Found:              true,
		PlanType:           ws.PlanType,
		SubscriptionStatus: ws.SubscriptionStatus,
		TrialEndsAt:        ws.TrialEndsAt,
	}
	d.IsPro = ws.PlanType == models.PlanPro && ws.SubscriptionStatus == models.SubscriptionActive

	if ws.TrialEndsAt != nil {
		remaining := ws.TrialEndsAt.Sub(now)
		d.IsTrialActive = remaining > 0
		if remaining > 0 {
			d.TrialDaysLeft = int(math.Ceil(float64(remaining) / float64(day)))
		} else {
			d.DaysSinceTrialExpired = int(-remaining / day)
		}
	}

	d.HasAccess = d.IsPro || d.IsTrialActive
	return d
}

// Repository is the read side the guard needs.
type Repository interface {
	GetByProfileID(ctx context.Context, profileID string) (*models.Workshop, error)
}

// Guard answers access questions for a profile by reading its plan record on
// every call.
type Guard struct {
	repo Repository
	now  func() time.Time
}

func NewGuard(repo Repository) *Guard {
	return &Guard{repo: repo, now: time.Now}
}

// WithClock replaces the time source.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// Check returns no access when the record is missing or cannot be read.
func (g *Guard) Check(ctx context.Context, profileID string) Decision {
	if profileID == "" {
		return Decision{}
	}
	ws, err := g.repo.GetByProfileID(ctx, profileID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorw("access guard: plan record lookup failed", "profile_id", profileID, "error", err)
		}
		return Decision{}
	}
	return Evaluate(ws, g.now())
}
