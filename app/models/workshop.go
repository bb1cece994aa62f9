package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlanType is the commercial plan a workshop is on.
type PlanType string

const (
	PlanFree PlanType = "free"
	PlanPro  PlanType = "pro"
)

// SubscriptionStatus is the local view of the payment processor's subscription
// state. Values outside the constants below are stored as passthrough.
type SubscriptionStatus string

const (
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionUnknown   SubscriptionStatus = "unknown"
)

// TrialPeriod is the fixed trial window opened when a workshop is provisioned.
const TrialPeriod = 14 * 24 * time.Hour

// Workshop is a repair-shop tenant. Only the columns governing paid-feature
// access live here; everything else belongs to the wider application.
type Workshop struct {
	ID                        string             `gorm:"type:char(36);primaryKey" json:"id"`
	ProfileID                 string             `gorm:"type:char(36);not null;uniqueIndex:ux_workshops_profile" json:"profile_id"`
	Name                      string             `gorm:"type:varchar(150);default:''" json:"name"`
	PlanType                  PlanType           `gorm:"type:varchar(20);not null;default:'free'" json:"plan_type"`
	SubscriptionStatus        SubscriptionStatus `gorm:"type:varchar(32);not null;default:'trial';index" json:"subscription_status"`
	TrialEndsAt               *time.Time         `gorm:"type:timestamp;default:null" json:"trial_ends_at"`
	MercadoPagoSubscriptionID *string            `gorm:"column:mercadopago_subscription_id;type:varchar(191);uniqueIndex:ux_workshops_mp_subscription" json:"mercadopago_subscription_id,omitempty"`
	CreatedAt                 time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                 time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when the caller did not set one.
func (w *Workshop) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// NewTrialWorkshop returns the initial plan record for a freshly provisioned
// workshop profile: free plan, trial status, trial window ending 14 days from now.
func NewTrialWorkshop(profileID, name string, now time.Time) *Workshop {
	trialEnds := now.Add(TrialPeriod)
	return &Workshop{
		ID:                 uuid.NewString(),
		ProfileID:          profileID,
		Name:               name,
		PlanType:           PlanFree,
		SubscriptionStatus: SubscriptionTrial,
		TrialEndsAt:        &trialEnds,
	}
}

// SubscriptionID returns the external subscription id or an empty string.
func (w *Workshop) SubscriptionID() string {
	if w == nil || w.MercadoPagoSubscriptionID == nil {
		return ""
	}
	return *w.MercadoPagoSubscriptionID
}

// TrialExpired reports whether the trial window has elapsed at now. A missing
// trial end counts as elapsed.
func (w *Workshop) TrialExpired(now time.Time) bool {
	if w.TrialEndsAt == nil {
		return true
	}
	return !now.Before(*w.TrialEndsAt)
}
