package billing

import (
	"testing"
	"time"

	"github.com/eubbbruno/instauto/app/models"
	"github.com/stretchr/testify/assert"
)

func TestMapPreapprovalStatus(t *testing.T) {
	tests := []struct {
		in   string
		want models.SubscriptionStatus
	}{
		{in: "authorized", want: models.SubscriptionActive},
		{in: "AUTHORIZED", want: models.SubscriptionActive},
		{in: "paused", want: models.SubscriptionPaused},
		{in: "cancelled", want: models.SubscriptionCancelled},
		{in: "canceled", want: models.SubscriptionCancelled},
		{in: "pending", want: models.SubscriptionTrial},
		{in: "", want: models.SubscriptionUnknown},
		{in: "  ", want: models.SubscriptionUnknown},
		{in: "Expired", want: models.SubscriptionStatus("expired")},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapPreapprovalStatus(tt.in), "raw status %q", tt.in)
	}
}

func TestIsSubscriptionEvent(t *testing.T) {
	assert.True(t, IsSubscriptionEvent("subscription_preapproval"))
	assert.True(t, IsSubscriptionEvent("preapproval"))
	assert.True(t, IsSubscriptionEvent(" Preapproval "))
	assert.False(t, IsSubscriptionEvent("payment"))
	assert.False(t, IsSubscriptionEvent("subscription_authorized_payment"))
	assert.False(t, IsSubscriptionEvent(""))
}

func TestDerivePlanType(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	t.Run("active always grants pro", func(t *testing.T) {
		assert.Equal(t, models.PlanPro, DerivePlanType(models.SubscriptionActive, models.PlanFree, &future, now))
		assert.Equal(t, models.PlanPro, DerivePlanType(models.SubscriptionActive, models.PlanPro, &past, now))
		assert.Equal(t, models.PlanPro, DerivePlanType(models.SubscriptionActive, models.PlanFree, nil, now))
	})

	t.Run("cancelled after trial drops to free", func(t *testing.T) {
		assert.Equal(t, models.PlanFree, DerivePlanType(models.SubscriptionCancelled, models.PlanPro, &past, now))
		assert.Equal(t, models.PlanFree, DerivePlanType(models.SubscriptionPaused, models.PlanPro, &past, now))
		assert.Equal(t, models.PlanFree, DerivePlanType(models.SubscriptionCancelled, models.PlanPro, nil, now))
		assert.Equal(t, models.PlanFree, DerivePlanType(models.SubscriptionCancelled, models.PlanPro, &now, now))
	})

	t.Run("cancelled during trial keeps plan", func(t *testing.T) {
		assert.Equal(t, models.PlanPro, DerivePlanType(models.SubscriptionCancelled, models.PlanPro, &future, now))
		assert.Equal(t, models.PlanFree, DerivePlanType(models.SubscriptionPaused, models.PlanFree, &future, now))
	})

	t.Run("other statuses keep plan", func(t *testing.T) {
		assert.Equal(t, models.PlanPro, DerivePlanType(models.SubscriptionTrial, models.PlanPro, &past, now))
		assert.Equal(t, models.PlanFree, DerivePlanType(models.SubscriptionUnknown, models.PlanFree, &past, now))
		assert.Equal(t, models.PlanPro, DerivePlanType(models.SubscriptionStatus("expired"), models.PlanPro, &past, now))
	})
}
