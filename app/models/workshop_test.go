package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrialWorkshop(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	w := NewTrialWorkshop("profile-1", "Oficina Central", now)

	require.NotNil(t, w.TrialEndsAt)
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, "profile-1", w.ProfileID)
	assert.Equal(t, PlanFree, w.PlanType)
	assert.Equal(t, SubscriptionTrial, w.SubscriptionStatus)
	assert.Equal(t, now.Add(14*24*time.Hour), *w.TrialEndsAt)
	assert.Nil(t, w.MercadoPagoSubscriptionID)
	assert.Equal(t, "", w.SubscriptionID())
}

func TestWorkshopTrialExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	w := NewTrialWorkshop("profile-1", "", now)

	assert.False(t, w.TrialExpired(now))
	assert.False(t, w.TrialExpired(now.Add(TrialPeriod-time.Second)))
	assert.True(t, w.TrialExpired(now.Add(TrialPeriod)))

	w.TrialEndsAt = nil
	assert.True(t, w.TrialExpired(now))
}

func TestWorkshopSubscriptionID(t *testing.T) {
	var nilWorkshop *Workshop
	assert.Equal(t, "", nilWorkshop.SubscriptionID())

	id := "2c938084726fca480172750000000000"
	w := &Workshop{MercadoPagoSubscriptionID: &id}
	assert.Equal(t, id, w.SubscriptionID())
}
