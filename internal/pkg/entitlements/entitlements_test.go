package entitlements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eubbbruno/instauto/app/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func plan(p models.PlanType, s models.SubscriptionStatus, trialEnds *time.Time) *models.Workshop {
	return &models.Workshop{ID: "w1", ProfileID: "p1", PlanType: p, SubscriptionStatus: s, TrialEndsAt: trialEnds}
}

func at(t time.Time) *time.Time { return &t }

func TestEvaluate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		ws        *models.Workshop
		access    bool
		isPro     bool
		trial     bool
		sinceDays int
		leftDays  int
	}{
		{"trial with a day left", plan(models.PlanFree, models.SubscriptionTrial, at(now.Add(day))), true, false, true, 0, 1},
		{"trial expired a day ago", plan(models.PlanFree, models.SubscriptionTrial, at(now.Add(-day))), false, false, false, 1, 0},
		{"pro active long after trial", plan(models.PlanPro, models.SubscriptionActive, at(now.Add(-100*day))), true, true, false, 100, 0},
		{"pro but paused", plan(models.PlanPro, models.SubscriptionPaused, at(now.Add(-3*day))), false, false, false, 3, 0},
		{"active but free plan", plan(models.PlanFree, models.SubscriptionActive, at(now.Add(-3*day))), false, false, false, 3, 0},
		{"partial days round", plan(models.PlanFree, models.SubscriptionTrial, at(now.Add(-36*time.Hour))), false, false, false, 1, 0},
		{"trial left rounds up", plan(models.PlanFree, models.SubscriptionTrial, at(now.Add(36*time.Hour))), true, false, true, 0, 2},
		{"trial ends exactly now", plan(models.PlanFree, models.SubscriptionTrial, at(now)), false, false, false, 0, 0},
		{"no trial end", plan(models.PlanFree, models.SubscriptionTrial, nil), false, false, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.ws, now)
			assert.True(t, d.Found)
			assert.Equal(t, tt.access, d.HasAccess)
			assert.Equal(t, tt.isPro, d.IsPro)
			assert.Equal(t, tt.trial, d.IsTrialActive)
			assert.Equal(t, tt.sinceDays, d.DaysSinceTrialExpired)
			assert.Equal(t, tt.leftDays, d.TrialDaysLeft)
		})
	}
}

func TestEvaluate_NilRecord(t *testing.T) {
	d := Evaluate(nil, time.Now())
	assert.False(t, d.HasAccess)
	assert.False(t, d.Found)
}

type stubRepo struct {
	ws    *models.Workshop
	err   error
	calls int
}

func (s *stubRepo) GetByProfileID(_ context.Context, _ string) (*models.Workshop, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.ws, nil
}

func TestGuardCheck(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	repo := &stubRepo{ws: plan(models.PlanFree, models.SubscriptionTrial, at(now.Add(2*day)))}
	g := NewGuard(repo).WithClock(clock)
	assert.True(t, g.Check(context.Background(), "p1").HasAccess)
	assert.True(t, g.Check(context.Background(), "p1").HasAccess)
	assert.Equal(t, 2, repo.calls, "guard must read the record on every check")

	assert.False(t, NewGuard(&stubRepo{err: gorm.ErrRecordNotFound}).Check(context.Background(), "p1").HasAccess)
	assert.False(t, NewGuard(&stubRepo{err: errors.New("connection refused")}).Check(context.Background(), "p1").HasAccess)

	empty := &stubRepo{}
	assert.False(t, NewGuard(empty).Check(context.Background(), "").HasAccess)
	assert.Equal(t, 0, empty.calls)
}
