package billing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eubbbruno/instauto/app/models"
	"gorm.io/gorm"
)

type fakeRepo struct {
	mu        sync.Mutex
	workshops map[string]*models.Workshop
	writes    int
	lookupErr error
	updateErr error
}

func newFakeRepo(ws ...*models.Workshop) *fakeRepo {
	r := &fakeRepo{workshops: map[string]*models.Workshop{}}
	for _, w := range ws {
		r.workshops[w.ID] = w
	}
	return r
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*models.Workshop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	w, ok := r.workshops[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *fakeRepo) GetBySubscriptionID(_ context.Context, subscriptionID string) (*models.Workshop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	for _, w := range r.workshops {
		if w.SubscriptionID() == subscriptionID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) UpdatePlanState(_ context.Context, id string, status models.SubscriptionStatus, plan models.PlanType, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	w, ok := r.workshops[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	w.SubscriptionStatus = status
	w.PlanType = plan
	w.UpdatedAt = at
	r.writes++
	return nil
}

func (r *fakeRepo) SetSubscriptionID(_ context.Context, id, subscriptionID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workshops[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sid := subscriptionID
	w.MercadoPagoSubscriptionID = &sid
	w.UpdatedAt = at
	r.writes++
	return nil
}

func (r *fakeRepo) get(id string) models.Workshop {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.workshops[id]
}

type fakeGateway struct {
	statuses map[string]string
	fetches  int
	err      error
	created  []SubscriptionRequest
}

func (g *fakeGateway) GetPreapproval(_ context.Context, id string) (*Preapproval, error) {
	g.fetches++
	if g.err != nil {
		return nil, g.err
	}
	status, ok := g.statuses[id]
	if !ok {
		return nil, ErrPreapprovalNotFound
	}
	return &Preapproval{ID: id, Status: status}, nil
}

func (g *fakeGateway) CreateSubscription(_ context.Context, in SubscriptionRequest) (*Preapproval, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.created = append(g.created, in)
	return &Preapproval{ID: "pre-new", Status: "pending", InitPoint: "https://mp.test/checkout/pre-new"}, nil
}

var errBoom = errors.New("boom")

func workshopWithSubscription(id, subID string, plan models.PlanType, status models.SubscriptionStatus, trialEnds time.Time) *models.Workshop {
	sid := subID
	te := trialEnds
	return &models.Workshop{
		ID:                        id,
		ProfileID:                 "profile-" + id,
		PlanType:                  plan,
		SubscriptionStatus:        status,
		TrialEndsAt:               &te,
		MercadoPagoSubscriptionID: &sid,
	}
}

type fakeRetrier struct {
	scheduled []string
	reasons   []string
	err       error
}

func (r *fakeRetrier) EnqueueSubscriptionSync(_ context.Context, subscriptionID, reason string) error {
	if r.err != nil {
		return r.err
	}
	r.scheduled = append(r.scheduled, subscriptionID)
	r.reasons = append(r.reasons, reason)
	return nil
}
