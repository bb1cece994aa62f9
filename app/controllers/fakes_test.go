package controllers

import (
	"context"
	"sync"
	"time"

	"github.com/eubbbruno/instauto/app/models"
	"github.com/eubbbruno/instauto/app/repository"
	"github.com/eubbbruno/instauto/internal/pkg/billing"
	"gorm.io/gorm"
)

type memWorkshops struct {
	mu     sync.Mutex
	rows   map[string]*models.Workshop
	writes int
}

func newMemWorkshops(ws ...*models.Workshop) *memWorkshops {
	m := &memWorkshops{rows: map[string]*models.Workshop{}}
	for _, w := range ws {
		m.rows[w.ID] = w
	}
	return m
}

func (m *memWorkshops) Create(_ context.Context, w *models.Workshop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if existing.ProfileID == w.ProfileID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.rows[w.ID] = w
	m.writes++
	return nil
}

func (m *memWorkshops) find(match func(*models.Workshop) bool) (*models.Workshop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.rows {
		if match(w) {
			cp := *w
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memWorkshops) GetByID(_ context.Context, id string) (*models.Workshop, error) {
	return m.find(func(w *models.Workshop) bool { return w.ID == id })
}

func (m *memWorkshops) GetByProfileID(_ context.Context, profileID string) (*models.Workshop, error) {
	return m.find(func(w *models.Workshop) bool { return w.ProfileID == profileID })
}

func (m *memWorkshops) GetBySubscriptionID(_ context.Context, subscriptionID string) (*models.Workshop, error) {
	return m.find(func(w *models.Workshop) bool { return w.SubscriptionID() == subscriptionID })
}

func (m *memWorkshops) UpdatePlanState(_ context.Context, id string, status models.SubscriptionStatus, plan models.PlanType, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	w.SubscriptionStatus = status
	w.PlanType = plan
	w.UpdatedAt = at
	m.writes++
	return nil
}

func (m *memWorkshops) SetSubscriptionID(_ context.Context, id, subscriptionID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sid := subscriptionID
	w.MercadoPagoSubscriptionID = &sid
	w.UpdatedAt = at
	m.writes++
	return nil
}

func (m *memWorkshops) byProfile(profileID string) *models.Workshop {
	w, _ := m.GetByProfileID(context.Background(), profileID)
	return w
}

type memProfiles struct {
	mu        sync.Mutex
	rows      map[string]*models.Profile
	providers []*models.ProviderAccount
}

func newMemProfiles(ps ...*models.Profile) *memProfiles {
	m := &memProfiles{rows: map[string]*models.Profile{}}
	for _, p := range ps {
		m.rows[p.ID] = p
	}
	return m
}

func (m *memProfiles) Create(_ context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if existing.Email == p.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	m.rows[p.ID] = p
	return nil
}

func (m *memProfiles) GetByID(_ context.Context, id string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.rows[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memProfiles) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memProfiles) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.rows[id]; ok {
		t := at
		p.LastLoginAt = &t
	}
	return nil
}

func (m *memProfiles) GetProviderAccount(_ context.Context, provider, providerUserID string) (*models.ProviderAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pa := range m.providers {
		if pa.Provider == provider && pa.ProviderUserID == providerUserID {
			cp := *pa
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memProfiles) SaveProviderAccount(_ context.Context, account *models.ProviderAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, pa := range m.providers {
		if pa.Provider == account.Provider && pa.ProviderUserID == account.ProviderUserID {
			cp := *account
			m.providers[i] = &cp
			return nil
		}
	}
	cp := *account
	m.providers = append(m.providers, &cp)
	return nil
}

type stubGateway struct {
	statuses map[string]string
	fetches  int
}

func (g *stubGateway) GetPreapproval(_ context.Context, id string) (*billing.Preapproval, error) {
	g.fetches++
	status, ok := g.statuses[id]
	if !ok {
		return nil, billing.ErrPreapprovalNotFound
	}
	return &billing.Preapproval{ID: id, Status: status}, nil
}

func (g *stubGateway) CreateSubscription(_ context.Context, in billing.SubscriptionRequest) (*billing.Preapproval, error) {
	return &billing.Preapproval{ID: "pre-" + in.ExternalReference, Status: "pending", InitPoint: "https://mp.test/checkout"}, nil
}

func testRepos(profiles *memProfiles, workshops *memWorkshops) *repository.Repositories {
	return &repository.Repositories{Profile: profiles, Workshop: workshops}
}
