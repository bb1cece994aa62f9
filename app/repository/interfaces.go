package repository

import (
	"context"
	"time"

	"github.com/eubbbruno/instauto/app/models"
	"gorm.io/gorm"
)

// ProfileRepository defines the interface for account-related database operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	GetProviderAccount(ctx context.Context, provider, providerUserID string) (*models.ProviderAccount, error)
	SaveProviderAccount(ctx context.Context, account *models.ProviderAccount) error
}

// WorkshopRepository defines the interface for workshop plan record operations.
// Lookups return gorm.ErrRecordNotFound when no row matches.
type WorkshopRepository interface {
	Create(ctx context.Context, workshop *models.Workshop) error
	GetByID(ctx context.Context, id string) (*models.Workshop, error)
	GetByProfileID(ctx context.Context, profileID string) (*models.Workshop, error)
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*models.Workshop, error)
	UpdatePlanState(ctx context.Context, id string, status models.SubscriptionStatus, plan models.PlanType, at time.Time) error
	SetSubscriptionID(ctx context.Context, id, subscriptionID string, at time.Time) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Profile  ProfileRepository
	Workshop WorkshopRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Profile:  NewProfileRepository(db),
		Workshop: NewWorkshopRepository(db),
	}
}
