package repository

import (
	"context"
	"strings"
	"time"

	"github.com/eubbbruno/instauto/app/models"
	"gorm.io/gorm"
)

// workshopRepository implements the WorkshopRepository interface
type workshopRepository struct {
	db *gorm.DB
}

// NewWorkshopRepository creates a new workshop repository instance
func NewWorkshopRepository(db *gorm.DB) WorkshopRepository {
	return &workshopRepository{db: db}
}

func (r *workshopRepository) Create(ctx context.Context, workshop *models.Workshop) error {
	return r.db.WithContext(ctx).Create(workshop).Error
}

func (r *workshopRepository) GetByID(ctx context.Context, id string) (*models.Workshop, error) {
	var w models.Workshop
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *workshopRepository) GetByProfileID(ctx context.Context, profileID string) (*models.Workshop, error) {
	var w models.Workshop
	if err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// GetBySubscriptionID resolves a Mercado Pago preapproval id to its workshop.
func (r *workshopRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*models.Workshop, error) {
	id := strings.TrimSpace(subscriptionID)
	if id == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var w models.Workshop
	if err := r.db.WithContext(ctx).Where("mercadopago_subscription_id = ?", id).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// UpdatePlanState writes status, plan and updated_at in one statement.
func (r *workshopRepository) UpdatePlanState(ctx context.Context, id string, status models.SubscriptionStatus, plan models.PlanType, at time.Time) error {
	updates := map[string]interface{}{
		"subscription_status": status,
		"plan_type":           plan,
		"updated_at":          at,
	}
	return r.db.WithContext(ctx).Model(&models.Workshop{}).Where("id = ?", id).Updates(updates).Error
}

func (r *workshopRepository) SetSubscriptionID(ctx context.Context, id, subscriptionID string, at time.Time) error {
	updates := map[string]interface{}{
		"mercadopago_subscription_id": subscriptionID,
		"updated_at":                  at,
	}
	return r.db.WithContext(ctx).Model(&models.Workshop{}).Where("id = ?", id).Updates(updates).Error
}
