package provisioning

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/eubbbruno/instauto/app/models"
	"github.com/eubbbruno/instauto/internal/pkg/metrics"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

type Result string

const (
	ResultCreated     Result = "created"
	ResultExisting    Result = "existing"
	ResultNotWorkshop Result = "not_workshop"
)

// Account is the identity handed over by signup, login or OAuth callback.
type Account struct {
	ProfileID   string
	AccountType string
	Name        string
}

type Repository interface {
	GetByProfileID(ctx context.Context, profileID string) (*models.Workshop, error)
	Create(ctx context.Context, workshop *models.Workshop) error
}

// Service creates the initial plan record for workshop profiles.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// EnsureWorkshop makes sure a workshop profile has exactly one plan record.
// Calling it again for the same profile changes nothing.
func (s *Service) EnsureWorkshop(ctx context.Context, acc Account) (Result, error) {
	if models.NormalizeAccountType(acc.AccountType) != models.AccountTypeWorkshop {
		return ResultNotWorkshop, nil
	}
	if strings.TrimSpace(acc.ProfileID) == "" {
		return "", errors.New("profile id is required")
	}

	if _, err := s.repo.GetByProfileID(ctx, acc.ProfileID); err == nil {
		return ResultExisting, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	ws := models.NewTrialWorkshop(acc.ProfileID, strings.TrimSpace(acc.Name), s.now())
	if err := s.repo.Create(ctx, ws); err != nil {
		// a concurrent request won the insert
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ResultExisting, nil
		}
		return "", err
	}
	log.Infof("provisioning: created plan record %s for profile %s (trial until %s)", ws.ID, acc.ProfileID, ws.TrialEndsAt.Format(time.RFC3339))
	return ResultCreated, nil
}

// EnsureWorkshopQuietly runs EnsureWorkshop and only logs failures, so the
// surrounding account flow can carry on.
func (s *Service) EnsureWorkshopQuietly(ctx context.Context, acc Account) Result {
	res, err := s.EnsureWorkshop(ctx, acc)
	if err != nil {
		log.Errorw("provisioning: failed to ensure workshop plan record",
			"profile_id", acc.ProfileID,
			"account_type", acc.AccountType,
			"error", err,
		)
		metrics.ProvisioningTotal.WithLabelValues("error").Inc()
		return ""
	}
	metrics.ProvisioningTotal.WithLabelValues(string(res)).Inc()
	return res
}
