package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eubbbruno/instauto/app/models"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

var ErrAlreadySubscribed = errors.New("workshop already has an active pro subscription")

// Service keeps workshop plan records in sync with Mercado Pago subscriptions.
type Service struct {
	repo    Repository
	gateway Gateway
	retrier Retrier
	now     func() time.Time
}

// NewService creates a billing service from an injected repository and gateway.
func NewService(repo Repository, gateway Gateway) *Service {
	return &Service{repo: repo, gateway: gateway, now: time.Now}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithRetrier schedules a background resync whenever a webhook fails after
// the subscription id is known.
func (s *Service) WithRetrier(r Retrier) *Service {
	s.retrier = r
	return s
}

// ProcessWebhook applies one notification. It never returns an error; failures
// are reported through the outcome so the caller can still acknowledge.
func (s *Service) ProcessWebhook(ctx context.Context, n Notification) Outcome {
	if !IsSubscriptionEvent(n.Type) {
		return Ignored(ReasonEventTypeNotHandled, n.SubscriptionID)
	}
	subID := strings.TrimSpace(n.SubscriptionID)
	if subID == "" {
		return Ignored(ReasonMissingSubscriptionID, "")
	}

	out := s.reconcile(ctx, subID, n.Raw)
	if out.Kind == OutcomeError && s.retrier != nil {
		if err := s.retrier.EnqueueSubscriptionSync(ctx, subID, out.Stage); err != nil {
			log.Errorw("mercadopago webhook: could not schedule resync", "subscription_id", subID, "error", err)
		} else {
			out.RetryScheduled = true
		}
	}
	return out
}

// ResyncSubscription re-reads one subscription and applies it. Only error
// outcomes are returned as errors; ignored outcomes are final.
func (s *Service) ResyncSubscription(ctx context.Context, subscriptionID string) error {
	out := s.reconcile(ctx, strings.TrimSpace(subscriptionID), nil)
	if out.Kind == OutcomeError {
		return fmt.Errorf("%s: %w", out.Stage, out.Err)
	}
	return nil
}

// SyncWorkshop re-reads the workshop's own subscription and applies it.
func (s *Service) SyncWorkshop(ctx context.Context, workshopID string) Outcome {
	ws, err := s.repo.GetByID(ctx, workshopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Ignored(ReasonWorkshopNotFound, "")
		}
		log.Errorw("billing sync: workshop lookup failed", "workshop_id", workshopID, "error", err)
		return Failed(StageWorkshopLookup, "", err)
	}
	subID := ws.SubscriptionID()
	if subID == "" {
		return Ignored(ReasonMissingSubscriptionID, "")
	}
	return s.reconcile(ctx, subID, nil)
}

func (s *Service) reconcile(ctx context.Context, subscriptionID string, raw []byte) Outcome {
	pre, err := s.gateway.GetPreapproval(ctx, subscriptionID)
	if err != nil {
		log.Errorw("mercadopago webhook: status fetch failed",
			"subscription_id", subscriptionID,
			"payload", string(raw),
			"error", err,
		)
		return Failed(StageStatusFetch, subscriptionID, err)
	}
	newStatus := MapPreapprovalStatus(pre.Status)

	ws, err := s.repo.GetBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("mercadopago webhook: no workshop for subscription %s (status=%s)", subscriptionID, pre.Status)
			return Ignored(ReasonWorkshopNotFound, subscriptionID)
		}
		log.Errorw("mercadopago webhook: workshop lookup failed",
			"subscription_id", subscriptionID,
			"new_status", newStatus,
			"payload", string(raw),
			"error", err,
		)
		return Failed(StageWorkshopLookup, subscriptionID, err)
	}

	now := s.now()
	newPlan := DerivePlanType(newStatus, ws.PlanType, ws.TrialEndsAt, now)
	out := Outcome{
		Kind:           OutcomeProcessed,
		SubscriptionID: subscriptionID,
		WorkshopID:     ws.ID,
		OldStatus:      ws.SubscriptionStatus,
		NewStatus:      newStatus,
		OldPlanType:    ws.PlanType,
		NewPlanType:    newPlan,
	}

	if err := s.repo.UpdatePlanState(ctx, ws.ID, newStatus, newPlan, now); err != nil {
		log.Errorw("mercadopago webhook: plan update failed",
			"subscription_id", subscriptionID,
			"workshop_id", ws.ID,
			"old_status", ws.SubscriptionStatus,
			"new_status", newStatus,
			"old_plan", ws.PlanType,
			"new_plan", newPlan,
			"payload", string(raw),
			"error", err,
		)
		out.Kind = OutcomeError
		out.Stage = StageUpdate
		out.Err = err
		return out
	}

	log.Infof("mercadopago webhook: workshop %s %s/%s -> %s/%s", ws.ID, out.OldStatus, out.OldPlanType, newStatus, newPlan)
	return out
}

// StartSubscription creates a preapproval for the workshop and links its id
// to the plan record. The returned preapproval carries the checkout URL.
func (s *Service) StartSubscription(ctx context.Context, ws *models.Workshop, payerEmail string) (*Preapproval, error) {
	if ws == nil {
		return nil, errors.New("workshop is required")
	}
	if ws.PlanType == models.PlanPro && ws.SubscriptionStatus == models.SubscriptionActive {
		return nil, ErrAlreadySubscribed
	}

	pre, err := s.gateway.CreateSubscription(ctx, SubscriptionRequest{
		ExternalReference: ws.ID,
		PayerEmail:        payerEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("create preapproval: %w", err)
	}
	if err := s.repo.SetSubscriptionID(ctx, ws.ID, pre.ID, s.now()); err != nil {
		return nil, fmt.Errorf("store subscription id: %w", err)
	}
	return pre, nil
}
