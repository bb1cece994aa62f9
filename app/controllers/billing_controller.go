package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/eubbbruno/instauto/app/repository"
	"github.com/eubbbruno/instauto/internal/pkg/billing"
	"github.com/eubbbruno/instauto/internal/pkg/env"
	"github.com/eubbbruno/instauto/internal/pkg/jobqueue"
	"github.com/eubbbruno/instauto/internal/pkg/metrics"
	"github.com/eubbbruno/instauto/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// BillingController handles Mercado Pago webhooks and subscription requests
type BillingController struct {
	billing       *billing.Service
	repos         *repository.Repositories
	webhookSecret string
}

// NewBillingController creates a new billing controller
func NewBillingController(svc *billing.Service, repos *repository.Repositories, webhookSecret string) *BillingController {
	return &BillingController{
		billing:       svc,
		repos:         repos,
		webhookSecret: strings.TrimSpace(webhookSecret),
	}
}

// Global billing controller instance
var billingController *BillingController

// InitializeBillingController initializes the global billing controller with repositories
func InitializeBillingController() {
	repos := repository.GetGlobalRepositories()
	svc := billing.NewService(repos.Workshop, billing.NewMercadoPagoClientFromEnv())
	if jobqueue.Enabled() {
		jobs := jobqueue.GetManager()
		jobs.GetQueue().SetSubscriptionSyncer(svc)
		svc.WithRetrier(jobs)
	}
	billingController = NewBillingController(svc, repos, env.GetEnv("MERCADOPAGO_WEBHOOK_SECRET", ""))
}

// GetBillingController returns the global billing controller instance
func GetBillingController() *BillingController {
	if billingController == nil {
		InitializeBillingController()
	}
	return billingController
}

func HandleMercadoPagoWebhook(c *fiber.Ctx) error {
	return GetBillingController().HandleWebhook(c)
}

func HandleMercadoPagoWebhookStatus(c *fiber.Ctx) error {
	return GetBillingController().HandleWebhookStatus(c)
}

func HandleStartSubscription(c *fiber.Ctx) error {
	return GetBillingController().HandleStartSubscription(c)
}

func HandleSyncSubscription(c *fiber.Ctx) error {
	return GetBillingController().HandleSyncSubscription(c)
}

// HandleWebhook always acknowledges with 200; the body carries the outcome.
func (bc *BillingController) HandleWebhook(c *fiber.Ctx) error {
	start := time.Now()
	rawBody := append([]byte(nil), c.BodyRaw()...)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	out := bc.processWebhook(ctx, c, rawBody)

	reason := out.Reason
	if out.Kind == billing.OutcomeError {
		reason = out.Stage
	}
	metrics.WebhookOutcomesTotal.WithLabelValues(string(out.Kind), reason).Inc()
	metrics.WebhookDuration.WithLabelValues(string(out.Kind)).Observe(time.Since(start).Seconds())
	if out.Kind == billing.OutcomeProcessed && out.OldPlanType != out.NewPlanType {
		metrics.PlanTransitionsTotal.WithLabelValues(string(out.OldPlanType), string(out.NewPlanType)).Inc()
	}

	return c.Status(fiber.StatusOK).JSON(out.Response())
}

func (bc *BillingController) processWebhook(ctx context.Context, c *fiber.Ctx, rawBody []byte) billing.Outcome {
	n, err := billing.ParseNotification(rawBody, func(key string) string { return c.Query(key) })
	if err != nil {
		log.Warnf("mercadopago webhook: unreadable payload from %s: %v body=%s", clientIP(c), err, string(rawBody))
		return billing.Ignored(billing.ReasonInvalidPayload, "")
	}
	n.RequestID = strings.TrimSpace(c.Get("x-request-id"))
	n.Signature = strings.TrimSpace(c.Get("x-signature"))

	if bc.webhookSecret != "" && !billing.VerifyMercadoPagoSignature(n.Signature, n.RequestID, n.SubscriptionID, bc.webhookSecret) {
		log.Warnf("mercadopago webhook: invalid signature from %s request_id=%s subscription_id=%s", clientIP(c), n.RequestID, n.SubscriptionID)
		return billing.Ignored(billing.ReasonInvalidSignature, n.SubscriptionID)
	}

	return bc.billing.ProcessWebhook(ctx, n)
}

// HandleWebhookStatus lets operators check the endpoint is reachable.
func (bc *BillingController) HandleWebhookStatus(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "ok",
		"message":   "Mercado Pago webhook endpoint",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type startSubscriptionRequest struct {
	PayerEmail string `json:"payer_email"`
}

// HandleStartSubscription creates a Mercado Pago preapproval for the logged-in workshop
func (bc *BillingController) HandleStartSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	ws, err := bc.repos.Workshop.GetByProfileID(ctx, userCtx.ProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "workshop_not_found"})
		}
		log.Errorw("start subscription: workshop lookup failed", "profile_id", userCtx.ProfileID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "workshop_lookup_failed"})
	}

	var req startSubscriptionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
		}
	}
	payerEmail := strings.TrimSpace(req.PayerEmail)
	if payerEmail == "" {
		profile, err := bc.repos.Profile.GetByID(ctx, userCtx.ProfileID)
		if err != nil {
			log.Errorw("start subscription: profile lookup failed", "profile_id", userCtx.ProfileID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "profile_lookup_failed"})
		}
		payerEmail = profile.Email
	}

	pre, err := bc.billing.StartSubscription(ctx, ws, payerEmail)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrAlreadySubscribed):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "already_subscribed"})
		case errors.Is(err, billing.ErrMissingAccessToken):
			log.Errorw("start subscription: payment gateway not configured", "workshop_id", ws.ID, "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "billing_unavailable"})
		default:
			log.Errorw("start subscription: preapproval failed", "workshop_id", ws.ID, "error", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "subscription_create_failed"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"subscriptionId": pre.ID,
		"status":         pre.Status,
		"initPoint":      pre.InitPoint,
	})
}

// HandleSyncSubscription re-reads the workshop's subscription from Mercado Pago
func (bc *BillingController) HandleSyncSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	ws, err := bc.repos.Workshop.GetByProfileID(ctx, userCtx.ProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "workshop_not_found"})
		}
		log.Errorw("sync subscription: workshop lookup failed", "profile_id", userCtx.ProfileID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "workshop_lookup_failed"})
	}

	out := bc.billing.SyncWorkshop(ctx, ws.ID)
	status := fiber.StatusOK
	if out.Kind == billing.OutcomeError {
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(out.Response())
}
