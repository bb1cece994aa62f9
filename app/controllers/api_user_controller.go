package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/eubbbruno/instauto/app/repository"
	"github.com/eubbbruno/instauto/internal/pkg/entitlements"
	"github.com/eubbbruno/instauto/internal/pkg/usercontext"
)

// AccountController serves the authenticated account summary
type AccountController struct {
	repos *repository.Repositories
	now   func() time.Time
}

func NewAccountController(repos *repository.Repositories) *AccountController {
	return &AccountController{repos: repos, now: time.Now}
}

var accountController *AccountController

func InitializeAccountController() {
	accountController = NewAccountController(repository.GetGlobalRepositories())
}

func GetAccountController() *AccountController {
	if accountController == nil {
		InitializeAccountController()
	}
	return accountController
}

func HandleGetAccount(c *fiber.Ctx) error {
	return GetAccountController().HandleGetAccount(c)
}

// HandleGetAccount returns profile information and, for workshops, the plan state.
func (ac *AccountController) HandleGetAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	account, err := ac.repos.Profile.GetByID(ctx, userCtx.ProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load profile"})
	}

	response := fiber.Map{
		"id":            account.ID,
		"name":          account.Name,
		"email":         account.Email,
		"account_type":  account.AccountType,
		"status":        account.Status,
		"avatar_url":    account.AvatarURL,
		"created_at":    account.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at": formatTimePtr(account.LastLoginAt),
	}

	if account.IsWorkshop() {
		ws, err := ac.repos.Workshop.GetByProfileID(ctx, account.ID)
		switch {
		case err == nil:
			decision := entitlements.Evaluate(ws, ac.now())
			response["workshop"] = fiber.Map{
				"id":                  ws.ID,
				"name":                ws.Name,
				"plan_type":           ws.PlanType,
				"subscription_status": ws.SubscriptionStatus,
				"trial_ends_at":       formatTimePtr(ws.TrialEndsAt),
				"has_subscription":    ws.SubscriptionID() != "",
				"access":              decision,
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			response["workshop"] = nil
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load workshop"})
		}
	}

	return c.JSON(response)
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
