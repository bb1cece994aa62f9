package controllers

import (
	"context"
	"time"

	"github.com/eubbbruno/instauto/app/repository"
	"github.com/eubbbruno/instauto/internal/pkg/entitlements"
	"github.com/eubbbruno/instauto/internal/pkg/middleware"
	"github.com/eubbbruno/instauto/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// AccessController exposes plan access state to the front-end
type AccessController struct {
	guard *entitlements.Guard
	repos *repository.Repositories
}

func NewAccessController(guard *entitlements.Guard, repos *repository.Repositories) *AccessController {
	return &AccessController{guard: guard, repos: repos}
}

var accessController *AccessController

func InitializeAccessController() {
	repos := repository.GetGlobalRepositories()
	accessController = NewAccessController(entitlements.NewGuard(repos.Workshop), repos)
}

func GetAccessController() *AccessController {
	if accessController == nil {
		InitializeAccessController()
	}
	return accessController
}

// Guard returns the access guard used for route gating.
func (ac *AccessController) Guard() *entitlements.Guard {
	return ac.guard
}

func HandleWorkshopAccess(c *fiber.Ctx) error {
	return GetAccessController().HandleAccess(c)
}

func HandleWorkshopDashboard(c *fiber.Ctx) error {
	return GetAccessController().HandleDashboard(c)
}

// HandleAccess returns the current access decision. Denied access is still 200.
func (ac *AccessController) HandleAccess(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	decision := ac.guard.Check(ctx, usercontext.GetProfileID(c))
	return c.Status(fiber.StatusOK).JSON(decision)
}

// HandleDashboard is a pro feature; it runs behind RequirePlanAccess.
func (ac *AccessController) HandleDashboard(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws, err := ac.repos.Workshop.GetByProfileID(ctx, usercontext.GetProfileID(c))
	if err != nil {
		log.Errorw("workshop dashboard: lookup failed", "profile_id", usercontext.GetProfileID(c), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "workshop_lookup_failed"})
	}
	decision, _ := middleware.GetPlanDecision(c)

	return c.JSON(fiber.Map{
		"workshop": ws,
		"access":   decision,
	})
}
