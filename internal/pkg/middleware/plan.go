package middleware

import (
	"context"

	"github.com/eubbbruno/instauto/internal/pkg/entitlements"
	"github.com/eubbbruno/instauto/internal/pkg/metrics"
	"github.com/eubbbruno/instauto/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// AccessChecker evaluates plan access for a profile.
type AccessChecker interface {
	Check(ctx context.Context, profileID string) entitlements.Decision
}

// RequirePlanAccess gates paid features. The plan record is read on every
// request; denied requests get 402 with the data for an upgrade prompt.
func RequirePlanAccess(guard AccessChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := guard.Check(c.UserContext(), usercontext.GetProfileID(c))
		metrics.ObserveAccess(decision.HasAccess)
		c.Locals(usercontext.KeyPlanDecision, decision)

		if !decision.HasAccess {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"error":   "upgrade_required",
				"message": "trial expired, upgrade to pro to keep using this feature",
				"access":  decision,
			})
		}
		return c.Next()
	}
}

// GetPlanDecision returns the decision stored by RequirePlanAccess.
func GetPlanDecision(c *fiber.Ctx) (entitlements.Decision, bool) {
	d, ok := c.Locals(usercontext.KeyPlanDecision).(entitlements.Decision)
	return d, ok
}
