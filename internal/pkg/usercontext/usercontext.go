package usercontext

import (
	"github.com/eubbbruno/instauto/app/models"
	"github.com/gofiber/fiber/v2"
)

// UserContext represents the authenticated account for a request
type UserContext struct {
	ProfileID   string `json:"profile_id"`
	Name        string `json:"name"`
	AccountType string `json:"account_type"`
	IsLoggedIn  bool   `json:"is_logged_in"`
}

// IsWorkshop reports whether the account is a repair shop.
func (u UserContext) IsWorkshop() bool {
	return u.IsLoggedIn && u.AccountType == models.AccountTypeWorkshop
}

// Set stores the user context for the current request
func Set(c *fiber.Ctx, u UserContext) {
	c.Locals(KeyUserContext, u)
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if u, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return u
	}
	return UserContext{}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetProfileID returns the current profile id, or empty string if not logged in
func GetProfileID(c *fiber.Ctx) string {
	return GetUserContext(c).ProfileID
}
