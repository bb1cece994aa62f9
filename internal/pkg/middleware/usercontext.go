package middleware

import (
	"strings"

	"github.com/eubbbruno/instauto/internal/pkg/session"
	"github.com/eubbbruno/instauto/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware resolves the session into an explicit user context
// for every request.
func UserContextMiddleware(c *fiber.Ctx) error {
	// Goth keeps its own session store on /auth/*
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	store := session.GetSessionStore()
	if store == nil {
		usercontext.Set(c, usercontext.UserContext{})
		return c.Next()
	}
	sess, err := store.Get(c)
	if err != nil {
		usercontext.Set(c, usercontext.UserContext{})
		return c.Next()
	}

	profileID, _ := sess.Get(usercontext.KeyProfileID).(string)
	if profileID == "" {
		usercontext.Set(c, usercontext.UserContext{})
		return c.Next()
	}

	name, _ := sess.Get(usercontext.KeyName).(string)
	accountType, _ := sess.Get(usercontext.KeyAccountType).(string)
	usercontext.Set(c, usercontext.UserContext{
		ProfileID:   profileID,
		Name:        name,
		AccountType: accountType,
		IsLoggedIn:  true,
	})
	return c.Next()
}
