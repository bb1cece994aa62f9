package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
)

// HandleFlashMessages hands pending flash messages (set on redirects such as
// a failed OAuth callback) to the web client and clears them.
func HandleFlashMessages(c *fiber.Ctx) error {
	msg := flash.Get(c)
	if msg == nil {
		msg = fiber.Map{}
	}
	return c.JSON(msg)
}
