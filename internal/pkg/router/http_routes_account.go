package router

import (
	"github.com/eubbbruno/instauto/app/controllers"
	"github.com/eubbbruno/instauto/internal/pkg/env"
	"github.com/eubbbruno/instauto/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func corsConfig() cors.Config {
	return cors.Config{
		AllowOrigins:     env.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000"),
		AllowCredentials: true,
	}
}

func (h HttpRouter) registerAccountRoutes(app *fiber.App) {
	group := app.Group("", cors.New(corsConfig()))
	group.Post("/register", controllers.HandleAuthRegister)
	group.Post("/login", controllers.HandleAuthLogin)
	group.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)
}
