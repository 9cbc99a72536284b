package routes

import (
	"github.com/okothmichael/tutor_marketplace/handlers"
	"github.com/okothmichael/tutor_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func UserRoutes(app *fiber.App) {
	api := app.Group("/api")

	users := api.Group("/users", middleware.Protected())
	users.Get("/profile", handlers.GetProfile)
	users.Put("/profile", handlers.UpdateProfile)
	users.Put("/password", handlers.ChangePassword)
}
