package routes

import (
	"github.com/okothmichael/tutor_marketplace/handlers"
	"github.com/gofiber/fiber/v2"
)

func ErrorRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Post("/errors", handlers.ReportClientError)
}
