package routes

import (
	"github.com/okothmichael/tutor_marketplace/handlers"
	"github.com/okothmichael/tutor_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func ReviewRoutes(app *fiber.App) {
	api := app.Group("/api")

	reviews := api.Group("/reviews")
	reviews.Post("", middleware.Protected(), handlers.CreateReview)
	reviews.Get("/tutor/:tutorId", handlers.GetTutorReviews)
}
