package routes

import (
	"github.com/okothmichael/tutor_marketplace/handlers"
	"github.com/okothmichael/tutor_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func TutorRoutes(app *fiber.App) {
	api := app.Group("/api")

	tutors := api.Group("/tutors")

	// Fixed-path routes are registered before the :id wildcards.
	tutors.Post("/profile", middleware.Protected(), handlers.ApplyToBeATutor)
	tutors.Get("/profile", middleware.Protected(), middleware.TutorRequired(), handlers.GetMyTutorProfile)
	tutors.Put("/profile", middleware.Protected(), middleware.TutorRequired(), handlers.UpdateMyTutorProfile)

	availability := tutors.Group("/availability", middleware.Protected(), middleware.TutorRequired())
	availability.Get("", handlers.GetMyAvailability)
	availability.Post("", handlers.CreateAvailabilitySlot)
	availability.Delete("/:slotId", handlers.DeleteAvailabilitySlot)

	tutors.Get("", handlers.ListTutors)
	tutors.Get("/:id/availability", handlers.GetTutorAvailability)
	tutors.Get("/:id", handlers.GetTutorProfile)
}
