package routes

import (
	"github.com/okothmichael/tutor_marketplace/handlers"
	"github.com/okothmichael/tutor_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api")

	bookings := api.Group("/bookings", middleware.Protected())
	bookings.Post("", handlers.CreateBooking)
	bookings.Get("", handlers.GetMyBookings)
	bookings.Get("/:id", handlers.GetBooking)
	bookings.Patch("/:id/status", handlers.UpdateBookingStatus)
}
