package routes

import (
	"github.com/okothmichael/tutor_marketplace/handlers"
	"github.com/okothmichael/tutor_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	users := admin.Group("/users")
	users.Get("", handlers.GetAllUsers)
	users.Put("/:userId/status", handlers.ToggleUserStatus)
	users.Delete("/:userId", handlers.AdminDeleteUser)

	admin.Get("/bookings", handlers.AdminGetAllBookings)
	admin.Post("/bookings/:bookingId/meeting-link", handlers.AddMeetingLink)
	admin.Get("/stats", handlers.GetDashboardStats)

	reports := admin.Group("/reports")
	reports.Get("/bookings", handlers.GenerateBookingReport)

	admin.Delete("/reviews/:reviewId", handlers.AdminDeleteReview)

	errorReports := admin.Group("/error-reports")
	errorReports.Get("", handlers.ListErrorReports)
	errorReports.Put("/:id/resolve", handlers.ResolveErrorReport)
}
