package routes

import (
	"github.com/okothmichael/tutor_marketplace/handlers"
	"github.com/okothmichael/tutor_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func CategoryRoutes(app *fiber.App) {
	api := app.Group("/api")

	categories := api.Group("/categories")
	categories.Get("", handlers.ListCategories)
	categories.Post("", middleware.Protected(), middleware.AdminRequired(), handlers.CreateCategory)
	categories.Put("/:id", middleware.Protected(), middleware.AdminRequired(), handlers.UpdateCategory)
	categories.Delete("/:id", middleware.Protected(), middleware.AdminRequired(), handlers.DeleteCategory)
}
