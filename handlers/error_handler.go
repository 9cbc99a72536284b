package handlers

import (
	"log"

	"github.com/okothmichael/tutor_marketplace/database"
	"github.com/okothmichael/tutor_marketplace/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ErrorReportRequest struct {
	Message   string  `json:"message" validate:"required,min=1,max=5000"`
	Stack     *string `json:"stack"`
	PageURL   *string `json:"page_url" validate:"omitempty,max=500"`
	UserAgent *string `json:"user_agent" validate:"omitempty,max=500"`
	UserID    *string `json:"user_id" validate:"omitempty,uuid"`
}

// ReportClientError stores a frontend error report. The endpoint is
// public: clients crash before they authenticate too.
func ReportClientError(c *fiber.Ctx) error {
	var req ErrorReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	report := models.ErrorReport{
		Message:   req.Message,
		Stack:     req.Stack,
		PageURL:   req.PageURL,
		UserAgent: req.UserAgent,
	}
	if req.UserID != nil {
		userID, _ := uuid.Parse(*req.UserID)
		report.UserID = &userID
	}

	if err := database.DB.Create(&report).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store error report"})
	}

	log.Printf("Client error reported: %s", req.Message)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": report.ID})
}

func ListErrorReports(c *fiber.Ctx) error {
	query := database.DB.Order("created_at desc")
	if resolved := c.Query("resolved"); resolved != "" {
		query = query.Where("resolved = ?", resolved == "true")
	}

	var reports []models.ErrorReport
	query.Limit(200).Find(&reports)

	return c.JSON(reports)
}

func ResolveErrorReport(c *fiber.Ctx) error {
	reportID := c.Params("id")

	result := database.DB.Model(&models.ErrorReport{}).Where("id = ?", reportID).Update("resolved", true)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve error report"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Error report not found"})
	}

	return c.JSON(fiber.Map{"message": "Error report marked as resolved."})
}
