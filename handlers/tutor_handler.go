package handlers

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/okothmichael/tutor_marketplace/database"
	"github.com/okothmichael/tutor_marketplace/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TutorApplicationRequest struct {
	Headline   string  `json:"headline" validate:"required"`
	Bio        string  `json:"bio" validate:"required"`
	HourlyRate float64 `json:"hourly_rate" validate:"required,gt=0"`
}

func ApplyToBeATutor(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req TutorApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var existingProfile models.TutorProfile
	err := database.DB.Where("user_id = ?", userID).First(&existingProfile).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You already have a tutor profile."})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	var newProfile models.TutorProfile
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		newProfile = models.TutorProfile{
			UserID:     userID,
			Headline:   &req.Headline,
			Bio:        &req.Bio,
			HourlyRate: req.HourlyRate,
		}
		if err := tx.Create(&newProfile).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).Update("role", models.RoleTutor).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create tutor profile"})
	}

	return c.Status(fiber.StatusCreated).JSON(newProfile)
}

func ListTutors(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := database.DB.Model(&models.TutorProfile{}).
		Preload("User").Preload("Categories").
		Joins("JOIN users ON users.id = tutor_profiles.user_id").
		Where("users.is_active = ?", true)
	countQuery := database.DB.Model(&models.TutorProfile{}).
		Joins("JOIN users ON users.id = tutor_profiles.user_id").
		Where("users.is_active = ?", true)

	if categoryID := c.Query("category_id"); categoryID != "" {
		join := "JOIN tutor_categories ON tutor_categories.tutor_profile_user_id = tutor_profiles.user_id"
		query = query.Joins(join).Where("tutor_categories.category_id = ?", categoryID)
		countQuery = countQuery.Joins(join).Where("tutor_categories.category_id = ?", categoryID)
	}
	if minRating := c.Query("min_rating"); minRating != "" {
		query = query.Where("avg_rating >= ?", minRating)
		countQuery = countQuery.Where("avg_rating >= ?", minRating)
	}
	if search := c.Query("search"); search != "" {
		searchTerm := "%" + search + "%"
		cond := "users.full_name ILIKE ? OR tutor_profiles.headline ILIKE ?"
		query = query.Where(cond, searchTerm, searchTerm)
		countQuery = countQuery.Where(cond, searchTerm, searchTerm)
	}

	var total int64
	countQuery.Count(&total)

	var tutors []models.TutorProfile
	if err := query.Order("avg_rating desc").Offset(offset).Limit(limit).Find(&tutors).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve tutors"})
	}

	return c.JSON(fiber.Map{
		"data": tutors,
		"meta": fiber.Map{
			"total":        total,
			"current_page": page,
			"total_pages":  int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

func GetTutorProfile(c *fiber.Ctx) error {
	tutorID := c.Params("id")

	var tutor models.TutorProfile
	err := database.DB.Preload("User").Preload("Categories").
		Joins("JOIN users ON users.id = tutor_profiles.user_id").
		Where("tutor_profiles.user_id = ? AND users.is_active = ?", tutorID, true).
		First(&tutor).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor not found"})
	}

	return c.JSON(tutor)
}

func GetMyTutorProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	tutorID, _ := uuid.Parse(claims["user_id"].(string))

	var tutor models.TutorProfile
	if err := database.DB.Preload("User").Preload("Categories").First(&tutor, "user_id = ?", tutorID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor profile not found"})
	}
	return c.JSON(tutor)
}

type UpdateTutorProfileRequest struct {
	Headline    *string   `json:"headline"`
	Bio         *string   `json:"bio"`
	HourlyRate  *float64  `json:"hourly_rate" validate:"omitempty,gt=0"`
	CategoryIDs *[]string `json:"category_ids" validate:"omitempty,dive,uuid"`
}

func UpdateMyTutorProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	tutorID, _ := uuid.Parse(claims["user_id"].(string))

	var req UpdateTutorProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var tutor models.TutorProfile
	if err := database.DB.First(&tutor, "user_id = ?", tutorID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor profile not found"})
	}

	if req.Headline != nil {
		tutor.Headline = req.Headline
	}
	if req.Bio != nil {
		tutor.Bio = req.Bio
	}
	if req.HourlyRate != nil {
		tutor.HourlyRate = *req.HourlyRate
	}
	if err := database.DB.Save(&tutor).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update tutor profile"})
	}

	if req.CategoryIDs != nil {
		var categories []models.Category
		if err := database.DB.Where("id IN ?", *req.CategoryIDs).Find(&categories).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to look up categories"})
		}
		if len(categories) != len(*req.CategoryIDs) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "One or more categories not found"})
		}
		if err := database.DB.Model(&tutor).Association("Categories").Replace(categories); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update categories"})
		}
	}

	database.DB.Preload("User").Preload("Categories").First(&tutor, "user_id = ?", tutorID)
	return c.JSON(tutor)
}

type CreateAvailabilityRequest struct {
	StartTime string `json:"start_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime   string `json:"end_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

func CreateAvailabilitySlot(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	tutorID, _ := uuid.Parse(claims["user_id"].(string))

	var req CreateAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	startTime, _ := time.Parse(time.RFC3339, req.StartTime)
	endTime, _ := time.Parse(time.RFC3339, req.EndTime)

	if !startTime.Before(endTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Start time must be before end time"})
	}
	if startTime.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot create a slot in the past"})
	}

	newSlot := models.AvailabilitySlot{
		TutorID:   tutorID,
		StartTime: startTime,
		EndTime:   endTime,
	}

	if err := database.DB.Create(&newSlot).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create availability slot"})
	}

	return c.Status(fiber.StatusCreated).JSON(newSlot)
}

func GetMyAvailability(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	tutorID := claims["user_id"].(string)

	var slots []models.AvailabilitySlot
	database.DB.Where("tutor_id = ?", tutorID).Order("start_time asc").Find(&slots)

	return c.JSON(slots)
}

func GetTutorAvailability(c *fiber.Ctx) error {
	tutorID := c.Params("id")

	var availableSlots []models.AvailabilitySlot
	database.DB.Where("tutor_id = ? AND is_booked = ? AND start_time > ?", tutorID, false, time.Now()).
		Order("start_time asc").
		Find(&availableSlots)

	return c.JSON(availableSlots)
}

func DeleteAvailabilitySlot(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	tutorID, _ := uuid.Parse(claims["user_id"].(string))
	slotID := c.Params("slotId")

	var slot models.AvailabilitySlot
	if err := database.DB.First(&slot, "id = ? AND tutor_id = ?", slotID, tutorID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Availability slot not found or you do not have permission to delete it."})
	}

	if slot.IsBooked {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot delete a slot that has already been booked."})
	}

	database.DB.Delete(&slot)

	return c.SendStatus(fiber.StatusNoContent)
}
