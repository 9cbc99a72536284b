package handlers

import (
	"errors"

	"github.com/okothmichael/tutor_marketplace/database"
	"github.com/okothmichael/tutor_marketplace/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

func CreateReview(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	studentID, _ := uuid.Parse(claims["user_id"].(string))

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	bookingID, _ := uuid.Parse(req.BookingID)

	var newReview models.Review
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.First(&booking, "id = ?", bookingID).Error; err != nil {
			return errors.New("booking not found")
		}
		if booking.StudentID != studentID {
			return errors.New("you are not the student for this booking")
		}
		if booking.Status != models.BookingCompleted {
			return errors.New("reviews can only be submitted for completed bookings")
		}

		var existingReview models.Review
		if err := tx.Where("booking_id = ?", bookingID).First(&existingReview).Error; err == nil {
			return errors.New("a review for this booking has already been submitted")
		}

		newReview = models.Review{
			BookingID: booking.ID,
			StudentID: studentID,
			TutorID:   booking.TutorID,
			Rating:    req.Rating,
			Comment:   req.Comment,
		}
		if err := tx.Create(&newReview).Error; err != nil {
			return err
		}

		return recomputeTutorRating(tx, booking.TutorID)
	})

	if err != nil {
		if err.Error() == "booking not found" {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		if err.Error() == "you are not the student for this booking" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		}
		if err.Error() == "a review for this booking has already been submitted" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(newReview)
}

func GetTutorReviews(c *fiber.Ctx) error {
	tutorID := c.Params("tutorId")

	var reviews []models.Review
	database.DB.Preload("Student").Where("tutor_id = ?", tutorID).Order("created_at desc").Find(&reviews)

	return c.JSON(reviews)
}

// recomputeTutorRating persists the mean rating and review count for a
// tutor. Runs inside the caller's transaction so the aggregate can never
// drift from the review rows under concurrent writes.
func recomputeTutorRating(tx *gorm.DB, tutorID uuid.UUID) error {
	var result struct {
		Avg   float64
		Count int64
	}
	tx.Model(&models.Review{}).
		Where("tutor_id = ?", tutorID).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
		Scan(&result)

	return tx.Model(&models.TutorProfile{}).
		Where("user_id = ?", tutorID).
		Updates(map[string]interface{}{"avg_rating": result.Avg, "review_count": result.Count}).Error
}
