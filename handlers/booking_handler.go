package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/okothmichael/tutor_marketplace/database"
	"github.com/okothmichael/tutor_marketplace/models"
	"github.com/okothmichael/tutor_marketplace/notifications"
	ws "github.com/okothmichael/tutor_marketplace/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateBookingRequest struct {
	AvailabilitySlotID string  `json:"availability_slot_id" validate:"required,uuid"`
	Note               *string `json:"note,omitempty"`
}

func CreateBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	studentID, _ := uuid.Parse(claims["user_id"].(string))

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	slotID, _ := uuid.Parse(req.AvailabilitySlotID)

	var booking models.Booking
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var slot models.AvailabilitySlot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&slot, "id = ?", slotID).Error; err != nil {
			return errors.New("availability slot not found")
		}
		if slot.IsBooked {
			return errors.New("this slot is no longer available")
		}
		if slot.StartTime.Before(time.Now()) {
			return errors.New("this slot has already passed")
		}
		if slot.TutorID == studentID {
			return errors.New("you cannot book your own slot")
		}

		var tutor models.TutorProfile
		if err := tx.First(&tutor, "user_id = ?", slot.TutorID).Error; err != nil {
			return errors.New("tutor profile not found")
		}

		slot.IsBooked = true
		if err := tx.Save(&slot).Error; err != nil {
			return err
		}

		price := tutor.HourlyRate * slot.EndTime.Sub(slot.StartTime).Hours()
		booking = models.Booking{
			StudentID:          studentID,
			TutorID:            slot.TutorID,
			AvailabilitySlotID: slot.ID,
			Status:             models.BookingPending,
			Price:              price,
			Note:               req.Note,
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		status := fiber.StatusBadRequest
		if err.Error() == "availability slot not found" {
			status = fiber.StatusNotFound
		} else if err.Error() == "this slot is no longer available" {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	go func() {
		var tutor models.User
		if err := database.DB.First(&tutor, "id = ?", booking.TutorID).Error; err == nil {
			notifications.SendEmail(tutor.FullName, tutor.Email, "You Have a New Booking Request!", "<h1>New Booking Request</h1><p>A student has requested a session with you. Log in to confirm or reject it.</p>")
		}
	}()
	ws.NotifyBookingEvent(booking.TutorID, booking.ID, booking.Status, "A student has requested a session with you.")

	return c.Status(fiber.StatusCreated).JSON(booking)
}

func GetMyBookings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	role := claims["role"].(string)

	query := database.DB.
		Preload("Student").
		Preload("Tutor").
		Preload("AvailabilitySlot").
		Joins("JOIN availability_slots on bookings.availability_slot_id = availability_slots.id").
		Order("availability_slots.start_time desc")

	if role == models.RoleTutor {
		query = query.Where("bookings.tutor_id = ?", userID)
	} else {
		query = query.Where("bookings.student_id = ?", userID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("bookings.status = ?", status)
	}

	var bookings []models.Booking
	query.Find(&bookings)

	return c.JSON(bookings)
}

func GetBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	role := claims["role"].(string)
	bookingID := c.Params("id")

	var booking models.Booking
	err := database.DB.
		Preload("Student").
		Preload("Tutor").
		Preload("AvailabilitySlot").
		First(&booking, "id = ?", bookingID).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	if booking.StudentID != userID && booking.TutorID != userID && role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your booking"})
	}

	return c.JSON(booking)
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=CONFIRMED REJECTED CANCELLED COMPLETED"`
}

func UpdateBookingStatus(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	role := claims["role"].(string)
	bookingID := c.Params("id")

	var req UpdateBookingStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var booking models.Booking
	if err := database.DB.Preload("AvailabilitySlot").First(&booking, "id = ?", bookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	if role != models.RoleAdmin {
		if booking.StudentID != userID && booking.TutorID != userID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your booking"})
		}
		// The tutor edges belong to the booking's tutor, not any tutor.
		if role == models.RoleTutor && booking.TutorID != userID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not the tutor for this booking"})
		}
	}

	if !models.AllowedTransition(booking.Status, req.Status, role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Cannot change a %s booking to %s", booking.Status, req.Status),
		})
	}
	if req.Status == models.BookingCompleted && booking.AvailabilitySlot.EndTime.After(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot mark a session as complete before it has ended"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		booking.Status = req.Status
		if err := tx.Omit(clause.Associations).Save(&booking).Error; err != nil {
			return err
		}

		if models.ReleasesSlot(req.Status) {
			return tx.Model(&models.AvailabilitySlot{}).
				Where("id = ?", booking.AvailabilitySlotID).
				Update("is_booked", false).Error
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update booking status"})
	}

	notifyBookingTransition(&booking, userID)

	return c.JSON(booking)
}

var transitionEmailSubjects = map[string]string{
	models.BookingConfirmed: "Your Booking is Confirmed!",
	models.BookingRejected:  "Your Booking Request was Declined",
	models.BookingCancelled: "A Booking was Cancelled",
	models.BookingCompleted: "Your Session is Complete",
}

// notifyBookingTransition emails and pushes a websocket event to the
// participant who did not perform the transition.
func notifyBookingTransition(booking *models.Booking, actorID uuid.UUID) {
	recipientID := booking.StudentID
	if actorID == booking.StudentID {
		recipientID = booking.TutorID
	}

	subject, ok := transitionEmailSubjects[booking.Status]
	if !ok {
		return
	}

	go func() {
		var recipient models.User
		if err := database.DB.First(&recipient, "id = ?", recipientID).Error; err == nil {
			notifications.SendEmail(recipient.FullName, recipient.Email, subject,
				fmt.Sprintf("<h1>Booking Update</h1><p>Your booking is now %s. Log in to see the details.</p>", booking.Status))
		}
	}()
	ws.NotifyBookingEvent(recipientID, booking.ID, booking.Status, subject)
}
