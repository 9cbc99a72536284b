package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okothmichael/tutor_marketplace/database"
	"github.com/okothmichael/tutor_marketplace/models"
	"github.com/okothmichael/tutor_marketplace/notifications"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func GetAllUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := strings.TrimSpace(c.Query("search"))
	offset := (page - 1) * limit

	var users []models.User
	var totalUsers int64

	query := database.DB.Model(&models.User{})
	countQuery := database.DB.Model(&models.User{})

	if search != "" {
		searchTerm := "%" + search + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", searchTerm, searchTerm)
		countQuery = countQuery.Where("full_name ILIKE ? OR email ILIKE ?", searchTerm, searchTerm)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
		countQuery = countQuery.Where("role = ?", role)
	}

	countQuery.Count(&totalUsers)
	query.Order("created_at desc").Offset(offset).Limit(limit).Find(&users)

	return c.JSON(fiber.Map{
		"data": users,
		"meta": fiber.Map{
			"total_users":  totalUsers,
			"total_pages":  int(math.Ceil(float64(totalUsers) / float64(limit))),
			"current_page": page,
		},
	})
}

func ToggleUserStatus(c *fiber.Ctx) error {
	userID := c.Params("userId")
	type Request struct {
		IsActive bool `json:"is_active"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	result := database.DB.Model(&models.User{}).Where("id = ?", userID).Update("is_active", req.IsActive)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user status"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{"message": "User status updated successfully."})
}

func AdminDeleteUser(c *fiber.Ctx) error {
	userID := c.Params("userId")

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return errors.New("user not found")
		}

		if user.Role == models.RoleTutor {
			if err := tx.Where("tutor_id = ?", userID).Delete(&models.Review{}).Error; err != nil {
				return err
			}
			if err := tx.Where("tutor_id = ?", userID).Delete(&models.Booking{}).Error; err != nil {
				return err
			}
			if err := tx.Where("tutor_id = ?", userID).Delete(&models.AvailabilitySlot{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.TutorProfile{UserID: user.ID}).Association("Categories").Clear(); err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", userID).Delete(&models.TutorProfile{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&user).Error
	})

	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func AdminGetAllBookings(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	status := c.Query("status")
	offset := (page - 1) * limit

	var bookings []models.Booking
	var totalBookings int64

	query := database.DB.Model(&models.Booking{})
	countQuery := database.DB.Model(&models.Booking{})

	if status != "" {
		query = query.Where("status = ?", status)
		countQuery = countQuery.Where("status = ?", status)
	}

	countQuery.Count(&totalBookings)
	query.Order("created_at desc").Offset(offset).Limit(limit).Preload("Student").Preload("Tutor").Find(&bookings)

	return c.JSON(fiber.Map{
		"data": bookings,
		"meta": fiber.Map{
			"total":     totalBookings,
			"page":      page,
			"last_page": int(math.Ceil(float64(totalBookings) / float64(limit))),
		},
	})
}

type DashboardStatsResponse struct {
	TotalStudents      int64            `json:"total_students"`
	TotalActiveTutors  int64            `json:"total_active_tutors"`
	TotalReviews       int64            `json:"total_reviews"`
	CompletedRevenue   float64          `json:"completed_revenue"`
	BookingsByStatus   map[string]int64 `json:"bookings_by_status"`
	BookingsLast30Days int64            `json:"bookings_last_30_days"`
	RecentBookings     []models.Booking `json:"recent_bookings"`
}

func GetDashboardStats(c *fiber.Ctx) error {
	var response DashboardStatsResponse

	database.DB.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&response.TotalStudents)

	database.DB.Model(&models.TutorProfile{}).
		Joins("JOIN users ON users.id = tutor_profiles.user_id").
		Where("users.is_active = ?", true).
		Count(&response.TotalActiveTutors)

	database.DB.Model(&models.Review{}).Count(&response.TotalReviews)

	database.DB.Model(&models.Booking{}).
		Where("status = ?", models.BookingCompleted).
		Select("COALESCE(SUM(price), 0)").
		Row().Scan(&response.CompletedRevenue)

	var statusCounts []struct {
		Status string
		Count  int64
	}
	database.DB.Model(&models.Booking{}).Select("status, COUNT(*) as count").Group("status").Scan(&statusCounts)
	response.BookingsByStatus = make(map[string]int64, len(statusCounts))
	for _, sc := range statusCounts {
		response.BookingsByStatus[sc.Status] = sc.Count
	}

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	database.DB.Model(&models.Booking{}).Where("created_at > ?", thirtyDaysAgo).Count(&response.BookingsLast30Days)

	database.DB.Order("created_at desc").Limit(5).Preload("Student").Preload("Tutor").Find(&response.RecentBookings)

	return c.JSON(response)
}

func GenerateBookingReport(c *fiber.Ctx) error {
	startDateStr := c.Query("start_date", time.Now().AddDate(0, -1, 0).Format("2006-01-02"))
	endDateStr := c.Query("end_date", time.Now().Format("2006-01-02"))

	startDate, err := time.Parse("2006-01-02", startDateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_date format. Use YYYY-MM-DD."})
	}
	endDate, err := time.Parse("2006-01-02", endDateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_date format. Use YYYY-MM-DD."})
	}
	endDate = endDate.Add(23*time.Hour + 59*time.Minute + 59*time.Second)

	var bookings []models.Booking
	database.DB.
		Preload("Student").
		Preload("Tutor").
		Preload("AvailabilitySlot").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Order("created_at desc").
		Find(&bookings)

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	headers := []string{"Booking ID", "Created", "Student", "Tutor", "Session Start", "Status", "Price"}
	if err := w.Write(headers); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV header"})
	}

	for _, booking := range bookings {
		row := []string{
			booking.ID.String(),
			booking.CreatedAt.Format("2006-01-02 15:04"),
			booking.Student.FullName,
			booking.Tutor.FullName,
			booking.AvailabilitySlot.StartTime.Format("2006-01-02 15:04"),
			booking.Status,
			fmt.Sprintf("%.2f", booking.Price),
		}
		if err := w.Write(row); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV row"})
		}
	}
	w.Flush()

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"bookings_%s_to_%s.csv\"", startDate.Format("2006-01-02"), endDate.Format("2006-01-02")))

	return c.Send(b.Bytes())
}

func AdminDeleteReview(c *fiber.Ctx) error {
	reviewID := c.Params("reviewId")

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, "id = ?", reviewID).Error; err != nil {
			return errors.New("review not found")
		}

		tutorID := review.TutorID

		if err := tx.Delete(&review).Error; err != nil {
			return err
		}

		return recomputeTutorRating(tx, tutorID)
	})

	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type AddLinkRequest struct {
	MeetingLink string `json:"meeting_link" validate:"required,url"`
}

func AddMeetingLink(c *fiber.Ctx) error {
	bookingID := c.Params("bookingId")

	var req AddLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var booking models.Booking
	if err := database.DB.Preload("Student").Preload("Tutor").Where("id = ?", bookingID).First(&booking).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	if booking.Status != models.BookingConfirmed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Meeting links can only be added to confirmed bookings"})
	}

	booking.MeetingLink = &req.MeetingLink
	if err := database.DB.Omit(clause.Associations).Save(&booking).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save meeting link"})
	}

	emailBody := fmt.Sprintf("<h1>Your Session Link is Ready</h1><p>Use the link below to join your session.</p><p><a href='%s'>Join Session</a></p>", req.MeetingLink)
	go notifications.SendEmail(booking.Student.FullName, booking.Student.Email, "Your Session Link", emailBody)
	go notifications.SendEmail(booking.Tutor.FullName, booking.Tutor.Email, "Your Session Link", emailBody)

	return c.JSON(booking)
}
