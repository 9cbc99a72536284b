package handlers_test

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/okothmichael/tutor_marketplace/models"
	"github.com/okothmichael/tutor_marketplace/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func adminToken(t *testing.T, db *gorm.DB) string {
	t.Helper()
	admin := testutil.CreateUser(t, db, "Ada Admin", "ada@example.com", "secret123", models.RoleAdmin)
	return testutil.MintToken(t, admin.ID, models.RoleAdmin)
}

func TestAdminUsers(t *testing.T) {
	db := testutil.SetupDB(t)
	app := testutil.NewApp()

	t.Run("Paginates and searches users", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		token := adminToken(t, db)
		for i := 0; i < 12; i++ {
			testutil.CreateUser(t, db, fmt.Sprintf("Student %02d", i), fmt.Sprintf("student%02d@example.com", i), "secret123", models.RoleStudent)
		}

		resp := testutil.DoJSON(t, app, http.MethodGet, "/api/admin/users?page=1&limit=5", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Data []models.User          `json:"data"`
			Meta map[string]interface{} `json:"meta"`
		}
		testutil.DecodeBody(t, resp, &body)
		assert.Len(t, body.Data, 5)
		// 12 students + the admin.
		assert.EqualValues(t, 13, body.Meta["total_users"])
		assert.EqualValues(t, 3, body.Meta["total_pages"])

		resp = testutil.DoJSON(t, app, http.MethodGet, "/api/admin/users?search=student07", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		testutil.DecodeBody(t, resp, &body)
		require.Len(t, body.Data, 1)
		assert.Equal(t, "Student 07", body.Data[0].FullName)

		resp = testutil.DoJSON(t, app, http.MethodGet, "/api/admin/users?role=ADMIN", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		testutil.DecodeBody(t, resp, &body)
		assert.Len(t, body.Data, 1)
	})

	t.Run("Toggles user status", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		token := adminToken(t, db)
		user := testutil.CreateUser(t, db, "Sam Student", "sam@example.com", "secret123", models.RoleStudent)

		resp := testutil.DoJSON(t, app, http.MethodPut, "/api/admin/users/"+user.ID.String()+"/status", token, map[string]interface{}{
			"is_active": false,
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var updated models.User
		require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
		assert.False(t, updated.IsActive)

		// Deactivated accounts cannot log in anymore.
		resp = testutil.DoJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
			"email":    "sam@example.com",
			"password": "secret123",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Deletes a tutor with all dependent rows", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		token := adminToken(t, db)
		student := testutil.CreateUser(t, db, "Sam Student", "sam@example.com", "secret123", models.RoleStudent)
		tutor := createTutor(t, db, "Tom Tutor", "tom@example.com", 30)
		booking := completedBooking(t, db, student, tutor)
		require.NoError(t, db.Create(&models.Review{
			BookingID: booking.ID,
			StudentID: student.ID,
			TutorID:   tutor.ID,
			Rating:    5,
		}).Error)

		resp := testutil.DoJSON(t, app, http.MethodDelete, "/api/admin/users/"+tutor.ID.String(), token, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		var count int64
		db.Model(&models.User{}).Where("id = ?", tutor.ID).Count(&count)
		assert.EqualValues(t, 0, count)
		db.Model(&models.Booking{}).Where("tutor_id = ?", tutor.ID).Count(&count)
		assert.EqualValues(t, 0, count)
		db.Model(&models.Review{}).Where("tutor_id = ?", tutor.ID).Count(&count)
		assert.EqualValues(t, 0, count)
		db.Model(&models.TutorProfile{}).Where("user_id = ?", tutor.ID).Count(&count)
		assert.EqualValues(t, 0, count)
	})

	t.Run("Requires admin role", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		student := testutil.CreateUser(t, db, "Sam Student", "sam@example.com", "secret123", models.RoleStudent)
		studentToken := testutil.MintToken(t, student.ID, models.RoleStudent)

		resp := testutil.DoJSON(t, app, http.MethodGet, "/api/admin/users", studentToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestAdminBookingsAndStats(t *testing.T) {
	db := testutil.SetupDB(t)
	app := testutil.NewApp()

	testutil.TruncateAll(t, db)
	token := adminToken(t, db)
	student := testutil.CreateUser(t, db, "Sam Student", "sam@example.com", "secret123", models.RoleStudent)
	tutor := createTutor(t, db, "Tom Tutor", "tom@example.com", 40)

	completed := completedBooking(t, db, student, tutor)
	pendingSlot := createSlot(t, db, tutor, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
	pending := models.Booking{
		StudentID:          student.ID,
		TutorID:            tutor.ID,
		AvailabilitySlotID: pendingSlot.ID,
		Status:             models.BookingPending,
		Price:              40,
	}
	require.NoError(t, db.Create(&pending).Error)

	t.Run("Lists all bookings with status filter", func(t *testing.T) {
		resp := testutil.DoJSON(t, app, http.MethodGet, "/api/admin/bookings", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Data []models.Booking       `json:"data"`
			Meta map[string]interface{} `json:"meta"`
		}
		testutil.DecodeBody(t, resp, &body)
		assert.Len(t, body.Data, 2)

		resp = testutil.DoJSON(t, app, http.MethodGet, "/api/admin/bookings?status=PENDING", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		testutil.DecodeBody(t, resp, &body)
		require.Len(t, body.Data, 1)
		assert.Equal(t, models.BookingPending, body.Data[0].Status)
	})

	t.Run("Dashboard stats aggregate bookings and revenue", func(t *testing.T) {
		resp := testutil.DoJSON(t, app, http.MethodGet, "/api/admin/stats", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var stats struct {
			TotalStudents      int64            `json:"total_students"`
			TotalActiveTutors  int64            `json:"total_active_tutors"`
			CompletedRevenue   float64          `json:"completed_revenue"`
			BookingsByStatus   map[string]int64 `json:"bookings_by_status"`
			BookingsLast30Days int64            `json:"bookings_last_30_days"`
		}
		testutil.DecodeBody(t, resp, &stats)
		assert.EqualValues(t, 1, stats.TotalStudents)
		assert.EqualValues(t, 1, stats.TotalActiveTutors)
		assert.InDelta(t, completed.Price, stats.CompletedRevenue, 0.01)
		assert.EqualValues(t, 1, stats.BookingsByStatus[models.BookingPending])
		assert.EqualValues(t, 1, stats.BookingsByStatus[models.BookingCompleted])
		assert.EqualValues(t, 2, stats.BookingsLast30Days)
	})

	t.Run("Exports bookings as CSV", func(t *testing.T) {
		resp := testutil.DoJSON(t, app, http.MethodGet, "/api/admin/reports/bookings", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
		// Header plus both bookings.
		assert.Len(t, lines, 3)
		assert.Contains(t, lines[0], "Booking ID")
		assert.Contains(t, string(raw), "Tom Tutor")
	})

	t.Run("Rejects malformed report dates", func(t *testing.T) {
		resp := testutil.DoJSON(t, app, http.MethodGet, "/api/admin/reports/bookings?start_date=yesterday", token, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Adds meeting link to confirmed booking only", func(t *testing.T) {
		resp := testutil.DoJSON(t, app, http.MethodPost, "/api/admin/bookings/"+pending.ID.String()+"/meeting-link", token, map[string]interface{}{
			"meeting_link": "https://meet.example.com/session-1",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		require.NoError(t, db.Model(&models.Booking{}).Where("id = ?", pending.ID).
			Update("status", models.BookingConfirmed).Error)

		resp = testutil.DoJSON(t, app, http.MethodPost, "/api/admin/bookings/"+pending.ID.String()+"/meeting-link", token, map[string]interface{}{
			"meeting_link": "https://meet.example.com/session-1",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var updated models.Booking
		require.NoError(t, db.First(&updated, "id = ?", pending.ID).Error)
		require.NotNil(t, updated.MeetingLink)
		assert.Equal(t, "https://meet.example.com/session-1", *updated.MeetingLink)
	})
}

func TestAdminDeleteReview(t *testing.T) {
	db := testutil.SetupDB(t)
	app := testutil.NewApp()

	testutil.TruncateAll(t, db)
	token := adminToken(t, db)
	student := testutil.CreateUser(t, db, "Sam Student", "sam@example.com", "secret123", models.RoleStudent)
	tutor := createTutor(t, db, "Tom Tutor", "tom@example.com", 30)
	booking := completedBooking(t, db, student, tutor)

	studentToken := testutil.MintToken(t, student.ID, models.RoleStudent)
	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/reviews", studentToken, map[string]interface{}{
		"booking_id": booking.ID.String(),
		"rating":     1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var review models.Review
	testutil.DecodeBody(t, resp, &review)

	resp = testutil.DoJSON(t, app, http.MethodDelete, "/api/admin/reviews/"+review.ID.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Aggregate goes back to zero once the only review is gone.
	var profile models.TutorProfile
	require.NoError(t, db.First(&profile, "user_id = ?", tutor.ID).Error)
	assert.InDelta(t, 0.0, profile.AvgRating, 0.001)
	assert.EqualValues(t, 0, profile.ReviewCount)

	resp = testutil.DoJSON(t, app, http.MethodDelete, "/api/admin/reviews/"+review.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
