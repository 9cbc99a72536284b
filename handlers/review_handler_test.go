package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/okothmichael/tutor_marketplace/models"
	"github.com/okothmichael/tutor_marketplace/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// completedBooking seeds a booking that has already run its course, the
// only state a review may be attached to.
func completedBooking(t *testing.T, db *gorm.DB, student, tutor models.User) models.Booking {
	t.Helper()

	slot := createSlot(t, db, tutor, time.Now().Add(-2*time.Hour), time.Now().Add(-1*time.Hour))
	booking := models.Booking{
		StudentID:          student.ID,
		TutorID:            tutor.ID,
		AvailabilitySlotID: slot.ID,
		Status:             models.BookingCompleted,
		Price:              30,
	}
	require.NoError(t, db.Create(&booking).Error)
	return booking
}

func TestCreateReview(t *testing.T) {
	db := testutil.SetupDB(t)
	app := testutil.NewApp()

	t.Run("Creates review and recomputes tutor rating", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		student := testutil.CreateUser(t, db, "Sam Student", "sam@example.com", "secret123", models.RoleStudent)
		tutor := createTutor(t, db, "Tom Tutor", "tom@example.com", 30)
		booking := completedBooking(t, db, student, tutor)
		token := testutil.MintToken(t, student.ID, models.RoleStudent)

		resp := testutil.DoJSON(t, app, http.MethodPost, "/api/reviews", token, map[string]interface{}{
			"booking_id": booking.ID.String(),
			"rating":     4,
			"comment":    "Clear explanations, would book again.",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var review models.Review
		testutil.DecodeBody(t, resp, &review)
		assert.Equal(t, 4, review.Rating)
		assert.Equal(t, tutor.ID, review.TutorID)

		var profile models.TutorProfile
		require.NoError(t, db.First(&profile, "user_id = ?", tutor.ID).Error)
		assert.InDelta(t, 4.0, profile.AvgRating, 0.001)
		assert.EqualValues(t, 1, profile.ReviewCount)

		// A second student's review moves the average.
		other := testutil.CreateUser(t, db, "Olga Other", "olga@example.com", "secret123", models.RoleStudent)
		otherBooking := completedBooking(t, db, other, tutor)
		otherToken := testutil.MintToken(t, other.ID, models.RoleStudent)

		resp = testutil.DoJSON(t, app, http.MethodPost, "/api/reviews", otherToken, map[string]interface{}{
			"booking_id": otherBooking.ID.String(),
			"rating":     2,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		require.NoError(t, db.First(&profile, "user_id = ?", tutor.ID).Error)
		assert.InDelta(t, 3.0, profile.AvgRating, 0.001)
		assert.EqualValues(t, 2, profile.ReviewCount)
	})

	t.Run("One review per booking", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		student := testutil.CreateUser(t, db, "Sam Student", "sam@example.com", "secret123", models.RoleStudent)
		tutor := createTutor(t, db, "Tom Tutor", "tom@example.com", 30)
		booking := completedBooking(t, db, student, tutor)
		token := testutil.MintToken(t, student.ID, models.RoleStudent)

		body := map[string]interface{}{"booking_id": booking.ID.String(), "rating": 5}
		resp := testutil.DoJSON(t, app, http.MethodPost, "/api/reviews", token, body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = testutil.DoJSON(t, app, http.MethodPost, "/api/reviews", token, body)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("Rejects review for non-completed booking", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		student := testutil.CreateUser(t, db, "Sam Student", "sam@example.com", "secret123", models.RoleStudent)
		tutor := createTutor(t, db, "Tom Tutor", "tom@example.com", 30)
		slot := createSlot(t, db, tutor, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
		booking := models.Booking{
			StudentID:          student.ID,
			TutorID:            tutor.ID,
			AvailabilitySlotID: slot.ID,
			Status:             models.BookingConfirmed,
			Price:              30,
		}
		require.NoError(t, db.Create(&booking).Error)
		token := testutil.MintToken(t, student.ID, models.RoleStudent)

		resp := testutil.DoJSON(t, app, http.MethodPost, "/api/reviews", token, map[string]interface{}{
			"booking_id": booking.ID.String(),
			"rating":     5,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Only the booking's student may review", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		student := testutil.CreateUser(t, db, "Sam Student", "sam@example.com", "secret123", models.RoleStudent)
		tutor := createTutor(t, db, "Tom Tutor", "tom@example.com", 30)
		booking := completedBooking(t, db, student, tutor)

		stranger := testutil.CreateUser(t, db, "Eve Other", "eve@example.com", "secret123", models.RoleStudent)
		strangerToken := testutil.MintToken(t, stranger.ID, models.RoleStudent)

		resp := testutil.DoJSON(t, app, http.MethodPost, "/api/reviews", strangerToken, map[string]interface{}{
			"booking_id": booking.ID.String(),
			"rating":     1,
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Rejects out-of-range rating", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		student := testutil.CreateUser(t, db, "Sam Student", "sam@example.com", "secret123", models.RoleStudent)
		tutor := createTutor(t, db, "Tom Tutor", "tom@example.com", 30)
		booking := completedBooking(t, db, student, tutor)
		token := testutil.MintToken(t, student.ID, models.RoleStudent)

		for _, rating := range []int{0, 6, -1} {
			resp := testutil.DoJSON(t, app, http.MethodPost, "/api/reviews", token, map[string]interface{}{
				"booking_id": booking.ID.String(),
				"rating":     rating,
			})
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		}
	})

	t.Run("Rejects unknown booking", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		student := testutil.CreateUser(t, db, "Sam Student", "sam@example.com", "secret123", models.RoleStudent)
		token := testutil.MintToken(t, student.ID, models.RoleStudent)

		resp := testutil.DoJSON(t, app, http.MethodPost, "/api/reviews", token, map[string]interface{}{
			"booking_id": "3f8e1cb0-0000-0000-0000-000000000000",
			"rating":     3,
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestGetTutorReviews(t *testing.T) {
	db := testutil.SetupDB(t)
	app := testutil.NewApp()

	testutil.TruncateAll(t, db)
	student := testutil.CreateUser(t, db, "Sam Student", "sam@example.com", "secret123", models.RoleStudent)
	tutor := createTutor(t, db, "Tom Tutor", "tom@example.com", 30)
	booking := completedBooking(t, db, student, tutor)
	review := models.Review{
		BookingID: booking.ID,
		StudentID: student.ID,
		TutorID:   tutor.ID,
		Rating:    5,
		Comment:   "Great session.",
	}
	require.NoError(t, db.Create(&review).Error)

	// Public endpoint, no token required.
	resp := testutil.DoJSON(t, app, http.MethodGet, "/api/reviews/tutor/"+tutor.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var reviews []models.Review
	testutil.DecodeBody(t, resp, &reviews)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Great session.", reviews[0].Comment)
	assert.Equal(t, "Sam Student", reviews[0].Student.FullName)
}
