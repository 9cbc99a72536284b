package jobs_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okothmichael/tutor_marketplace/jobs"
	"github.com/okothmichael/tutor_marketplace/models"
	"github.com/okothmichael/tutor_marketplace/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedBooking(t *testing.T, db *gorm.DB, status string, start, end time.Time) models.Booking {
	t.Helper()

	suffix := uuid.NewString()[:8]
	student := models.User{FullName: "Sam Student", Email: "sam-" + suffix + "@example.com", Password: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)
	tutor := models.User{FullName: "Tom Tutor", Email: "tom-" + suffix + "@example.com", Password: "x", Role: models.RoleTutor}
	require.NoError(t, db.Create(&tutor).Error)
	require.NoError(t, db.Create(&models.TutorProfile{UserID: tutor.ID, HourlyRate: 30}).Error)

	slot := models.AvailabilitySlot{TutorID: tutor.ID, StartTime: start, EndTime: end, IsBooked: true}
	require.NoError(t, db.Create(&slot).Error)

	booking := models.Booking{
		StudentID:          student.ID,
		TutorID:            tutor.ID,
		AvailabilitySlotID: slot.ID,
		Status:             status,
		Price:              30,
	}
	require.NoError(t, db.Create(&booking).Error)
	return booking
}

func TestExpireStalePendingBookings(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.TruncateAll(t, db)

	stale := seedBooking(t, db, models.BookingPending, time.Now().Add(-2*time.Hour), time.Now().Add(-1*time.Hour))
	fresh := seedBooking(t, db, models.BookingPending, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
	confirmed := seedBooking(t, db, models.BookingConfirmed, time.Now().Add(-2*time.Hour), time.Now().Add(-1*time.Hour))

	jobs.ExpireStalePendingBookings()

	var got models.Booking
	require.NoError(t, db.First(&got, "id = ?", stale.ID).Error)
	assert.Equal(t, models.BookingRejected, got.Status)

	// The slot goes back on the market.
	var slot models.AvailabilitySlot
	require.NoError(t, db.First(&slot, "id = ?", stale.AvailabilitySlotID).Error)
	assert.False(t, slot.IsBooked)

	// Future pending and past confirmed bookings are left alone.
	require.NoError(t, db.First(&got, "id = ?", fresh.ID).Error)
	assert.Equal(t, models.BookingPending, got.Status)
	require.NoError(t, db.First(&got, "id = ?", confirmed.ID).Error)
	assert.Equal(t, models.BookingConfirmed, got.Status)
}
