package jobs

import (
	"log"
	"time"

	"github.com/okothmichael/tutor_marketplace/database"
	"github.com/okothmichael/tutor_marketplace/models"
	"gorm.io/gorm"
)

// ExpireStalePendingBookings rejects bookings the tutor never acted on
// once their slot start time has passed, freeing the slot for cleanup.
func ExpireStalePendingBookings() {
	log.Println("Running job: ExpireStalePendingBookings...")

	var staleBookings []models.Booking
	err := database.DB.
		Joins("JOIN availability_slots on bookings.availability_slot_id = availability_slots.id").
		Where("bookings.status = ? AND availability_slots.start_time < ?", models.BookingPending, time.Now()).
		Find(&staleBookings).Error
	if err != nil {
		log.Printf("Error checking for stale pending bookings: %v", err)
		return
	}

	if len(staleBookings) == 0 {
		return
	}

	for _, booking := range staleBookings {
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Booking{}).
				Where("id = ? AND status = ?", booking.ID, models.BookingPending).
				Update("status", models.BookingRejected).Error; err != nil {
				return err
			}
			return tx.Model(&models.AvailabilitySlot{}).
				Where("id = ?", booking.AvailabilitySlotID).
				Update("is_booked", false).Error
		})
		if err != nil {
			log.Printf("Error expiring booking %s: %v", booking.ID, err)
		}
	}

	log.Printf("Expired %d stale pending booking(s).", len(staleBookings))
}
