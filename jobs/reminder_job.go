package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/okothmichael/tutor_marketplace/database"
	"github.com/okothmichael/tutor_marketplace/models"
	"github.com/okothmichael/tutor_marketplace/notifications"
)

func SendSessionReminders() {
	log.Println("Running job: SendSessionReminders...")

	now := time.Now()
	lowerBound := now.Add(60 * time.Minute)
	upperBound := now.Add(65 * time.Minute)

	var upcomingBookings []models.Booking

	err := database.DB.
		Preload("Student").
		Preload("Tutor").
		Preload("AvailabilitySlot").
		Where("bookings.status = ? AND availability_slots.start_time BETWEEN ? AND ?", models.BookingConfirmed, lowerBound, upperBound).
		Joins("JOIN availability_slots on bookings.availability_slot_id = availability_slots.id").
		Find(&upcomingBookings).Error

	if err != nil {
		log.Printf("Error checking for upcoming sessions: %v", err)
		return
	}

	if len(upcomingBookings) == 0 {
		return
	}

	for _, booking := range upcomingBookings {
		log.Printf("Sending reminder for booking ID: %s", booking.ID)

		emailSubject := "Reminder: Your Session Starts in 1 Hour!"
		emailBody := fmt.Sprintf(
			"<h1>Session Reminder</h1><p>Hi there,</p><p>This is a friendly reminder that your session is scheduled to start in one hour at %s.</p>",
			booking.AvailabilitySlot.StartTime.Format(time.Kitchen),
		)
		if booking.MeetingLink != nil {
			emailBody += fmt.Sprintf("<p><b>Meeting Link:</b> <a href='%s'>Join Session</a></p>", *booking.MeetingLink)
		}

		go notifications.SendEmail(booking.Student.FullName, booking.Student.Email, emailSubject, emailBody)
		go notifications.SendEmail(booking.Tutor.FullName, booking.Tutor.Email, emailSubject, emailBody)
	}
}
