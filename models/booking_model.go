package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingRejected  = "REJECTED"
	BookingCancelled = "CANCELLED"
	BookingCompleted = "COMPLETED"
)

type Booking struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StudentID          uuid.UUID `gorm:"not null" json:"student_id"`
	TutorID            uuid.UUID `gorm:"not null" json:"tutor_id"`
	AvailabilitySlotID uuid.UUID `gorm:"not null" json:"availability_slot_id"`
	Status             string    `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	Price              float64   `gorm:"type:numeric(10,2);not null" json:"price"`
	Note               *string   `gorm:"type:text" json:"note"`
	MeetingLink        *string   `gorm:"size:255" json:"meeting_link"`

	Student          User             `gorm:"foreignkey:StudentID" json:"student,omitempty"`
	Tutor            User             `gorm:"foreignkey:TutorID" json:"tutor,omitempty"`
	AvailabilitySlot AvailabilitySlot `gorm:"foreignkey:AvailabilitySlotID" json:"availability_slot,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AllowedTransition reports whether a booking may move between the two
// statuses when the move is requested by a user with the given role.
// The full graph is: PENDING -> CONFIRMED/REJECTED by the tutor,
// PENDING/CONFIRMED -> CANCELLED by either party, and
// CONFIRMED -> COMPLETED by the tutor. Admins may perform any edge.
func AllowedTransition(from, to, role string) bool {
	var tutorOnly bool
	switch {
	case from == BookingPending && to == BookingConfirmed:
		tutorOnly = true
	case from == BookingPending && to == BookingRejected:
		tutorOnly = true
	case from == BookingConfirmed && to == BookingCompleted:
		tutorOnly = true
	case from == BookingPending && to == BookingCancelled:
	case from == BookingConfirmed && to == BookingCancelled:
	default:
		return false
	}

	if role == RoleAdmin {
		return true
	}
	if tutorOnly {
		return role == RoleTutor
	}
	return role == RoleStudent || role == RoleTutor
}

// ReleasesSlot reports whether entering the status frees the underlying
// availability slot for rebooking.
func ReleasesSlot(status string) bool {
	return status == BookingRejected || status == BookingCancelled
}
