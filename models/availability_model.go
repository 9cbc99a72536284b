package models

import (
	"time"

	"github.com/google/uuid"
)

type AvailabilitySlot struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TutorID   uuid.UUID `gorm:"not null" json:"tutor_id"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	IsBooked  bool      `gorm:"not null;default:false" json:"is_booked"`

	Tutor User `gorm:"foreignkey:TutorID" json:"tutor,omitempty"`
}
