package models

import (
	"time"

	"github.com/google/uuid"
)

type TutorProfile struct {
	UserID      uuid.UUID   `gorm:"primary_key" json:"user_id"`
	Headline    *string     `gorm:"size:255" json:"headline"`
	Bio         *string     `gorm:"type:text" json:"bio"`
	HourlyRate  float64     `gorm:"type:numeric(10,2);not null;default:0.00" json:"hourly_rate"`
	AvgRating   float64     `gorm:"default:0" json:"avg_rating"`
	ReviewCount int64       `gorm:"default:0" json:"review_count"`
	Categories  []*Category `gorm:"many2many:tutor_categories;" json:"categories"`
	User        User        `gorm:"foreignkey:UserID" json:"user"`
	CreatedAt   time.Time   `json:"-"`
	UpdatedAt   time.Time   `json:"-"`
}
