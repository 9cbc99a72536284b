package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleStudent = "STUDENT"
	RoleTutor   = "TUTOR"
	RoleAdmin   = "ADMIN"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     string    `gorm:"size:20;not null;default:'STUDENT'" json:"role"`
	IsActive bool      `gorm:"default:true" json:"is_active"`

	ProfilePictureURL *string `gorm:"size:255" json:"profile_picture_url"`
	TimeZone          *string `gorm:"size:100" json:"time_zone"`
	Bio               *string `gorm:"type:text" json:"bio"`

	ResetPasswordToken          *string    `gorm:"size:255;unique" json:"-"`
	ResetPasswordTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
