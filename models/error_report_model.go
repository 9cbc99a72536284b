package models

import (
	"time"

	"github.com/google/uuid"
)

type ErrorReport struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID    *uuid.UUID `json:"user_id"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	Stack     *string    `gorm:"type:text" json:"stack"`
	PageURL   *string    `gorm:"size:500" json:"page_url"`
	UserAgent *string    `gorm:"size:500" json:"user_agent"`
	Resolved  bool       `gorm:"default:false" json:"resolved"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
