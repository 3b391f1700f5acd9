package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is written on login and carries the user's active organization.
type Session struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Token                string     `gorm:"uniqueIndex;not null" json:"-"`
	ActiveOrganizationID *uuid.UUID `gorm:"type:uuid" json:"active_organization_id"`
	ExpiresAt            time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
