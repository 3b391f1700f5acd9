package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRejected = "rejected"
)

// InvitationTTL is how long a pending invitation stays valid.
const InvitationTTL = 7 * 24 * time.Hour

type Invitation struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_invitations_org_email_status" json:"organization_id"`
	Email          string    `gorm:"not null;uniqueIndex:idx_invitations_org_email_status" json:"email"`
	Status         string    `gorm:"not null;uniqueIndex:idx_invitations_org_email_status" json:"status"`
	Role           string    `gorm:"not null" json:"role"`
	InviterID      uuid.UUID `gorm:"type:uuid;not null" json:"inviter_id"`
	ExpiresAt      time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`

	Organization *Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"organization,omitempty"`
	Inviter      *User         `gorm:"foreignKey:InviterID;constraint:OnDelete:CASCADE" json:"inviter,omitempty"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
