package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultBoardColor = "bg-blue-500"

type Board struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string    `gorm:"not null" json:"title"`
	Description    *string   `json:"description"`
	Color          string    `gorm:"not null" json:"color"`
	IsDeleted      bool      `gorm:"not null;index:idx_boards_user_deleted,priority:2" json:"is_deleted"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index:idx_boards_user_deleted,priority:1" json:"user_id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Columns []Column `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"columns,omitempty"`
}

func (b *Board) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// DefaultColumnTitles are the columns every board gets unless the caller
// supplies its own.
var DefaultColumnTitles = []string{"Todo", "In Progress", "Review", "Done"}

func DefaultColumns() []Column {
	columns := make([]Column, len(DefaultColumnTitles))
	for i, title := range DefaultColumnTitles {
		columns[i] = Column{Title: title, SortOrder: i}
	}
	return columns
}
