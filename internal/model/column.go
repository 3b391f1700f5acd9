package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Column struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	SortOrder int       `gorm:"column:sort_order;not null;index:idx_board_columns_board_sort,priority:2" json:"sort_order"`
	BoardID   uuid.UUID `gorm:"type:uuid;not null;index:idx_board_columns_board_sort,priority:1" json:"board_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tasks []Task `gorm:"foreignKey:BoardColumnID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}

func (Column) TableName() string {
	return "board_columns"
}

func (c *Column) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
