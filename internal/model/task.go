package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task sort orders are unique and dense per column. The database only
// enforces uniqueness (deferred constraint); density is kept by the
// ordering engine.
type Task struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string     `gorm:"not null" json:"title"`
	Description   *string    `json:"description"`
	SortOrder     int        `gorm:"column:sort_order;not null;index:idx_tasks_column_sort,priority:2" json:"sort_order"`
	DueDate       *time.Time `json:"due_date"`
	Priority      Priority   `gorm:"type:varchar(16);not null;index" json:"priority"`
	Owner         uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner"`
	Assignee      *uuid.UUID `gorm:"type:uuid;index" json:"assignee"`
	BoardID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"board_id"`
	BoardColumnID uuid.UUID  `gorm:"type:uuid;not null;index:idx_tasks_column_sort,priority:1" json:"board_column_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	OwnerUser    *User `gorm:"foreignKey:Owner;constraint:OnDelete:CASCADE" json:"owner_user,omitempty"`
	AssigneeUser *User `gorm:"foreignKey:Assignee;constraint:OnDelete:SET NULL" json:"assignee_user,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Priority == "" {
		t.Priority = PriorityLow
	}
	return nil
}
