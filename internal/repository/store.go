package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories over one connection or transaction.
type Store struct {
	db *gorm.DB

	Users         *UserRepository
	Organizations *OrganizationRepository
	Sessions      *SessionRepository
	Invitations   *InvitationRepository
	Boards        *BoardRepository
	Columns       *ColumnRepository
	Tasks         *TaskRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepository(db),
		Organizations: NewOrganizationRepository(db),
		Sessions:      NewSessionRepository(db),
		Invitations:   NewInvitationRepository(db),
		Boards:        NewBoardRepository(db),
		Columns:       NewColumnRepository(db),
		Tasks:         NewTaskRepository(db),
	}
}

// Transaction runs fn with repositories bound to a single transaction. The
// transaction rolls back when fn returns an error or panics.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
