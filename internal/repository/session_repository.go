package repository

import (
	"context"

	"teamkanban/internal/model"
	"teamkanban/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// Latest returns the user's most recently created session, or nil.
func (r *SessionRepository) Latest(ctx context.Context, userID uuid.UUID) (*model.Session, error) {
	var session model.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Take(&session).Error
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SetActiveOrganization points every session of the user at orgID.
func (r *SessionRepository) SetActiveOrganization(ctx context.Context, userID, orgID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("user_id = ?", userID).
		Update("active_organization_id", orgID)
	return result.RowsAffected, result.Error
}
