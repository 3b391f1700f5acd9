package repository

import (
	"context"
	"time"

	"teamkanban/internal/model"
	"teamkanban/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Create(ctx context.Context, invitation *model.Invitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

// Pending narrows p to pending invitations that have not expired at now.
func Pending(p store.Predicate, now time.Time) store.Predicate {
	return store.And(p,
		store.Eq("invitations.status", model.InvitationPending),
		store.Gt("invitations.expires_at", now),
	)
}

// FindOne returns the invitation matching p, locked for the rest of the
// transaction.
func (r *InvitationRepository) FindOne(ctx context.Context, p store.Predicate) (*model.Invitation, error) {
	var invitation model.Invitation
	err := store.Apply(store.ForUpdate(r.db.WithContext(ctx).Model(&model.Invitation{})), p).
		Take(&invitation).Error
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// ListPending returns unexpired pending invitations matching p, latest
// expiry first, with organization and inviter loaded.
func (r *InvitationRepository) ListPending(ctx context.Context, p store.Predicate, now time.Time) ([]model.Invitation, error) {
	invitations := []model.Invitation{}
	err := store.Apply(r.db.WithContext(ctx).Model(&model.Invitation{}), Pending(p, now)).
		Preload("Organization").
		Preload("Inviter", func(db *gorm.DB) *gorm.DB { return db.Select(model.PublicUserFields) }).
		Order("expires_at DESC").
		Find(&invitations).Error
	return invitations, err
}

func (r *InvitationRepository) CountPending(ctx context.Context, p store.Predicate, now time.Time) (int64, error) {
	var count int64
	err := store.Apply(r.db.WithContext(ctx).Model(&model.Invitation{}), Pending(p, now)).Count(&count).Error
	return count, err
}

// Renew moves the expiry of a pending invitation.
func (r *InvitationRepository) Renew(ctx context.Context, id uuid.UUID, role string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Invitation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"role": role, "expires_at": expiresAt}).Error
}

// SetStatus transitions a pending invitation. Terminal rows for the same
// organization and email are removed first since (organization, email,
// status) is unique.
func (r *InvitationRepository) SetStatus(ctx context.Context, invitation *model.Invitation, status string) (int64, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("organization_id = ? AND email = ? AND status = ? AND id <> ?",
		invitation.OrganizationID, invitation.Email, status, invitation.ID).
		Delete(&model.Invitation{}).Error; err != nil {
		return 0, err
	}
	result := db.Model(&model.Invitation{}).
		Where("id = ? AND status = ?", invitation.ID, model.InvitationPending).
		Update("status", status)
	return result.RowsAffected, result.Error
}
