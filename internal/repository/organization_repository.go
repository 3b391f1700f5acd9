package repository

import (
	"context"

	"teamkanban/internal/model"
	"teamkanban/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Create(ctx context.Context, org *model.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	var org model.Organization
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Organization{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *OrganizationRepository) Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Organization, error) {
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Organization{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// OrganizationIDs returns the ids of every organization the user belongs to.
func (r *OrganizationRepository) OrganizationIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Member{}).
		Where("user_id = ?", userID).
		Pluck("organization_id", &ids).Error
	return ids, err
}

// Memberships returns the user's memberships with their organizations,
// newest first.
func (r *OrganizationRepository) Memberships(ctx context.Context, userID uuid.UUID) ([]model.Member, error) {
	members := []model.Member{}
	err := r.db.WithContext(ctx).
		Preload("Organization").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&members).Error
	return members, err
}

func (r *OrganizationRepository) AddMember(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// FindMember returns the membership matching p, or nil.
func (r *OrganizationRepository) FindMember(ctx context.Context, p store.Predicate) (*model.Member, error) {
	var member model.Member
	err := store.Apply(r.db.WithContext(ctx).Model(&model.Member{}), p).First(&member).Error
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// LatestMembership returns the user's most recently created membership.
func (r *OrganizationRepository) LatestMembership(ctx context.Context, userID uuid.UUID) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Take(&member).Error
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Members lists the organization's members with their public user fields,
// optionally filtered by a name or email fragment.
func (r *OrganizationRepository) Members(ctx context.Context, orgID uuid.UUID, query string) ([]model.Member, error) {
	p := store.Eq("members.organization_id", orgID)
	if query != "" {
		pattern := "%" + query + "%"
		p = store.And(p, store.Or(
			store.Like("users.name", pattern),
			store.Like("users.email", pattern),
		))
	}

	members := []model.Member{}
	err := store.Apply(r.db.WithContext(ctx).
		Select("members.*").
		Joins("JOIN users ON users.id = members.user_id"), p).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select(model.PublicUserFields) }).
		Order("members.created_at ASC").
		Find(&members).Error
	return members, err
}

func (r *OrganizationRepository) CountMembers(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Member{}).Where("organization_id = ?", orgID).Count(&count).Error
	return count, err
}

// MemberUserIDs returns the ids of every member of the organization.
func (r *OrganizationRepository) MemberUserIDs(ctx context.Context, orgID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Member{}).Where("organization_id = ?", orgID).Pluck("user_id", &ids).Error
	return ids, err
}
