package service

import (
	"context"
	"regexp"
	"strings"

	"teamkanban/internal/model"
	"teamkanban/internal/repository"
	"teamkanban/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CreateOrganizationInput struct {
	Name string `json:"name" validate:"required,max=255"`
	Slug string `json:"slug" validate:"omitempty,max=64"`
}

type UpdateOrganizationInput struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
	Slug *string `json:"slug" validate:"omitempty,min=1,max=64"`
}

// UserOrganization is an organization as seen by one of its members.
type UserOrganization struct {
	model.Organization
	Role    string `json:"role"`
	IsOwner bool   `json:"is_owner"`
}

// MemberView is a member's public profile and role.
type MemberView struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Image *string   `json:"image"`
	Role  string    `json:"role"`
}

type OrganizationService struct {
	repos   *repository.Store
	tenants TenantResolver
}

func NewOrganizationService(repos *repository.Store, tenants TenantResolver) *OrganizationService {
	return &OrganizationService{repos: repos, tenants: tenants}
}

// Create makes an organization with userID as its owner.
func (s *OrganizationService) Create(ctx context.Context, userID uuid.UUID, in CreateOrganizationInput) (*model.Organization, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	var org *model.Organization
	err := s.repos.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		org, err = createOrganization(ctx, tx, userID, in.Name, in.Slug)
		return err
	})
	if err != nil {
		return nil, fail("organization.create", err, logrus.Fields{"user_id": userID})
	}
	return org, nil
}

// createOrganization inserts the organization and its owner membership. An
// empty slug is derived from the name; a given slug must be free.
func createOrganization(ctx context.Context, repos *repository.Store, userID uuid.UUID, name, slug string) (*model.Organization, error) {
	if slug == "" {
		slug = Slugify(name) + "-" + uuid.NewString()[:6]
	} else {
		slug = Slugify(slug)
	}
	if slug == "" {
		return nil, invalid("slug is empty")
	}
	taken, err := repos.Organizations.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrConflict
	}

	org := &model.Organization{Name: name, Slug: slug}
	if err := repos.Organizations.Create(ctx, org); err != nil {
		return nil, err
	}
	member := &model.Member{OrganizationID: org.ID, UserID: userID, Role: model.RoleOwner}
	if err := repos.Organizations.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return org, nil
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	return strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// DefaultOrganizationName is the name of the workspace created on sign-up.
func DefaultOrganizationName(userName string) string {
	return userName + "'s workspace"
}

func (s *OrganizationService) GetUserOrganizations(ctx context.Context, userID uuid.UUID) ([]UserOrganization, error) {
	members, err := s.repos.Organizations.Memberships(ctx, userID)
	if err != nil {
		return nil, fail("organization.list", err, logrus.Fields{"user_id": userID})
	}
	orgs := make([]UserOrganization, 0, len(members))
	for _, m := range members {
		if m.Organization == nil {
			continue
		}
		orgs = append(orgs, UserOrganization{
			Organization: *m.Organization,
			Role:         m.Role,
			IsOwner:      m.Role == model.RoleOwner,
		})
	}
	return orgs, nil
}

func (s *OrganizationService) GetActiveOrganization(ctx context.Context, userID uuid.UUID) (*model.Organization, error) {
	fields := logrus.Fields{"user_id": userID}
	orgID, err := s.tenants.ResolveActiveOrganization(ctx, userID)
	if err != nil {
		return nil, fail("organization.active", err, fields)
	}
	org, err := s.repos.Organizations.GetByID(ctx, orgID)
	if err != nil {
		return nil, fail("organization.active", err, fields)
	}
	if org == nil {
		return nil, ErrNotFound
	}
	return org, nil
}

// SetActiveOrganization switches every session of the user to orgID. The
// user must be a member. Cache keys carry the organization id, so nothing is
// invalidated.
func (s *OrganizationService) SetActiveOrganization(ctx context.Context, userID, orgID uuid.UUID) error {
	fields := logrus.Fields{"user_id": userID, "organization_id": orgID}

	member, err := s.repos.Organizations.FindMember(ctx, store.And(
		store.Eq("organization_id", orgID),
		store.Eq("user_id", userID),
	))
	if err != nil {
		return fail("organization.set_active", err, fields)
	}
	if member == nil {
		return ErrNotFound
	}
	if _, err := s.repos.Sessions.SetActiveOrganization(ctx, userID, orgID); err != nil {
		return fail("organization.set_active", err, fields)
	}
	return nil
}

// Update renames the organization. Only owners may.
func (s *OrganizationService) Update(ctx context.Context, userID, orgID uuid.UUID, in UpdateOrganizationInput) (*model.Organization, error) {
	fields := logrus.Fields{"user_id": userID, "organization_id": orgID}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var org *model.Organization
	err := s.repos.Transaction(ctx, func(tx *repository.Store) error {
		member, err := tx.Organizations.FindMember(ctx, store.And(
			store.Eq("organization_id", orgID),
			store.Eq("user_id", userID),
		))
		if err != nil {
			return err
		}
		if member == nil {
			return ErrNotFound
		}
		if member.Role != model.RoleOwner {
			return ErrForbidden
		}

		updates := map[string]interface{}{}
		if in.Name != nil {
			updates["name"] = *in.Name
		}
		if in.Slug != nil {
			slug := Slugify(*in.Slug)
			if slug == "" {
				return invalid("slug is empty")
			}
			current, err := tx.Organizations.GetByID(ctx, orgID)
			if err != nil {
				return err
			}
			if current != nil && current.Slug != slug {
				taken, err := tx.Organizations.SlugExists(ctx, slug)
				if err != nil {
					return err
				}
				if taken {
					return ErrConflict
				}
			}
			updates["slug"] = slug
		}
		if len(updates) == 0 {
			org, err = tx.Organizations.GetByID(ctx, orgID)
			return err
		}
		org, err = tx.Organizations.Updates(ctx, orgID, updates)
		return err
	})
	if err != nil {
		return nil, fail("organization.update", err, fields)
	}
	if org == nil {
		return nil, ErrNotFound
	}
	return org, nil
}

// SearchMembers lists members of the active organization whose name or
// email contains query.
func (s *OrganizationService) SearchMembers(ctx context.Context, userID uuid.UUID, query string) ([]MemberView, error) {
	fields := logrus.Fields{"user_id": userID}
	orgID, err := s.tenants.ResolveActiveOrganization(ctx, userID)
	if err != nil {
		return nil, fail("organization.members", err, fields)
	}

	members, err := s.repos.Organizations.Members(ctx, orgID, strings.ToLower(strings.TrimSpace(query)))
	if err != nil {
		return nil, fail("organization.members", err, fields)
	}
	views := make([]MemberView, 0, len(members))
	for _, m := range members {
		if m.User == nil {
			continue
		}
		views = append(views, MemberView{
			ID:    m.User.ID,
			Name:  m.User.Name,
			Email: m.User.Email,
			Image: m.User.Image,
			Role:  m.Role,
		})
	}
	return views, nil
}

// MemberCount counts the members of the active organization.
func (s *OrganizationService) MemberCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	fields := logrus.Fields{"user_id": userID}
	orgID, err := s.tenants.ResolveActiveOrganization(ctx, userID)
	if err != nil {
		return 0, fail("organization.member_count", err, fields)
	}
	count, err := s.repos.Organizations.CountMembers(ctx, orgID)
	if err != nil {
		return 0, fail("organization.member_count", err, fields)
	}
	return count, nil
}
