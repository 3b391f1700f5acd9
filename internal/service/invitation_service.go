package service

import (
	"context"
	"strings"
	"time"

	"teamkanban/internal/logging"
	"teamkanban/internal/model"
	"teamkanban/internal/repository"
	"teamkanban/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CandidateLimit caps invite search results.
const CandidateLimit = 20

type InviteInput struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=owner member"`
}

type InvitationService struct {
	repos   *repository.Store
	tenants TenantResolver
	now     func() time.Time
}

func NewInvitationService(repos *repository.Store, tenants TenantResolver) *InvitationService {
	return &InvitationService{repos: repos, tenants: tenants, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SearchCandidates finds users matching query who could be invited to the
// active organization: not the caller, not a member and without a pending
// invitation.
func (s *InvitationService) SearchCandidates(ctx context.Context, userID uuid.UUID, query string) ([]model.User, error) {
	fields := logrus.Fields{"user_id": userID}
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.User{}, nil
	}

	orgID, err := s.tenants.ResolveActiveOrganization(ctx, userID)
	if err != nil {
		return nil, fail("invitation.candidates", err, fields)
	}

	memberIDs, err := s.repos.Organizations.MemberUserIDs(ctx, orgID)
	if err != nil {
		return nil, fail("invitation.candidates", err, fields)
	}
	pending, err := s.repos.Invitations.ListPending(ctx, store.Eq("invitations.organization_id", orgID), s.now())
	if err != nil {
		return nil, fail("invitation.candidates", err, fields)
	}
	invited := make(map[string]struct{}, len(pending))
	for _, inv := range pending {
		invited[normalizeEmail(inv.Email)] = struct{}{}
	}

	pattern := "%" + query + "%"
	conds := []store.Predicate{
		store.Or(store.Like("name", pattern), store.Like("email", strings.ToLower(pattern))),
		store.Ne("id", userID),
	}
	if len(memberIDs) > 0 {
		conds = append(conds, store.NotIn("id", memberIDs))
	}
	users, err := s.repos.Users.Find(ctx, store.And(conds...), CandidateLimit)
	if err != nil {
		return nil, fail("invitation.candidates", err, fields)
	}

	candidates := make([]model.User, 0, len(users))
	for _, u := range users {
		if _, ok := invited[normalizeEmail(u.Email)]; !ok {
			candidates = append(candidates, u)
		}
	}
	return candidates, nil
}

// Invite creates a pending invitation to the active organization, or
// returns the one already pending for that email with its expiry renewed.
func (s *InvitationService) Invite(ctx context.Context, userID uuid.UUID, in InviteInput) (*model.Invitation, error) {
	fields := logrus.Fields{"user_id": userID}
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	email := in.Email
	role := in.Role
	if role == "" {
		role = model.RoleMember
	}

	orgID, err := s.tenants.ResolveActiveOrganization(ctx, userID)
	if err != nil {
		return nil, fail("invitation.invite", err, fields)
	}
	fields["organization_id"] = orgID

	var invitation *model.Invitation
	err = s.repos.Transaction(ctx, func(tx *repository.Store) error {
		invitee, err := tx.Users.FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		if invitee != nil {
			member, err := tx.Organizations.FindMember(ctx, store.And(
				store.Eq("organization_id", orgID),
				store.Eq("user_id", invitee.ID),
			))
			if err != nil {
				return err
			}
			if member != nil {
				return ErrConflict
			}
		}

		now := s.now()
		invitation, err = tx.Invitations.FindOne(ctx, store.And(
			store.Eq("organization_id", orgID),
			store.Eq("email", email),
			store.Eq("status", model.InvitationPending),
		))
		if err != nil {
			return err
		}
		if invitation != nil {
			if invitation.ExpiresAt.After(now) {
				return nil
			}
			invitation.Role = role
			invitation.ExpiresAt = now.Add(model.InvitationTTL)
			return tx.Invitations.Renew(ctx, invitation.ID, invitation.Role, invitation.ExpiresAt)
		}

		invitation = &model.Invitation{
			OrganizationID: orgID,
			Email:          email,
			Role:           role,
			Status:         model.InvitationPending,
			InviterID:      userID,
			ExpiresAt:      now.Add(model.InvitationTTL),
		}
		return tx.Invitations.Create(ctx, invitation)
	})
	if err != nil {
		return nil, fail("invitation.invite", err, fields)
	}

	logging.LogEvent("invitation_sent", logrus.Fields{"invitation_id": invitation.ID, "organization_id": orgID})
	return invitation, nil
}

// ListPending returns the unexpired invitations addressed to email.
func (s *InvitationService) ListPending(ctx context.Context, email string) ([]model.Invitation, error) {
	email = normalizeEmail(email)
	if email == "" {
		return []model.Invitation{}, nil
	}
	invitations, err := s.repos.Invitations.ListPending(ctx, store.Eq("invitations.email", email), s.now())
	if err != nil {
		return nil, fail("invitation.list", err, logrus.Fields{"email": email})
	}
	return invitations, nil
}

func (s *InvitationService) PendingCount(ctx context.Context, email string) (int64, error) {
	email = normalizeEmail(email)
	if email == "" {
		return 0, nil
	}
	count, err := s.repos.Invitations.CountPending(ctx, store.Eq("invitations.email", email), s.now())
	if err != nil {
		return 0, fail("invitation.count", err, logrus.Fields{"email": email})
	}
	return count, nil
}

// Accept joins the invitation's organization. The invitation must be
// pending, unexpired and addressed to the caller's email.
func (s *InvitationService) Accept(ctx context.Context, userID, invitationID uuid.UUID) error {
	return s.respond(ctx, "invitation.accept", userID, invitationID, model.InvitationAccepted)
}

func (s *InvitationService) Reject(ctx context.Context, userID, invitationID uuid.UUID) error {
	return s.respond(ctx, "invitation.reject", userID, invitationID, model.InvitationRejected)
}

func (s *InvitationService) respond(ctx context.Context, op string, userID, invitationID uuid.UUID, status string) error {
	fields := logrus.Fields{"user_id": userID, "invitation_id": invitationID}

	err := s.repos.Transaction(ctx, func(tx *repository.Store) error {
		user, err := tx.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrNotFound
		}

		invitation, err := tx.Invitations.FindOne(ctx, repository.Pending(store.And(
			store.Eq("invitations.id", invitationID),
			store.Eq("invitations.email", normalizeEmail(user.Email)),
		), s.now()))
		if err != nil {
			return err
		}
		if invitation == nil {
			return ErrNotFound
		}

		if status == model.InvitationAccepted {
			member, err := tx.Organizations.FindMember(ctx, store.And(
				store.Eq("organization_id", invitation.OrganizationID),
				store.Eq("user_id", userID),
			))
			if err != nil {
				return err
			}
			if member == nil {
				role := invitation.Role
				if role == "" {
					role = model.RoleMember
				}
				if err := tx.Organizations.AddMember(ctx, &model.Member{
					OrganizationID: invitation.OrganizationID,
					UserID:         userID,
					Role:           role,
				}); err != nil {
					return err
				}
			}
		}

		updated, err := tx.Invitations.SetStatus(ctx, invitation, status)
		if err != nil {
			return err
		}
		if updated == 0 {
			return ErrConcurrentModification
		}
		return nil
	})
	if err != nil {
		return fail(op, err, fields)
	}

	logging.LogEvent("invitation_"+status, fields)
	return nil
}
