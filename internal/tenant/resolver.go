// Package tenant resolves the organization a user is currently working in.
package tenant

import (
	"context"
	"errors"
	"fmt"

	"teamkanban/internal/model"

	"github.com/google/uuid"
)

// ErrNoActiveOrganization means the user has neither a session pointing at an
// organization nor any membership.
var ErrNoActiveOrganization = errors.New("no active organization")

type SessionReader interface {
	Latest(ctx context.Context, userID uuid.UUID) (*model.Session, error)
}

type MembershipReader interface {
	LatestMembership(ctx context.Context, userID uuid.UUID) (*model.Member, error)
}

type Resolver struct {
	sessions    SessionReader
	memberships MembershipReader
}

func NewResolver(sessions SessionReader, memberships MembershipReader) *Resolver {
	return &Resolver{sessions: sessions, memberships: memberships}
}

// ResolveActiveOrganization returns the active organization of the user's
// latest session, falling back to their latest membership. The result must
// not be cached: it changes whenever the user switches organization.
func (r *Resolver) ResolveActiveOrganization(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	session, err := r.sessions.Latest(ctx, userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load session: %w", err)
	}
	if session != nil && session.ActiveOrganizationID != nil {
		return *session.ActiveOrganizationID, nil
	}

	member, err := r.memberships.LatestMembership(ctx, userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load membership: %w", err)
	}
	if member == nil {
		return uuid.Nil, ErrNoActiveOrganization
	}
	return member.OrganizationID, nil
}
