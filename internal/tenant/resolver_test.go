package tenant_test

import (
	"context"
	"testing"
	"time"

	"teamkanban/internal/database/dbtest"
	"teamkanban/internal/model"
	"teamkanban/internal/repository"
	"teamkanban/internal/tenant"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T) (*tenant.Resolver, *dbtest.Fixture) {
	db := dbtest.Open(t)
	repos := repository.NewStore(db)
	return tenant.NewResolver(repos.Sessions, repos.Organizations), dbtest.NewFixture(t, db)
}

func TestResolveActiveOrganization_SessionOverride(t *testing.T) {
	resolver, f := newResolver(t)
	user := f.User("alice")
	first := f.Organization("first", user)
	second := f.Organization("second", user)

	now := time.Now()
	f.Session(user, &first.ID, now.Add(-time.Hour))
	f.Session(user, &second.ID, now)

	orgID, err := resolver.ResolveActiveOrganization(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, orgID)
}

func TestResolveActiveOrganization_FallsBackToLatestMembership(t *testing.T) {
	db := dbtest.Open(t)
	repos := repository.NewStore(db)
	resolver := tenant.NewResolver(repos.Sessions, repos.Organizations)
	f := dbtest.NewFixture(t, db)

	user := f.User("bob")
	owner := f.User("carol")
	f.Organization("own", user)
	shared := f.Organization("shared", owner)
	f.Session(user, nil, time.Now())

	// членство создано позже собственной организации
	require.NoError(t, repos.Organizations.AddMember(context.Background(), &model.Member{
		OrganizationID: shared.ID,
		UserID:         user.ID,
		Role:           model.RoleMember,
		CreatedAt:      time.Now().Add(time.Hour),
	}))

	orgID, err := resolver.ResolveActiveOrganization(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, shared.ID, orgID)
}

func TestResolveActiveOrganization_NoTenant(t *testing.T) {
	resolver, f := newResolver(t)
	user := f.User("dave")

	_, err := resolver.ResolveActiveOrganization(context.Background(), user.ID)
	assert.ErrorIs(t, err, tenant.ErrNoActiveOrganization)
}

type sessionsMock struct{ mock.Mock }

func (m *sessionsMock) Latest(ctx context.Context, userID uuid.UUID) (*model.Session, error) {
	args := m.Called(ctx, userID)
	session, _ := args.Get(0).(*model.Session)
	return session, args.Error(1)
}

type membershipsMock struct{ mock.Mock }

func (m *membershipsMock) LatestMembership(ctx context.Context, userID uuid.UUID) (*model.Member, error) {
	args := m.Called(ctx, userID)
	member, _ := args.Get(0).(*model.Member)
	return member, args.Error(1)
}

func TestResolveActiveOrganization_StorageError(t *testing.T) {
	sessions := new(sessionsMock)
	memberships := new(membershipsMock)
	userID := uuid.New()
	sessions.On("Latest", mock.Anything, userID).Return(nil, assert.AnError)

	_, err := tenant.NewResolver(sessions, memberships).ResolveActiveOrganization(context.Background(), userID)

	assert.ErrorIs(t, err, assert.AnError)
	memberships.AssertNotCalled(t, "LatestMembership", mock.Anything, mock.Anything)
}
