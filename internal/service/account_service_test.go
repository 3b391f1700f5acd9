package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"teamkanban/internal/database/dbtest"
	"teamkanban/internal/model"
	"teamkanban/internal/repository"
	"teamkanban/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTokenIssuer struct {
	mock.Mock
}

func (m *mockTokenIssuer) GenerateToken(userID, sessionID uuid.UUID) (string, time.Time, error) {
	args := m.Called(userID, sessionID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func newAccountService(t *testing.T) (*service.AccountService, *repository.Store, *mockTokenIssuer) {
	db := dbtest.Open(t)
	repos := repository.NewStore(db)
	tokens := new(mockTokenIssuer)
	return service.NewAccountService(repos, tokens), repos, tokens
}

func TestAccountService_RegisterCreatesWorkspace(t *testing.T) {
	svc, repos, _ := newAccountService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, service.RegisterInput{Email: "Alice@Example.com", Name: "Alice", Password: "secret1"})

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.HashedPassword)

	members, err := repos.Organizations.Memberships(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, model.RoleOwner, members[0].Role)
	require.NotNil(t, members[0].Organization)
	assert.Equal(t, "Alice's workspace", members[0].Organization.Name)
	assert.Contains(t, members[0].Organization.Slug, "alice-")

	_, err = svc.Register(ctx, service.RegisterInput{Email: " ALICE@example.com ", Name: "Alice 2", Password: "secret1"})
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = svc.Register(ctx, service.RegisterInput{Email: "not-an-email", Name: "Bob", Password: "secret1"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestAccountService_Login(t *testing.T) {
	svc, repos, tokens := newAccountService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, service.RegisterInput{Email: "alice@example.com", Name: "Alice", Password: "secret1"})
	require.NoError(t, err)

	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	tokens.On("GenerateToken", user.ID, mock.AnythingOfType("uuid.UUID")).Return("signed", expires, nil)

	res, err := svc.Login(ctx, service.LoginInput{Email: "ALICE@example.com", Password: "secret1"})

	require.NoError(t, err)
	assert.Equal(t, "signed", res.Token)
	assert.Equal(t, user.ID, res.User.ID)
	tokens.AssertExpectations(t)

	session, err := repos.Sessions.Latest(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Nil(t, session.ActiveOrganizationID)
	assert.WithinDuration(t, expires, session.ExpiresAt, time.Second)
}

func TestAccountService_LoginKeepsActiveOrganization(t *testing.T) {
	svc, repos, tokens := newAccountService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, service.RegisterInput{Email: "alice@example.com", Name: "Alice", Password: "secret1"})
	require.NoError(t, err)
	tokens.On("GenerateToken", user.ID, mock.Anything).Return("signed", time.Now().Add(time.Hour), nil)

	_, err = svc.Login(ctx, service.LoginInput{Email: user.Email, Password: "secret1"})
	require.NoError(t, err)
	orgID := uuid.New()
	_, err = repos.Sessions.SetActiveOrganization(ctx, user.ID, orgID)
	require.NoError(t, err)

	_, err = svc.Login(ctx, service.LoginInput{Email: user.Email, Password: "secret1"})
	require.NoError(t, err)

	latest, err := repos.Sessions.Latest(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, latest.ActiveOrganizationID)
	assert.Equal(t, orgID, *latest.ActiveOrganizationID)
}

func TestAccountService_LoginRejections(t *testing.T) {
	svc, _, tokens := newAccountService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, service.RegisterInput{Email: "alice@example.com", Name: "Alice", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, service.LoginInput{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(ctx, service.LoginInput{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	tokens.On("GenerateToken", mock.Anything, mock.Anything).Return("", time.Time{}, errors.New("boom"))
	_, err = svc.Login(ctx, service.LoginInput{Email: "alice@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, service.ErrOperationFailed)
}

func TestAccountService_GetUser(t *testing.T) {
	svc, _, _ := newAccountService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, service.RegisterInput{Email: "alice@example.com", Name: "Alice", Password: "secret1"})
	require.NoError(t, err)

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
