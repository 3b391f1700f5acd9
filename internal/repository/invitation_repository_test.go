package repository_test

import (
	"context"
	"testing"
	"time"

	"teamkanban/internal/database/dbtest"
	"teamkanban/internal/model"
	"teamkanban/internal/repository"
	"teamkanban/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvitationRepository_SetStatusReplacesTerminalRow(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.NewFixture(t, db)
	repo := repository.NewInvitationRepository(db)
	ctx := context.Background()

	owner := f.User("alice")
	org := f.Organization("acme", owner)
	newInvite := func() *model.Invitation {
		inv := &model.Invitation{
			OrganizationID: org.ID,
			Email:          "bob@example.com",
			Status:         model.InvitationPending,
			Role:           model.RoleMember,
			InviterID:      owner.ID,
			ExpiresAt:      time.Now().Add(time.Hour),
		}
		require.NoError(t, repo.Create(ctx, inv))
		return inv
	}

	first := newInvite()
	updated, err := repo.SetStatus(ctx, first, model.InvitationRejected)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	second := newInvite()
	updated, err = repo.SetStatus(ctx, second, model.InvitationRejected)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	// уже отклонённое приглашение не меняется
	updated, err = repo.SetStatus(ctx, second, model.InvitationAccepted)
	require.NoError(t, err)
	assert.Zero(t, updated)

	var rejected int64
	require.NoError(t, db.Model(&model.Invitation{}).Where("status = ?", model.InvitationRejected).Count(&rejected).Error)
	assert.Equal(t, int64(1), rejected)
}

func TestInvitationRepository_PendingIgnoresExpired(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.NewFixture(t, db)
	repo := repository.NewInvitationRepository(db)
	ctx := context.Background()

	owner := f.User("alice")
	org := f.Organization("acme", owner)
	now := time.Now()
	for i, email := range []string{"fresh@example.com", "stale@example.com"} {
		require.NoError(t, repo.Create(ctx, &model.Invitation{
			OrganizationID: org.ID,
			Email:          email,
			Status:         model.InvitationPending,
			Role:           model.RoleMember,
			InviterID:      owner.ID,
			ExpiresAt:      now.Add(time.Duration(1-2*i) * time.Hour),
		}))
	}

	pending, err := repo.ListPending(ctx, store.Eq("invitations.organization_id", org.ID), now)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "fresh@example.com", pending[0].Email)
	require.NotNil(t, pending[0].Inviter)
	assert.Equal(t, "alice", pending[0].Inviter.Name)

	count, err := repo.CountPending(ctx, store.Eq("invitations.email", "stale@example.com"), now)
	require.NoError(t, err)
	assert.Zero(t, count)

	stale, err := repo.FindOne(ctx, store.Eq("email", "stale@example.com"))
	require.NoError(t, err)
	require.NotNil(t, stale)
}
