package service

import (
	"context"

	"teamkanban/internal/cache"
	"teamkanban/internal/model"
	"teamkanban/internal/repository"
	"teamkanban/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TenantResolver returns the organization the user is working in.
type TenantResolver interface {
	ResolveActiveOrganization(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// orgBoard loads a live board of the organization.
func orgBoard(ctx context.Context, repos *repository.Store, orgID, boardID uuid.UUID) (*model.Board, error) {
	board, err := repos.Boards.FindOne(ctx, store.And(
		store.Eq("id", boardID),
		store.Eq("organization_id", orgID),
		store.Eq("is_deleted", false),
	))
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, ErrNotFound
	}
	return board, nil
}

// ownedBoard loads a live board created by the user.
func ownedBoard(ctx context.Context, repos *repository.Store, userID, boardID uuid.UUID) (*model.Board, error) {
	board, err := repos.Boards.FindOne(ctx, store.And(
		store.Eq("id", boardID),
		store.Eq("user_id", userID),
		store.Eq("is_deleted", false),
	))
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, ErrNotFound
	}
	return board, nil
}

func boardColumn(ctx context.Context, repos *repository.Store, boardID, columnID uuid.UUID) (*model.Column, error) {
	column, err := repos.Columns.FindOne(ctx, store.And(
		store.Eq("id", columnID),
		store.Eq("board_id", boardID),
	))
	if err != nil {
		return nil, err
	}
	if column == nil {
		return nil, ErrNotFound
	}
	return column, nil
}

// invalidateBoard runs after a write to a board or anything inside it has
// committed. Members see the board through its organization, so that
// organization is swept. Its creator also sees it while working in any
// other organization, and those keys are indexed under that organization.
func invalidateBoard(ctx context.Context, repos *repository.Store, c cache.BoardCache, board *model.Board) {
	if _, off := c.(cache.Disabled); off {
		return
	}
	c.InvalidateOrganization(ctx, board.OrganizationID)

	orgIDs, err := repos.Organizations.OrganizationIDs(ctx, board.UserID)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"board_id": board.ID,
			"user_id":  board.UserID,
		}).Warn("cache: creator organizations not loaded, their views may be stale")
		return
	}
	for _, orgID := range orgIDs {
		if orgID == board.OrganizationID {
			continue
		}
		c.Invalidate(ctx, cache.Scope{OrganizationID: orgID, UserID: board.UserID, BoardID: board.ID})
	}
}
