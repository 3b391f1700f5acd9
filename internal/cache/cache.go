// Package cache keeps read-through copies of board lists and board
// aggregates in Redis. Storage stays the source of truth: every cache
// failure is logged and treated as a miss.
package cache

import (
	"context"
	"fmt"

	"teamkanban/internal/model"

	"github.com/google/uuid"
)

// Result is the outcome of a cache read. Callers only look at Hit; Err is
// kept for logging and tests.
type Result struct {
	Hit bool
	Err error
}

// Scope names what a write touched. Zero ids mean unknown.
type Scope struct {
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	BoardID        uuid.UUID
}

type BoardCache interface {
	GetBoards(ctx context.Context, orgID, userID uuid.UUID, onlyDeleted bool, dest *[]model.Board) Result
	SetBoards(ctx context.Context, orgID, userID uuid.UUID, onlyDeleted bool, boards []model.Board)
	GetBoard(ctx context.Context, orgID, userID, boardID uuid.UUID, dest *model.Board) Result
	SetBoard(ctx context.Context, orgID, userID uuid.UUID, board *model.Board)
	// Invalidate drops the keys a write to scope made stale. Without a user
	// it sweeps the whole organization.
	Invalidate(ctx context.Context, scope Scope)
	InvalidateOrganization(ctx context.Context, orgID uuid.UUID)
}

func BoardsKey(orgID, userID uuid.UUID, onlyDeleted bool) string {
	return fmt.Sprintf("boards:%s:%s:all:%t", orgID, userID, onlyDeleted)
}

func BoardKey(orgID, userID, boardID uuid.UUID) string {
	return fmt.Sprintf("boards:%s:%s:board:%s", orgID, userID, boardID)
}

// IndexKey is the set of every key cached for the organization.
func IndexKey(orgID uuid.UUID) string {
	return fmt.Sprintf("boards:%s:keys", orgID)
}

// Disabled is used when Redis is turned off: every read misses.
type Disabled struct{}

var _ BoardCache = Disabled{}

func (Disabled) GetBoards(context.Context, uuid.UUID, uuid.UUID, bool, *[]model.Board) Result {
	return Result{}
}

func (Disabled) SetBoards(context.Context, uuid.UUID, uuid.UUID, bool, []model.Board) {}

func (Disabled) GetBoard(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, *model.Board) Result {
	return Result{}
}

func (Disabled) SetBoard(context.Context, uuid.UUID, uuid.UUID, *model.Board) {}

func (Disabled) Invalidate(context.Context, Scope) {}

func (Disabled) InvalidateOrganization(context.Context, uuid.UUID) {}
