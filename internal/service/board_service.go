package service

import (
	"context"

	"teamkanban/internal/cache"
	"teamkanban/internal/logging"
	"teamkanban/internal/model"
	"teamkanban/internal/repository"
	"teamkanban/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CreateBoardInput struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description *string  `json:"description"`
	Color       string   `json:"color" validate:"omitempty,max=64"`
	Columns     []string `json:"columns" validate:"omitempty,dive,required,max=255"`
}

type UpdateBoardInput struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,min=1,max=64"`
}

// BoardService manages boards of the user's active organization. Reads go
// through the board cache.
type BoardService struct {
	repos   *repository.Store
	tenants TenantResolver
	cache   cache.BoardCache
}

func NewBoardService(repos *repository.Store, tenants TenantResolver, c cache.BoardCache) *BoardService {
	return &BoardService{repos: repos, tenants: tenants, cache: c}
}

// Create makes a board with the given columns, or the default ones, in one
// transaction.
func (s *BoardService) Create(ctx context.Context, userID uuid.UUID, in CreateBoardInput) (*model.Board, error) {
	fields := logrus.Fields{"user_id": userID}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	orgID, err := s.tenants.ResolveActiveOrganization(ctx, userID)
	if err != nil {
		return nil, fail("board.create", err, fields)
	}

	board := &model.Board{
		Title:          in.Title,
		Description:    in.Description,
		Color:          in.Color,
		UserID:         userID,
		OrganizationID: orgID,
		Columns:        model.DefaultColumns(),
	}
	if board.Color == "" {
		board.Color = model.DefaultBoardColor
	}
	if len(in.Columns) > 0 {
		board.Columns = make([]model.Column, len(in.Columns))
		for i, title := range in.Columns {
			board.Columns[i] = model.Column{Title: title, SortOrder: i}
		}
	}

	if err := s.repos.Boards.Create(ctx, board); err != nil {
		return nil, fail("board.create", err, fields)
	}

	invalidateBoard(ctx, s.repos, s.cache, board)
	logging.LogEvent("board_created", logrus.Fields{"board_id": board.ID, "organization_id": orgID})
	return board, nil
}

// GetAll lists the user's boards and the boards of the active
// organization, most recently updated first. onlyDeleted switches to the
// trash.
func (s *BoardService) GetAll(ctx context.Context, userID uuid.UUID, onlyDeleted bool) ([]model.Board, error) {
	fields := logrus.Fields{"user_id": userID, "only_deleted": onlyDeleted}

	orgID, err := s.tenants.ResolveActiveOrganization(ctx, userID)
	if err != nil {
		return nil, fail("board.list", err, fields)
	}

	var boards []model.Board
	if s.cache.GetBoards(ctx, orgID, userID, onlyDeleted, &boards).Hit {
		return boards, nil
	}

	boards, err = s.repos.Boards.Find(ctx, store.And(
		store.Or(store.Eq("user_id", userID), store.Eq("organization_id", orgID)),
		store.Eq("is_deleted", onlyDeleted),
	))
	if err != nil {
		return nil, fail("board.list", err, fields)
	}

	s.cache.SetBoards(ctx, orgID, userID, onlyDeleted, boards)
	return boards, nil
}

// GetWithColumnsAndTasks returns the live board with its columns and tasks
// in sort order.
func (s *BoardService) GetWithColumnsAndTasks(ctx context.Context, userID, boardID uuid.UUID) (*model.Board, error) {
	fields := logrus.Fields{"user_id": userID, "board_id": boardID}

	orgID, err := s.tenants.ResolveActiveOrganization(ctx, userID)
	if err != nil {
		return nil, fail("board.get", err, fields)
	}

	var cached model.Board
	if s.cache.GetBoard(ctx, orgID, userID, boardID, &cached).Hit {
		return &cached, nil
	}

	board, err := s.repos.Boards.FindWithColumnsAndTasks(ctx, store.And(
		store.Eq("id", boardID),
		store.Or(store.Eq("user_id", userID), store.Eq("organization_id", orgID)),
		store.Eq("is_deleted", false),
	))
	if err != nil {
		return nil, fail("board.get", err, fields)
	}
	if board == nil {
		return nil, ErrNotFound
	}

	s.cache.SetBoard(ctx, orgID, userID, board)
	return board, nil
}

func (s *BoardService) Update(ctx context.Context, userID, boardID uuid.UUID, in UpdateBoardInput) (*model.Board, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Color != nil {
		updates["color"] = *in.Color
	}
	return s.mutate(ctx, "board.update", userID, boardID, false, func(ctx context.Context, board *model.Board) (*model.Board, error) {
		if len(updates) == 0 {
			return board, nil
		}
		return s.repos.Boards.Updates(ctx, board.ID, updates)
	})
}

// Delete moves the board to the trash.
func (s *BoardService) Delete(ctx context.Context, userID, boardID uuid.UUID) (*model.Board, error) {
	return s.mutate(ctx, "board.delete", userID, boardID, false, func(ctx context.Context, board *model.Board) (*model.Board, error) {
		return s.repos.Boards.Updates(ctx, board.ID, map[string]interface{}{"is_deleted": true})
	})
}

// Undelete restores a board from the trash.
func (s *BoardService) Undelete(ctx context.Context, userID, boardID uuid.UUID) (*model.Board, error) {
	return s.mutate(ctx, "board.undelete", userID, boardID, true, func(ctx context.Context, board *model.Board) (*model.Board, error) {
		return s.repos.Boards.Updates(ctx, board.ID, map[string]interface{}{"is_deleted": false})
	})
}

// DeletePermanently removes a trashed board with its columns and tasks.
func (s *BoardService) DeletePermanently(ctx context.Context, userID, boardID uuid.UUID) error {
	_, err := s.mutate(ctx, "board.delete_permanently", userID, boardID, true, func(ctx context.Context, board *model.Board) (*model.Board, error) {
		return board, s.repos.Boards.Delete(ctx, board.ID)
	})
	return err
}

// mutate finds the user's own board in the active organization in the given
// trash state, applies fn and invalidates the cache.
func (s *BoardService) mutate(
	ctx context.Context,
	op string,
	userID, boardID uuid.UUID,
	deleted bool,
	fn func(ctx context.Context, board *model.Board) (*model.Board, error),
) (*model.Board, error) {
	fields := logrus.Fields{"user_id": userID, "board_id": boardID}

	orgID, err := s.tenants.ResolveActiveOrganization(ctx, userID)
	if err != nil {
		return nil, fail(op, err, fields)
	}

	board, err := s.repos.Boards.FindOne(ctx, store.And(
		store.Eq("id", boardID),
		store.Eq("user_id", userID),
		store.Eq("organization_id", orgID),
		store.Eq("is_deleted", deleted),
	))
	if err != nil {
		return nil, fail(op, err, fields)
	}
	if board == nil {
		return nil, ErrNotFound
	}

	updated, err := fn(ctx, board)
	if err != nil {
		return nil, fail(op, err, fields)
	}

	invalidateBoard(ctx, s.repos, s.cache, board)
	return updated, nil
}
