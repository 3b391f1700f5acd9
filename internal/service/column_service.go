package service

import (
	"context"

	"teamkanban/internal/cache"
	"teamkanban/internal/model"
	"teamkanban/internal/ordering"
	"teamkanban/internal/repository"
	"teamkanban/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CreateColumnInput struct {
	Title     string `json:"title" validate:"required,max=255"`
	SortOrder *int   `json:"sort_order" validate:"omitempty,min=0"`
}

type UpdateColumnInput struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=255"`
	SortOrder *int    `json:"sort_order" validate:"omitempty,min=0"`
}

// ColumnService manages the columns of boards the user created. Column
// order is kept by the caller; deleting a column leaves a gap.
type ColumnService struct {
	repos *repository.Store
	cache cache.BoardCache
}

func NewColumnService(repos *repository.Store, c cache.BoardCache) *ColumnService {
	return &ColumnService{repos: repos, cache: c}
}

// GetAll returns the board with its columns in sort order.
func (s *ColumnService) GetAll(ctx context.Context, userID, boardID uuid.UUID) (*model.Board, error) {
	fields := logrus.Fields{"user_id": userID, "board_id": boardID}

	board, err := ownedBoard(ctx, s.repos, userID, boardID)
	if err != nil {
		return nil, fail("column.list", err, fields)
	}
	board.Columns, err = s.repos.Columns.Find(ctx, store.Eq("board_id", boardID))
	if err != nil {
		return nil, fail("column.list", err, fields)
	}
	return board, nil
}

func (s *ColumnService) GetByID(ctx context.Context, userID, columnID uuid.UUID) (*model.Column, error) {
	column, err := s.repos.Columns.FindOwned(ctx, userID, columnID)
	if err != nil {
		return nil, fail("column.get", err, logrus.Fields{"user_id": userID, "column_id": columnID})
	}
	if column == nil {
		return nil, ErrNotFound
	}
	return column, nil
}

// Create adds a column, after the last one unless a sort order is given.
func (s *ColumnService) Create(ctx context.Context, userID, boardID uuid.UUID, in CreateColumnInput) (*model.Column, error) {
	fields := logrus.Fields{"user_id": userID, "board_id": boardID}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var column *model.Column
	var board *model.Board
	err := s.repos.Transaction(ctx, func(tx *repository.Store) error {
		b, err := ownedBoard(ctx, tx, userID, boardID)
		if err != nil {
			return err
		}
		board = b

		sortOrder := 0
		if in.SortOrder != nil {
			sortOrder = *in.SortOrder
		} else if sortOrder, err = tx.Columns.NextSortOrder(ctx, boardID); err != nil {
			return err
		}

		column = &model.Column{Title: in.Title, SortOrder: sortOrder, BoardID: boardID}
		return tx.Columns.Create(ctx, column)
	})
	if err != nil {
		return nil, fail("column.create", err, fields)
	}

	invalidateBoard(ctx, s.repos, s.cache, board)
	return column, nil
}

func (s *ColumnService) UpdateByID(ctx context.Context, userID, columnID uuid.UUID, in UpdateColumnInput) (*model.Column, error) {
	fields := logrus.Fields{"user_id": userID, "column_id": columnID}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.SortOrder != nil {
		updates["sort_order"] = *in.SortOrder
	}

	column, board, err := s.owned(ctx, userID, columnID)
	if err != nil {
		return nil, fail("column.update", err, fields)
	}
	if len(updates) == 0 {
		return column, nil
	}
	column, err = s.repos.Columns.Updates(ctx, columnID, updates)
	if err != nil {
		return nil, fail("column.update", err, fields)
	}

	invalidateBoard(ctx, s.repos, s.cache, board)
	return column, nil
}

// DeleteByID removes the column and its tasks.
func (s *ColumnService) DeleteByID(ctx context.Context, userID, columnID uuid.UUID) (*model.Column, error) {
	fields := logrus.Fields{"user_id": userID, "column_id": columnID}

	column, board, err := s.owned(ctx, userID, columnID)
	if err != nil {
		return nil, fail("column.delete", err, fields)
	}
	if err := s.repos.Columns.Delete(ctx, columnID); err != nil {
		return nil, fail("column.delete", err, fields)
	}

	invalidateBoard(ctx, s.repos, s.cache, board)
	return column, nil
}

// Reorder assigns new sort orders to columns of the board in one statement.
func (s *ColumnService) Reorder(ctx context.Context, userID, boardID uuid.UUID, order []ordering.Placement) error {
	fields := logrus.Fields{"user_id": userID, "board_id": boardID}

	plan, err := ordering.PlanReindex(boardID, order)
	if err != nil {
		return fail("column.reorder", err, fields)
	}

	var board *model.Board
	err = s.repos.Transaction(ctx, func(tx *repository.Store) error {
		b, err := ownedBoard(ctx, tx, userID, boardID)
		if err != nil {
			return err
		}
		board = b
		if plan.Empty() {
			return nil
		}

		updated, err := tx.Columns.ApplyReindex(ctx, plan)
		if err != nil {
			return err
		}
		if updated != int64(len(plan.Assignments)) {
			return invalid("order names columns outside the board")
		}
		return nil
	})
	if err != nil {
		return fail("column.reorder", err, fields)
	}

	invalidateBoard(ctx, s.repos, s.cache, board)
	return nil
}

func (s *ColumnService) owned(ctx context.Context, userID, columnID uuid.UUID) (*model.Column, *model.Board, error) {
	column, err := s.repos.Columns.FindOwned(ctx, userID, columnID)
	if err != nil {
		return nil, nil, err
	}
	if column == nil {
		return nil, nil, ErrNotFound
	}
	board, err := s.repos.Boards.FindOne(ctx, store.Eq("id", column.BoardID))
	if err != nil {
		return nil, nil, err
	}
	if board == nil {
		return nil, nil, ErrNotFound
	}
	return column, board, nil
}
