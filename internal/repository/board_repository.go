package repository

import (
	"context"

	"teamkanban/internal/model"
	"teamkanban/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// Create inserts the board together with board.Columns.
func (r *BoardRepository) Create(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

// FindOne returns the first board matching p, or nil when none does.
func (r *BoardRepository) FindOne(ctx context.Context, p store.Predicate) (*model.Board, error) {
	var board model.Board
	err := store.Apply(r.db.WithContext(ctx).Model(&model.Board{}), p).First(&board).Error
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// Find returns boards matching p, most recently updated first.
func (r *BoardRepository) Find(ctx context.Context, p store.Predicate) ([]model.Board, error) {
	boards := []model.Board{}
	err := store.Apply(r.db.WithContext(ctx).Model(&model.Board{}), p).
		Order("updated_at DESC").
		Find(&boards).Error
	return boards, err
}

// FindWithColumnsAndTasks loads the board matching p with its columns and
// their tasks, both ordered by sort order, and the public fields of each
// task's owner and assignee.
func (r *BoardRepository) FindWithColumnsAndTasks(ctx context.Context, p store.Predicate) (*model.Board, error) {
	publicUser := func(db *gorm.DB) *gorm.DB { return db.Select(model.PublicUserFields) }

	var board model.Board
	err := store.Apply(r.db.WithContext(ctx).Model(&model.Board{}), p).
		Preload("Columns", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Columns.Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Columns.Tasks.OwnerUser", publicUser).
		Preload("Columns.Tasks.AssigneeUser", publicUser).
		First(&board).Error
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// Updates applies fields to the board and returns the stored row.
func (r *BoardRepository) Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Board, error) {
	db := r.db.WithContext(ctx)
	result := db.Model(&model.Board{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrBoardNotFound
	}
	var board model.Board
	if err := db.Where("id = ?", id).First(&board).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// Delete removes the board, its columns and their tasks.
func (r *BoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("board_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&model.Column{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.Board{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBoardNotFound
		}
		return nil
	})
}
