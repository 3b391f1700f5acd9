package repository

import (
	"context"

	"teamkanban/internal/model"
	"teamkanban/internal/ordering"
	"teamkanban/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ColumnRepository struct {
	db *gorm.DB
}

func NewColumnRepository(db *gorm.DB) *ColumnRepository {
	return &ColumnRepository{db: db}
}

func (r *ColumnRepository) Create(ctx context.Context, column *model.Column) error {
	return r.db.WithContext(ctx).Create(column).Error
}

func (r *ColumnRepository) FindOne(ctx context.Context, p store.Predicate) (*model.Column, error) {
	var column model.Column
	err := store.Apply(r.db.WithContext(ctx).Model(&model.Column{}), p).First(&column).Error
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &column, nil
}

func (r *ColumnRepository) Find(ctx context.Context, p store.Predicate) ([]model.Column, error) {
	columns := []model.Column{}
	err := store.Apply(r.db.WithContext(ctx).Model(&model.Column{}), p).
		Order("sort_order ASC").
		Find(&columns).Error
	return columns, err
}

// FindOwned returns the column when its board belongs to userID and is not
// in the trash.
func (r *ColumnRepository) FindOwned(ctx context.Context, userID, columnID uuid.UUID) (*model.Column, error) {
	var column model.Column
	err := store.Apply(r.db.WithContext(ctx).
		Model(&model.Column{}).
		Select("board_columns.*").
		Joins("JOIN boards ON boards.id = board_columns.board_id"), store.And(
		store.Eq("board_columns.id", columnID),
		store.Eq("boards.user_id", userID),
		store.Eq("boards.is_deleted", false),
	)).Take(&column).Error
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &column, nil
}

// NextSortOrder returns the index after the board's last column.
func (r *ColumnRepository) NextSortOrder(ctx context.Context, boardID uuid.UUID) (int, error) {
	var next struct {
		Next int
	}
	err := r.db.WithContext(ctx).Model(&model.Column{}).
		Select("COALESCE(MAX(sort_order) + 1, 0) AS next").
		Where("board_id = ?", boardID).
		Scan(&next).Error
	return next.Next, err
}

func (r *ColumnRepository) Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Column, error) {
	db := r.db.WithContext(ctx)
	result := db.Model(&model.Column{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrColumnNotFound
	}
	var column model.Column
	if err := db.Where("id = ?", id).First(&column).Error; err != nil {
		return nil, err
	}
	return &column, nil
}

// Delete removes the column and its tasks.
func (r *ColumnRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("board_column_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.Column{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrColumnNotFound
		}
		return nil
	})
}

// ApplyReindex writes a column order for the board in one UPDATE.
func (r *ColumnRepository) ApplyReindex(ctx context.Context, plan ordering.Reindex) (int64, error) {
	if plan.Empty() {
		return 0, nil
	}
	expr, args := plan.CaseSQL("id")
	result := store.Apply(r.db.WithContext(ctx).Model(&model.Column{}), store.And(
		store.Eq("board_id", plan.ScopeID),
		store.In("id", plan.IDs()),
	)).Update("sort_order", gorm.Expr(expr, args...))
	return result.RowsAffected, result.Error
}
