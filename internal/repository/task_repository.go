package repository

import (
	"context"

	"teamkanban/internal/model"
	"teamkanban/internal/ordering"
	"teamkanban/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindOne returns the first task matching p, or nil when none does
func (r *TaskRepository) FindOne(ctx context.Context, p store.Predicate) (*model.Task, error) {
	var task model.Task
	err := store.Apply(r.db.WithContext(ctx).Model(&model.Task{}), p).First(&task).Error
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Find returns tasks matching p ordered by column and sort order
func (r *TaskRepository) Find(ctx context.Context, p store.Predicate) ([]model.Task, error) {
	tasks := []model.Task{}
	err := store.Apply(r.db.WithContext(ctx).Model(&model.Task{}), p).
		Order("board_column_id").
		Order("sort_order ASC").
		Find(&tasks).Error
	return tasks, err
}

// FindOwned returns the task when its board belongs to userID and is not in
// the trash.
func (r *TaskRepository) FindOwned(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	var task model.Task
	q := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Select("tasks.*").
		Joins("JOIN boards ON boards.id = tasks.board_id")
	err := store.Apply(q, store.And(
		store.Eq("tasks.id", taskID),
		store.Eq("boards.user_id", userID),
		store.Eq("boards.is_deleted", false),
	)).Take(&task).Error
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Lock reads and locks the task. Use inside a transaction.
func (r *TaskRepository) Lock(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := store.ForUpdate(r.db.WithContext(ctx)).Where("id = ?", id).Take(&task).Error
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ColumnIDs locks the tasks of a column and returns their ids ordered by
// sort order.
func (r *TaskRepository) ColumnIDs(ctx context.Context, columnID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := store.ForUpdate(r.db.WithContext(ctx).Model(&model.Task{})).
		Where("board_column_id = ?", columnID).
		Order("sort_order ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// CountShifted locks and counts the rows a shift is going to move. Postgres
// refuses FOR UPDATE with aggregates, so the ids are read instead of COUNT.
func (r *TaskRepository) CountShifted(ctx context.Context, shift ordering.Shift) (int64, error) {
	var ids []uuid.UUID
	err := store.Apply(store.ForUpdate(r.db.WithContext(ctx).Model(&model.Task{})), store.And(
		store.Eq("board_column_id", shift.ColumnID),
		store.Gte("sort_order", shift.From),
	)).Pluck("id", &ids).Error
	return int64(len(ids)), err
}

// ApplyShift moves every row of the shift's column at or after From by Delta
// and returns the number of rows changed.
func (r *TaskRepository) ApplyShift(ctx context.Context, shift ordering.Shift) (int64, error) {
	result := store.Apply(r.db.WithContext(ctx).Model(&model.Task{}), store.And(
		store.Eq("board_column_id", shift.ColumnID),
		store.Gte("sort_order", shift.From),
	)).Update("sort_order", gorm.Expr("sort_order + ?", shift.Delta))
	return result.RowsAffected, result.Error
}

// ApplyReindex writes the plan in a single UPDATE restricted to rows of the
// plan's column whose id is in the plan.
func (r *TaskRepository) ApplyReindex(ctx context.Context, plan ordering.Reindex) (int64, error) {
	if plan.Empty() {
		return 0, nil
	}
	expr, args := plan.CaseSQL("id")
	result := store.Apply(r.db.WithContext(ctx).Model(&model.Task{}), store.And(
		store.Eq("board_column_id", plan.ScopeID),
		store.In("id", plan.IDs()),
	)).Update("sort_order", gorm.Expr(expr, args...))
	return result.RowsAffected, result.Error
}

// MoveTo puts the task into columnID at index.
func (r *TaskRepository) MoveTo(ctx context.Context, taskID, columnID uuid.UUID, index int) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"board_column_id": columnID,
			"sort_order":      index,
		})
	return result.RowsAffected, result.Error
}

// Updates applies fields to the task and returns the stored row
func (r *TaskRepository) Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Task, error) {
	db := r.db.WithContext(ctx)
	result := db.Model(&model.Task{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrTaskNotFound
	}
	var task model.Task
	if err := db.Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
