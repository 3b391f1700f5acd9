package service

import (
	"context"
	"time"

	"teamkanban/internal/cache"
	"teamkanban/internal/logging"
	"teamkanban/internal/model"
	"teamkanban/internal/ordering"
	"teamkanban/internal/repository"
	"teamkanban/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CreateTaskInput struct {
	Title       string         `json:"title" validate:"required,max=255"`
	Description *string        `json:"description"`
	DueDate     *time.Time     `json:"due_date"`
	Priority    model.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Assignee    *uuid.UUID     `json:"assignee"`
	SortOrder   *int           `json:"sort_order" validate:"omitempty,min=0"`
}

// UpdateTaskInput changes only the fields that are set. Position is changed
// through MoveToColumn and UpdateSortOrder.
type UpdateTaskInput struct {
	Title         *string         `json:"title" validate:"omitempty,min=1,max=255"`
	Description   *string         `json:"description"`
	DueDate       *time.Time      `json:"due_date"`
	ClearDueDate  bool            `json:"clear_due_date"`
	Priority      *model.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Assignee      *uuid.UUID      `json:"assignee"`
	ClearAssignee bool            `json:"clear_assignee"`
}

func (in UpdateTaskInput) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.ClearDueDate {
		fields["due_date"] = nil
	} else if in.DueDate != nil {
		fields["due_date"] = *in.DueDate
	}
	if in.Priority != nil {
		fields["priority"] = *in.Priority
	}
	if in.ClearAssignee {
		fields["assignee"] = nil
	} else if in.Assignee != nil {
		fields["assignee"] = *in.Assignee
	}
	return fields
}

// TaskService creates, moves and reorders tasks. Every write keeps the
// column's sort orders dense.
type TaskService struct {
	repos   *repository.Store
	tenants TenantResolver
	cache   cache.BoardCache
}

func NewTaskService(repos *repository.Store, tenants TenantResolver, c cache.BoardCache) *TaskService {
	return &TaskService{repos: repos, tenants: tenants, cache: c}
}

// Create inserts a task into a column of a board of the user's active
// organization. Tasks at or after the target index move down by one first;
// without an index the task goes to the head of the column.
func (s *TaskService) Create(ctx context.Context, userID, boardID, columnID uuid.UUID, in CreateTaskInput) (*model.Task, error) {
	fields := logrus.Fields{"user_id": userID, "board_id": boardID, "column_id": columnID}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}

	orgID, err := s.tenants.ResolveActiveOrganization(ctx, userID)
	if err != nil {
		return nil, fail("task.create", err, fields)
	}

	var (
		task  *model.Task
		board *model.Board
	)
	err = s.repos.Transaction(ctx, func(tx *repository.Store) error {
		b, err := orgBoard(ctx, tx, orgID, boardID)
		if err != nil {
			return err
		}
		board = b
		if _, err := boardColumn(ctx, tx, boardID, columnID); err != nil {
			return err
		}
		if in.Assignee != nil {
			if err := requireMember(ctx, tx, orgID, *in.Assignee); err != nil {
				return err
			}
		}

		ids, err := tx.Tasks.ColumnIDs(ctx, columnID)
		if err != nil {
			return err
		}
		plan, err := ordering.PlanInsertion(columnID, in.SortOrder, len(ids))
		if err != nil {
			return err
		}
		if err := applyShift(ctx, tx, plan.Shift); err != nil {
			return err
		}

		task = &model.Task{
			Title:         in.Title,
			Description:   in.Description,
			DueDate:       in.DueDate,
			Priority:      in.Priority,
			Assignee:      in.Assignee,
			SortOrder:     plan.Index,
			Owner:         userID,
			BoardID:       boardID,
			BoardColumnID: columnID,
		}
		return tx.Tasks.Create(ctx, task)
	})
	if err != nil {
		return nil, fail("task.create", err, fields)
	}

	invalidateBoard(ctx, s.repos, s.cache, board)
	logging.LogEvent("task_created", logrus.Fields{"task_id": task.ID, "board_id": boardID, "sort_order": task.SortOrder})
	return task, nil
}

// UpdateByID changes task fields. Only the creator of the task's board may
// do so.
func (s *TaskService) UpdateByID(ctx context.Context, userID, taskID uuid.UUID, in UpdateTaskInput) (*model.Task, error) {
	fields := logrus.Fields{"user_id": userID, "task_id": taskID}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var (
		task  *model.Task
		board *model.Board
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Store) error {
		current, b, err := ownedTask(ctx, tx, userID, taskID)
		if err != nil {
			return err
		}
		board = b
		if in.Assignee != nil && !in.ClearAssignee {
			if err := requireMember(ctx, tx, board.OrganizationID, *in.Assignee); err != nil {
				return err
			}
		}

		updates := in.fields()
		if len(updates) == 0 {
			task = current
			return nil
		}
		task, err = tx.Tasks.Updates(ctx, taskID, updates)
		return err
	})
	if err != nil {
		return nil, fail("task.update", err, fields)
	}

	invalidateBoard(ctx, s.repos, s.cache, board)
	return task, nil
}

// DeleteByID removes the task and closes the gap it leaves in its column.
func (s *TaskService) DeleteByID(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	fields := logrus.Fields{"user_id": userID, "task_id": taskID}

	var (
		task  *model.Task
		board *model.Board
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		task, board, err = ownedTask(ctx, tx, userID, taskID)
		if err != nil {
			return err
		}

		if err := tx.Tasks.Delete(ctx, taskID); err != nil {
			return err
		}
		return applyShift(ctx, tx, ordering.Compaction(task.BoardColumnID, task.SortOrder))
	})
	if err != nil {
		return nil, fail("task.delete", err, fields)
	}

	invalidateBoard(ctx, s.repos, s.cache, board)
	logging.LogEvent("task_deleted", logrus.Fields{"task_id": taskID, "board_id": task.BoardID})
	return task, nil
}

// MoveToColumn moves a task into newColumnID of the same board. order is the
// destination column's complete new order including the moved task. With at
// most one entry the task simply lands at the head of the column.
func (s *TaskService) MoveToColumn(ctx context.Context, userID, boardID, newColumnID, taskID uuid.UUID, order []ordering.Placement) error {
	fields := logrus.Fields{"user_id": userID, "board_id": boardID, "column_id": newColumnID, "task_id": taskID}

	orgID, err := s.tenants.ResolveActiveOrganization(ctx, userID)
	if err != nil {
		return fail("task.move", err, fields)
	}

	var board *model.Board
	err = s.repos.Transaction(ctx, func(tx *repository.Store) error {
		b, err := orgBoard(ctx, tx, orgID, boardID)
		if err != nil {
			return err
		}
		board = b
		if _, err := boardColumn(ctx, tx, boardID, newColumnID); err != nil {
			return err
		}
		task, err := tx.Tasks.Lock(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil || task.BoardID != boardID {
			return ErrNotFound
		}

		from := ordering.Position{ColumnID: task.BoardColumnID, Index: task.SortOrder}
		plan, err := ordering.PlanMove(taskID, from, newColumnID, order)
		if err != nil {
			return err
		}

		current, err := tx.Tasks.ColumnIDs(ctx, newColumnID)
		if err != nil {
			return err
		}
		others := without(current, taskID)

		if plan.Reindex.Empty() {
			if len(others) > 0 {
				if from.ColumnID == newColumnID {
					return invalid("order must list every task of the column")
				}
				// голова колонки освобождается для перемещаемой задачи
				if err := applyShift(ctx, tx, ordering.Shift{ColumnID: newColumnID, From: 0, Delta: 1}); err != nil {
					return err
				}
			}
		} else if err := coversColumn(plan.Reindex, append(others, taskID)); err != nil {
			return err
		}

		moved, err := tx.Tasks.MoveTo(ctx, taskID, newColumnID, plan.Index)
		if err != nil {
			return err
		}
		if moved == 0 {
			return ErrNotFound
		}

		if plan.Compact != nil {
			if err := applyShift(ctx, tx, *plan.Compact); err != nil {
				return err
			}
		}

		if !plan.Reindex.Empty() {
			updated, err := tx.Tasks.ApplyReindex(ctx, plan.Reindex)
			if err != nil {
				return err
			}
			if updated != int64(len(plan.Reindex.Assignments)) {
				return ErrConcurrentModification
			}
		}
		return nil
	})
	if err != nil {
		return fail("task.move", err, fields)
	}

	invalidateBoard(ctx, s.repos, s.cache, board)
	logging.LogEvent("task_moved", fields)
	return nil
}

// UpdateSortOrder applies a new order to tasks of one column in a single
// statement. An empty order does nothing. The order may name a subset of
// the column: tasks it leaves out keep their index, and the result must
// still be 0..n-1.
func (s *TaskService) UpdateSortOrder(ctx context.Context, userID, boardID, columnID uuid.UUID, order []ordering.Placement) error {
	fields := logrus.Fields{"user_id": userID, "board_id": boardID, "column_id": columnID}

	orgID, err := s.tenants.ResolveActiveOrganization(ctx, userID)
	if err != nil {
		return fail("task.sort", err, fields)
	}

	plan, err := ordering.PlanReindex(columnID, order)
	if err != nil {
		return fail("task.sort", err, fields)
	}

	var board *model.Board
	err = s.repos.Transaction(ctx, func(tx *repository.Store) error {
		b, err := orgBoard(ctx, tx, orgID, boardID)
		if err != nil {
			return err
		}
		board = b
		if _, err := boardColumn(ctx, tx, boardID, columnID); err != nil {
			return err
		}
		if plan.Empty() {
			return nil
		}

		current, err := tx.Tasks.ColumnIDs(ctx, columnID)
		if err != nil {
			return err
		}
		if err := fitsColumn(plan, current); err != nil {
			return err
		}

		updated, err := tx.Tasks.ApplyReindex(ctx, plan)
		if err != nil {
			return err
		}
		if updated != int64(len(plan.Assignments)) {
			return invalid("order names tasks outside the column")
		}
		return nil
	})
	if err != nil {
		return fail("task.sort", err, fields)
	}
	if plan.Empty() {
		return nil
	}

	invalidateBoard(ctx, s.repos, s.cache, board)
	return nil
}

// GetAll lists the tasks of a board created by the user, optionally limited
// to one column.
func (s *TaskService) GetAll(ctx context.Context, userID, boardID uuid.UUID, columnID *uuid.UUID) ([]model.Task, error) {
	fields := logrus.Fields{"user_id": userID, "board_id": boardID}

	if _, err := ownedBoard(ctx, s.repos, userID, boardID); err != nil {
		return nil, fail("task.list", err, fields)
	}

	p := store.Eq("board_id", boardID)
	if columnID != nil {
		p = store.And(p, store.Eq("board_column_id", *columnID))
	}
	tasks, err := s.repos.Tasks.Find(ctx, p)
	if err != nil {
		return nil, fail("task.list", err, fields)
	}
	return tasks, nil
}

func (s *TaskService) GetByID(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.repos.Tasks.FindOwned(ctx, userID, taskID)
	if err != nil {
		return nil, fail("task.get", err, logrus.Fields{"user_id": userID, "task_id": taskID})
	}
	if task == nil {
		return nil, ErrNotFound
	}
	return task, nil
}

// ownedTask loads a task whose board the user created, together with that
// board.
func ownedTask(ctx context.Context, repos *repository.Store, userID, taskID uuid.UUID) (*model.Task, *model.Board, error) {
	task, err := repos.Tasks.FindOwned(ctx, userID, taskID)
	if err != nil {
		return nil, nil, err
	}
	if task == nil {
		return nil, nil, ErrNotFound
	}
	board, err := repos.Boards.FindOne(ctx, store.Eq("id", task.BoardID))
	if err != nil {
		return nil, nil, err
	}
	if board == nil {
		return nil, nil, ErrNotFound
	}
	return task, board, nil
}

// applyShift runs a shift and aborts when it touched a different number of
// rows than were locked for it.
func applyShift(ctx context.Context, repos *repository.Store, shift ordering.Shift) error {
	read, err := repos.Tasks.CountShifted(ctx, shift)
	if err != nil {
		return err
	}
	if read == 0 {
		return nil
	}
	affected, err := repos.Tasks.ApplyShift(ctx, shift)
	if err != nil {
		return err
	}
	return shift.Verify(read, affected)
}

// coversColumn checks that a destination reindex lists exactly the tasks the
// column will hold, at indexes 0..n-1.
func coversColumn(plan ordering.Reindex, ids []uuid.UUID) error {
	if len(plan.Assignments) != len(ids) {
		return invalid("order lists %d tasks, column will hold %d", len(plan.Assignments), len(ids))
	}
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	for _, p := range plan.Assignments {
		if _, ok := want[p.ID]; !ok {
			return invalid("task %s is not in the column", p.ID)
		}
		if p.NewIndex >= len(ids) {
			return invalid("index %d is past the end of the column", p.NewIndex)
		}
	}
	return nil
}

// fitsColumn checks a partial reindex against the column as it is now.
// current is ordered by sort order, so a task's position in it is its index.
func fitsColumn(plan ordering.Reindex, current []uuid.UUID) error {
	slots := make([]uuid.UUID, len(current))
	named := make(map[uuid.UUID]struct{}, len(plan.Assignments))
	for _, p := range plan.Assignments {
		if p.NewIndex >= len(current) {
			return invalid("index %d is past the end of a column of %d tasks", p.NewIndex, len(current))
		}
		slots[p.NewIndex] = p.ID
		named[p.ID] = struct{}{}
	}

	inColumn := make(map[uuid.UUID]struct{}, len(current))
	for i, id := range current {
		inColumn[id] = struct{}{}
		if _, ok := named[id]; ok {
			continue
		}
		if slots[i] != uuid.Nil {
			return invalid("index %d is held by task %s which the order leaves in place", i, id)
		}
	}
	for id := range named {
		if _, ok := inColumn[id]; !ok {
			return invalid("task %s is not in the column", id)
		}
	}
	return nil
}

func without(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func requireMember(ctx context.Context, repos *repository.Store, orgID, userID uuid.UUID) error {
	member, err := repos.Organizations.FindMember(ctx, store.And(
		store.Eq("organization_id", orgID),
		store.Eq("user_id", userID),
	))
	if err != nil {
		return err
	}
	if member == nil {
		return invalid("assignee is not a member of the organization")
	}
	return nil
}
