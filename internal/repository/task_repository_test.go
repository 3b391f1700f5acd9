package repository_test

import (
	"context"
	"testing"

	"teamkanban/internal/database/dbtest"
	"teamkanban/internal/model"
	"teamkanban/internal/ordering"
	"teamkanban/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRepository_ApplyReindex_SingleStatement(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)
	columnID := uuid.New()
	a, b := uuid.New(), uuid.New()
	plan, err := ordering.PlanReindex(columnID, []ordering.Placement{{ID: a, NewIndex: 1}, {ID: b, NewIndex: 0}})
	require.NoError(t, err)

	// одно UPDATE с CASE, ограниченное колонкой
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET "sort_order"=CASE WHEN id = \$1 THEN CAST\(\$2 AS INTEGER\) WHEN id = \$3 THEN CAST\(\$4 AS INTEGER\) END.* WHERE .*"?board_column_id"? = \$\d+ AND .*"?id"? IN \(\$\d+,\$\d+\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	updated, err := repo.ApplyReindex(context.Background(), plan)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ApplyReindex_EmptyPlan(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	updated, err := repo.ApplyReindex(context.Background(), ordering.Reindex{})

	assert.NoError(t, err)
	assert.Zero(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ShiftAndReindex(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.NewFixture(t, db)
	repo := repository.NewTaskRepository(db)
	ctx := context.Background()

	user := f.User("alice")
	board := f.Board(user, f.Organization("acme", user))
	column, other := board.Columns[0], board.Columns[1]
	tasks := f.Tasks(board, column, user, "A", "B", "C")
	f.Tasks(board, other, user, "X")

	shift := ordering.Shift{ColumnID: column.ID, From: 1, Delta: 1}
	read, err := repo.CountShifted(ctx, shift)
	require.NoError(t, err)
	assert.Equal(t, int64(2), read)
	affected, err := repo.ApplyShift(ctx, shift)
	require.NoError(t, err)
	assert.NoError(t, shift.Verify(read, affected))

	ids, err := repo.ColumnIDs(ctx, column.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{tasks[0].ID, tasks[1].ID, tasks[2].ID}, ids)

	// вернуть плотность обратным сдвигом
	_, err = repo.ApplyShift(ctx, ordering.Compaction(column.ID, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, f.ColumnOrder(column.ID))

	plan, err := ordering.PlanReindex(column.ID, []ordering.Placement{
		{ID: tasks[2].ID, NewIndex: 0},
		{ID: tasks[0].ID, NewIndex: 2},
	})
	require.NoError(t, err)
	updated, err := repo.ApplyReindex(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)
	assert.Equal(t, []string{"C", "B", "A"}, f.ColumnOrder(column.ID))
	assert.Equal(t, []string{"X"}, f.ColumnOrder(other.ID))
}

func TestTaskRepository_FindOwned(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.NewFixture(t, db)
	repo := repository.NewTaskRepository(db)
	ctx := context.Background()

	owner := f.User("alice")
	org := f.Organization("acme", owner)
	board := f.Board(owner, org)
	task := f.Tasks(board, board.Columns[0], owner, "A")[0]

	found, err := repo.FindOwned(ctx, owner.ID, task.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "A", found.Title)

	found, err = repo.FindOwned(ctx, f.User("bob").ID, task.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	require.NoError(t, db.Model(&model.Board{}).Where("id = ?", board.ID).Update("is_deleted", true).Error)
	found, err = repo.FindOwned(ctx, owner.ID, task.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestTaskRepository_MissingRows(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewTaskRepository(db)
	ctx := context.Background()

	_, err := repo.Updates(ctx, uuid.New(), map[string]interface{}{"title": "x"})
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), repository.ErrTaskNotFound)

	task, err := repo.Lock(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, task)
}
