package service_test

import (
	"context"
	"testing"

	"teamkanban/internal/model"
	"teamkanban/internal/ordering"
	"teamkanban/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnService_CreateAppendsToTail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user, _, board := e.tenantWithBoard("alice")

	column, err := e.columns.Create(ctx, user.ID, board.ID, service.CreateColumnInput{Title: "Blocked"})

	require.NoError(t, err)
	assert.Equal(t, len(board.Columns), column.SortOrder)

	got, err := e.columns.GetAll(ctx, user.ID, board.ID)
	require.NoError(t, err)
	require.Len(t, got.Columns, len(board.Columns)+1)
	assert.Equal(t, "Blocked", got.Columns[len(got.Columns)-1].Title)
}

func TestColumnService_OnlyBoardCreator(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, org, board := e.tenantWithBoard("alice")
	teammate := e.f.User("bob")
	e.f.Member(org, teammate, model.RoleMember)

	_, err := e.columns.Create(ctx, teammate.ID, board.ID, service.CreateColumnInput{Title: "x"})
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = e.columns.DeleteByID(ctx, teammate.ID, board.Columns[0].ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = e.columns.GetByID(ctx, teammate.ID, board.Columns[0].ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestColumnService_UpdateAndDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user, _, board := e.tenantWithBoard("alice")
	column := board.Columns[0]
	e.f.Tasks(board, column, user, "A", "B")

	title := "Backlog"
	updated, err := e.columns.UpdateByID(ctx, user.ID, column.ID, service.UpdateColumnInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Backlog", updated.Title)

	deleted, err := e.columns.DeleteByID(ctx, user.ID, column.ID)
	require.NoError(t, err)
	assert.Equal(t, column.ID, deleted.ID)

	var tasks int64
	require.NoError(t, e.db.Model(&model.Task{}).Where("board_column_id = ?", column.ID).Count(&tasks).Error)
	assert.Zero(t, tasks)

	_, err = e.columns.GetByID(ctx, user.ID, column.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestColumnService_Reorder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user, _, board := e.tenantWithBoard("alice")
	_, _, foreign := e.tenantWithBoard("mallory")

	order := make([]ordering.Placement, len(board.Columns))
	for i, column := range board.Columns {
		order[i] = ordering.Placement{ID: column.ID, NewIndex: len(board.Columns) - 1 - i}
	}
	require.NoError(t, e.columns.Reorder(ctx, user.ID, board.ID, order))

	got, err := e.columns.GetAll(ctx, user.ID, board.ID)
	require.NoError(t, err)
	assert.Equal(t, board.Columns[len(board.Columns)-1].ID, got.Columns[0].ID)

	// колонка чужой доски не переупорядочивается
	err = e.columns.Reorder(ctx, user.ID, board.ID, []ordering.Placement{{ID: foreign.Columns[0].ID, NewIndex: 0}})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
