// Package dbtest opens isolated in-memory databases with the full schema for
// repository and service tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"teamkanban/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a fresh in-memory database. A single connection is kept open
// so the database lives as long as the test; never use the returned handle
// from inside one of its own transactions.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Organization{},
		&model.Member{},
		&model.Invitation{},
		&model.Session{},
		&model.Board{},
		&model.Column{},
		&model.Task{},
	))
	return db
}

// Fixture builds rows for tests.
type Fixture struct {
	t  *testing.T
	db *gorm.DB
}

func NewFixture(t *testing.T, db *gorm.DB) *Fixture {
	return &Fixture{t: t, db: db}
}

func (f *Fixture) create(value interface{}) {
	f.t.Helper()
	require.NoError(f.t, f.db.WithContext(context.Background()).Create(value).Error)
}

func (f *Fixture) User(name string) *model.User {
	u := &model.User{Name: name, Email: name + "@example.com", HashedPassword: "x"}
	f.create(u)
	return u
}

// Organization creates an organization with owner as its owner member.
func (f *Fixture) Organization(name string, owner *model.User) *model.Organization {
	org := &model.Organization{Name: name, Slug: name + "-" + uuid.NewString()[:8]}
	f.create(org)
	f.Member(org, owner, model.RoleOwner)
	return org
}

func (f *Fixture) Member(org *model.Organization, user *model.User, role string) *model.Member {
	m := &model.Member{OrganizationID: org.ID, UserID: user.ID, Role: role}
	f.create(m)
	return m
}

// Session creates a session for user created at the given time.
func (f *Fixture) Session(user *model.User, active *uuid.UUID, createdAt time.Time) *model.Session {
	s := &model.Session{
		UserID:               user.ID,
		Token:                uuid.NewString(),
		ActiveOrganizationID: active,
		ExpiresAt:            createdAt.Add(24 * time.Hour),
		CreatedAt:            createdAt,
	}
	f.create(s)
	return s
}

// Board creates a board with the default columns.
func (f *Fixture) Board(owner *model.User, org *model.Organization) *model.Board {
	b := &model.Board{
		Title:          "Board",
		Color:          model.DefaultBoardColor,
		UserID:         owner.ID,
		OrganizationID: org.ID,
		Columns:        model.DefaultColumns(),
	}
	f.create(b)
	return b
}

// Tasks appends titled tasks to the column with sort orders 0..n-1.
func (f *Fixture) Tasks(board *model.Board, column model.Column, owner *model.User, titles ...string) []model.Task {
	tasks := make([]model.Task, len(titles))
	for i, title := range titles {
		tasks[i] = model.Task{
			Title:         title,
			SortOrder:     i,
			Owner:         owner.ID,
			BoardID:       board.ID,
			BoardColumnID: column.ID,
		}
		f.create(&tasks[i])
	}
	return tasks
}

// ColumnOrder returns the column's task titles by sort order and fails the
// test unless the sort orders are exactly 0..n-1.
func (f *Fixture) ColumnOrder(columnID uuid.UUID) []string {
	f.t.Helper()
	var tasks []model.Task
	require.NoError(f.t, f.db.Where("board_column_id = ?", columnID).Order("sort_order").Find(&tasks).Error)
	titles := make([]string, len(tasks))
	for i, task := range tasks {
		require.Equal(f.t, i, task.SortOrder, "column %s is not dense", columnID)
		titles[i] = task.Title
	}
	return titles
}
