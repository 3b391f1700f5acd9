package service_test

import (
	"testing"
	"time"

	"teamkanban/internal/cache"
	"teamkanban/internal/config"
	"teamkanban/internal/database/dbtest"
	"teamkanban/internal/model"
	"teamkanban/internal/repository"
	"teamkanban/internal/service"
	"teamkanban/internal/tenant"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type testEnv struct {
	db    *gorm.DB
	repos *repository.Store
	f     *dbtest.Fixture
	mr    *miniredis.Miniredis

	tasks       *service.TaskService
	boards      *service.BoardService
	columns     *service.ColumnService
	orgs        *service.OrganizationService
	invitations *service.InvitationService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	db := dbtest.Open(t)
	repos := repository.NewStore(db)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	boardCache := cache.NewRedisCache(client, config.CacheConfig{
		ListTTL:  900 * time.Second,
		BoardTTL: 1800 * time.Second,
		IndexTTL: 86400 * time.Second,
	})

	resolver := tenant.NewResolver(repos.Sessions, repos.Organizations)
	return &testEnv{
		db:          db,
		repos:       repos,
		f:           dbtest.NewFixture(t, db),
		mr:          mr,
		tasks:       service.NewTaskService(repos, resolver, boardCache),
		boards:      service.NewBoardService(repos, resolver, boardCache),
		columns:     service.NewColumnService(repos, boardCache),
		orgs:        service.NewOrganizationService(repos, resolver),
		invitations: service.NewInvitationService(repos, resolver),
	}
}

// tenantWithBoard creates a user owning an organization with one board.
func (e *testEnv) tenantWithBoard(name string) (*model.User, *model.Organization, *model.Board) {
	user := e.f.User(name)
	org := e.f.Organization(name, user)
	return user, org, e.f.Board(user, org)
}

func ids(tasks []model.Task) map[string]model.Task {
	out := make(map[string]model.Task, len(tasks))
	for _, task := range tasks {
		out[task.Title] = task
	}
	return out
}

func intPtr(v int) *int { return &v }
