package cache_test

import (
	"context"
	"testing"
	"time"

	"teamkanban/internal/cache"
	"teamkanban/internal/config"
	"teamkanban/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTTL = config.CacheConfig{
	ListTTL:  900 * time.Second,
	BoardTTL: 1800 * time.Second,
	IndexTTL: 86400 * time.Second,
}

func setupCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewRedisCache(client, testTTL), mr
}

func TestRedisCache_BoardsReadThrough(t *testing.T) {
	// Arrange
	c, mr := setupCache(t)
	ctx := context.Background()
	orgID, userID := uuid.New(), uuid.New()
	boards := []model.Board{{ID: uuid.New(), Title: "Roadmap"}}

	// Act
	var miss []model.Board
	before := c.GetBoards(ctx, orgID, userID, false, &miss)
	c.SetBoards(ctx, orgID, userID, false, boards)
	var hit []model.Board
	after := c.GetBoards(ctx, orgID, userID, false, &hit)

	// Assert
	assert.False(t, before.Hit)
	assert.NoError(t, before.Err)
	require.True(t, after.Hit)
	require.Len(t, hit, 1)
	assert.Equal(t, "Roadmap", hit[0].Title)

	key := cache.BoardsKey(orgID, userID, false)
	assert.Equal(t, 900*time.Second, mr.TTL(key))
	assert.Equal(t, 86400*time.Second, mr.TTL(cache.IndexKey(orgID)))
	members, err := mr.Members(cache.IndexKey(orgID))
	require.NoError(t, err)
	assert.Equal(t, []string{key}, members)
}

func TestRedisCache_BoardTTL(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	orgID, userID := uuid.New(), uuid.New()
	board := &model.Board{ID: uuid.New(), Title: "Sprint", Columns: []model.Column{{Title: "Todo"}}}

	c.SetBoard(ctx, orgID, userID, board)
	assert.Equal(t, 1800*time.Second, mr.TTL(cache.BoardKey(orgID, userID, board.ID)))

	var cached model.Board
	require.True(t, c.GetBoard(ctx, orgID, userID, board.ID, &cached).Hit)
	assert.Equal(t, "Sprint", cached.Title)
	assert.Len(t, cached.Columns, 1)

	// после истечения TTL ключ пропадает
	mr.FastForward(1801 * time.Second)
	assert.False(t, c.GetBoard(ctx, orgID, userID, board.ID, &cached).Hit)
}

func TestRedisCache_InvalidateTargeted(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	orgID, userID, otherID := uuid.New(), uuid.New(), uuid.New()
	board := &model.Board{ID: uuid.New(), Title: "A"}

	c.SetBoards(ctx, orgID, userID, false, []model.Board{*board})
	c.SetBoards(ctx, orgID, userID, true, nil)
	c.SetBoard(ctx, orgID, userID, board)
	c.SetBoard(ctx, orgID, otherID, board)

	c.Invalidate(ctx, cache.Scope{OrganizationID: orgID, UserID: userID, BoardID: board.ID})

	assert.False(t, mr.Exists(cache.BoardsKey(orgID, userID, false)))
	assert.False(t, mr.Exists(cache.BoardsKey(orgID, userID, true)))
	assert.False(t, mr.Exists(cache.BoardKey(orgID, userID, board.ID)))
	assert.True(t, mr.Exists(cache.BoardKey(orgID, otherID, board.ID)))
}

func TestRedisCache_InvalidateOrganization(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	orgID, otherOrg := uuid.New(), uuid.New()
	userA, userB := uuid.New(), uuid.New()
	board := &model.Board{ID: uuid.New()}

	c.SetBoard(ctx, orgID, userA, board)
	c.SetBoard(ctx, orgID, userB, board)
	c.SetBoards(ctx, orgID, userB, false, []model.Board{*board})
	c.SetBoards(ctx, otherOrg, userA, false, nil)

	c.Invalidate(ctx, cache.Scope{OrganizationID: orgID})

	assert.False(t, mr.Exists(cache.BoardKey(orgID, userA, board.ID)))
	assert.False(t, mr.Exists(cache.BoardKey(orgID, userB, board.ID)))
	assert.False(t, mr.Exists(cache.BoardsKey(orgID, userB, false)))
	assert.False(t, mr.Exists(cache.IndexKey(orgID)))
	assert.True(t, mr.Exists(cache.BoardsKey(otherOrg, userA, false)))
}

func TestRedisCache_OutageIsAMiss(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	orgID, userID := uuid.New(), uuid.New()
	mr.Close()

	var boards []model.Board
	result := c.GetBoards(ctx, orgID, userID, false, &boards)
	assert.False(t, result.Hit)
	assert.Error(t, result.Err)

	assert.NotPanics(t, func() {
		c.SetBoards(ctx, orgID, userID, false, []model.Board{{Title: "x"}})
		c.Invalidate(ctx, cache.Scope{OrganizationID: orgID, UserID: userID})
		c.InvalidateOrganization(ctx, orgID)
	})
}

func TestRedisCache_CorruptEntryIsAMiss(t *testing.T) {
	c, mr := setupCache(t)
	orgID, userID := uuid.New(), uuid.New()
	require.NoError(t, mr.Set(cache.BoardsKey(orgID, userID, false), "{not json"))

	var boards []model.Board
	result := c.GetBoards(context.Background(), orgID, userID, false, &boards)
	assert.False(t, result.Hit)
	assert.Error(t, result.Err)
}

func TestDisabled(t *testing.T) {
	var c cache.BoardCache = cache.Disabled{}
	var board model.Board
	assert.False(t, c.GetBoard(context.Background(), uuid.New(), uuid.New(), uuid.New(), &board).Hit)
}
