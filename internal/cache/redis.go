package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"teamkanban/internal/config"
	"teamkanban/internal/logging"
	"teamkanban/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type RedisCache struct {
	client *redis.Client
	ttl    config.CacheConfig
}

var _ BoardCache = (*RedisCache)(nil)

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewRedisCache(client *redis.Client, ttl config.CacheConfig) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) GetBoards(ctx context.Context, orgID, userID uuid.UUID, onlyDeleted bool, dest *[]model.Board) Result {
	return c.get(ctx, BoardsKey(orgID, userID, onlyDeleted), dest)
}

func (c *RedisCache) SetBoards(ctx context.Context, orgID, userID uuid.UUID, onlyDeleted bool, boards []model.Board) {
	c.set(ctx, orgID, BoardsKey(orgID, userID, onlyDeleted), boards, c.ttl.ListTTL)
}

func (c *RedisCache) GetBoard(ctx context.Context, orgID, userID, boardID uuid.UUID, dest *model.Board) Result {
	return c.get(ctx, BoardKey(orgID, userID, boardID), dest)
}

func (c *RedisCache) SetBoard(ctx context.Context, orgID, userID uuid.UUID, board *model.Board) {
	if board == nil {
		return
	}
	c.set(ctx, orgID, BoardKey(orgID, userID, board.ID), board, c.ttl.BoardTTL)
}

func (c *RedisCache) Invalidate(ctx context.Context, scope Scope) {
	if scope.UserID == uuid.Nil {
		c.InvalidateOrganization(ctx, scope.OrganizationID)
		return
	}

	keys := []string{
		BoardsKey(scope.OrganizationID, scope.UserID, true),
		BoardsKey(scope.OrganizationID, scope.UserID, false),
	}
	if scope.BoardID != uuid.Nil {
		keys = append(keys, BoardKey(scope.OrganizationID, scope.UserID, scope.BoardID))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.warn("cache.invalidate", err, logrus.Fields{"keys": keys})
		return
	}
	logging.LogEvent("cache_invalidated", logrus.Fields{"keys": keys})
}

func (c *RedisCache) InvalidateOrganization(ctx context.Context, orgID uuid.UUID) {
	index := IndexKey(orgID)
	keys, err := c.client.SMembers(ctx, index).Result()
	if err != nil {
		c.warn("cache.invalidate_organization", err, logrus.Fields{"organization_id": orgID})
		return
	}

	_, err = c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(keys) > 0 {
			pipe.Del(ctx, keys...)
		}
		pipe.Del(ctx, index)
		return nil
	})
	if err != nil {
		c.warn("cache.invalidate_organization", err, logrus.Fields{"organization_id": orgID})
		return
	}
	logging.LogEvent("cache_invalidated", logrus.Fields{"organization_id": orgID, "keys": len(keys)})
}

func (c *RedisCache) get(ctx context.Context, key string, dest interface{}) Result {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Result{}
	}
	if err != nil {
		c.warn("cache.get", err, logrus.Fields{"key": key})
		return Result{Err: err}
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.warn("cache.decode", err, logrus.Fields{"key": key})
		return Result{Err: err}
	}
	return Result{Hit: true}
}

// set stores value under key and records key in the organization's index
// so a sweep can find it.
func (c *RedisCache) set(ctx context.Context, orgID uuid.UUID, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.warn("cache.encode", err, logrus.Fields{"key": key})
		return
	}

	index := IndexKey(orgID)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, ttl)
		pipe.SAdd(ctx, index, key)
		pipe.Expire(ctx, index, c.ttl.IndexTTL)
		return nil
	})
	if err != nil {
		c.warn("cache.set", err, logrus.Fields{"key": key})
	}
}

func (c *RedisCache) warn(op string, err error, fields logrus.Fields) {
	logrus.WithFields(fields).WithField("op", op).WithError(err).Warn("cache unavailable, falling back to storage")
}
