// Package cache keeps the task list in Redis between mutations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"taskverse/internal/models"
)

const (
	keyList = "tasks:list"
	keyGen  = "tasks:list:gen"
)

// TaskCache caches the full task list. The list is invalidated on every write.
// Every invalidation bumps a generation counter, and a fill only lands when
// the counter still holds the value read before the store was queried.
type TaskCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewTaskCache(rdb *redis.Client, prefix string, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Connect dials Redis and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// GetList returns the cached list, or nil on a miss.
func (c *TaskCache) GetList(ctx context.Context) ([]models.Task, error) {
	b, err := c.rdb.Get(ctx, c.prefix+keyList).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []models.Task{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Generation returns the current invalidation counter, zero before the
// first invalidation.
func (c *TaskCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.prefix+keyGen).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetList stores list when the generation still equals gen. A fill that
// raced an invalidation is dropped and SetList reports false.
func (c *TaskCache) SetList(ctx context.Context, gen int64, list []models.Task) (bool, error) {
	if list == nil {
		list = []models.Task{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return false, err
	}

	genKey := c.prefix + keyGen
	stored := false
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.prefix+keyList, b, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

// Invalidate drops the list and bumps the generation in one transaction.
func (c *TaskCache) Invalidate(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.prefix+keyGen)
		pipe.Del(ctx, c.prefix+keyList)
		return nil
	})
	return err
}
