package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	dom "taskward/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "task:list:"

// ListKey builds the cache key for one user's listing under a filter. The
// fingerprint is deterministic so equal filters always hit the same key, and
// every key carries the user id so invalidation stays per user. Search is
// lowercased only: ILIKE makes case variants the same query, but surrounding
// whitespace changes the match and must keep its own key.
func ListKey(userID int64, f dom.TaskFilter) string {
	var b strings.Builder
	b.WriteString(keyPrefix)
	b.WriteString(strconv.FormatInt(userID, 10))
	b.WriteByte(':')
	if f.Search != nil {
		b.WriteString("s=" + strings.ToLower(*f.Search))
	}
	b.WriteByte('|')
	if f.Completed != nil {
		b.WriteString("c=" + strconv.FormatBool(*f.Completed))
	}
	b.WriteByte('|')
	if f.Priority != nil {
		b.WriteString("p=" + string(*f.Priority))
	}
	b.WriteByte('|')
	if f.DueDate != nil {
		b.WriteString("d=" + f.DueDate.Format("2006-01-02"))
	}
	return b.String()
}

// TaskCache caches task listings in Redis.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskCache returns a new TaskCache.
func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached listing or nil on miss.
func (c *TaskCache) GetList(ctx context.Context, userID int64, f dom.TaskFilter) ([]dom.Task, error) {
	b, err := c.rdb.Get(ctx, ListKey(userID, f)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Task
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the listing.
func (c *TaskCache) SetList(ctx context.Context, userID int64, f dom.TaskFilter, list []dom.Task) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, ListKey(userID, f), b, c.ttl).Err()
}

// InvalidateUser removes every cached listing belonging to the user. Called
// on each of the user's mutations.
func (c *TaskCache) InvalidateUser(ctx context.Context, userID int64) error {
	pattern := keyPrefix + strconv.FormatInt(userID, 10) + ":*"
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
