// Package cache wraps stores with a Redis cache-aside layer.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/theleywin/friendlynk/src/models"
	"github.com/theleywin/friendlynk/src/repository"
)

// Users caches user summaries, which every post listing resolves for its
// authors and commenters. Redis failures fall through to the store.
type Users struct {
	repository.Users
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewUsers(inner repository.Users, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Users {
	return &Users{Users: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *Users) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	result := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = UserSummaryKey(id.Hex())
	}

	values, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Sugar().Warnf("failed to read user summaries from redis: %s", err.Error())
		return c.Users.Summaries(ctx, ids)
	}

	var missing []primitive.ObjectID
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var summary models.UserSummary
		if err := json.Unmarshal([]byte(raw), &summary); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		result[ids[i]] = summary
	}
	if len(missing) == 0 {
		return result, nil
	}

	fetched, err := c.Users.Summaries(ctx, missing)
	if err != nil {
		return nil, err
	}

	pipe := c.rdb.Pipeline()
	for id, summary := range fetched {
		result[id] = summary
		data, err := json.Marshal(summary)
		if err != nil {
			continue
		}
		pipe.Set(ctx, UserSummaryKey(id.Hex()), data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Sugar().Warnf("failed to store user summaries in redis: %s", err.Error())
	}
	return result, nil
}

// Update invalidates the cached summary after a successful write.
func (c *Users) Update(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	user, err := c.Users.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	if err := c.rdb.Del(ctx, UserSummaryKey(id.Hex())).Err(); err != nil {
		c.logger.Sugar().Errorf("failed to invalidate user summary %s: %s", id.Hex(), err.Error())
	}
	return user, nil
}
