// Package cache keeps resolved user roles in Redis.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"daily_report/internal/models"
)

const keyPrefix = "daily_report:role:"

// RoleCache implements services.RoleCache. Redis errors are logged and
// treated as misses so the database stays authoritative.
type RoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRoleCache(client *redis.Client, ttl time.Duration) *RoleCache {
	return &RoleCache{client: client, ttl: ttl}
}

func roleKey(userID string) string {
	return keyPrefix + userID
}

func (c *RoleCache) Get(ctx context.Context, userID string) (models.Role, bool) {
	val, err := c.client.Get(ctx, roleKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("role cache read failed")
		return "", false
	}
	role := models.Role(val)
	if !role.Valid() {
		return "", false
	}
	return role, true
}

// Fill caches a role read from the database unless the key is already set.
func (c *RoleCache) Fill(ctx context.Context, userID string, role models.Role) {
	if err := c.client.SetNX(ctx, roleKey(userID), string(role), c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("role cache fill failed")
	}
}

// Set overwrites the cached role after a role change commits. If the write
// fails the key is dropped so the database is read again.
func (c *RoleCache) Set(ctx context.Context, userID string, role models.Role) {
	err := c.client.Set(ctx, roleKey(userID), string(role), c.ttl).Err()
	if err == nil {
		return
	}
	logrus.WithError(err).WithField("user_id", userID).Warn("role cache write failed")
	if err := c.client.Del(ctx, roleKey(userID)).Err(); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("role cache entry may be stale")
	}
}
