package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"classroom-live/internal/database"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type RedisService struct {
	client *database.RedisClient
}

func NewRedisService(client *database.RedisClient) *RedisService {
	return &RedisService{
		client: client,
	}
}

// =============================================================================
// Course Roster Mirror
// =============================================================================

func courseRosterKey(courseID uint) string {
	return fmt.Sprintf("course:%d:online", courseID)
}

// SyncCourseRoster replaces the mirrored roster for a course with the given
// user set. The in-memory presence tracker remains authoritative; this copy
// exists for services that have no WebSocket connection.
func (r *RedisService) SyncCourseRoster(ctx context.Context, courseID uint, users []uint) error {
	key := courseRosterKey(courseID)
	pipe := r.client.GetClient().Pipeline()

	pipe.Del(ctx, key)
	if len(users) > 0 {
		members := make([]interface{}, len(users))
		for i, id := range users {
			members[i] = id
		}
		pipe.SAdd(ctx, key, members...)
		pipe.Expire(ctx, key, 24*time.Hour)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("Failed to sync course roster", "courseID", courseID, "error", err)
		return err
	}

	slog.Debug("Course roster mirrored", "courseID", courseID, "users", len(users))
	return nil
}

func (r *RedisService) GetCourseRoster(ctx context.Context, courseID uint) ([]uint, error) {
	members, err := r.client.GetClient().SMembers(ctx, courseRosterKey(courseID)).Result()
	if err != nil {
		return nil, err
	}

	users := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		users = append(users, uint(id))
	}
	return users, nil
}

// =============================================================================
// Rate Limiting
// =============================================================================

// CheckRateLimit implements a sliding-window limit over a sorted set.
func (r *RedisService) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).Unix()

	pipe := r.client.GetClient().Pipeline()

	// Remove old entries
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))

	// Count current entries
	pipe.ZCard(ctx, key)

	// Add current request
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.Unix()), Member: now.UnixNano()})

	// Set expiration
	pipe.Expire(ctx, key, window)

	results, err := pipe.Exec(ctx)
	if err != nil {
		return false, err
	}

	count := results[1].(*redis.IntCmd).Val()

	return count < int64(limit), nil
}
