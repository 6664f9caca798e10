package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimitRepository interface {
	// CheckLoginRateLimit records an attempt and returns whether it is
	// allowed, the attempts left and how long to wait when it is not.
	CheckLoginRateLimit(ctx context.Context, email string) (bool, int, time.Duration, error)
}

type rateLimitRepository struct {
	client *redis.Client
	cfg    *config.RateConfig
	now    func() time.Time
}

func NewRateLimitRepo(client *redis.Client, cfg *config.RateConfig) RateLimitRepository {
	return &rateLimitRepository{client: client, cfg: cfg, now: time.Now}
}

// Attempts live in a sorted set scored by unix milliseconds:
//
//	login_attempts:jane@example.com
//	score 1700000000123  member 1700000000123-<uuid>
//	score 1700000004567  member 1700000004567-<uuid>
func (r *rateLimitRepository) CheckLoginRateLimit(ctx context.Context, email string) (bool, int, time.Duration, error) {
	logger := middleware.LoggerFromContext(ctx)

	key := "login_attempts:" + strings.ToLower(strings.TrimSpace(email))

	now := r.now().UnixMilli()
	windowStart := now - r.cfg.WindowSize.Milliseconds()

	pipe := r.client.Pipeline()

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: fmt.Sprintf("%d-%s", now, uuid.NewString())})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, r.cfg.WindowSize)

	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("Redis pipeline execution failed for rate limit", slog.String("key", key), slog.Any("error", err))
		return false, 0, 0, fmt.Errorf("redis pipeline error for rate limit check: %w", err)
	}

	attempts := count.Val()

	if attempts > r.cfg.MaxAttempts {
		scores, err := r.client.ZRangeArgsWithScores(ctx, redis.ZRangeArgs{Key: key, Start: 0, Stop: 0}).Result()
		if err != nil || len(scores) == 0 {
			logger.Error("Failed to get oldest attempt time for rate limit", slog.String("key", key), slog.Any("error", err))
			return false, 0, r.cfg.WindowSize, fmt.Errorf("failed to get oldest attempt time: %w", err)
		}

		retryAfter := max(int64(scores[0].Score)+r.cfg.WindowSize.Milliseconds()-now, 0)

		logger.Warn("Rate limit exceeded for login", slog.String("key", key), slog.Int64("attempts", attempts))

		return false, 0, time.Duration(retryAfter) * time.Millisecond, nil
	}

	remaining := r.cfg.MaxAttempts - attempts

	logger.Debug("Rate limit check passed", slog.String("key", key), slog.Int64("attempts", attempts), slog.Int64("remaining", remaining))

	return true, int(remaining), 0, nil
}
