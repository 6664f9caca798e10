package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrCorruptSession  = errors.New("corrupt persisted session")
)

// SessionRepository keeps the token and the user record under separate keys
// that share one expiry.
type SessionRepository interface {
	Save(ctx context.Context, sessionID string, session *models.Session, ttl time.Duration) error
	Load(ctx context.Context, sessionID string) (*models.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

type sessionRepository struct {
	client *redis.Client
}

func NewSessionRepo(client *redis.Client) SessionRepository {
	return &sessionRepository{client: client}
}

func sessionTokenKey(sessionID string) string {
	return cache.Key(cache.SessionKeyPrefix, sessionID, "token")
}

func sessionUserKey(sessionID string) string {
	return cache.Key(cache.SessionKeyPrefix, sessionID, "user")
}

func (r *sessionRepository) Save(ctx context.Context, sessionID string, session *models.Session, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", ttl)
	}

	userJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session user: %w", err)
	}

	storeCtx, cancel := utils.WithStoreTimeout(ctx)
	defer cancel()

	_, err = r.client.TxPipelined(storeCtx, func(pipe redis.Pipeliner) error {
		pipe.Set(storeCtx, sessionTokenKey(sessionID), session.Token, ttl)
		pipe.Set(storeCtx, sessionUserKey(sessionID), userJSON, ttl)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to persist session %s: %w", sessionID, err)
	}

	return nil
}

func (r *sessionRepository) Load(ctx context.Context, sessionID string) (*models.Session, error) {
	storeCtx, cancel := utils.WithStoreTimeout(ctx)
	defer cancel()

	values, err := r.client.MGet(storeCtx, sessionTokenKey(sessionID), sessionUserKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", sessionID, err)
	}

	token, hasToken := values[0].(string)
	userJSON, hasUser := values[1].(string)

	switch {
	case !hasToken && !hasUser:
		return nil, ErrSessionNotFound
	case !hasToken || token == "":
		return nil, fmt.Errorf("%w: token missing", ErrCorruptSession)
	case !hasUser:
		return nil, fmt.Errorf("%w: user missing", ErrCorruptSession)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(userJSON), &session); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSession, err)
	}

	if session.UserID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrCorruptSession)
	}

	session.Token = token

	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	storeCtx, cancel := utils.WithStoreTimeout(ctx)
	defer cancel()

	if err := r.client.Del(storeCtx, sessionTokenKey(sessionID), sessionUserKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}

	return nil
}
