package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrCorruptEntry is returned by Get when a stored value cannot be decoded.
// Callers treat the entry as absent and usually delete it.
var ErrCorruptEntry = errors.New("corrupt cache entry")

type Cache interface {
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Key joins a prefix and identifier parts with ':'.
func Key(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), ":")
}

const (
	CartKeyPrefix    = "cart"
	SessionKeyPrefix = "session"
)
