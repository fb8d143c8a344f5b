// Package service defines the contracts for domain collaborators whose
// implementations live in the infrastructure layer.
package service

import (
	"context"
	"errors"
	"time"

	"evault/internal/domain/entity"
)

// ErrKeyExpired is returned by every read of a missing or expired key. The
// store never silently returns empty values.
var ErrKeyExpired = errors.New("key missing or expired")

// Cache key prefixes. The session id or access token is appended verbatim.
const (
	handshakeKeyPrefix = "evault-login-url:"
	sessionKeyPrefix   = "evault-session:"
	pollKeyPrefix      = "evault-token-poll:"
)

// HandshakeKey is the cache key for an in-flight login attempt.
func HandshakeKey(sessionID string) string { return handshakeKeyPrefix + sessionID }

// SessionKey is the cache key for an issued user session.
func SessionKey(accessToken string) string { return sessionKeyPrefix + accessToken }

// PollKey is the cache key for a CLI poll slot.
func PollKey(sessionID string) string { return pollKeyPrefix + sessionID }

// SessionStore wraps a networked cache with TTL semantics. All operations are
// atomic at the key granularity; GetDelete is the single primitive the broker
// relies on for at-most-once consumption.
type SessionStore interface {
	// Put stores a plain value under key with a TTL.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Get reads a plain value; ErrKeyExpired when the key is gone.
	Get(ctx context.Context, key string) (string, error)

	// GetDelete atomically reads and removes a plain value;
	// ErrKeyExpired when the key is gone.
	GetDelete(ctx context.Context, key string) (string, error)

	// Renew resets the TTL of an existing key; ErrKeyExpired when the key
	// is gone.
	Renew(ctx context.Context, key string, ttl time.Duration) error

	// Delete removes a key, returning how many keys were removed.
	Delete(ctx context.Context, key string) (int64, error)

	// PutSession stores a UserSession as a native field map with a TTL.
	PutSession(ctx context.Context, key string, session *entity.UserSession, ttl time.Duration) error

	// GetSession reads a stored UserSession; ErrKeyExpired when gone.
	GetSession(ctx context.Context, key string) (*entity.UserSession, error)
}
