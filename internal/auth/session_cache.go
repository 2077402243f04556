package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// sessionKeyPrefix namespaces verified-session entries in Redis
	sessionKeyPrefix = "verified_session:"
	// sessionExpiryBuffer shortens cache entries relative to token expiry,
	// so a cached session never outlives its token (in seconds)
	sessionExpiryBuffer = 60
)

// SessionCache caches verified dashboard sessions in Redis so each request
// does not hit the OIDC issuer's key set. Entries are keyed by a hash of
// the raw token and expire with the token itself.
type SessionCache struct {
	Client *redis.Client
}

func NewSessionCache(client *redis.Client) *SessionCache {
	return &SessionCache{Client: client}
}

// Lookup returns the cached organizer id for a raw token, if present.
func (c *SessionCache) Lookup(ctx context.Context, rawToken string) (string, bool) {
	if c.Client == nil {
		return "", false
	}
	userID, err := c.Client.Get(ctx, sessionKey(rawToken)).Result()
	if err != nil {
		return "", false
	}
	return userID, userID != ""
}

// Store caches a verified token → organizer id mapping until just before
// the token expires.
func (c *SessionCache) Store(ctx context.Context, rawToken, userID string, expiry time.Time) error {
	if c.Client == nil {
		return nil
	}
	ttl := time.Until(expiry) - sessionExpiryBuffer*time.Second
	if ttl <= 0 {
		return nil
	}
	return c.Client.Set(ctx, sessionKey(rawToken), userID, ttl).Err()
}

func sessionKey(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return sessionKeyPrefix + hex.EncodeToString(sum[:])
}
