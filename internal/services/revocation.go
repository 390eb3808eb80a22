package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/studymate/auth-backend/internal/models"
)

// RevocationCache is an optional fast path in front of the invalid_tokens
// table. Implementations must tolerate keys expiring on their own.
type RevocationCache interface {
	Add(ctx context.Context, tokenID string, ttl time.Duration) error
	Contains(ctx context.Context, tokenID string) (bool, error)
}

// RevocationList records logged-out access tokens by their jti claim. The
// bearer string is not a stable key: a JWT signature has several base64url
// spellings that verify identically. The database is the source of truth;
// the cache only short-circuits positive lookups.
type RevocationList struct {
	store InvalidTokenStore
	cache RevocationCache
	now   func() time.Time
}

func NewRevocationList(store InvalidTokenStore, cache RevocationCache) *RevocationList {
	return &RevocationList{store: store, cache: cache, now: time.Now}
}

func (r *RevocationList) Revoke(ctx context.Context, tokenID string, userID uint, expiresAt time.Time) error {
	if err := r.store.Create(ctx, &models.InvalidToken{
		TokenID:   tokenID,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}); err != nil {
		return err
	}

	if r.cache != nil {
		if ttl := expiresAt.Sub(r.now()); ttl > 0 {
			if err := r.cache.Add(ctx, tokenID, ttl); err != nil {
				slog.Warn("revocation cache write failed", "error", err, "user_id", userID)
			}
		}
	}
	return nil
}

func (r *RevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if r.cache != nil {
		hit, err := r.cache.Contains(ctx, tokenID)
		if err != nil {
			slog.Warn("revocation cache read failed", "error", err)
		} else if hit {
			return true, nil
		}
	}

	return r.store.Exists(ctx, tokenID)
}
