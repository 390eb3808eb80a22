package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "revoked:"

// RevokedTokens keeps the jti of logged-out access tokens until they would
// have expired anyway.
type RevokedTokens struct {
	db redis.UniversalClient
}

func NewRevokedTokens(client redis.UniversalClient) *RevokedTokens {
	return &RevokedTokens{db: client}
}

func (r *RevokedTokens) Add(ctx context.Context, tokenID string, ttl time.Duration) error {
	return r.db.Set(ctx, revokedPrefix+tokenID, "1", ttl).Err()
}

func (r *RevokedTokens) Contains(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.db.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
