package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "useradmin:delete-token:"

// TokenLedger remembers spent anti-forgery token IDs until they expire.
// Key format: useradmin:delete-token:<jti>
type TokenLedger struct {
	client redis.Cmdable
}

// NewTokenLedger creates a TokenLedger wrapping the given Redis client.
func NewTokenLedger(client redis.Cmdable) *TokenLedger {
	return &TokenLedger{client: client}
}

// Consume marks jti as spent for ttl and reports whether this call was the
// first to do so.
func (l *TokenLedger) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Second
	}
	ok, err := l.client.SetNX(ctx, tokenKeyPrefix+jti, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("consume token %s: %w", jti, err)
	}
	return ok, nil
}
