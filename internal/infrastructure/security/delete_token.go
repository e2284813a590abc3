package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	deleteAudience        = "user-delete"
	defaultDeleteTokenTTL = 15 * time.Minute
)

// TokenLedger records which token IDs have already been spent.
type TokenLedger interface {
	// Consume marks jti as used and reports whether this was the first use.
	Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

// DeleteTokenManager issues per-user anti-forgery tokens for the delete
// action as short-lived HS256 JWTs. With a ledger each token is single-use.
type DeleteTokenManager struct {
	secret []byte
	ttl    time.Duration
	ledger TokenLedger
	log    zerolog.Logger
	now    func() time.Time
}

// NewDeleteTokenManager returns a manager signing with secret. ledger may be
// nil, in which case tokens stay valid until they expire.
func NewDeleteTokenManager(secret string, ttl time.Duration, ledger TokenLedger, log zerolog.Logger) *DeleteTokenManager {
	if ttl <= 0 {
		ttl = defaultDeleteTokenTTL
	}
	return &DeleteTokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		ledger: ledger,
		log:    log,
		now:    time.Now,
	}
}

// Issue returns a token bound to userID.
func (m *DeleteTokenManager) Issue(_ context.Context, userID string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		Audience:  jwt.ClaimStrings{deleteAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign delete token: %w", err)
	}
	return signed, nil
}

// Verify reports whether token was issued for userID, is unexpired and, when a
// ledger is configured, has not been used before. Malformed, expired or
// mismatched tokens yield (false, nil).
func (m *DeleteTokenManager) Verify(ctx context.Context, token, userID string) (bool, error) {
	if token == "" || userID == "" {
		return false, nil
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(deleteAudience),
		jwt.WithSubject(userID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		if err != nil && !errors.Is(err, jwt.ErrTokenMalformed) {
			m.log.Debug().Err(err).Str("user_id", userID).Msg("delete token rejected")
		}
		return false, nil
	}

	if m.ledger == nil {
		return true, nil
	}

	first, err := m.ledger.Consume(ctx, claims.ID, m.remaining(claims))
	if err != nil {
		// Fail open on ledger errors.
		m.log.Warn().Err(err).Str("user_id", userID).Msg("token ledger unavailable, accepting delete token")
		return true, nil
	}
	if !first {
		m.log.Debug().Str("user_id", userID).Str("jti", claims.ID).Msg("delete token replayed")
	}
	return first, nil
}

func (m *DeleteTokenManager) remaining(claims *jwt.RegisteredClaims) time.Duration {
	if claims.ExpiresAt == nil {
		return m.ttl
	}
	if d := claims.ExpiresAt.Sub(m.now()); d > 0 {
		return d
	}
	return time.Second
}
