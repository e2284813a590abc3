package ports

import "context"

// PasswordHasher turns plaintext passwords into stored credentials.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Compare returns nil when plain matches hash.
	Compare(hash, plain string) error
}

// DeleteTokens issues and checks the per-resource anti-forgery token that a
// delete request must carry.
type DeleteTokens interface {
	Issue(ctx context.Context, userID string) (string, error)
	// Verify reports whether token was issued for userID and is still usable.
	Verify(ctx context.Context, token, userID string) (bool, error)
}
