// Package revocation tracks session tokens invalidated before their natural
// expiry. Entries are TTL-bound: the backing store discards them no later than
// the token's own expiry, so the ledger never accumulates dead tokens.
package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Ledger is a keyed store of revocation markers. Only the logout path writes;
// the session verifier reads. There is no delete: entries self-expire.
type Ledger interface {
	// Put stores a revocation marker under key, expiring after ttl. A
	// non-positive ttl is a no-op: the token is already expired and needs
	// no entry.
	Put(ctx context.Context, key string, ttl time.Duration) error
	// Get reports whether a live marker exists under key.
	Get(ctx context.Context, key string) (bool, error)
}

// Key derives the ledger key for a raw session token. A stable hash keeps the
// key size bounded regardless of token length.
func Key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "blacklist:" + hex.EncodeToString(sum[:])
}
