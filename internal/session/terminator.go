package session

import (
	"context"

	"supernova.org/internal/auth"
	"supernova.org/internal/obs"
	"supernova.org/internal/revocation"
)

// Outcome is the explicit result of a termination attempt.
type Outcome string

const (
	// OutcomeRevoked means a live revocation entry was written; the token
	// is dead ahead of its natural expiry.
	OutcomeRevoked Outcome = "revoked"
	// OutcomeSkipped means no entry was needed or none could be written:
	// no token, an unverifiable token, an already expired token, or a
	// ledger failure. Logout still succeeds for the caller.
	OutcomeSkipped Outcome = "skipped"
)

// Terminator ends sessions early. Revocation is best-effort; instructing the
// client to discard its credential is the caller's guaranteed half.
type Terminator struct {
	codec  *auth.Codec
	ledger revocation.Ledger
}

func NewTerminator(codec *auth.Codec, ledger revocation.Ledger) *Terminator {
	return &Terminator{codec: codec, ledger: ledger}
}

// Terminate revokes the token for the remainder of its lifetime. It never
// fails the caller: every internal problem degrades to OutcomeSkipped.
func (t *Terminator) Terminate(ctx context.Context, token string) Outcome {
	if token == "" {
		return t.skipped("no_token", nil)
	}

	// The signature check still has to pass before the embedded expiry can
	// be trusted; expiry itself is ignored here.
	claims, err := t.codec.DecodeExpired(token)
	if err != nil {
		return t.skipped("undecodable", err)
	}

	ttl := t.codec.RemainingTTL(claims)
	if ttl <= 0 {
		return t.skipped("already_expired", nil)
	}

	if err := t.ledger.Put(ctx, revocation.Key(token), ttl); err != nil {
		return t.skipped("ledger_error", err)
	}

	obs.ObserveRevocation(string(OutcomeRevoked))
	return OutcomeRevoked
}

func (t *Terminator) skipped(reason string, cause error) Outcome {
	obs.ObserveRevocation(string(OutcomeSkipped))
	entry := map[string]any{
		"type":   "session",
		"event":  "session.revocation_skipped",
		"reason": reason,
	}
	if cause != nil {
		entry["error"] = cause.Error()
	}
	obs.LogRequest(entry)
	return OutcomeSkipped
}
