package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"supernova.org/internal/auth"
	"supernova.org/internal/obs"
	"supernova.org/internal/revocation"
	"supernova.org/internal/user"
)

// ErrRejected is returned for every verification failure the caller may see.
// The distinct reason is recorded internally only; exposing it would let an
// attacker distinguish forged from expired from revoked tokens.
var ErrRejected = errors.New("session: rejected")

// ErrUnavailable indicates the ledger or the credential store failed, not the
// token. Callers map it to a system error, never to Unauthorized.
var ErrUnavailable = errors.New("session: backend unavailable")

// Verifier is the per-request gate. Checks run cheapest first: signature and
// expiry before the revocation lookup, the revocation lookup before the
// credential-store read.
type Verifier struct {
	codec  *auth.Codec
	ledger revocation.Ledger
	users  user.Store
}

func NewVerifier(codec *auth.Codec, ledger revocation.Ledger, users user.Store) *Verifier {
	return &Verifier{codec: codec, ledger: ledger, users: users}
}

// Verify resolves the identity behind the request's session token. On success
// it returns the account, the verified claims and the raw token for the
// caller to attach to the request context.
func (v *Verifier) Verify(r *http.Request) (*user.User, *auth.Claims, string, error) {
	token, ok := ExtractToken(r)
	if !ok {
		return nil, nil, "", v.reject("missing_token", nil)
	}

	claims, err := v.codec.Decode(token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrBadSignature):
			return nil, nil, "", v.reject("bad_signature", err)
		case errors.Is(err, auth.ErrTokenExpired):
			return nil, nil, "", v.reject("expired", err)
		default:
			return nil, nil, "", v.reject("malformed", err)
		}
	}

	revoked, err := v.ledger.Get(r.Context(), revocation.Key(token))
	if err != nil {
		obs.ObserveVerification("ledger_error")
		return nil, nil, "", fmt.Errorf("%w: revocation lookup: %v", ErrUnavailable, err)
	}
	if revoked {
		return nil, nil, "", v.reject("revoked", nil)
	}

	u, err := v.users.FindByID(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil, "", v.reject("unknown_subject", nil)
		}
		obs.ObserveVerification("store_error")
		return nil, nil, "", fmt.Errorf("%w: identity lookup: %v", ErrUnavailable, err)
	}

	obs.ObserveVerification("ok")
	return u, claims, token, nil
}

// Attach stores the verification result on the request context.
func Attach(ctx context.Context, u *user.User, claims *auth.Claims, token string) context.Context {
	ctx = auth.ContextWithIdentity(ctx, u)
	ctx = auth.ContextWithClaims(ctx, claims)
	return auth.ContextWithToken(ctx, token)
}

func (v *Verifier) reject(reason string, cause error) error {
	obs.ObserveVerification(reason)
	entry := map[string]any{
		"type":   "session",
		"event":  "session.rejected",
		"reason": reason,
	}
	if cause != nil {
		entry["error"] = cause.Error()
	}
	obs.LogRequest(entry)
	return ErrRejected
}
