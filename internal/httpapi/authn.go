package httpapi

import (
	"errors"
	"net/http"

	"supernova.org/internal/auth"
	"supernova.org/internal/session"
)

// requireSession gates a handler behind a verified session. Every rejection
// looks the same to the client; backend failures surface as 500, never 401.
func (a *API) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, claims, token, err := a.verifier.Verify(r)
		if err != nil {
			if errors.Is(err, session.ErrUnavailable) {
				writeServerError(w)
				return
			}
			writeUnauthorized(w)
			return
		}
		ctx := session.Attach(r.Context(), u, claims, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate verifies the session inline for routes where only some methods
// are protected. On failure the response is already written.
func (a *API) authenticate(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	u, claims, token, err := a.verifier.Verify(r)
	if err != nil {
		if errors.Is(err, session.ErrUnavailable) {
			writeServerError(w)
			return r, false
		}
		writeUnauthorized(w)
		return r, false
	}
	return r.WithContext(session.Attach(r.Context(), u, claims, token)), true
}

// requireRole restricts an already-verified request to the listed roles.
func requireRole(w http.ResponseWriter, r *http.Request, roles ...string) bool {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || !auth.Authorize(claims, roles...) {
		writeMessage(w, http.StatusForbidden, "Forbidden")
		return false
	}
	return true
}
