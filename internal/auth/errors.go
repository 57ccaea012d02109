package auth

import "errors"

var (
	// ErrTokenMalformed indicates the token could not be parsed or lacks
	// required identity claims.
	ErrTokenMalformed = errors.New("auth: malformed token")
	// ErrBadSignature indicates the signature does not verify against the
	// configured secret.
	ErrBadSignature = errors.New("auth: bad signature")
	// ErrTokenExpired indicates a well-formed, correctly signed token whose
	// expiry has passed.
	ErrTokenExpired = errors.New("auth: token expired")
)
