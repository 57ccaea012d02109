package auth

// Authorize reports whether the claims carry one of the allowed roles. It is a
// pure function composed explicitly at each protected operation; there is no
// runtime-configured middleware chain.
func Authorize(claims *Claims, allowed ...string) bool {
	if claims == nil || claims.Role == "" {
		return false
	}
	for _, role := range allowed {
		if claims.Role == role {
			return true
		}
	}
	return false
}
