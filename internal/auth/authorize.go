package auth

// Authorize reports whether the principal's role is in the allowed set.
// An empty set admits any authenticated principal.
func Authorize(p Principal, allowed ...Role) error {
	if p.UserID == "" {
		return ErrTokenMissing
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, role := range allowed {
		if p.Role == role {
			return nil
		}
	}
	return ErrForbidden
}
