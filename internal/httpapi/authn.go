package httpapi

import (
	"net/http"
	"strings"

	"userbase.dev/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "bearer"
)

// Authenticate resolves the bearer token into a principal on the request
// context. Missing, expired and invalid tokens are rejected with distinct messages.
func (a *API) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			a.respondError(w, r, err)
			return
		}
		principal, err := a.svc.Authenticate(token)
		if err != nil {
			a.respondError(w, r, err)
			return
		}
		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole admits only principals holding one of the given roles. It must
// be composed after Authenticate.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := auth.PrincipalFromContext(r.Context())
			if err := auth.Authorize(principal, roles...); err != nil {
				respondError(w, r, err, false)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken accepts "Bearer <token>" as well as a bare token.
func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", auth.ErrTokenMissing
	}
	scheme, rest, hasSpace := strings.Cut(header, " ")
	if strings.EqualFold(scheme, bearer) {
		token := strings.TrimSpace(rest)
		if token == "" {
			return "", auth.ErrTokenMissing
		}
		return token, nil
	}
	if hasSpace {
		return "", auth.ErrTokenInvalid
	}
	return header, nil
}
