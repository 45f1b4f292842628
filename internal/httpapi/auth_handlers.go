package httpapi

import (
	"errors"
	"net/http"
	"time"

	"userbase.dev/internal/audit"
	"userbase.dev/internal/auth"
	"userbase.dev/internal/obs"
)

type authResponse struct {
	Message   string          `json:"message"`
	User      auth.PublicUser `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func (a *API) Signup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupInput
	if err := decodeJSON(r, &req); err != nil {
		badBody(w, r, err)
		return
	}

	res, err := a.svc.Signup(r.Context(), req)
	if err != nil {
		obs.RecordAuthEvent("signup", outcomeOf(err))
		a.respondError(w, r, err)
		return
	}
	obs.RecordAuthEvent("signup", "success")
	_ = audit.LogEvent(auth.ContextWithPrincipal(r.Context(), auth.Principal{UserID: res.User.ID}), "auth.signup", map[string]any{
		"user_id":  res.User.ID,
		"username": res.User.Username,
	})

	writeJSON(w, http.StatusCreated, authResponse{
		Message:   "User created successfully",
		User:      res.User.Public(),
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	})
}

func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginInput
	if err := decodeJSON(r, &req); err != nil {
		badBody(w, r, err)
		return
	}

	res, err := a.svc.Login(r.Context(), req)
	if err != nil {
		obs.RecordAuthEvent("login", outcomeOf(err))
		if errors.Is(err, auth.ErrInvalidCredentials) {
			_ = audit.LogEvent(r.Context(), "auth.login.failed", map[string]any{
				"remote_addr": r.RemoteAddr,
			})
		}
		a.respondError(w, r, err)
		return
	}
	obs.RecordAuthEvent("login", "success")
	_ = audit.LogEvent(auth.ContextWithPrincipal(r.Context(), auth.Principal{UserID: res.User.ID}), "auth.login", map[string]any{
		"user_id": res.User.ID,
	})

	writeJSON(w, http.StatusOK, authResponse{
		Message:   "Login successful",
		User:      res.User.Public(),
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	})
}

func (a *API) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		a.respondError(w, r, auth.ErrTokenMissing)
		return
	}
	user, err := a.svc.Profile(r.Context(), userID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": user.Public(),
	})
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, auth.ErrValidation):
		return "invalid"
	case errors.Is(err, auth.ErrConflict):
		return "conflict"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "rejected"
	default:
		return "error"
	}
}
