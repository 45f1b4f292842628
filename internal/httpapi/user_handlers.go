package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"userbase.dev/internal/audit"
	"userbase.dev/internal/auth"
	"userbase.dev/internal/ids"
)

type roleRequest struct {
	Role string `json:"role"`
}

func (a *API) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.svc.ListUsers(r.Context())
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	out := make([]auth.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users": out,
	})
}

// userID returns the {id} path value. Anything that is not a well-formed id
// cannot name a row, so it is answered as not found without a store round trip.
func (a *API) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !ids.Valid(id) {
		a.respondError(w, r, auth.ErrNotFound)
		return "", false
	}
	return id, true
}

func (a *API) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := a.userID(w, r)
	if !ok {
		return
	}

	var req roleRequest
	if err := decodeJSON(r, &req); err != nil {
		badBody(w, r, err)
		return
	}

	role, err := a.svc.UpdateRole(r.Context(), id, req.Role)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "users.role.update", map[string]any{
		"target_id": id,
		"role":      role.String(),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User role updated successfully",
	})
}

func (a *API) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := a.userID(w, r)
	if !ok {
		return
	}

	if err := a.svc.DeleteUser(r.Context(), id); err != nil {
		a.respondError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "users.delete", map[string]any{
		"target_id": id,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User deleted successfully",
	})
}
