package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"userbase.dev/internal/auth"
	"userbase.dev/internal/obs"
)

const bearerChallenge = `Bearer realm="userbase"`

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeErrorBody(w, r, code, map[string]any{"error": msg})
}

func writeErrorBody(w http.ResponseWriter, r *http.Request, code int, payload map[string]any) {
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

// respondError maps service errors onto the HTTP error taxonomy. Anything not
// recognised becomes a generic 500; its detail is exposed only when verbose is set.
func respondError(w http.ResponseWriter, r *http.Request, err error, verbose bool) {
	var ve *auth.ValidationError
	switch {
	case errors.As(err, &ve):
		writeErrorBody(w, r, http.StatusBadRequest, map[string]any{
			"error":   "Validation failed",
			"details": ve.Violations,
		})
	case errors.Is(err, auth.ErrConflict):
		writeError(w, r, http.StatusConflict, "User with this username or email already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, auth.ErrTokenMissing):
		w.Header().Set("WWW-Authenticate", bearerChallenge)
		writeError(w, r, http.StatusUnauthorized, "Access token required")
	case errors.Is(err, auth.ErrTokenExpired):
		w.Header().Set("WWW-Authenticate", bearerChallenge+`, error="invalid_token", error_description="expired"`)
		writeError(w, r, http.StatusUnauthorized, "Token expired")
	case errors.Is(err, auth.ErrTokenInvalid):
		w.Header().Set("WWW-Authenticate", bearerChallenge+`, error="invalid_token"`)
		writeError(w, r, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, auth.ErrForbidden):
		w.Header().Set("WWW-Authenticate", bearerChallenge+`, error="insufficient_scope"`)
		writeError(w, r, http.StatusForbidden, "Insufficient permissions")
	case errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "User not found")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusGatewayTimeout, "Request timed out")
	default:
		obs.Logger().ErrorContext(r.Context(), "request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		payload := map[string]any{"error": "Internal server error"}
		if verbose {
			payload["message"] = err.Error()
		}
		writeErrorBody(w, r, http.StatusInternalServerError, payload)
	}
}

var errEmptyBody = errors.New("request body is required")

// decodeJSON reads exactly one JSON object, rejecting unknown fields and trailing data.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func (a *API) respondError(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err, a.development())
}

func badBody(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, r, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	writeErrorBody(w, r, http.StatusBadRequest, map[string]any{
		"error":   "Invalid request body",
		"details": []string{err.Error()},
	})
}
