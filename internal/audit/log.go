package audit

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"userbase.dev/internal/auth"
	"userbase.dev/internal/obs"
)

// LogEvent writes an audit log entry enriched with request and actor context.
// Callers must not pass secrets, plaintext passwords or hashes in fields.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	attrs := []slog.Attr{
		slog.String("type", "audit"),
		slog.String("event", event),
	}
	if rid := middleware.GetReqID(ctx); rid != "" {
		attrs = append(attrs, slog.String("request_id", rid))
	}
	if userID, ok := auth.UserIDFromContext(ctx); ok {
		attrs = append(attrs, slog.String("actor_id", userID))
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	group := make([]any, 0, len(keys))
	for _, k := range keys {
		group = append(group, slog.Any(k, fields[k]))
	}
	attrs = append(attrs, slog.Group("fields", group...))

	obs.Logger().LogAttrs(ctx, slog.LevelInfo, "audit", attrs...)
	return nil
}
