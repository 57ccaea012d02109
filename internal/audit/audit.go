// Package audit emits structured audit events for security-relevant actions.
// Events are JSON lines on standard output; shipping them elsewhere is the
// platform's job.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"supernova.org/internal/auth"
)

// Event names used across the service.
const (
	EventRegister      = "auth.register"
	EventLogin         = "auth.login"
	EventLoginFailed   = "auth.login_failed"
	EventLogout        = "auth.logout"
	EventProductCreate = "product.create"
	EventProductUpdate = "product.update"
	EventProductDelete = "product.delete"
)

type requestIDKey struct{}

// WithRequestID tags the context so audit events can be correlated with the
// access log.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id set by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LogEvent writes one audit record. The actor is taken from the session
// identity on the context when present.
func LogEvent(ctx context.Context, event string, fields map[string]any) {
	record := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"kind":  "audit",
		"event": event,
	}
	if id := RequestID(ctx); id != "" {
		record["request_id"] = id
	}
	if u, ok := auth.IdentityFromContext(ctx); ok {
		record["actor"] = u.ID
		record["actor_role"] = string(u.Role)
	}
	for k, v := range fields {
		record[k] = v
	}
	line, err := json.Marshal(record)
	if err != nil {
		log.Printf(`{"kind":"audit","event":%q,"error":"marshal failed"}`, event)
		return
	}
	log.Println(string(line))
}
