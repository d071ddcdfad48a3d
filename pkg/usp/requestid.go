package usp

import (
	"strings"

	"github.com/google/uuid"
)

// requestIDRegistry tracks every request-id currently considered "live" for
// a connection: the authoritative filter the Inbound Dispatcher consults
// before accepting a message (spec.md §4.3).
//
// Callers must hold the connection mutex; this type performs no locking of
// its own.
type requestIDRegistry struct {
	active map[RequestID]struct{}
	telemetry TelemetrySink
	connectionID string
}

func newRequestIDRegistry(connectionID string, telemetry TelemetrySink) *requestIDRegistry {
	return &requestIDRegistry{
		active:       make(map[RequestID]struct{}),
		telemetry:    telemetry,
		connectionID: connectionID,
	}
}

// Create generates a new request-id, logs it, notifies telemetry, inserts
// it into the active set, and returns it.
func (r *requestIDRegistry) Create() RequestID {
	rid := RequestID(strings.ReplaceAll(uuid.NewString(), "-", ""))

	Log().LogRequestID(rid)
	if r.telemetry != nil {
		r.telemetry.WriteTelemetry(r.connectionID, "request_id_created", map[string]any{"request_id": string(rid)})
	}
	r.active[rid] = struct{}{}

	return rid
}

// IsActive reports whether rid is a known, not-yet-completed request.
func (r *requestIDRegistry) IsActive(rid RequestID) bool {
	_, ok := r.active[rid]
	return ok
}

// Remove deletes rid from the active set; turn.end is the only dispatcher
// path that calls this (spec.md §4.6).
func (r *requestIDRegistry) Remove(rid RequestID) {
	delete(r.active, rid)
}
