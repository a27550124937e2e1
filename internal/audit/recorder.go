package audit

import (
	"context"
	"log/slog"

	"github.com/ptavares/socialspaces/model"
)

// Recorder writes the three lifecycle events of a request. Audit writes are
// a side channel: a failed insert is logged operationally and swallowed so
// that audit-store trouble never changes the response sent to the caller.
// The query layer is written to tolerate the resulting gaps.
type Recorder struct {
	repo EventRepository
}

func NewRecorder(repo EventRepository) *Recorder {
	return &Recorder{repo: repo}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// RecordStart writes the REQUEST_START event. It runs before any permission
// check or business logic, so the user is usually still unknown.
func (r *Recorder) RecordStart(ctx context.Context, correlationID uint64, method, path, userID string) {
	event := &model.AuditEvent{
		CorrelationID: correlationID,
		EventType:     EventTypeRequestStart,
		Method:        optional(method),
		Path:          optional(path),
		UserID:        optional(userID),
	}
	if err := r.repo.Insert(ctx, event); err != nil {
		slog.Error("Failed to record request start", "correlationId", correlationID, "error", err)
	}
}

// RecordAuthenticated writes the AUTH_INFO event once an identity has been
// established. Never called for requests that never authenticate.
func (r *Recorder) RecordAuthenticated(ctx context.Context, correlationID uint64, userID string) {
	event := &model.AuditEvent{
		CorrelationID: correlationID,
		EventType:     EventTypeAuthInfo,
		UserID:        optional(userID),
	}
	if err := r.repo.Insert(ctx, event); err != nil {
		slog.Error("Failed to record auth info", "correlationId", correlationID, "error", err)
	}
}

// RecordEnd writes the REQUEST_END event with the terminal status. Callers
// decide whether a given terminal state should be recorded at all; see the
// 401/403 handling in the correlation middleware.
func (r *Recorder) RecordEnd(ctx context.Context, correlationID uint64, method, path string, status int, userID string) {
	event := &model.AuditEvent{
		CorrelationID: correlationID,
		EventType:     EventTypeRequestEnd,
		Method:        optional(method),
		Path:          optional(path),
		Status:        &status,
		UserID:        optional(userID),
	}
	if err := r.repo.Insert(ctx, event); err != nil {
		slog.Error("Failed to record request end", "correlationId", correlationID, "error", err)
	}
}
