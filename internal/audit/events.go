package audit

import "time"

// Lifecycle event types. The set is closed: the query side treats any row
// whose type is EventTypeRequestEnd as a completed, listable log record.
const (
	EventTypeRequestStart = "REQUEST_START"
	EventTypeAuthInfo     = "AUTH_INFO"
	EventTypeRequestEnd   = "REQUEST_END"
)

// recognizedMethods is the HTTP verb set accepted as a method filter. An
// unrecognized value is silently dropped, not rejected.
var recognizedMethods = map[string]struct{}{
	"GET":     {},
	"POST":    {},
	"PUT":     {},
	"PATCH":   {},
	"DELETE":  {},
	"HEAD":    {},
	"OPTIONS": {},
}

// AuditLog is the formatted view of a REQUEST_END event returned by the
// query engine. ID is the correlation id of the request, not the storage
// sequence id.
type AuditLog struct {
	ID     uint64    `json:"id"`
	Method *string   `json:"method"`
	Path   *string   `json:"path"`
	Status *int      `json:"status"`
	User   *string   `json:"user"`
	Time   time.Time `json:"time"`
}

// LogFilter holds the optional, conjunctive predicates applied to END
// records. Method must already be upper-cased and recognized; the zero
// value matches everything.
type LogFilter struct {
	UserID    string
	Method    string
	StartDate *time.Time
	EndDate   *time.Time
}
