package model

import "time"

// AuditEvent is one lifecycle event of an inbound request. Every event of
// the same request shares a correlation id; rows are append-only and never
// updated or deleted.
type AuditEvent struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	CorrelationID uint64    `gorm:"index;not null"` // shared by all events of one request
	EventType     string    `gorm:"size:16;not null;index"`
	Method        *string   `gorm:"size:8"`   // START and END only
	Path          *string   `gorm:"size:512"` // START and END only
	Status        *int      // END only
	UserID        *string   `gorm:"size:64;index"` // AUTH_INFO, optionally END
	CreatedAt     time.Time `gorm:"autoCreateTime;index"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
