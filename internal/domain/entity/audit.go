package entity

import (
	"encoding/json"
	"time"
)

// Acciones auditables.
const (
	AuditCreate = "Create"
	AuditUpdate = "Update"
	AuditDelete = "Delete"
)

// AuditEntry registro de auditoría con snapshot antes/después en JSON.
type AuditEntry struct {
	ID         int64
	CommandID  string // agrupa las entradas emitidas por un mismo comando
	OccurredAt time.Time
	UserID     *int64
	Module     string
	Action     string
	Entity     string
	EntityID   int64
	Before     json.RawMessage
	After      json.RawMessage
}
