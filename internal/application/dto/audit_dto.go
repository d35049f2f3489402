package dto

import (
	"encoding/json"
	"time"
)

// AuditFilterRequest filtros de consulta de auditoría.
type AuditFilterRequest struct {
	PageRequest
	Module   string     `query:"module"`
	Entity   string     `query:"entity"`
	EntityID *int64     `query:"entity_id"`
	From     *time.Time `query:"from"`
	To       *time.Time `query:"to"`
}

// AuditEntryResponse salida de una entrada de auditoría.
type AuditEntryResponse struct {
	ID         int64           `json:"id"`
	CommandID  string          `json:"command_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	UserID     *int64          `json:"user_id,omitempty"`
	Module     string          `json:"module"`
	Action     string          `json:"action"`
	Entity     string          `json:"entity"`
	EntityID   int64           `json:"entity_id"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}
