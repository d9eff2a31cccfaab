// audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// AuditLog records one committed write to an entity kind.
type AuditLog struct {
	ID            string          `json:"id" validate:"required"`
	Timestamp     time.Time       `json:"timestamp"`
	Kind          string          `json:"kind" validate:"required"`
	EntityID      string          `json:"entity_id" validate:"required"`
	Action        string          `json:"action" validate:"oneof=insert update delete"`
	ChangedFields []string        `json:"changed_fields,omitempty"`
	Snapshot      json.RawMessage `json:"snapshot,omitempty"`
}
