package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// InteractionType identifies how the communication happened
type InteractionType string

const (
	InteractionTypeEmail InteractionType = "email"
)

// InteractionDirection identifies who initiated the communication
type InteractionDirection string

const (
	DirectionInbound  InteractionDirection = "inbound"
	DirectionOutbound InteractionDirection = "outbound"
)

// Metadata keys recorded on email interactions
const (
	MetaMessageID = "message_id"
	MetaFolder    = "folder"
	MetaFrom      = "from"
	MetaTo        = "to"
)

// JSONMap is a JSONB-backed metadata bag
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported metadata type")
	}
}

// ContactInteraction is an immutable record of one communication event with a contact.
// For email interactions the (contact, thread, metadata message_id) tuple is unique;
// the sync engine relies on it to stay idempotent across re-runs.
type ContactInteraction struct {
	ID          string               `json:"id" gorm:"primaryKey"`
	ContactID   string               `json:"contact_id" gorm:"index;not null"`
	UserID      string               `json:"user_id" gorm:"index;not null"`
	Type        InteractionType      `json:"type" gorm:"default:email"`
	Direction   InteractionDirection `json:"direction"`
	Subject     string               `json:"subject"`
	ThreadID    string               `json:"thread_id" gorm:"index"`
	CompletedAt time.Time            `json:"completed_at"`
	Metadata    JSONMap              `json:"metadata" gorm:"type:jsonb"`
	CreatedAt   time.Time            `json:"created_at"`
}

// MessageID returns the provider message identifier recorded in the metadata bag.
func (i *ContactInteraction) MessageID() string {
	if i.Metadata == nil {
		return ""
	}
	if v, ok := i.Metadata[MetaMessageID].(string); ok {
		return v
	}
	return ""
}
