package model

import (
	"encoding/json"
	"time"
)

// RecipientAdmin is the literal recipient value for the admin feed.
const RecipientAdmin = "admin"

// Notification is a per-recipient message. Recipient is a user id, an email,
// or the literal "admin"; visibility is an exact string match on it.
type Notification struct {
	ID        string          `json:"id"`
	Recipient string          `json:"recipient"`
	Message   string          `json:"message"`
	Meta      json.RawMessage `json:"meta,omitempty"` // free-form purchase context
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
