package events

import (
	"time"

	"github.com/spec-kit/intranet-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionRestored    EventType = "session_restored"
	EventSessionStarted     EventType = "session_started"
	EventSessionEnded       EventType = "session_ended"
	EventSessionInvalidated EventType = "session_invalidated"
	EventLoginFailed        EventType = "login_failed"
	EventDisplayNameChanged EventType = "display_name_changed"
)

// Event represents a session lifecycle event.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    int64       `json:"user_id,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// LoginFailedPayload payload.
type LoginFailedPayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// DisplayNameChangedPayload payload.
type DisplayNameChangedPayload struct {
	OldNome string `json:"old_nome"`
	NewNome string `json:"new_nome"`
}

// SessionEndedPayload payload.
type SessionEndedPayload struct {
	Reason string `json:"reason"`
}
