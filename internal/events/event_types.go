package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/staff-roster/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	// EventStaffChanged fires on the client after every save.
	EventStaffChanged EventType = "staff_changed"
	// EventStaffReplaced fires on the server after the authoritative list is replaced.
	EventStaffReplaced EventType = "staff_replaced"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps a new event with an id and the current time.
func NewEvent(eventType EventType, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// SyncState says where a saved list ended up.
type SyncState string

const (
	SyncStateLocal  SyncState = "local"
	SyncStateSynced SyncState = "synced"
)

// StaffChangedPayload payload.
type StaffChangedPayload struct {
	Staff domain.StaffList `json:"staff"`
	State SyncState        `json:"state"`
}

// StaffReplacedPayload payload.
type StaffReplacedPayload struct {
	Count      int    `json:"count"`
	RemoteAddr string `json:"remote_addr,omitempty"`
}
