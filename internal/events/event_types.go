package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/pequemaths/pequemaths-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventProfileCreated EventType = "profile_created"
	EventProfileUpdated EventType = "profile_updated"
	EventRoleChanged    EventType = "role_changed"
	EventSessionIssued  EventType = "session_issued"
	EventSessionRevoked EventType = "session_revoked"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	ActorID   string    `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NewEvent stamps an event with an ID and the current time.
func NewEvent(eventType EventType, subjectID, actorID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ProfileUpdatedPayload payload.
type ProfileUpdatedPayload struct {
	NameChanged    bool `json:"name_changed"`
	PictureChanged bool `json:"picture_changed"`
	MirrorFailed   bool `json:"mirror_failed"`
}

// RoleChangedPayload payload.
type RoleChangedPayload struct {
	OldRole domain.Role `json:"old_role"`
	NewRole domain.Role `json:"new_role"`
}

// SessionIssuedPayload payload.
type SessionIssuedPayload struct {
	SessionID string    `json:"session_id"`
	Remember  bool      `json:"remember"`
	ExpiresAt time.Time `json:"expires_at"`
}
