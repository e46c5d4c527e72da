package domain

import "github.com/google/uuid"

// EventType defines the type of real-time event.
type EventType string

const (
	EventNewMessage     EventType = "new-message"
	EventStatusUpdate   EventType = "status-update"
	EventUserTyping     EventType = "user-typing"
	EventUserStopTyping EventType = "user-stop-typing"
	EventNotification   EventType = "notification"
	EventPong           EventType = "pong"
)

// Event is the payload sent over WebSocket.
type Event struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	ConcernID uuid.UUID   `json:"concernId,omitempty"` // Used for routing to concern rooms
}

// TypingPayload announces that a participant started or stopped typing
// in a concern's chat.
type TypingPayload struct {
	ConcernID uuid.UUID `json:"concernId"`
	UserID    uuid.UUID `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
}

// NotificationPayload is a user-scoped alert delivered to "user-{id}".
type NotificationPayload struct {
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	ConcernID uuid.UUID `json:"concernId,omitempty"`
}
