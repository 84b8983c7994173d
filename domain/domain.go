package domain

import (
	"encoding/json"
	"time"
)

// Event names carried over the websocket. previousMessages flows only
// server→client; chatMessage and typing flow both ways.
const (
	EventPreviousMessages = "previousMessages"
	EventChatMessage      = "chatMessage"
	EventTyping           = "typing"
)

// ChatMessage is one entry in the room history. Timestamp is assigned by
// the relay when it accepts the message, not by the composing client.
// Messages are immutable once accepted.
type ChatMessage struct {
	Sender    string    `json:"user"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Envelope frames every websocket payload as a named event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func NewEnvelope(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// Connection is one participant's transport handle. DisplayName is whatever
// the client presented at connect time; the relay does not verify it.
type Connection interface {
	ID() string
	DisplayName() string
	Send(data []byte) error
	Close() error
}

// Broadcaster is the room relay: it owns the session set and the history,
// and all mutation goes through these five operations.
type Broadcaster interface {
	Register(conn Connection)
	Unregister(sessionID string)
	Publish(msg ChatMessage)
	Typing(senderID, displayName string)
	Stats() (sessions, messages int)
}

// EventHandler decodes one inbound frame and dispatches it.
type EventHandler interface {
	Handle(conn Connection, data []byte)
}
