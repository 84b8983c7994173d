package protocol

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/ry44444n/Ma-Anong-Ulam-App/domain"
)

// Handler turns raw inbound frames into relay operations, one entry point
// per event name. A malformed frame is logged and dropped; it never closes
// the session and never reaches the relay.
type Handler struct {
	log   *slog.Logger
	relay domain.Broadcaster
	now   func() time.Time
}

func NewHandler(log *slog.Logger, relay domain.Broadcaster) *Handler {
	return &Handler{log: log, relay: relay, now: time.Now}
}

func (h *Handler) Handle(conn domain.Connection, data []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.log.Warn("invalid frame", "sessionId", conn.ID(), "error", err)
		return
	}

	switch env.Event {
	case domain.EventChatMessage:
		h.chatMessage(conn, env.Data)
	case domain.EventTyping:
		h.typing(conn, env.Data)
	default:
		h.log.Warn("unknown event", "sessionId", conn.ID(), "event", env.Event)
	}
}

// inboundMessage is the client's chatMessage payload. Clients also send a
// timestamp; it is ignored, the relay stamps messages on acceptance.
type inboundMessage struct {
	User string `json:"user"`
	Text string `json:"text"`
}

func (h *Handler) chatMessage(conn domain.Connection, data json.RawMessage) {
	var in inboundMessage
	if err := json.Unmarshal(data, &in); err != nil {
		h.log.Warn("invalid chatMessage payload", "sessionId", conn.ID(), "error", err)
		return
	}
	if in.User == "" {
		h.log.Warn("chatMessage without user", "sessionId", conn.ID())
		return
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		h.log.Debug("empty chatMessage dropped", "sessionId", conn.ID(), "user", in.User)
		return
	}

	h.relay.Publish(domain.ChatMessage{
		Sender:    in.User,
		Text:      text,
		Timestamp: h.now().UTC(),
	})
}

func (h *Handler) typing(conn domain.Connection, data json.RawMessage) {
	var user string
	if err := json.Unmarshal(data, &user); err != nil {
		h.log.Warn("invalid typing payload", "sessionId", conn.ID(), "error", err)
		return
	}
	if strings.TrimSpace(user) == "" {
		h.log.Warn("typing without user", "sessionId", conn.ID())
		return
	}

	h.relay.Typing(conn.ID(), user)
}
