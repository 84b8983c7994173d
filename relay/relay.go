package relay

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/ry44444n/Ma-Anong-Ulam-App/domain"
)

const DefaultHistoryLimit = 500

// Relay is the single shared chat room: it tracks every open session and
// owns the room history. All mutation funnels through one mutex, so history
// appends are atomic and totally ordered by arrival at the relay, and the
// enqueue order seen by any one session matches history order.
//
// Sends to sessions never block; a session whose transport cannot accept a
// frame is evicted rather than allowed to stall delivery to others.
type Relay struct {
	log *slog.Logger

	mu       sync.Mutex
	sessions map[string]domain.Connection
	history  *History
}

func New(log *slog.Logger, historyLimit int) *Relay {
	return &Relay{
		log:      log,
		sessions: make(map[string]domain.Connection),
		history:  NewHistory(historyLimit),
	}
}

// Register adds a session and replays the current history to it as a single
// previousMessages frame. The replay is enqueued under the relay lock,
// before the session becomes visible to Publish, so every message published
// after registration reaches the session strictly after its replay.
func (r *Relay) Register(conn domain.Connection) {
	r.mu.Lock()
	replay, err := domain.NewEnvelope(domain.EventPreviousMessages, r.history.Snapshot())
	if err == nil {
		if sendErr := conn.Send(replay); sendErr != nil {
			r.log.Warn("history replay send failed", "sessionId", conn.ID(), "error", sendErr)
		}
	}
	r.sessions[conn.ID()] = conn
	count := len(r.sessions)
	r.mu.Unlock()

	if err != nil {
		r.log.Error("history replay encode failed", "sessionId", conn.ID(), "error", err)
	}
	r.log.Info("participant connected",
		"sessionId", conn.ID(), "user", conn.DisplayName(), "sessions", count)
}

// Unregister removes a session. Unknown or already-removed sessions are a
// no-op; disconnect paths may race and both call this.
func (r *Relay) Unregister(sessionID string) {
	r.mu.Lock()
	conn, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	count := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return
	}
	r.log.Info("participant disconnected",
		"sessionId", sessionID, "user", conn.DisplayName(), "sessions", count)
}

// Publish appends msg to the history and fans it out to every open session,
// the sender included. The sender sees its own message come back through the
// same broadcast as everyone else; there is no separate acknowledgement.
func (r *Relay) Publish(msg domain.ChatMessage) {
	if strings.TrimSpace(msg.Text) == "" {
		r.log.Warn("empty message rejected", "user", msg.Sender)
		return
	}

	data, err := domain.NewEnvelope(domain.EventChatMessage, msg)
	if err != nil {
		r.log.Error("message encode failed", "user", msg.Sender, "error", err)
		return
	}

	r.mu.Lock()
	r.history.Append(msg)
	var stale []domain.Connection
	for _, conn := range r.sessions {
		if sendErr := conn.Send(data); sendErr != nil {
			stale = append(stale, conn)
		}
	}
	r.mu.Unlock()

	r.evict(stale)
}

// Typing fans a typing signal out to every open session except the sender.
// Nothing is stored; delivery is best effort.
func (r *Relay) Typing(senderID, displayName string) {
	data, err := domain.NewEnvelope(domain.EventTyping, displayName)
	if err != nil {
		r.log.Error("typing encode failed", "user", displayName, "error", err)
		return
	}

	r.mu.Lock()
	var stale []domain.Connection
	for id, conn := range r.sessions {
		if id == senderID {
			continue
		}
		if sendErr := conn.Send(data); sendErr != nil {
			stale = append(stale, conn)
		}
	}
	r.mu.Unlock()

	r.evict(stale)
}

// Stats reports the open session count and the history length.
func (r *Relay) Stats() (sessions, messages int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions), r.history.Len()
}

// evict drops sessions whose send buffer was full. A slow consumer loses its
// connection instead of growing an unbounded queue.
func (r *Relay) evict(stale []domain.Connection) {
	for _, conn := range stale {
		r.log.Warn("dropping unresponsive session", "sessionId", conn.ID())
		r.Unregister(conn.ID())
		conn.Close()
	}
}
