package relay

import (
	"github.com/ry44444n/Ma-Anong-Ulam-App/domain"
)

// History is the room's append-only message log. It is bounded: once the
// limit is reached the oldest entry is dropped, keeping memory flat over the
// process lifetime. Entries are kept in arrival order and never edited.
//
// History is not safe for concurrent use; the relay serializes all access.
type History struct {
	limit   int
	entries []domain.ChatMessage
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

func (h *History) Append(msg domain.ChatMessage) {
	if len(h.entries) == h.limit {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:h.limit-1]
	}
	h.entries = append(h.entries, msg)
}

// Snapshot returns a point-in-time copy of the log in arrival order. The
// caller owns the returned slice.
func (h *History) Snapshot() []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Len() int {
	return len(h.entries)
}
