package httpapi

import (
	"context"
	"sync"
	"time"

	"pkt.systems/retroterm/internal/canvas"
	"pkt.systems/retroterm/internal/logx"
	"pkt.systems/retroterm/schema"
)

// StreamEvent is sent to SSE clients.
type StreamEvent struct {
	Seq       uint64                `json:"seq"`
	Type      string                `json:"type"`
	Frame     *canvas.Frame         `json:"frame,omitempty"`
	State     *schema.TerminalState `json:"state,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

// Hub fans frames out to every stream watching a session. Frames are full
// redraws, so a slow subscriber only ever needs the newest one.
type Hub struct {
	mu       sync.Mutex
	sessions map[schema.SessionID]*sessionHub
}

type sessionHub struct {
	seq  uint64
	last *StreamEvent
	subs map[chan StreamEvent]struct{}
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[schema.SessionID]*sessionHub)}
}

// Subscribe registers a stream for a session and returns the newest event,
// if any, to seed it.
func (h *Hub) Subscribe(id schema.SessionID) (<-chan StreamEvent, func(), *StreamEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sh := h.getOrCreateLocked(id)
	ch := make(chan StreamEvent, 8)
	sh.subs[ch] = struct{}{}
	var last *StreamEvent
	if sh.last != nil {
		copied := *sh.last
		last = &copied
	}
	log := logx.WithSession(context.Background(), id)
	log.Info("hub subscribe", "subs", len(sh.subs))
	unsub := func() {
		h.mu.Lock()
		remaining := 0
		if current := h.sessions[id]; current != nil {
			if _, ok := current.subs[ch]; ok {
				delete(current.subs, ch)
				close(ch)
			}
			remaining = len(current.subs)
		}
		h.mu.Unlock()
		log.Info("hub unsubscribe", "subs", remaining)
	}
	return ch, unsub, last
}

// Publish stamps the event with the next sequence number and delivers it.
func (h *Hub) Publish(id schema.SessionID, event StreamEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sh := h.getOrCreateLocked(id)
	sh.seq++
	event.Seq = sh.seq
	sh.last = &event

	dropped := 0
	for sub := range sh.subs {
		select {
		case sub <- event:
			continue
		default:
		}
		// Full: replace the oldest queued frame with this one.
		select {
		case <-sub:
		default:
		}
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		logx.WithSession(context.Background(), id).Warn("hub frame dropped", "type", event.Type, "dropped", dropped)
	}
}

// Drop closes every stream of a session and forgets it.
func (h *Hub) Drop(id schema.SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sh := h.sessions[id]
	if sh == nil {
		return
	}
	for sub := range sh.subs {
		close(sub)
	}
	delete(h.sessions, id)
}

func (h *Hub) getOrCreateLocked(id schema.SessionID) *sessionHub {
	sh := h.sessions[id]
	if sh == nil {
		sh = &sessionHub{subs: make(map[chan StreamEvent]struct{})}
		h.sessions[id] = sh
	}
	return sh
}
