package httpapi

import (
	"context"
	"errors"
	"sync"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/retroterm/core"
	"pkt.systems/retroterm/internal/canvas"
	"pkt.systems/retroterm/internal/logx"
	"pkt.systems/retroterm/schema"
)

// entry is one browser session: the terminal, the canvas size its client
// reported and the goroutine that turns changes into frames.
type entry struct {
	id      schema.SessionID
	session *core.Session
	ctx     context.Context
	cancel  context.CancelFunc
	kick    chan struct{}
	done    chan struct{}

	mu       sync.Mutex
	width    float64
	height   float64
	lastSeen time.Time
	streams  int
}

func (e *entry) size() (float64, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height
}

func (e *entry) resize(width, height float64) {
	e.mu.Lock()
	e.width = width
	e.height = height
	e.mu.Unlock()
	e.poke()
}

func (e *entry) poke() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

func (e *entry) touch(now time.Time) {
	e.mu.Lock()
	e.lastSeen = now
	e.mu.Unlock()
}

func (e *entry) attach(delta int, now time.Time) {
	e.mu.Lock()
	e.streams += delta
	e.lastSeen = now
	e.mu.Unlock()
}

func (e *entry) expired(now time.Time, ttl time.Duration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.streams == 0 && now.Sub(e.lastSeen) > ttl
}

// run publishes a frame after every session change, resize and blink tick.
func (e *entry) run(hub *Hub) {
	defer close(e.done)
	blink := time.NewTicker(e.session.Config().CursorBlink)
	defer blink.Stop()
	rec := canvas.NewRecorder(e.size())
	e.publish(hub, rec)
	for {
		select {
		case <-e.ctx.Done():
			return
		case <-e.session.Changes():
		case <-e.kick:
		case <-blink.C:
			e.session.ToggleCursor()
		}
		e.publish(hub, rec)
	}
}

func (e *entry) publish(hub *Hub, rec *canvas.Recorder) {
	rec.Resize(e.size())
	e.session.Render(rec)
	frame := rec.Frame(e.session.Links())
	state := e.session.State()
	hub.Publish(e.id, StreamEvent{
		Type:      "frame",
		Frame:     &frame,
		State:     &state,
		Timestamp: time.Now(),
	})
}

type sessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	baseCtx context.Context
	items   map[schema.SessionID]*entry
	factory core.SessionFactory
	hub     *Hub
	now     func() time.Time
}

func newSessionStore(ttl time.Duration, factory core.SessionFactory, hub *Hub) *sessionStore {
	return &sessionStore{
		ttl:     ttl,
		baseCtx: context.Background(),
		items:   make(map[schema.SessionID]*entry),
		factory: factory,
		hub:     hub,
		now:     time.Now,
	}
}

func (s *sessionStore) setBaseContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()
}

// create builds a session bound to the store's base context rather than the
// request that asked for it.
func (s *sessionStore) create(width, height float64) (*entry, error) {
	if s.factory == nil {
		return nil, errors.New("session factory is required")
	}
	s.mu.Lock()
	base := s.baseCtx
	s.mu.Unlock()
	ctx, cancel := context.WithCancel(base)
	sess, err := s.factory(ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	e := &entry{
		id:       sess.ID(),
		session:  sess,
		ctx:      ctx,
		cancel:   cancel,
		kick:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		width:    width,
		height:   height,
		lastSeen: s.now(),
	}
	s.mu.Lock()
	s.items[e.id] = e
	count := len(s.items)
	s.mu.Unlock()
	go e.run(s.hub)
	logx.WithSession(base, e.id).Info("session created", "sessions", count, "width", width, "height", height)
	return e, nil
}

func (s *sessionStore) get(id schema.SessionID) (*entry, bool) {
	now := s.now()
	s.mu.Lock()
	e, ok := s.items[id]
	if ok && e.expired(now, s.ttl) {
		delete(s.items, id)
		s.mu.Unlock()
		s.close(e, "expired")
		return nil, false
	}
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	e.touch(now)
	return e, true
}

func (s *sessionStore) delete(id schema.SessionID) bool {
	s.mu.Lock()
	e, ok := s.items[id]
	if ok {
		delete(s.items, id)
	}
	s.mu.Unlock()
	if ok {
		s.close(e, "deleted")
	}
	return ok
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// sweep closes idle sessions and reports how many went.
func (s *sessionStore) sweep() int {
	now := s.now()
	var stale []*entry
	s.mu.Lock()
	for id, e := range s.items {
		if e.expired(now, s.ttl) {
			stale = append(stale, e)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()
	for _, e := range stale {
		s.close(e, "expired")
	}
	return len(stale)
}

// janitor sweeps on every tick until ctx ends, then closes what is left.
func (s *sessionStore) janitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				pslog.Ctx(ctx).Debug("session sweep", "closed", n)
			}
		}
	}
}

func (s *sessionStore) closeAll() {
	s.mu.Lock()
	items := s.items
	s.items = make(map[schema.SessionID]*entry)
	s.mu.Unlock()
	for _, e := range items {
		s.close(e, "shutdown")
	}
}

func (s *sessionStore) close(e *entry, reason string) {
	e.cancel()
	e.session.Close()
	<-e.done
	s.hub.Drop(e.id)
	logx.WithSession(context.Background(), e.id).Info("session closed", "reason", reason)
}
