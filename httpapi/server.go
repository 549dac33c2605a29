package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"io/fs"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/retroterm/core"
	"pkt.systems/retroterm/internal/canvas"
	"pkt.systems/retroterm/internal/logx"
	"pkt.systems/retroterm/schema"
)

const (
	sweepInterval  = time.Minute
	streamPing     = 25 * time.Second
	maxCanvasSide  = 16384
	maxRequestBody = 64 << 10
)

// Server serves the browser terminal and its JSON/SSE API.
type Server struct {
	cfg      Config
	sessions *sessionStore
	hub      *Hub
	basePath string
	baseHref string
}

// NewServer constructs an HTTP server that builds one terminal session per
// browser tab through factory.
func NewServer(cfg Config, factory core.SessionFactory) *Server {
	cfg = cfg.normalized()
	hub := NewHub()
	return &Server{
		cfg:      cfg,
		sessions: newSessionStore(cfg.SessionTTL, factory, hub),
		hub:      hub,
		basePath: normalizeBasePath(cfg.BasePath),
		baseHref: baseHref(cfg.BasePath),
	}
}

// SetBaseContext sets the parent context for session lifetimes and starts
// the idle sweeper. Sessions are closed when ctx ends.
func (s *Server) SetBaseContext(ctx context.Context) {
	if s == nil || ctx == nil {
		return
	}
	s.sessions.setBaseContext(ctx)
	go s.sessions.janitor(ctx, sweepInterval)
}

// Close ends every session.
func (s *Server) Close() {
	if s == nil {
		return
	}
	s.sessions.closeAll()
}

// Handler returns an http.Handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(assetsFS))))
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/session", s.handleCreate)
	mux.HandleFunc("DELETE /api/session/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/session/{id}/keys", s.requireSession(s.handleKeys))
	mux.HandleFunc("POST /api/session/{id}/resize", s.requireSession(s.handleResize))
	mux.HandleFunc("POST /api/session/{id}/scroll", s.requireSession(s.handleScroll))
	mux.HandleFunc("POST /api/session/{id}/click", s.requireSession(s.handleClick))
	mux.HandleFunc("GET /api/session/{id}/stream", s.requireSession(s.handleStream))
	mux.HandleFunc("GET /api/session/{id}/screenshot.png", s.requireSession(s.handleScreenshot))

	handler := withRequestLogging(mux)
	if s.basePath == "" {
		return handler
	}
	prefix := s.basePath
	root := http.NewServeMux()
	root.Handle(prefix+"/", http.StripPrefix(prefix, handler))
	root.HandleFunc(prefix, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != prefix {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, prefix+"/", http.StatusTemporaryRedirect)
	})
	return root
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(assetsFS, "index.html")
	if err != nil {
		http.Error(w, "index not found", http.StatusInternalServerError)
		return
	}
	stat, err := fs.Stat(assetsFS, "index.html")
	if err != nil {
		http.Error(w, "index not found", http.StatusInternalServerError)
		return
	}
	data = applyBaseHref(data, s.baseHref)
	http.ServeContent(w, r, "index.html", stat.ModTime(), bytes.NewReader(data))
}

const baseHrefPlaceholder = "<!-- BASE_HREF -->"

func applyBaseHref(data []byte, baseHref string) []byte {
	replacement := ""
	if strings.TrimSpace(baseHref) != "" {
		replacement = fmt.Sprintf(`<base href="%s" />`, html.EscapeString(baseHref))
	}
	return bytes.ReplaceAll(data, []byte(baseHrefPlaceholder), []byte(replacement))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.sessions.len()})
}

type viewportRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CreateResponse describes a new session to the browser.
type CreateResponse struct {
	ID            schema.SessionID     `json:"id"`
	Font          fontPayload          `json:"font"`
	CursorBlinkMS int64                `json:"cursorBlinkMs"`
	Width         float64              `json:"width"`
	Height        float64              `json:"height"`
	State         schema.TerminalState `json:"state"`
}

type fontPayload struct {
	Size       float64 `json:"size"`
	LineHeight float64 `json:"lineHeight"`
	CharWidth  float64 `json:"charWidth"`
	OriginX    float64 `json:"originX"`
	OriginY    float64 `json:"originY"`
}

func newFontPayload(m schema.FontMetrics) fontPayload {
	return fontPayload{
		Size:       m.FontSize,
		LineHeight: m.LineHeight,
		CharWidth:  m.CharWidth,
		OriginX:    m.OriginX,
		OriginY:    m.OriginY,
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, schema.ErrInvalidRequest)
			return
		}
	}
	if req.Width == 0 && req.Height == 0 {
		req.Width = float64(s.cfg.CanvasWidth)
		req.Height = float64(s.cfg.CanvasHeight)
	}
	if !validViewport(req.Width, req.Height) {
		writeError(w, http.StatusBadRequest, schema.ErrInvalidViewport)
		return
	}
	e, err := s.sessions.create(req.Width, req.Height)
	if err != nil {
		pslog.Ctx(r.Context()).Error("session create failed", "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := e.session.Boot(e.session.Now()); err != nil {
		logx.WithSession(r.Context(), e.id).Warn("session boot failed", "err", err)
	}
	cfg := e.session.Config()
	writeJSON(w, http.StatusCreated, CreateResponse{
		ID:            e.id,
		Font:          newFontPayload(cfg.Font),
		CursorBlinkMS: cfg.CursorBlink.Milliseconds(),
		Width:         req.Width,
		Height:        req.Height,
		State:         e.session.State(),
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.delete(schema.SessionID(r.PathValue("id"))) {
		writeError(w, http.StatusNotFound, schema.ErrSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type keyRequest struct {
	Key  string `json:"key,omitempty"`
	Ctrl bool   `json:"ctrl,omitempty"`
	// Text is typed rune by rune, as a paste would be.
	Text string `json:"text,omitempty"`
	// Line is submitted whole, bypassing the editor.
	Line *string `json:"line,omitempty"`
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request, e *entry) {
	var req keyRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, schema.ErrInvalidRequest)
		return
	}
	var err error
	switch {
	case req.Line != nil:
		err = e.session.Submit(*req.Line)
	case req.Text != "":
		for _, ch := range req.Text {
			if ch < 0x20 || ch == 0x7f {
				continue
			}
			if err = e.session.HandleKey(core.RuneKey(ch)); err != nil {
				break
			}
		}
	case req.Key != "":
		key, ok := core.ParseKey(req.Key, req.Ctrl)
		if !ok {
			// Modifier and function keys the terminal does not bind.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		err = e.session.HandleKey(key)
	default:
		writeError(w, http.StatusBadRequest, schema.ErrInvalidRequest)
		return
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, e.session.State())
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request, e *entry) {
	var req viewportRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, schema.ErrInvalidRequest)
		return
	}
	if !validViewport(req.Width, req.Height) {
		writeError(w, http.StatusBadRequest, schema.ErrInvalidViewport)
		return
	}
	e.resize(req.Width, req.Height)
	w.WriteHeader(http.StatusNoContent)
}

type scrollRequest struct {
	// Delta follows the wheel: negative scrolls back into history by one
	// scroll step, positive scrolls toward the newest line.
	Delta int `json:"delta"`
}

func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request, e *entry) {
	var req scrollRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, schema.ErrInvalidRequest)
		return
	}
	moved := e.session.Scroll(req.Delta)
	writeJSON(w, http.StatusOK, map[string]any{"moved": moved, "state": e.session.State()})
}

type clickRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ClickResponse tells the browser whether a click landed on a link.
type ClickResponse struct {
	Found bool   `json:"found"`
	URL   string `json:"url,omitempty"`
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request, e *entry) {
	var req clickRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, schema.ErrInvalidRequest)
		return
	}
	url, found := e.session.FindLink(req.X, req.Y)
	if found {
		pslog.Ctx(r.Context()).Info("link clicked", "url", url)
	}
	writeJSON(w, http.StatusOK, ClickResponse{Found: found, URL: url})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request, e *entry) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("stream unsupported"))
		return
	}
	log := pslog.Ctx(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsubscribe, last := s.hub.Subscribe(e.id)
	defer unsubscribe()
	e.attach(1, s.sessions.now())
	defer func() { e.attach(-1, s.sessions.now()) }()

	if last != nil {
		_ = writeSSEvent(w, *last)
	} else {
		e.poke()
	}
	flusher.Flush()

	ping := time.NewTicker(streamPing)
	defer ping.Stop()
	log.Info("http stream opened", "seeded", last != nil)
	for {
		select {
		case <-r.Context().Done():
			log.Info("http stream closed")
			return
		case event, ok := <-ch:
			if !ok {
				_ = writeSSEvent(w, StreamEvent{Type: "closed", Timestamp: time.Now()})
				flusher.Flush()
				log.Info("http stream ended", "reason", "session closed")
				return
			}
			_ = writeSSEvent(w, event)
			flusher.Flush()
		case <-ping.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request, e *entry) {
	width, height := e.size()
	if v := r.URL.Query().Get("width"); v != "" {
		width = parseFloat(v, width)
	}
	if v := r.URL.Query().Get("height"); v != "" {
		height = parseFloat(v, height)
	}
	if !validViewport(width, height) {
		writeError(w, http.StatusBadRequest, schema.ErrInvalidViewport)
		return
	}
	raster := canvas.NewRaster(int(math.Ceil(width)), int(math.Ceil(height)), e.session.Config().Font)
	e.session.RenderDetached(raster)
	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) requireSession(next func(http.ResponseWriter, *http.Request, *entry)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := s.sessions.get(schema.SessionID(r.PathValue("id")))
		if !ok {
			writeError(w, http.StatusNotFound, schema.ErrSessionNotFound)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		next(w, r, e)
	}
}

func validViewport(width, height float64) bool {
	if math.IsNaN(width) || math.IsNaN(height) {
		return false
	}
	return width > 0 && height > 0 && width <= maxCanvasSide && height <= maxCanvasSide
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, schema.ErrInputDisabled), errors.Is(err, schema.ErrAnimationActive):
		return http.StatusConflict
	case errors.Is(err, schema.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(body io.Reader, target any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeSSEvent(w http.ResponseWriter, event StreamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if event.Seq > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", event.Seq)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", strings.TrimSpace(string(data)))
	return nil
}

func parseFloat(value string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
