// Package web serves the HTTP spectate surface: session listings, the
// high-score table, rendered PNG frames and live msgpack snapshots over a
// websocket.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/skip2/go-qrcode"

	"github.com/tomz197/invaders/internal/loop/config"
	"github.com/tomz197/invaders/internal/loop/server"
	"github.com/tomz197/invaders/internal/metrics"
	"github.com/tomz197/invaders/internal/scores"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Lobby is the part of the session registry the web surface reads.
type Lobby interface {
	Sessions() []server.Info
	Get(id int) (*server.Handle, bool)
	Playing() (id int, ok bool)
}

// Compile-time check that the server lobby can back the router.
var _ Lobby = (*server.Lobby)(nil)

// RouterConfig contains all dependencies needed to construct the HTTP router.
type RouterConfig struct {
	// Lobby lists the live sessions (required).
	Lobby Lobby

	// Scores is the high-score store. Nil serves an empty table.
	Scores scores.Store

	// SSHCommand is shown on the index page and encoded in the QR code.
	SSHCommand string

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one is created from RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used if RateLimiter is nil.
	RateLimitConfig *RateLimitConfig

	// Spectators caps concurrent websocket viewers. Nil allows MaxSpectators.
	Spectators *SpectatorLimiter

	// CORSOrigins defaults to localhost when nil.
	CORSOrigins []string

	Logger *log.Logger

	// DisableLogging disables the request logger middleware.
	DisableLogging bool
}

type routerHandlers struct {
	lobby      Lobby
	scores     scores.Store
	sshCommand string
	spectators *SpectatorLimiter
	logger     *log.Logger

	qrOnce sync.Once
	qrPNG  []byte
	qrErr  error
}

// NewRouter constructs the HTTP router with all middleware and routes.
// It opens no listeners; the rate limiter it creates runs a cleanup
// goroutine, so long-lived callers should pass their own RateLimiter and
// stop it on shutdown.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	h := &routerHandlers{
		lobby:      cfg.Lobby,
		scores:     cfg.Scores,
		sshCommand: cfg.SSHCommand,
		spectators: cfg.Spectators,
		logger:     cfg.Logger,
	}
	if h.spectators == nil {
		h.spectators = NewSpectatorLimiter(config.MaxSpectators)
	}
	if h.logger == nil {
		h.logger = log.Default()
	}

	r.Get("/", h.handleIndex)
	r.Get("/qr.png", h.handleQR)
	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/scores", h.handleScores)
		r.Get("/sessions", h.handleSessions)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.handleSession)
			r.Get("/frame.png", h.handleFrame)
			r.Get("/ws", h.handleSpectate)
		})
	})

	return r
}

type indexPage struct {
	SSHCommand string
	Sessions   []server.Info
	Scores     []scores.Entry
}

func (h *routerHandlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := indexPage{
		SSHCommand: h.sshCommand,
		Sessions:   h.lobby.Sessions(),
		Scores:     h.topScores(r),
	}
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		h.logger.Error("render index", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (h *routerHandlers) handleQR(w http.ResponseWriter, r *http.Request) {
	if h.sshCommand == "" {
		writeError(w, "no ssh command configured", http.StatusNotFound)
		return
	}
	h.qrOnce.Do(func() {
		h.qrPNG, h.qrErr = qrcode.Encode(h.sshCommand, qrcode.Medium, 256)
	})
	if h.qrErr != nil {
		h.logger.Error("encode qr", "err", h.qrErr)
		writeError(w, "qr encoding failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(h.qrPNG)
}

func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":   "ok",
		"sessions": len(h.lobby.Sessions()),
	})
}

func (h *routerHandlers) topScores(r *http.Request) []scores.Entry {
	if h.scores == nil {
		return []scores.Entry{}
	}
	entries, err := h.scores.Top(r.Context())
	if err != nil {
		h.logger.Warn("load high scores", "err", err)
		return []scores.Entry{}
	}
	if entries == nil {
		entries = []scores.Entry{}
	}
	return entries
}

func (h *routerHandlers) handleScores(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.topScores(r))
}

func (h *routerHandlers) handleSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.lobby.Sessions()
	if sessions == nil {
		sessions = []server.Info{}
	}
	writeJSON(w, sessions)
}

func (h *routerHandlers) handleSession(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.lookup(w, r)
	if !ok {
		return
	}
	for _, info := range h.lobby.Sessions() {
		if info.ID == handle.ID {
			writeJSON(w, info)
			return
		}
	}
	writeError(w, "session not found", http.StatusNotFound)
}

func (h *routerHandlers) handleFrame(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.lookup(w, r)
	if !ok {
		return
	}
	snap, _, ok := handle.Latest()
	if !ok {
		writeError(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}

	scale := 1.0
	if s := r.URL.Query().Get("scale"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || v < 0.25 || v > 2 {
			writeError(w, "scale must be between 0.25 and 2", http.StatusBadRequest)
			return
		}
		scale = v
	}

	var buf bytes.Buffer
	if err := EncodeFrame(&buf, snap, scale); err != nil {
		h.logger.Error("encode frame", "session", handle.ID, "err", err)
		writeError(w, "frame encoding failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// lookup resolves the {id} URL parameter. "live" picks the best session
// currently in play. It writes the error response itself.
func (h *routerHandlers) lookup(w http.ResponseWriter, r *http.Request) (*server.Handle, bool) {
	param := chi.URLParam(r, "id")

	var id int
	if param == "live" {
		var ok bool
		if id, ok = h.lobby.Playing(); !ok {
			writeError(w, "nobody is playing", http.StatusNotFound)
			return nil, false
		}
	} else {
		var err error
		if id, err = strconv.Atoi(param); err != nil {
			writeError(w, "invalid session id", http.StatusBadRequest)
			return nil, false
		}
	}

	handle, ok := h.lobby.Get(id)
	if !ok {
		writeError(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return handle, true
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
