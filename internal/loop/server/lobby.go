// Package server keeps the registry of live game sessions. Every session
// publishes its latest snapshot here so spectators can watch and so a
// shutdown can reach every connected player.
package server

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/invaders/internal/game"
	"github.com/tomz197/invaders/internal/logging"
)

// Registry is the interface sessions use to talk to the lobby.
type Registry interface {
	Register(name string) *Handle
	Unregister(id int)
}

// Compile-time check that Lobby implements Registry.
var _ Registry = (*Lobby)(nil)

// EventType identifies an event sent from the lobby to a session.
type EventType int

const (
	EventServerShutdown EventType = iota
)

// Event is delivered on a handle's Events channel.
type Event struct {
	Type EventType
}

// Handle is a session's entry in the lobby.
type Handle struct {
	ID      int
	Name    string
	Started time.Time
	Events  chan Event

	snapshot atomic.Pointer[game.Snapshot]
	version  atomic.Uint64
}

// Publish stores snap as the session's latest frame.
func (h *Handle) Publish(snap game.Snapshot) {
	h.snapshot.Store(&snap)
	h.version.Add(1)
}

// Latest returns the most recently published snapshot and its version.
// ok is false until the session publishes its first frame.
func (h *Handle) Latest() (snap game.Snapshot, version uint64, ok bool) {
	p := h.snapshot.Load()
	if p == nil {
		return game.Snapshot{}, 0, false
	}
	return *p, h.version.Load(), true
}

// Info summarises a session for listings.
type Info struct {
	ID      int        `json:"id"`
	Name    string     `json:"name"`
	State   string     `json:"state"`
	Score   int        `json:"score"`
	Level   int        `json:"level"`
	Lives   int        `json:"lives"`
	Started time.Time  `json:"started"`
	Paused  bool       `json:"paused"`
	state   game.State
}

// Lobby tracks every live session.
type Lobby struct {
	mu       sync.RWMutex
	sessions map[int]*Handle
	nextID   int
	closing  bool

	logger   *log.Logger
	onChange func(count int)
	now      func() time.Time
}

// LobbyOption configures a Lobby.
type LobbyOption func(*Lobby)

// WithLogger sets the lobby logger.
func WithLogger(l *log.Logger) LobbyOption {
	return func(lb *Lobby) { lb.logger = l }
}

// WithCountHook registers a callback invoked with the session count after
// every register and unregister.
func WithCountHook(fn func(count int)) LobbyOption {
	return func(lb *Lobby) { lb.onChange = fn }
}

// NewLobby creates an empty lobby.
func NewLobby(opts ...LobbyOption) *Lobby {
	lb := &Lobby{
		sessions: make(map[int]*Handle),
		nextID:   1,
		logger:   logging.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(lb)
	}
	return lb
}

// Register adds a session and returns its handle. A lobby that is shutting
// down still registers the session but immediately queues the shutdown
// event for it.
func (l *Lobby) Register(name string) *Handle {
	l.mu.Lock()
	h := &Handle{
		ID:      l.nextID,
		Name:    name,
		Started: l.now(),
		Events:  make(chan Event, 4),
	}
	l.nextID++
	l.sessions[h.ID] = h
	if l.closing {
		h.Events <- Event{Type: EventServerShutdown}
	}
	count := len(l.sessions)
	l.mu.Unlock()

	l.logger.Info("session registered", "id", h.ID, "name", name, "sessions", count)
	l.notify(count)
	return h
}

// Unregister removes a session. Unknown ids are ignored.
func (l *Lobby) Unregister(id int) {
	l.mu.Lock()
	_, ok := l.sessions[id]
	delete(l.sessions, id)
	count := len(l.sessions)
	l.mu.Unlock()

	if !ok {
		return
	}
	l.logger.Info("session unregistered", "id", id, "sessions", count)
	l.notify(count)
}

func (l *Lobby) notify(count int) {
	if l.onChange != nil {
		l.onChange(count)
	}
}

// Get returns the handle for id.
func (l *Lobby) Get(id int) (*Handle, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	h, ok := l.sessions[id]
	return h, ok
}

// Count returns the number of live sessions.
func (l *Lobby) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sessions)
}

// Sessions lists live sessions ordered by id.
func (l *Lobby) Sessions() []Info {
	l.mu.RLock()
	handles := make([]*Handle, 0, len(l.sessions))
	for _, h := range l.sessions {
		handles = append(handles, h)
	}
	l.mu.RUnlock()

	slices.SortFunc(handles, func(a, b *Handle) int { return a.ID - b.ID })

	infos := make([]Info, 0, len(handles))
	for _, h := range handles {
		info := Info{ID: h.ID, Name: h.Name, Started: h.Started, State: game.StateIdle.String()}
		if snap, _, ok := h.Latest(); ok {
			info.state = snap.State
			info.State = snap.State.String()
			info.Score = snap.Score
			info.Level = snap.Level
			info.Lives = snap.Lives
			info.Paused = snap.Paused
		}
		infos = append(infos, info)
	}
	return infos
}

// Playing returns the id of a session currently in play, preferring the
// highest score. ok is false when nobody is playing.
func (l *Lobby) Playing() (id int, ok bool) {
	best := 0
	for _, info := range l.Sessions() {
		if info.state != game.StatePlaying {
			continue
		}
		if !ok || info.Score > best {
			id, best, ok = info.ID, info.Score, true
		}
	}
	return id, ok
}

// Shutdown notifies every session that the server is going down, then waits
// for them to disconnect or for the timeout to elapse.
func (l *Lobby) Shutdown(timeout time.Duration) {
	l.mu.Lock()
	l.closing = true
	for _, h := range l.sessions {
		select {
		case h.Events <- Event{Type: EventServerShutdown}:
		default:
		}
	}
	l.mu.Unlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.Count() == 0 {
			return
		}
		select {
		case <-deadline:
			l.logger.Warn("shutdown timed out", "remaining", l.Count())
			return
		case <-ticker.C:
		}
	}
}
