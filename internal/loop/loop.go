package loop

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/invaders/internal/draw"
	"github.com/tomz197/invaders/internal/game"
	"github.com/tomz197/invaders/internal/input"
	"github.com/tomz197/invaders/internal/logging"
	"github.com/tomz197/invaders/internal/loop/client"
	"github.com/tomz197/invaders/internal/loop/config"
	"github.com/tomz197/invaders/internal/loop/server"
)

// Options configures Run.
type Options struct {
	Session      *game.Session
	Input        io.Reader
	Output       io.Writer
	TermSizeFunc draw.TermSizeFunc

	// Lobby, when set, receives a frame after every update and can ask the
	// connection to shut down.
	Lobby  server.Registry
	Logger *log.Logger
	// Observer receives tick, render and outcome events.
	Observer Observer

	// Inactivity enables the idle warning and disconnect (remote players).
	Inactivity bool
	// ShutdownGrace is how long the shutdown notice stays up before the
	// connection closes. Defaults to ShutdownDisplaySeconds.
	ShutdownGrace time.Duration
	// FrameTime overrides the target frame duration.
	FrameTime time.Duration
}

// ErrNoSession is returned by Run when Options.Session is nil.
var ErrNoSession = errors.New("loop: no session")

// connection holds per-connection state outside the game itself.
type connection struct {
	running    bool
	lastInput  time.Time
	shutdown   bool
	shutdownAt time.Time // Disconnect deadline once shutdown is announced
}

// Run plays one session on a terminal with the standard
// Input -> Update -> Draw cycle. It returns when the player quits, the
// input closes, the context is cancelled or the lobby shuts down.
func Run(ctx context.Context, opts Options) error {
	if opts.Session == nil {
		return ErrNoSession
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	grace := opts.ShutdownGrace
	if grace <= 0 {
		grace = time.Duration(config.ShutdownDisplaySeconds * float64(time.Second))
	}
	frameTime := opts.FrameTime
	if frameTime <= 0 {
		frameTime = config.ClientTargetFrameTime
	}

	session := opts.Session
	renderer := client.NewRenderer(opts.Output, client.Options{TermSizeFunc: opts.TermSizeFunc})
	driverOpts := []DriverOption{WithLogger(logger), WithObserver(observer)}

	var handle *server.Handle
	if opts.Lobby != nil {
		handle = opts.Lobby.Register(session.PlayerName())
		defer opts.Lobby.Unregister(handle.ID)
		driverOpts = append(driverOpts, WithPublisher(handle.Publish))
	}
	driver := NewDriver(session, renderer, driverOpts...)

	stream := input.StartStream(opts.Input)
	tracker := input.NewTracker(input.DefaultHoldDuration)

	renderer.Begin()
	defer renderer.End()

	conn := &connection{running: true, lastInput: time.Now()}
	lastTime := time.Now()

	for conn.running {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frameStart := time.Now()
		dt := frameStart.Sub(lastTime)
		lastTime = frameStart

		// ===== INPUT PHASE =====
		conn.processInput(session, stream, tracker, frameStart)

		// ===== HOST EVENTS =====
		if handle != nil {
			conn.processServerEvents(handle, frameStart, grace)
		}
		renderer.SetNotice(conn.notice(frameStart, opts.Inactivity))
		if conn.expired(frameStart, opts.Inactivity) {
			break
		}

		// ===== UPDATE + DRAW =====
		if err := driver.Frame(dt); err != nil {
			logger.Debug("frame recovered", "err", err)
		}

		// ===== FRAME TIMING =====
		if elapsed := time.Since(frameStart); elapsed < frameTime {
			time.Sleep(frameTime - elapsed)
		}
	}
	return nil
}

// processInput turns pending bytes into key edges and feeds the session.
func (c *connection) processInput(s *game.Session, stream *input.Stream, tracker *input.Tracker, now time.Time) {
	buf, open := stream.Drain()
	if !open {
		c.running = false
	}
	if len(buf) > 0 {
		c.lastInput = now
	}

	for _, ev := range tracker.Events(buf, now) {
		if ev.Key == input.KeyQuit {
			if ev.Down {
				c.running = false
			}
			continue
		}
		if c.shutdown {
			continue
		}
		if action, ok := client.ActionFor(ev.Key); ok {
			s.HandleKey(action, ev.Down)
		}
	}
}

// processServerEvents handles events from the lobby.
func (c *connection) processServerEvents(h *server.Handle, now time.Time, grace time.Duration) {
	for {
		select {
		case ev := <-h.Events:
			if ev.Type == server.EventServerShutdown && !c.shutdown {
				c.shutdown = true
				c.shutdownAt = now.Add(grace)
			}
		default:
			return
		}
	}
}

// notice picks the host message to show, if any.
func (c *connection) notice(now time.Time, inactivity bool) client.Notice {
	if c.shutdown {
		left := max(c.shutdownAt.Sub(now), 0)
		return client.Notice{Kind: client.NoticeShutdown, Seconds: int(left.Seconds()) + 1}
	}
	if inactivity {
		idle := now.Sub(c.lastInput).Seconds()
		if idle > config.InactivityWarnUser {
			return client.Notice{Kind: client.NoticeInactive, Seconds: int(config.InactivityDisconnectUser - idle)}
		}
	}
	return client.Notice{}
}

// expired reports whether the connection should close now.
func (c *connection) expired(now time.Time, inactivity bool) bool {
	if c.shutdown && !now.Before(c.shutdownAt) {
		return true
	}
	return inactivity && now.Sub(c.lastInput).Seconds() > config.InactivityDisconnectUser
}
