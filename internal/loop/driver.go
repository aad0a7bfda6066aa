// Package loop drives game sessions: one update and one render per frame,
// with fault recovery in between.
package loop

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/invaders/internal/game"
	"github.com/tomz197/invaders/internal/logging"
	"github.com/tomz197/invaders/internal/loop/config"
)

// Renderer draws snapshots. SetReduced switches to the fallback path used
// after repeated render faults.
type Renderer interface {
	Render(snap game.Snapshot) error
	SetReduced(on bool)
}

// Observer receives driver events, typically for metrics.
type Observer interface {
	ObserveTick(d time.Duration)
	ObserveRender(d time.Duration)
	PhaseFault(phase string)
	RenderFallback()
	GameFinished(outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveTick(time.Duration)   {}
func (nopObserver) ObserveRender(time.Duration) {}
func (nopObserver) PhaseFault(string)           {}
func (nopObserver) RenderFallback()             {}
func (nopObserver) GameFinished(string)         {}

// Phase names reported for faults outside the session's own phases.
const (
	faultDelta = "delta"
	faultPanic = "panic"
)

// Driver runs frames for one session.
type Driver struct {
	session  *game.Session
	renderer Renderer
	logger   *log.Logger
	observer Observer
	publish  func(game.Snapshot)
	now      func() time.Time

	renderFaults int // Consecutive render faults
	reduced      bool
	lastState    game.State
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithLogger sets the driver logger.
func WithLogger(l *log.Logger) DriverOption {
	return func(d *Driver) { d.logger = l }
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) DriverOption {
	return func(d *Driver) { d.observer = o }
}

// WithPublisher registers a callback that receives every frame's snapshot.
func WithPublisher(fn func(game.Snapshot)) DriverOption {
	return func(d *Driver) { d.publish = fn }
}

// NewDriver creates a driver for s drawing to r.
func NewDriver(s *game.Session, r Renderer, opts ...DriverOption) *Driver {
	d := &Driver{
		session:   s,
		renderer:  r,
		logger:    logging.Discard(),
		observer:  nopObserver{},
		now:       time.Now,
		lastState: s.State(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Reduced reports whether the driver has fallen back to reduced graphics.
func (d *Driver) Reduced() bool { return d.reduced }

// Frame runs one update followed by one render. Long frames are clamped to
// MaxFrameDelta so a stalled connection does not teleport the formation.
//
// The returned error joins the update and render faults of this frame. They
// have already been recovered from; callers only log them.
func (d *Driver) Frame(dt time.Duration) error {
	dt = min(dt, config.MaxFrameDelta)

	updateErr := d.update(dt)
	snap := d.session.Snapshot()
	d.checkFinished(snap.State)
	if d.publish != nil {
		d.publish(snap)
	}
	renderErr := d.render(snap)
	return errors.Join(updateErr, renderErr)
}

func (d *Driver) update(dt time.Duration) (err error) {
	start := d.now()
	defer func() {
		if r := recover(); r != nil {
			d.session.RecoverAccumulators()
			d.logger.Error("update panicked", "panic", r, "recovery", "accumulators reset")
			err = &game.PhaseError{Phase: faultPanic, Err: fmt.Errorf("%v", r)}
		}
		d.observer.ObserveTick(d.now().Sub(start))

		if errors.Is(err, game.ErrInvalidDelta) {
			d.observer.PhaseFault(faultDelta)
		}
		for _, phase := range game.FaultedPhases(err) {
			d.observer.PhaseFault(phase)
		}
	}()
	return d.session.Update(dt)
}

func (d *Driver) render(snap game.Snapshot) (err error) {
	start := d.now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panicked: %v", r)
		}
		d.observer.ObserveRender(d.now().Sub(start))
		if err == nil {
			d.renderFaults = 0
			return
		}

		d.renderFaults++
		d.logger.Warn("render fault", "err", err, "consecutive", d.renderFaults)
		if !d.reduced && d.renderFaults >= config.RenderFaultLimit {
			d.reduced = true
			d.renderer.SetReduced(true)
			d.observer.RenderFallback()
			d.logger.Warn("switching to reduced graphics", "faults", d.renderFaults)
		}
		err = fmt.Errorf("render: %w", err)
	}()
	return d.renderer.Render(snap)
}

// checkFinished reports each transition into a terminal state once.
func (d *Driver) checkFinished(state game.State) {
	if state.Terminal() && !d.lastState.Terminal() {
		d.observer.GameFinished(state.String())
		d.logger.Info("game finished", "outcome", state, "score", d.session.Score(), "level", d.session.Level())
	}
	d.lastState = state
}
