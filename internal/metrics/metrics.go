// Package metrics exposes Prometheus metrics for running game sessions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Labels stay bounded: phases and outcomes are fixed sets, no player names.
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "invaders_tick_duration_seconds",
		Help:    "Time spent in one simulation update",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025},
	})

	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "invaders_render_duration_seconds",
		Help:    "Time spent rendering a frame",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.02, 0.05},
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "invaders_active_sessions",
		Help: "Currently connected game sessions",
	})

	gamesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invaders_games_finished_total",
		Help: "Games that reached a terminal state",
	}, []string{"outcome"}) // "won", "game-over"

	phaseFaults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invaders_phase_faults_total",
		Help: "Update phases that returned an error and were recovered",
	}, []string{"phase"})

	renderFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invaders_render_fallbacks_total",
		Help: "Switches to reduced graphics after repeated render faults",
	})

	spectators = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "invaders_spectators_active",
		Help: "Currently connected websocket spectators",
	})

	spectatorFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invaders_spectator_frames_total",
		Help: "Snapshot frames sent to spectators",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invaders_connection_rejected_total",
		Help: "HTTP requests rejected by the rate limiter or spectator cap",
	}, []string{"reason"}) // "rate_limit", "ws_limit"
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordTick records the duration of one update.
func RecordTick(d time.Duration) {
	tickDuration.Observe(d.Seconds())
}

// RecordRender records the duration of one render.
func RecordRender(d time.Duration) {
	renderDuration.Observe(d.Seconds())
}

// SetActiveSessions updates the session gauge.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

// RecordGameFinished counts a finished game by outcome.
func RecordGameFinished(outcome string) {
	gamesFinished.WithLabelValues(outcome).Inc()
}

// RecordPhaseFault counts a recovered phase error.
func RecordPhaseFault(phase string) {
	phaseFaults.WithLabelValues(phase).Inc()
}

// RecordRenderFallback counts a switch to reduced graphics.
func RecordRenderFallback() {
	renderFallbacks.Inc()
}

// SpectatorJoined increments the spectator gauge.
func SpectatorJoined() { spectators.Inc() }

// SpectatorLeft decrements the spectator gauge.
func SpectatorLeft() { spectators.Dec() }

// RecordSpectatorFrame counts one frame pushed to a spectator.
func RecordSpectatorFrame() { spectatorFrames.Inc() }

// RecordConnectionRejected counts a rejected request.
// reason must be one of: "rate_limit", "ws_limit".
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// Observer forwards driver events to the package metrics.
type Observer struct{}

func (Observer) ObserveTick(d time.Duration)   { RecordTick(d) }
func (Observer) ObserveRender(d time.Duration) { RecordRender(d) }
func (Observer) PhaseFault(phase string)       { RecordPhaseFault(phase) }
func (Observer) RenderFallback()               { RecordRenderFallback() }
func (Observer) GameFinished(outcome string)   { RecordGameFinished(outcome) }
