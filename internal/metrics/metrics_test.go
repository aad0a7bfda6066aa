package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverCounts(t *testing.T) {
	var o Observer

	before := testutil.ToFloat64(phaseFaults.WithLabelValues("formation"))
	o.PhaseFault("formation")
	o.PhaseFault("formation")
	assert.Equal(t, before+2, testutil.ToFloat64(phaseFaults.WithLabelValues("formation")))

	beforeWon := testutil.ToFloat64(gamesFinished.WithLabelValues("won"))
	o.GameFinished("won")
	assert.Equal(t, beforeWon+1, testutil.ToFloat64(gamesFinished.WithLabelValues("won")))

	beforeFallback := testutil.ToFloat64(renderFallbacks)
	o.RenderFallback()
	assert.Equal(t, beforeFallback+1, testutil.ToFloat64(renderFallbacks))

	o.ObserveTick(time.Millisecond)
	o.ObserveRender(2 * time.Millisecond)
}

func TestGauges(t *testing.T) {
	SetActiveSessions(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(activeSessions))

	start := testutil.ToFloat64(spectators)
	SpectatorJoined()
	SpectatorJoined()
	SpectatorLeft()
	assert.Equal(t, start+1, testutil.ToFloat64(spectators))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordConnectionRejected("rate_limit")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "invaders_connection_rejected_total")
	assert.Contains(t, string(body), "invaders_tick_duration_seconds")
}
