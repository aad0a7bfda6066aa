package loop

import (
	"context"
	"time"

	"github.com/tomz197/invaders/internal/game"
	"github.com/tomz197/invaders/internal/loop/config"
	"github.com/tomz197/invaders/internal/loop/server"
)

// headless renders nothing. Attract sessions are only watched through the
// lobby.
type headless struct{}

func (headless) Render(game.Snapshot) error { return nil }
func (headless) SetReduced(bool)            {}

// Attract plays s with the autopilot and publishes every frame to the
// lobby under the session's player name. It blocks until ctx is cancelled.
func Attract(ctx context.Context, s *game.Session, pilot *game.Autopilot, lobby server.Registry, opts ...DriverOption) error {
	handle := lobby.Register(s.PlayerName())
	defer lobby.Unregister(handle.ID)

	opts = append(opts, WithPublisher(handle.Publish))
	driver := NewDriver(s, headless{}, opts...)

	ticker := time.NewTicker(config.ClientTargetFrameTime)
	defer ticker.Stop()

	lastTime := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-handle.Events:
			if ev.Type == server.EventServerShutdown {
				return nil
			}
		case now := <-ticker.C:
			dt := now.Sub(lastTime)
			lastTime = now
			pilot.Step(s, dt)
			_ = driver.Frame(dt)
		}
	}
}
