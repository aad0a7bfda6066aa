package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/invaders/internal/config"
	"github.com/tomz197/invaders/internal/game"
	"github.com/tomz197/invaders/internal/logging"
	"github.com/tomz197/invaders/internal/loop"
	"github.com/tomz197/invaders/internal/loop/server"
	"github.com/tomz197/invaders/internal/metrics"
	"github.com/tomz197/invaders/internal/scores"
	"github.com/tomz197/invaders/internal/web"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

func main() {
	config.LoadDotEnv()
	logger := logging.New("web")

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	sshPort := config.GetEnv("SSH_DISPLAY_PORT", "2222")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := openScores(logger)
	defer closeStore()

	lobby := server.NewLobby(
		server.WithLogger(logger.WithPrefix("lobby")),
		server.WithCountHook(metrics.SetActiveSessions),
	)

	// Attract mode: an autopilot game keeps the page alive when nobody plays.
	if config.GetEnvBool("ATTRACT", true) {
		session, err := game.NewSession(game.ConfigFromEnv(),
			game.WithLogger(logger.WithPrefix("attract")),
			game.WithPlayerName("autopilot"),
		)
		if err != nil {
			logger.Fatal("invalid game config", "err", err)
		}
		restartDelay := config.GetEnvDuration("ATTRACT_RESTART_DELAY", 3*time.Second)
		pilot := game.NewAutopilot(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)), restartDelay)
		go func() {
			if err := loop.Attract(ctx, session, pilot, lobby,
				loop.WithLogger(logger.WithPrefix("attract")),
				loop.WithObserver(metrics.Observer{}),
			); err != nil {
				logger.Error("attract mode stopped", "err", err)
			}
		}()
	}

	var origins []string
	if v := config.GetEnv("CORS_ORIGINS", ""); v != "" {
		origins = strings.Split(v, ",")
	}

	limiter := web.NewIPRateLimiter(web.RateLimitConfig{
		RequestsPerSecond: config.GetEnvFloat("RATE_LIMIT_RPS", web.DefaultRateLimitConfig.RequestsPerSecond),
		Burst:             config.GetEnvInt("RATE_LIMIT_BURST", web.DefaultRateLimitConfig.Burst),
		CleanupInterval:   web.DefaultRateLimitConfig.CleanupInterval,
	})
	defer limiter.Stop()

	addr := net.JoinHostPort(host, port)
	srv := &http.Server{
		Addr: addr,
		Handler: web.NewRouter(web.RouterConfig{
			Lobby:       lobby,
			Scores:      store,
			SSHCommand:  fmt.Sprintf("ssh -p %s %s", sshPort, sshHost),
			RateLimiter: limiter,
			CORSOrigins: origins,
			Logger:      logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting web server", "url", "http://"+addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	lobby.Shutdown(config.GetEnvDuration("SHUTDOWN_TIMEOUT", 2*time.Second))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}

// openScores opens SCORES_DB, the file the SSH server writes to. Without it
// the page shows an empty table.
func openScores(logger *log.Logger) (scores.Store, func()) {
	path := config.GetEnv("SCORES_DB", "")
	if path == "" {
		return nil, func() {}
	}
	store, err := scores.Open(path, scores.DefaultLimit)
	if err != nil {
		logger.Error("open high scores", "path", path, "err", err)
		return nil, func() {}
	}
	return store, func() { _ = store.Close() }
}
