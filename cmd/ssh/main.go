package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	wishlog "github.com/charmbracelet/wish/logging"

	"github.com/tomz197/invaders/internal/config"
	"github.com/tomz197/invaders/internal/draw"
	"github.com/tomz197/invaders/internal/game"
	"github.com/tomz197/invaders/internal/logging"
	"github.com/tomz197/invaders/internal/loop"
	"github.com/tomz197/invaders/internal/loop/server"
	"github.com/tomz197/invaders/internal/metrics"
	"github.com/tomz197/invaders/internal/scores"
	"github.com/tomz197/invaders/internal/web"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultHTTPAddr    = ":8081"

	defaultShutdownTimeout = 15 * time.Second
)

// host is shared by every SSH session.
type host struct {
	lobby  *server.Lobby
	store  scores.Store
	cfg    game.Config
	logger *log.Logger
}

func main() {
	config.LoadDotEnv()
	logger := logging.New("ssh")

	sshHost := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	httpAddr := config.GetEnv("HTTP_ADDR", defaultHTTPAddr)
	shutdownTimeout := config.GetEnvDuration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	logger.Info("ssh config", "host", sshHost, "port", port, "hostKeyPath", hostKeyPath, "http", httpAddr)

	cfg := game.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid game config", "err", err)
	}

	store, closeStore := openScores(logger)
	defer closeStore()

	h := &host{
		lobby: server.NewLobby(
			server.WithLogger(logger.WithPrefix("lobby")),
			server.WithCountHook(metrics.SetActiveSessions),
		),
		store:  store,
		cfg:    cfg,
		logger: logger,
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(sshHost, port)),
		wish.WithMiddleware(
			h.gameMiddleware,
			activeterm.Middleware(),
			wishlog.Middleware(),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	// Spectate sidecar: listings, frames and live snapshots of SSH players.
	limiter := web.NewIPRateLimiter(web.DefaultRateLimitConfig)
	defer limiter.Stop()
	httpSrv := &http.Server{
		Addr: httpAddr,
		Handler: web.NewRouter(web.RouterConfig{
			Lobby:       h.lobby,
			Scores:      store,
			SSHCommand:  sshCommand(port),
			RateLimiter: limiter,
			Logger:      logger.WithPrefix("web"),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting ssh server", "addr", net.JoinHostPort(sshHost, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("ssh server error", "err", err)
		}
	}()
	if httpAddr != "" {
		logger.Info("starting http sidecar", "addr", httpAddr)
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "err", err)
			}
		}()
	}

	<-done
	logger.Info("shutting down server")

	// Notify players and wait for them to disconnect
	logger.Info("notifying connected players", "sessions", h.lobby.Count())
	h.lobby.Shutdown(shutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown error", "err", err)
	}
	if err := s.Shutdown(ctx); err != nil {
		logger.Error("ssh shutdown error", "err", err)
	}
}

// gameMiddleware handles SSH sessions and runs one game per connection.
func (h *host) gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		logger := h.logger.With("user", sess.User())
		logger.Info("new game session", "terminal", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		session, err := game.NewSession(h.cfg,
			game.WithLogger(logger),
			game.WithScores(h.store),
			game.WithPlayerName(sess.User()),
		)
		if err != nil {
			logger.Error("create session", "err", err)
			fmt.Fprintln(sess, "Error: could not start a game")
			return
		}

		err = loop.Run(sess.Context(), loop.Options{
			Session:      session,
			Input:        bufio.NewReader(sess),
			Output:       sess,
			TermSizeFunc: sizeTracker.getSize,
			Lobby:        h.lobby,
			Logger:       logger,
			Observer:     metrics.Observer{},
			Inactivity:   true,
		})
		if err != nil {
			logger.Error("game error", "err", err)
		}

		logger.Info("session ended", "score", session.Score(), "state", session.State())
		next(sess)
	}
}

// sshCommand is the join command advertised on the spectate page.
func sshCommand(port string) string {
	display := config.GetEnv("SSH_DISPLAY_HOST", "")
	if display == "" {
		return ""
	}
	if port == "22" {
		return "ssh " + display
	}
	return fmt.Sprintf("ssh -p %s %s", port, display)
}

// openScores opens SCORES_DB, falling back to an in-memory list.
func openScores(logger *log.Logger) (scores.Store, func()) {
	path := config.GetEnv("SCORES_DB", "")
	if path == "" {
		logger.Warn("SCORES_DB not set, high scores are kept in memory")
		return scores.NewMemoryStore(scores.DefaultLimit), func() {}
	}
	store, err := scores.Open(path, scores.DefaultLimit)
	if err != nil {
		logger.Error("open high scores, keeping them in memory", "path", path, "err", err)
		return scores.NewMemoryStore(scores.DefaultLimit), func() {}
	}
	return store, func() { _ = store.Close() }
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
