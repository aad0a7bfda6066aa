package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/tomz197/invaders/internal/audio"
	"github.com/tomz197/invaders/internal/config"
	"github.com/tomz197/invaders/internal/game"
	"github.com/tomz197/invaders/internal/logging"
	"github.com/tomz197/invaders/internal/loop"
	"github.com/tomz197/invaders/internal/metrics"
	"github.com/tomz197/invaders/internal/scores"
)

func main() {
	config.LoadDotEnv()

	// The terminal belongs to the game, so logs only go to LOG_FILE.
	logger, closeLog, err := logging.OpenFile("game")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	store, closeStore := openScores()
	defer closeStore()

	opts := []game.Option{
		game.WithLogger(logger),
		game.WithScores(store),
		game.WithPlayerName(config.GetEnv("PLAYER_NAME", os.Getenv("USER"))),
	}
	if config.GetEnvBool("AUDIO", true) {
		player := audio.Open(logger)
		defer player.Close()
		opts = append(opts, game.WithAudio(player))
	}

	session, err := game.NewSession(game.ConfigFromEnv(), opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid game config: %v\n", err)
		os.Exit(1)
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = loop.Run(ctx, loop.Options{
		Session:  session,
		Input:    bufio.NewReader(os.Stdin),
		Output:   os.Stdout,
		Logger:   logger,
		Observer: metrics.Observer{},
	})
	if err != nil {
		logger.Error("game error", "err", err)
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

// openScores opens SCORES_DB, falling back to an in-memory list when it is
// unset or cannot be opened.
func openScores() (scores.Store, func()) {
	path := config.GetEnv("SCORES_DB", "")
	if path == "" {
		return scores.NewMemoryStore(scores.DefaultLimit), func() {}
	}
	store, err := scores.Open(path, scores.DefaultLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "high scores unavailable (%v), keeping them in memory\n", err)
		return scores.NewMemoryStore(scores.DefaultLimit), func() {}
	}
	return store, func() { _ = store.Close() }
}
