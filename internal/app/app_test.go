package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/matchwire/internal/config"
	"github.com/vovakirdan/matchwire/internal/core"
)

func TestAppRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.HistoryDBPath = filepath.Join(t.TempDir(), "history.db")
	logger := zerolog.Nop()

	a, err := New(&cfg, &logger)
	require.NoError(t, err)
	require.NotNil(t, a.history)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		st, err := a.mm.Stats(context.Background())
		return err == nil && st == core.Stats{}
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestAppNewFailsOnUnreachableNATS(t *testing.T) {
	cfg := config.Default()
	cfg.HistoryDBPath = filepath.Join(t.TempDir(), "history.db")
	cfg.Events.NATSURL = "nats://127.0.0.1:1"
	logger := zerolog.Nop()

	_, err := New(&cfg, &logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init event publisher")
}

func TestAppNewFailsOnBadHistoryPath(t *testing.T) {
	cfg := config.Default()
	cfg.HistoryDBPath = filepath.Join(t.TempDir(), "missing", "dir", "history.db")
	logger := zerolog.Nop()

	_, err := New(&cfg, &logger)
	require.Error(t, err)
}
