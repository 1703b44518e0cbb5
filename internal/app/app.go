package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/matchwire/internal/config"
	"github.com/vovakirdan/matchwire/internal/core"
	"github.com/vovakirdan/matchwire/internal/events"
	"github.com/vovakirdan/matchwire/internal/store"
	"github.com/vovakirdan/matchwire/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/matchwire/internal/transport/http"
)

const historyBuffer = 256

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	mm              *core.Matchmaker
	store           store.Store
	history         *events.HistoryObserver
	nats            *events.NATSObserver
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	a := &App{
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}

	observers := events.Multi{events.NewLogObserver(logger)}

	// Match history is optional; a nil MatchStore disables /matches.
	var history store.MatchStore
	if cfg.HistoryDBPath != "" {
		st, err := sqlite.New(cfg.HistoryDBPath)
		if err != nil {
			return nil, fmt.Errorf("init history store: %w", err)
		}
		logger.Info().Str("db_path", cfg.HistoryDBPath).Msg("match history enabled")
		a.store = st
		a.history = events.NewHistoryObserver(st, logger, historyBuffer)
		observers = append(observers, a.history)
		history = st
	}

	if cfg.Events.NATSURL != "" {
		obs, err := events.DialNATS(cfg.Events.NATSURL, cfg.Events.Subject, logger)
		if err != nil {
			a.cleanup()
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		logger.Info().Str("url", cfg.Events.NATSURL).Str("subject", cfg.Events.Subject).Msg("publishing events to nats")
		a.nats = obs
		observers = append(observers, obs)
	}

	a.mm = core.NewMatchmaker(core.Roles{
		First:  cfg.Roles.First,
		Second: cfg.Roles.Second,
	}, observers)
	a.server = transporthttp.NewServer(a.mm, history, cfg, logger)

	return a, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	mmCtx, stopMatchmaker := context.WithCancel(ctx)
	defer stopMatchmaker()
	mmDone := make(chan struct{})
	go func() {
		defer close(mmDone)
		a.mm.Run(mmCtx)
	}()

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	roles := a.mm.Roles()
	a.log.Info().
		Str("addr", a.server.Addr).
		Str("first_role", roles.First).
		Str("second_role", roles.Second).
		Msg("matchwire server listening")

	select {
	case err := <-serverErr:
		stopMatchmaker()
		<-mmDone
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		// Hijacked WebSocket connections are not tracked by Shutdown; the
		// matchmaker closes them when it stops.
		a.log.Info().Msg("shutting down http server")
		stopMatchmaker()
		<-mmDone

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup flushes observers and closes the history store.
func (a *App) cleanup() {
	if a.history != nil {
		a.history.Close()
	}
	if a.nats != nil {
		if err := a.nats.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to drain nats connection")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
