package events

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/matchwire/internal/core"
	"github.com/vovakirdan/matchwire/internal/store"
)

const saveTimeout = 5 * time.Second

// HistoryObserver records ended matches in a MatchStore.
// Writes happen on a background goroutine; when the buffer is full the
// record is dropped and a warning is logged.
type HistoryObserver struct {
	core.NopObserver

	store   store.MatchStore
	log     *zerolog.Logger
	records chan store.Match
	done    chan struct{}
}

// NewHistoryObserver starts the writer goroutine. Call Close to flush it.
func NewHistoryObserver(st store.MatchStore, logger *zerolog.Logger, buffer int) *HistoryObserver {
	if buffer < 1 {
		buffer = 1
	}
	o := &HistoryObserver{
		store:   st,
		log:     logger,
		records: make(chan store.Match, buffer),
		done:    make(chan struct{}),
	}
	go o.run()
	return o
}

// MatchEnded queues the match for persistence.
func (o *HistoryObserver) MatchEnded(info core.MatchInfo) {
	select {
	case o.records <- MatchToRecord(info):
	default:
		o.log.Warn().Str("session_id", info.SessionID).Msg("history buffer full, dropping match")
	}
}

// Close waits for queued records to be written. MatchEnded must not be
// called after Close.
func (o *HistoryObserver) Close() {
	close(o.records)
	<-o.done
}

func (o *HistoryObserver) run() {
	defer close(o.done)
	for rec := range o.records {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		if err := o.store.SaveMatch(ctx, &rec); err != nil {
			o.log.Error().Err(err).Str("session_id", rec.SessionID).Msg("save match")
		}
		cancel()
	}
}
