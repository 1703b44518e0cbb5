package events

import (
	"github.com/rs/zerolog"

	"github.com/vovakirdan/matchwire/internal/core"
)

// LogObserver writes lifecycle notifications to a zerolog logger.
type LogObserver struct {
	log *zerolog.Logger
}

// NewLogObserver creates a LogObserver.
func NewLogObserver(logger *zerolog.Logger) *LogObserver {
	return &LogObserver{log: logger}
}

func (o *LogObserver) ClientConnected(id string) {
	o.log.Info().Str("client_id", id).Msg("client connected")
}

func (o *LogObserver) ClientDisconnected(id string) {
	o.log.Info().Str("client_id", id).Msg("client disconnected")
}

func (o *LogObserver) QueueChanged(waiting int) {
	o.log.Info().Int("waiting", waiting).Msg("queue size")
}

func (o *LogObserver) MatchStarted(info core.MatchInfo) {
	o.log.Info().
		Str("session_id", info.SessionID).
		Str("first", info.First).
		Str("second", info.Second).
		Msgf("match started: %s vs %s", info.FirstRole, info.SecondRole)
}

func (o *LogObserver) MatchEnded(info core.MatchInfo) {
	o.log.Info().
		Str("session_id", info.SessionID).
		Str("reason", string(info.Reason)).
		Dur("duration", info.Duration()).
		Msg("match ended")
}
