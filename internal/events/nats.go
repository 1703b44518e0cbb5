package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/matchwire/internal/core"
	"github.com/vovakirdan/matchwire/internal/proto"
)

// Publisher is the subset of *nats.Conn the observer needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSObserver publishes lifecycle events as JSON on a NATS subject.
// Publishing is buffered by the NATS client, so calls do not block the matchmaker.
type NATSObserver struct {
	pub     Publisher
	subject string
	log     *zerolog.Logger
	now     func() time.Time
	conn    *nats.Conn
}

// NewNATSObserver wraps an existing publisher.
func NewNATSObserver(pub Publisher, subject string, logger *zerolog.Logger) *NATSObserver {
	return &NATSObserver{pub: pub, subject: subject, log: logger, now: time.Now}
}

// DialNATS connects to url and returns an observer that owns the connection.
func DialNATS(url, subject string, logger *zerolog.Logger) (*NATSObserver, error) {
	conn, err := nats.Connect(url,
		nats.Name("matchwire"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("nats disconnected")
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	o := NewNATSObserver(conn, subject, logger)
	o.conn = conn
	return o, nil
}

// Close flushes pending events and closes the owned connection, if any.
func (o *NATSObserver) Close() error {
	if o.conn == nil {
		return nil
	}
	return o.conn.Drain()
}

func (o *NATSObserver) ClientConnected(id string) {
	o.publish(proto.Event{Type: proto.EventClientConnected, ClientID: id})
}

func (o *NATSObserver) ClientDisconnected(id string) {
	o.publish(proto.Event{Type: proto.EventClientDisconnected, ClientID: id})
}

func (o *NATSObserver) QueueChanged(waiting int) {
	o.publish(proto.Event{Type: proto.EventQueueChanged, Waiting: &waiting})
}

func (o *NATSObserver) MatchStarted(info core.MatchInfo) {
	m := MatchToProto(info)
	o.publish(proto.Event{Type: proto.EventMatchStarted, Match: &m})
}

func (o *NATSObserver) MatchEnded(info core.MatchInfo) {
	m := MatchToProto(info)
	o.publish(proto.Event{Type: proto.EventMatchEnded, Match: &m})
}

func (o *NATSObserver) publish(ev proto.Event) {
	ev.TS = o.now().Unix()
	data, err := json.Marshal(ev)
	if err != nil {
		o.log.Error().Err(err).Str("type", ev.Type).Msg("marshal event")
		return
	}
	if err := o.pub.Publish(o.subject, data); err != nil {
		o.log.Warn().Err(err).Str("type", ev.Type).Msg("publish event")
	}
}
