// Package events provides core.Observer implementations that log, publish
// and record matchmaker lifecycle notifications.
package events

import (
	"github.com/vovakirdan/matchwire/internal/core"
	"github.com/vovakirdan/matchwire/internal/proto"
	"github.com/vovakirdan/matchwire/internal/store"
)

// Multi fans every notification out to each observer in order.
type Multi []core.Observer

func (m Multi) ClientConnected(id string) {
	for _, o := range m {
		o.ClientConnected(id)
	}
}

func (m Multi) ClientDisconnected(id string) {
	for _, o := range m {
		o.ClientDisconnected(id)
	}
}

func (m Multi) QueueChanged(waiting int) {
	for _, o := range m {
		o.QueueChanged(waiting)
	}
}

func (m Multi) MatchStarted(info core.MatchInfo) {
	for _, o := range m {
		o.MatchStarted(info)
	}
}

func (m Multi) MatchEnded(info core.MatchInfo) {
	for _, o := range m {
		o.MatchEnded(info)
	}
}

// MatchToProto converts match info to its JSON shape.
func MatchToProto(info core.MatchInfo) proto.Match {
	m := proto.Match{
		SessionID:  info.SessionID,
		First:      info.First,
		Second:     info.Second,
		FirstRole:  info.FirstRole,
		SecondRole: info.SecondRole,
		StartedAt:  info.StartedAt.Unix(),
		DurationMS: info.Duration().Milliseconds(),
		Reason:     string(info.Reason),
	}
	if !info.EndedAt.IsZero() {
		m.EndedAt = info.EndedAt.Unix()
	}
	return m
}

// MatchToRecord converts ended match info to a history record.
func MatchToRecord(info core.MatchInfo) store.Match {
	return store.Match{
		SessionID:  info.SessionID,
		FirstID:    info.First,
		SecondID:   info.Second,
		FirstRole:  info.FirstRole,
		SecondRole: info.SecondRole,
		StartedAt:  info.StartedAt,
		EndedAt:    info.EndedAt,
		Reason:     string(info.Reason),
	}
}

// RecordToProto converts a stored match to its JSON shape.
func RecordToProto(m *store.Match) proto.Match {
	return proto.Match{
		SessionID:  m.SessionID,
		First:      m.FirstID,
		Second:     m.SecondID,
		FirstRole:  m.FirstRole,
		SecondRole: m.SecondRole,
		StartedAt:  m.StartedAt.Unix(),
		EndedAt:    m.EndedAt.Unix(),
		DurationMS: m.EndedAt.Sub(m.StartedAt).Milliseconds(),
		Reason:     m.Reason,
	}
}
