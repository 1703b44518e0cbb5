package core

import "time"

// MatchInfo describes a session for observers.
type MatchInfo struct {
	SessionID  string
	First      string // client id holding RoleA
	Second     string // client id holding RoleB
	FirstRole  string
	SecondRole string
	StartedAt  time.Time
	EndedAt    time.Time // zero while the session is active
	Reason     EndReason
}

// Duration returns how long the match lasted, or zero while it is active.
func (m MatchInfo) Duration() time.Duration {
	if m.EndedAt.IsZero() {
		return 0
	}
	return m.EndedAt.Sub(m.StartedAt)
}

// Observer receives lifecycle notifications from the matchmaker.
// Methods are called from the matchmaker goroutine and must not block.
type Observer interface {
	ClientConnected(clientID string)
	ClientDisconnected(clientID string)
	QueueChanged(waiting int)
	MatchStarted(info MatchInfo)
	MatchEnded(info MatchInfo)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) ClientConnected(string)    {}
func (NopObserver) ClientDisconnected(string) {}
func (NopObserver) QueueChanged(int)          {}
func (NopObserver) MatchStarted(MatchInfo)    {}
func (NopObserver) MatchEnded(MatchInfo)      {}
