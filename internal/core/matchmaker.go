package core

import (
	"context"

	"github.com/gammazero/deque"
	"github.com/google/uuid"
)

// Stats is a point-in-time view of the matchmaker.
type Stats struct {
	Waiting      int
	Sessions     int
	MatchedTotal uint64
}

// Matchmaker owns the waiting queue and the set of live sessions.
// All state is confined to the Run goroutine; other goroutines talk to it
// over channels, so every queue and membership change is linearized.
type Matchmaker struct {
	roles    Roles
	observer Observer

	register   chan *Client
	unregister chan *Client
	statsReq   chan chan Stats
	waitingReq chan chan []string
	stopped    chan struct{}

	// Owned by Run.
	queue        deque.Deque[*Client]
	waiting      map[*Client]struct{}
	bySession    map[*Client]*Session
	sessions     map[string]*Session
	matchedTotal uint64
}

// NewMatchmaker creates a matchmaker. A nil observer discards notifications.
func NewMatchmaker(roles Roles, observer Observer) *Matchmaker {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Matchmaker{
		roles:      roles.withDefaults(),
		observer:   observer,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		statsReq:   make(chan chan Stats),
		waitingReq: make(chan chan []string),
		stopped:    make(chan struct{}),
		waiting:    make(map[*Client]struct{}),
		bySession:  make(map[*Client]*Session),
		sessions:   make(map[string]*Session),
	}
}

// Roles returns the role tokens in use.
func (m *Matchmaker) Roles() Roles {
	return m.roles
}

// Run processes registrations until ctx is cancelled. On exit every live
// session is ended and every waiting client is released.
func (m *Matchmaker) Run(ctx context.Context) {
	defer close(m.stopped)
	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return
		case c := <-m.register:
			m.enqueue(ctx, c)
		case c := <-m.unregister:
			m.remove(c)
		case reply := <-m.statsReq:
			reply <- Stats{
				Waiting:      m.queue.Len(),
				Sessions:     len(m.sessions),
				MatchedTotal: m.matchedTotal,
			}
		case reply := <-m.waitingReq:
			ids := make([]string, 0, m.queue.Len())
			for i := 0; i < m.queue.Len(); i++ {
				ids = append(ids, m.queue.At(i).ID)
			}
			reply <- ids
		}
	}
}

// Enqueue appends c to the waiting queue and pairs it if a partner is waiting.
func (m *Matchmaker) Enqueue(c *Client) error {
	select {
	case m.register <- c:
		return nil
	case <-m.stopped:
		return ErrMatchmakerStopped
	}
}

// Remove reports that c disconnected. A waiting client leaves the queue;
// a paired client ends its session. Unknown clients are ignored.
func (m *Matchmaker) Remove(c *Client) {
	select {
	case m.unregister <- c:
	case <-m.stopped:
	}
}

// Stats returns queue and session counters.
func (m *Matchmaker) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	select {
	case m.statsReq <- reply:
	case <-m.stopped:
		return Stats{}, ErrMatchmakerStopped
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
	return <-reply, nil
}

// Waiting returns the ids of waiting clients, oldest first.
func (m *Matchmaker) Waiting(ctx context.Context) ([]string, error) {
	reply := make(chan []string, 1)
	select {
	case m.waitingReq <- reply:
	case <-m.stopped:
		return nil, ErrMatchmakerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return <-reply, nil
}

func (m *Matchmaker) tracked(c *Client) bool {
	if _, ok := m.waiting[c]; ok {
		return true
	}
	_, ok := m.bySession[c]
	return ok
}

func (m *Matchmaker) enqueue(ctx context.Context, c *Client) {
	if c == nil || c.Released() || m.tracked(c) {
		return
	}
	m.queue.PushBack(c)
	m.waiting[c] = struct{}{}
	m.observer.ClientConnected(c.ID)
	m.observer.QueueChanged(m.queue.Len())

	m.tryPair(ctx)
}

// tryPair takes waiters two at a time, oldest first.
func (m *Matchmaker) tryPair(ctx context.Context) {
	for m.queue.Len() >= 2 {
		first := m.queue.PopFront()
		second := m.queue.PopFront()
		delete(m.waiting, first)
		delete(m.waiting, second)

		s := newSession(uuid.NewString(), first, second, m.roles)
		m.bySession[first] = s
		m.bySession[second] = s
		m.sessions[s.ID] = s
		m.matchedTotal++

		s.start(ctx)
		m.observer.QueueChanged(m.queue.Len())
		m.observer.MatchStarted(s.Info())
	}
}

func (m *Matchmaker) remove(c *Client) {
	if _, ok := m.waiting[c]; ok {
		if i := m.queue.Index(func(x *Client) bool { return x == c }); i >= 0 {
			m.queue.Remove(i)
		}
		delete(m.waiting, c)
		c.release(ReasonDisconnected)
		m.observer.ClientDisconnected(c.ID)
		m.observer.QueueChanged(m.queue.Len())
		return
	}

	s, ok := m.bySession[c]
	if !ok {
		return
	}
	m.endSession(s, ReasonPeerDisconnected)
}

func (m *Matchmaker) endSession(s *Session, reason EndReason) {
	delete(m.bySession, s.Member(RoleA))
	delete(m.bySession, s.Member(RoleB))
	delete(m.sessions, s.ID)
	if s.end(reason) {
		m.observer.MatchEnded(s.Info())
	}
	// Both members leave the matchmaker with the session; a later Remove
	// for the survivor finds nothing to report.
	m.observer.ClientDisconnected(s.Member(RoleA).ID)
	m.observer.ClientDisconnected(s.Member(RoleB).ID)
}

func (m *Matchmaker) shutdown() {
	for _, s := range m.sessions {
		m.endSession(s, ReasonShutdown)
	}
	for m.queue.Len() > 0 {
		c := m.queue.PopFront()
		delete(m.waiting, c)
		c.release(ReasonShutdown)
		m.observer.ClientDisconnected(c.ID)
	}
	m.observer.QueueChanged(0)
}
