package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// SessionState is the lifecycle state of a session.
type SessionState int32

const (
	// SessionActive is entered as soon as the session starts.
	SessionActive SessionState = iota
	// SessionEnded is terminal.
	SessionEnded
)

func (s SessionState) String() string {
	if s == SessionActive {
		return "active"
	}
	return "ended"
}

type member struct {
	client *Client
	role   Role
}

// Session relays frames between exactly two clients.
// Membership is fixed at construction; the session is torn down as a whole.
type Session struct {
	ID        string
	StartedAt time.Time

	members [2]member
	roles   Roles
	state   atomic.Int32
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	endedAt time.Time
	reason  EndReason
}

func newSession(id string, first, second *Client, roles Roles) *Session {
	return &Session{
		ID: id,
		members: [2]member{
			{client: first, role: RoleA},
			{client: second, role: RoleB},
		},
		roles: roles,
	}
}

// Member returns the client holding role.
func (s *Session) Member(role Role) *Client {
	if s.members[0].role == role {
		return s.members[0].client
	}
	return s.members[1].client
}

// Peer returns the other member of the session, or nil if c is not a member.
func (s *Session) Peer(c *Client) *Client {
	switch c {
	case s.members[0].client:
		return s.members[1].client
	case s.members[1].client:
		return s.members[0].client
	default:
		return nil
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Info describes the session for observers.
func (s *Session) Info() MatchInfo {
	return MatchInfo{
		SessionID:  s.ID,
		First:      s.Member(RoleA).ID,
		Second:     s.Member(RoleB).ID,
		FirstRole:  s.roles.Token(RoleA),
		SecondRole: s.roles.Token(RoleB),
		StartedAt:  s.StartedAt,
		EndedAt:    s.endedAt,
		Reason:     s.reason,
	}
}

// start announces roles and installs one relay pump per direction.
func (s *Session) start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.StartedAt = time.Now()
	s.state.Store(int32(SessionActive))

	for _, m := range s.members {
		m.client.paired.Store(true)
		// Outbound is empty until pairing and has capacity for at least one frame.
		select {
		case m.client.Outbound <- TextFrame(s.roles.Token(m.role)):
		default:
		}
	}

	a, b := s.Member(RoleA), s.Member(RoleB)
	s.wg.Add(2)
	go s.pump(ctx, a, b)
	go s.pump(ctx, b, a)
}

// pump forwards frames from one member to the other until the session ends.
// Frames that cannot be delivered before the session ends are dropped.
func (s *Session) pump(ctx context.Context, from, to *Client) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-from.Inbound:
			if ctx.Err() != nil {
				select {
				case to.Outbound <- f:
				default:
				}
				return
			}
			select {
			case to.Outbound <- f:
			case <-to.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

// end stops both pumps and releases both members. Calling it twice is a no-op.
// It returns false if the session had already ended.
func (s *Session) end(reason EndReason) bool {
	if !s.state.CompareAndSwap(int32(SessionActive), int32(SessionEnded)) {
		return false
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	// Frames accepted while the session was active are handed over if the
	// destination still has room.
	a, b := s.Member(RoleA), s.Member(RoleB)
	flush(a, b)
	flush(b, a)

	s.endedAt = time.Now()
	s.reason = reason
	for _, m := range s.members {
		m.client.release(reason)
	}
	return true
}

func flush(from, to *Client) {
	for {
		select {
		case f := <-from.Inbound:
			select {
			case to.Outbound <- f:
			default:
				return
			}
		default:
			return
		}
	}
}
