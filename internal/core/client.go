package core

import (
	"context"
	"sync"
	"sync/atomic"
)

// Client is a connection as seen by the core layer.
// The transport pushes frames read from the socket through Submit and
// writes whatever arrives on Outbound back to the socket.
type Client struct {
	ID       string
	Inbound  chan Frame
	Outbound chan Frame

	paired   atomic.Bool
	done     chan struct{}
	doneOnce sync.Once
	reason   atomic.Value // EndReason
}

// NewClient constructs a client with initialized channels.
// buffer is the per-direction channel capacity; values below 1 are raised to 1
// so the role announcement always fits without blocking the matchmaker.
func NewClient(id string, buffer int) *Client {
	if buffer < 1 {
		buffer = 1
	}
	return &Client{
		ID:       id,
		Inbound:  make(chan Frame, buffer),
		Outbound: make(chan Frame, buffer),
		done:     make(chan struct{}),
	}
}

// Submit hands a frame read from the socket to the client's session.
// Frames sent before pairing or after release are dropped. It returns
// true when the frame was queued for relay.
func (c *Client) Submit(ctx context.Context, f Frame) bool {
	if !c.paired.Load() {
		return false
	}
	select {
	case c.Inbound <- f:
		return true
	case <-c.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// Done is closed once the client has been released by the matchmaker,
// either because its match ended or because the service is stopping.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Released reports whether Done has been closed.
func (c *Client) Released() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// EndReason returns why the client was released, or ReasonNone while it is
// still tracked.
func (c *Client) EndReason() EndReason {
	if r, ok := c.reason.Load().(EndReason); ok {
		return r
	}
	return ReasonNone
}

func (c *Client) release(reason EndReason) {
	c.doneOnce.Do(func() {
		c.reason.Store(reason)
		c.paired.Store(false)
		close(c.done)
	})
}
