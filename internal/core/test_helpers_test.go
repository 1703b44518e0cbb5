package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func startMatchmaker(t *testing.T, observer Observer) (*Matchmaker, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	mm := NewMatchmaker(DefaultRoles, observer)
	go mm.Run(ctx)
	t.Cleanup(cancel)
	return mm, cancel
}

func newClients(n int) []*Client {
	clients := make([]*Client, 0, n)
	for i := 0; i < n; i++ {
		clients = append(clients, NewClient(fmt.Sprintf("c%d", i+1), 8))
	}
	return clients
}

func mustFrame(t *testing.T, c *Client) Frame {
	t.Helper()

	select {
	case f := <-c.Outbound:
		return f
	case <-time.After(2 * time.Second):
		t.Fatalf("client %s: expected frame not received", c.ID)
		return Frame{}
	}
}

func mustNoFrame(t *testing.T, c *Client) {
	t.Helper()

	select {
	case f := <-c.Outbound:
		t.Fatalf("client %s: unexpected frame %q", c.ID, f.Payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func mustReleased(t *testing.T, c *Client) {
	t.Helper()

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("client %s was not released", c.ID)
	}
}

// submit retries until the client is paired, since pairing happens
// asynchronously after Enqueue returns.
func submit(t *testing.T, c *Client, payload string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Submit(context.Background(), TextFrame(payload)) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client %s: submit %q never accepted", c.ID, payload)
}

type recordingObserver struct {
	mu           sync.Mutex
	connected    []string
	disconnected []string
	queueSizes   []int
	started      []MatchInfo
	ended        []MatchInfo
}

func (r *recordingObserver) ClientConnected(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connected = append(r.connected, id)
}

func (r *recordingObserver) ClientDisconnected(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnected = append(r.disconnected, id)
}

func (r *recordingObserver) QueueChanged(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queueSizes = append(r.queueSizes, n)
}

func (r *recordingObserver) MatchStarted(info MatchInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, info)
}

func (r *recordingObserver) MatchEnded(info MatchInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, info)
}

func (r *recordingObserver) startedMatches() []MatchInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]MatchInfo(nil), r.started...)
}

func (r *recordingObserver) endedMatches() []MatchInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]MatchInfo(nil), r.ended...)
}

func (r *recordingObserver) clients() (connected, disconnected []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.connected...), append([]string(nil), r.disconnected...)
}
