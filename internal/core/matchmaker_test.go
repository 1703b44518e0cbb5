package core

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchmakerPairsInArrivalOrder(t *testing.T) {
	obs := &recordingObserver{}
	mm, _ := startMatchmaker(t, obs)
	ctx := context.Background()

	clients := newClients(5)
	for _, c := range clients {
		require.NoError(t, mm.Enqueue(c))
	}

	waiting, err := mm.Waiting(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c5"}, waiting)

	stats, err := mm.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Waiting: 1, Sessions: 2, MatchedTotal: 2}, stats)

	for i, c := range clients[:4] {
		want := "WHITE"
		if i%2 == 1 {
			want = "BLACK"
		}
		assert.Equal(t, want, string(mustFrame(t, c).Payload), "client %s", c.ID)
	}
	mustNoFrame(t, clients[4])

	started := obs.startedMatches()
	require.Len(t, started, 2)
	assert.Equal(t, "c1", started[0].First)
	assert.Equal(t, "c2", started[0].Second)
	assert.Equal(t, "c3", started[1].First)
	assert.Equal(t, "c4", started[1].Second)
	assert.NotEqual(t, started[0].SessionID, started[1].SessionID)
}

func TestMatchmakerRelaysBothDirections(t *testing.T) {
	mm, _ := startMatchmaker(t, nil)

	c := newClients(2)
	white, black := c[0], c[1]
	require.NoError(t, mm.Enqueue(white))
	require.NoError(t, mm.Enqueue(black))
	mustFrame(t, white)
	mustFrame(t, black)

	submit(t, white, "e4")
	got := mustFrame(t, black)
	assert.Equal(t, "e4", string(got.Payload))
	assert.False(t, got.Binary)

	payload := []byte{0x00, 0xff, 0x10, 0x80}
	require.True(t, black.Submit(context.Background(), Frame{Binary: true, Payload: payload}))
	got = mustFrame(t, white)
	assert.True(t, got.Binary)
	assert.Equal(t, payload, got.Payload)
}

func TestMatchmakerPreservesPerDirectionOrder(t *testing.T) {
	mm, _ := startMatchmaker(t, nil)

	c := newClients(2)
	require.NoError(t, mm.Enqueue(c[0]))
	require.NoError(t, mm.Enqueue(c[1]))
	mustFrame(t, c[0])
	mustFrame(t, c[1])

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			assert.True(t, c[0].Submit(context.Background(), TextFrame(fmt.Sprintf("m%d", i))))
		}
	}()

	for i := 0; i < 50; i++ {
		assert.Equal(t, fmt.Sprintf("m%d", i), string(mustFrame(t, c[1]).Payload))
	}
	<-done
}

func TestMatchmakerDropsFramesBeforePairing(t *testing.T) {
	mm, _ := startMatchmaker(t, nil)

	c := newClients(2)
	require.NoError(t, mm.Enqueue(c[0]))
	assert.False(t, c[0].Submit(context.Background(), TextFrame("too early")))

	require.NoError(t, mm.Enqueue(c[1]))
	assert.Equal(t, "BLACK", string(mustFrame(t, c[1]).Payload))
	mustNoFrame(t, c[1])
}

func TestMatchmakerRemoveWaitingClient(t *testing.T) {
	obs := &recordingObserver{}
	mm, _ := startMatchmaker(t, obs)
	ctx := context.Background()

	c := newClients(3)
	require.NoError(t, mm.Enqueue(c[0]))
	mm.Remove(c[0])
	mustReleased(t, c[0])
	assert.Equal(t, ReasonDisconnected, c[0].EndReason())

	require.NoError(t, mm.Enqueue(c[1]))
	waiting, err := mm.Waiting(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, waiting)

	require.NoError(t, mm.Enqueue(c[2]))
	_, err = mm.Stats(ctx)
	require.NoError(t, err)
	started := obs.startedMatches()
	require.Len(t, started, 1)
	assert.Equal(t, "c2", started[0].First)
	assert.Equal(t, "c3", started[0].Second)
	mustNoFrame(t, c[0])
}

func TestMatchmakerRemovedClientIsNotReenqueued(t *testing.T) {
	mm, _ := startMatchmaker(t, nil)
	ctx := context.Background()

	c := newClients(1)[0]
	require.NoError(t, mm.Enqueue(c))
	mm.Remove(c)
	require.NoError(t, mm.Enqueue(c))

	waiting, err := mm.Waiting(ctx)
	require.NoError(t, err)
	assert.Empty(t, waiting)
}

func TestMatchmakerRemoveUnknownIsNoop(t *testing.T) {
	obs := &recordingObserver{}
	mm, _ := startMatchmaker(t, obs)

	stranger := NewClient("stranger", 1)
	mm.Remove(stranger)
	mm.Remove(stranger)

	stats, err := mm.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
	assert.False(t, stranger.Released())
}

func TestMatchmakerDuplicateEnqueueIsNoop(t *testing.T) {
	mm, _ := startMatchmaker(t, nil)

	c := newClients(1)[0]
	require.NoError(t, mm.Enqueue(c))
	require.NoError(t, mm.Enqueue(c))

	waiting, err := mm.Waiting(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, waiting)
}

func TestMatchmakerDisconnectDuringSessionEndsMatch(t *testing.T) {
	obs := &recordingObserver{}
	mm, _ := startMatchmaker(t, obs)
	ctx := context.Background()

	c := newClients(3)
	require.NoError(t, mm.Enqueue(c[0]))
	require.NoError(t, mm.Enqueue(c[1]))
	mustFrame(t, c[0])
	mustFrame(t, c[1])

	mm.Remove(c[0])
	mustReleased(t, c[1])
	assert.Equal(t, ReasonPeerDisconnected, c[1].EndReason())

	// No further relay in either direction.
	assert.False(t, c[1].Submit(ctx, TextFrame("anyone?")))
	mustNoFrame(t, c[0])

	stats, err := mm.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Sessions)
	assert.Equal(t, 0, stats.Waiting)

	ended := obs.endedMatches()
	require.Len(t, ended, 1)
	assert.Equal(t, ReasonPeerDisconnected, ended[0].Reason)
	assert.False(t, ended[0].EndedAt.IsZero())

	// The survivor is not matched again.
	require.NoError(t, mm.Enqueue(c[2]))
	waiting, err := mm.Waiting(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c3"}, waiting)

	mm.Remove(c[1])
	stats, err = mm.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Waiting: 1, MatchedTotal: 1}, stats)
}

func TestMatchmakerScenarioThreeClients(t *testing.T) {
	mm, _ := startMatchmaker(t, nil)
	ctx := context.Background()

	c := newClients(4)
	c1, c2, c3, c4 := c[0], c[1], c[2], c[3]
	for _, cl := range []*Client{c1, c2, c3} {
		require.NoError(t, mm.Enqueue(cl))
	}

	assert.Equal(t, "WHITE", string(mustFrame(t, c1).Payload))
	assert.Equal(t, "BLACK", string(mustFrame(t, c2).Payload))

	waiting, err := mm.Waiting(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c3"}, waiting)

	submit(t, c1, "e4")
	assert.Equal(t, "e4", string(mustFrame(t, c2).Payload))

	mm.Remove(c3)
	waiting, err = mm.Waiting(ctx)
	require.NoError(t, err)
	assert.Empty(t, waiting)

	stats, err := mm.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sessions)

	require.NoError(t, mm.Enqueue(c4))
	waiting, err = mm.Waiting(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c4"}, waiting)
}

func TestMatchmakerConcurrentArrivalsPairOnce(t *testing.T) {
	obs := &recordingObserver{}
	mm, _ := startMatchmaker(t, obs)

	const n = 200
	clients := newClients(n)

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			assert.NoError(t, mm.Enqueue(c))
		}(c)
	}
	wg.Wait()

	stats, err := mm.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Waiting: 0, Sessions: n / 2, MatchedTotal: n / 2}, stats)

	seen := make(map[string]int)
	for _, info := range obs.startedMatches() {
		assert.NotEqual(t, info.First, info.Second)
		assert.NotEqual(t, info.FirstRole, info.SecondRole)
		seen[info.First]++
		seen[info.Second]++
	}
	assert.Len(t, seen, n)
	for id, count := range seen {
		assert.Equal(t, 1, count, "client %s paired %d times", id, count)
	}

	for _, c := range clients {
		role := string(mustFrame(t, c).Payload)
		assert.Contains(t, []string{"WHITE", "BLACK"}, role)
	}
}

func TestMatchmakerShutdownReleasesEveryone(t *testing.T) {
	obs := &recordingObserver{}
	mm, cancel := startMatchmaker(t, obs)

	c := newClients(3)
	for _, cl := range c {
		require.NoError(t, mm.Enqueue(cl))
	}
	cancel()

	for _, cl := range c {
		mustReleased(t, cl)
		assert.Equal(t, ReasonShutdown, cl.EndReason())
	}

	// Stats fails only once Run has returned, after every notification.
	_, err := mm.Stats(context.Background())
	require.ErrorIs(t, err, ErrMatchmakerStopped)

	assert.ErrorIs(t, mm.Enqueue(NewClient("late", 1)), ErrMatchmakerStopped)

	ended := obs.endedMatches()
	require.Len(t, ended, 1)
	assert.Equal(t, ReasonShutdown, ended[0].Reason)

	connected, disconnected := obs.clients()
	assert.ElementsMatch(t, connected, disconnected)
}

func TestMatchmakerReportsEveryDisconnect(t *testing.T) {
	obs := &recordingObserver{}
	mm, _ := startMatchmaker(t, obs)
	ctx := context.Background()

	c := newClients(3)
	for _, cl := range c {
		require.NoError(t, mm.Enqueue(cl))
	}
	mustFrame(t, c[0])
	mustFrame(t, c[1])

	mm.Remove(c[0])
	mustReleased(t, c[1])
	// The survivor's transport reports its own close afterwards.
	mm.Remove(c[1])
	mm.Remove(c[2])

	_, err := mm.Stats(ctx)
	require.NoError(t, err)

	connected, disconnected := obs.clients()
	assert.Equal(t, []string{"c1", "c2", "c3"}, connected)
	assert.ElementsMatch(t, connected, disconnected)
}

func TestMatchmakerCustomRoles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mm := NewMatchmaker(Roles{First: "A", Second: "B"}, nil)
	go mm.Run(ctx)

	c := newClients(2)
	require.NoError(t, mm.Enqueue(c[0]))
	require.NoError(t, mm.Enqueue(c[1]))
	assert.Equal(t, "A", string(mustFrame(t, c[0]).Payload))
	assert.Equal(t, "B", string(mustFrame(t, c[1]).Payload))
}

func TestRolesWithDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   Roles
		want Roles
	}{
		{name: "empty", in: Roles{}, want: DefaultRoles},
		{name: "partial", in: Roles{First: "X"}, want: Roles{First: "X", Second: "BLACK"}},
		{name: "clash", in: Roles{First: "X", Second: "X"}, want: DefaultRoles},
		{name: "custom", in: Roles{First: "red", Second: "blue"}, want: Roles{First: "red", Second: "blue"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.withDefaults())
		})
	}
}
