package http

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/matchwire/internal/config"
	"github.com/vovakirdan/matchwire/internal/core"
	"github.com/vovakirdan/matchwire/internal/store"
)

type testServer struct {
	ts *httptest.Server
	mm *core.Matchmaker
}

func startTestServer(t *testing.T, history store.MatchStore, observer core.Observer) *testServer {
	t.Helper()

	mm := core.NewMatchmaker(core.DefaultRoles, observer)
	ctx, cancel := context.WithCancel(context.Background())
	go mm.Run(ctx)

	disabledLogger := zerolog.Nop()
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.WriteTimeout = time.Second

	server := NewServer(mm, history, &cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)

	t.Cleanup(func() {
		cancel()
		ts.Close()
	})

	return &testServer{ts: ts, mm: mm}
}

func (s *testServer) wsURL() string {
	return strings.Replace(s.ts.URL, "http", "ws", 1) + "/ws"
}

// dial connects and waits until the matchmaker has accounted for the new
// connection, so arrival order is deterministic.
func (s *testServer) dial(t *testing.T, ctx context.Context) *websocket.Conn {
	t.Helper()

	before := s.stats(t)
	conn, _, err := websocket.Dial(ctx, s.wsURL(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })

	s.waitStats(t, func(st core.Stats) bool {
		return st.Waiting+2*int(st.MatchedTotal) > before.Waiting+2*int(before.MatchedTotal)
	})
	return conn
}

func (s *testServer) stats(t *testing.T) core.Stats {
	t.Helper()

	st, err := s.mm.Stats(context.Background())
	require.NoError(t, err)
	return st
}

func (s *testServer) waitStats(t *testing.T, cond func(core.Stats) bool) {
	t.Helper()

	require.Eventually(t, func() bool {
		st, err := s.mm.Stats(context.Background())
		return err == nil && cond(st)
	}, 2*time.Second, 5*time.Millisecond)
}

func newHandlerServer(t *testing.T, h stdhttp.Handler) string {
	t.Helper()

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return strings.Replace(ts.URL, "http", "ws", 1)
}

func readText(t *testing.T, ctx context.Context, conn *websocket.Conn) string {
	t.Helper()

	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, websocket.MessageText, typ)
	return string(data)
}
