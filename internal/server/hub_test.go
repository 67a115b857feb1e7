package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftoff-sim/simcore/pkg/core"
	"github.com/liftoff-sim/simcore/pkg/streaming"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, srv *httptest.Server) *ws.Conn {
	t.Helper()
	conn, _, err := ws.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *ws.Conn) streaming.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var env streaming.Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	return env
}

func TestHelloOnConnect(t *testing.T) {
	h := NewHub(discardLogger(), nil)
	require.NoError(t, h.SetHello(streaming.HelloPayload{TickRate: 30, Countdown: 10, LaunchWindow: 8}))
	srv := httptest.NewServer(h)
	defer srv.Close()
	defer h.Close()

	conn := dial(t, srv)

	env := readEnvelope(t, conn)
	require.Equal(t, streaming.TypeHello, env.Type)

	var hello streaming.HelloPayload
	require.NoError(t, json.Unmarshal(env.Payload, &hello))
	assert.Equal(t, 30, hello.TickRate)
	assert.Equal(t, 10.0, hello.Countdown)
}

func TestBroadcastReachesAllClients(t *testing.T) {
	h := NewHub(discardLogger(), nil)
	srv := httptest.NewServer(h)
	defer srv.Close()
	defer h.Close()

	a := dial(t, srv)
	b := dial(t, srv)

	// wait for both registrations
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	snap := core.Snapshot{Phase: core.PhaseFlying, Score: 100}
	require.NoError(t, h.Broadcast(streaming.TypeSnapshot, snap))

	for _, conn := range []*ws.Conn{a, b} {
		env := readEnvelope(t, conn)
		require.Equal(t, streaming.TypeSnapshot, env.Type)

		var got core.Snapshot
		require.NoError(t, json.Unmarshal(env.Payload, &got))
		assert.Equal(t, core.PhaseFlying, got.Phase)
		assert.Equal(t, 100, got.Score)
	}
}

func TestInputForwarded(t *testing.T) {
	inputs := make(chan string, 8)
	h := NewHub(discardLogger(), func(msgType string) { inputs <- msgType })
	srv := httptest.NewServer(h)
	defer srv.Close()
	defer h.Close()

	conn := dial(t, srv)

	send := func(msgType string) {
		data, err := json.Marshal(streaming.Envelope{Type: msgType, Payload: json.RawMessage(`null`)})
		require.NoError(t, err)
		require.NoError(t, conn.WriteMessage(ws.TextMessage, data))
	}

	send(streaming.TypeAction)
	send(streaming.TypeRestart)

	for _, want := range []string{streaming.TypeAction, streaming.TypeRestart} {
		select {
		case got := <-inputs:
			assert.Equal(t, want, got)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for input")
		}
	}
}

func TestUnknownInputIgnored(t *testing.T) {
	inputs := make(chan string, 8)
	h := NewHub(discardLogger(), func(msgType string) { inputs <- msgType })
	srv := httptest.NewServer(h)
	defer srv.Close()
	defer h.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte(`{"type":"teleport","payload":null}`)))
	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte(`not json`)))

	select {
	case got := <-inputs:
		t.Fatalf("unexpected input forwarded: %s", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestClientCountTracksDisconnect(t *testing.T) {
	h := NewHub(discardLogger(), nil)
	srv := httptest.NewServer(h)
	defer srv.Close()
	defer h.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
