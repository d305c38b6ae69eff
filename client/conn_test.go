package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// pushServer is a minimal websocket peer for connection tests.
type pushServer struct {
	ts       *httptest.Server
	conns    chan *websocket.Conn
	accepted atomic.Int64
	maxConns int64
}

func newPushServer(t *testing.T, maxConns int64) *pushServer {
	t.Helper()
	s := &pushServer{conns: make(chan *websocket.Conn, 8), maxConns: maxConns}
	s.ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.accepted.Add(1) > s.maxConns {
			http.Error(w, "no more connections", http.StatusServiceUnavailable)
			return
		}
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			return
		}
		var frame struct {
			Type   string `json:"type"`
			UserID int    `json:"userId"`
		}
		if json.Unmarshal(raw, &frame) != nil || frame.Type != "auth" {
			conn.Close()
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"auth_ok"}`))
		s.conns <- conn

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}))
	t.Cleanup(s.ts.Close)
	return s
}

func TestSendMessageWhileDisconnectedReturnsFalse(t *testing.T) {
	conn, err := NewConn("http://example.invalid", "", 7, NewDispatcher())
	require.NoError(t, err)

	require.False(t, conn.Connected())
	require.False(t, conn.SendMessage(map[string]string{"type": "ping"}))
}

func TestConnectSendsAuthAndForwardsEvents(t *testing.T) {
	srv := newPushServer(t, 1)
	dispatcher := NewDispatcher()

	conn, err := NewConn(srv.ts.URL, "", 7, dispatcher)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, conn.Connect(ctx))
	defer conn.Disconnect()
	require.True(t, conn.Connected())

	serverConn := <-srv.conns
	serverConn.WriteMessage(websocket.TextMessage, []byte(`{"type":"trip_update","tripId":3}`))

	require.Eventually(t, func() bool {
		return dispatcher.LastEvent().Type() == "trip_update"
	}, 2*time.Second, 10*time.Millisecond)

	require.True(t, conn.SendMessage(map[string]string{"type": "ping"}))
}

func TestConnectIsIdempotentWhileConnected(t *testing.T) {
	srv := newPushServer(t, 1)
	conn, err := NewConn(srv.ts.URL, "", 7, NewDispatcher())
	require.NoError(t, err)

	require.NoError(t, conn.Connect(context.Background()))
	defer conn.Disconnect()
	<-srv.conns

	// A second Connect while live is a no-op, not a second dial.
	require.NoError(t, conn.Connect(context.Background()))
	require.Equal(t, int64(1), srv.accepted.Load())
}

func TestDisconnectIsIdempotent(t *testing.T) {
	srv := newPushServer(t, 1)
	conn, err := NewConn(srv.ts.URL, "", 7, NewDispatcher())
	require.NoError(t, err)

	require.NoError(t, conn.Connect(context.Background()))
	<-srv.conns

	conn.Disconnect()
	require.False(t, conn.Connected())
	conn.Disconnect()
	require.False(t, conn.Connected())
}

func TestTransportLossFlipsConnectedWhilePollingContinues(t *testing.T) {
	// The push server accepts exactly one connection, so the reconnect
	// loop cannot restore the channel after the drop.
	srv := newPushServer(t, 1)
	conn, err := NewConn(srv.ts.URL, "", 7, NewDispatcher())
	require.NoError(t, err)

	require.NoError(t, conn.Connect(context.Background()))
	defer conn.Disconnect()
	serverConn := <-srv.conns

	rest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"messages": []Message{}})
	}))
	defer rest.Close()
	feed := NewMessageFeed(NewAPI(rest.URL, "", nil), 1, time.Hour)

	// Drop the connection server-side, mid-session.
	serverConn.Close()
	require.Eventually(t, func() bool {
		return !conn.Connected()
	}, 2*time.Second, 10*time.Millisecond)

	// Push-channel loss must not stop REST polling.
	require.NoError(t, feed.Refresh(context.Background()))
	require.True(t, feed.Loaded())
}

func TestNewConnSchemeSelection(t *testing.T) {
	conn, err := NewConn("https://trips.example.com", "tok", 7, nil)
	require.NoError(t, err)
	require.Contains(t, conn.wsURL, "wss://trips.example.com/ws")
	require.Contains(t, conn.wsURL, "token=tok")

	conn, err = NewConn("http://localhost:8083", "", 7, nil)
	require.NoError(t, err)
	require.Equal(t, "ws://localhost:8083/ws", conn.wsURL)

	_, err = NewConn("ftp://nope", "", 7, nil)
	require.Error(t, err)
}
