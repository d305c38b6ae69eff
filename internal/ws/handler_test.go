package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tripchat-service/internal/auth"
	"tripchat-service/internal/mocks"
	"tripchat-service/internal/models"
)

func startWSServer(t *testing.T, hub *Hub, groupRepo *mocks.GroupRepositoryMock, tracker *mocks.TrackerMock) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(hub, groupRepo, auth.DevValidator{}, tracker, false)
	r.GET("/ws", handler.Handle)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func dialAndAuth(t *testing.T, ts *httptest.Server, userID int) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "auth", "userId": userID}))

	var reply struct {
		Type string `json:"type"`
	}
	require.NoError(t, conn.ReadJSON(&reply))
	require.Equal(t, "auth_ok", reply.Type)
	return conn
}

func TestDisconnectMarksOfflineWithLiveContext(t *testing.T) {
	hub := NewHub()
	groupRepo := new(mocks.GroupRepositoryMock)
	tracker := new(mocks.TrackerMock)

	groupRepo.On("ListGroupIDsForUser", mock.Anything, 7).Return([]int{9}, nil).Once()
	tracker.On("MarkOnline", mock.Anything, 7).Return(nil).Once()

	offlineErr := make(chan error, 1)
	tracker.On("MarkOffline", mock.Anything, 7).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		offlineErr <- ctx.Err()
	}).Return(nil).Once()

	ts := startWSServer(t, hub, groupRepo, tracker)
	conn := dialAndAuth(t, ts, 7)

	require.Eventually(t, func() bool { return hub.RoomSize(9) == 1 }, time.Second, 10*time.Millisecond)
	conn.Close()

	// The cleanup path must not inherit the handshake request's
	// context, which dies as soon as the handler returns.
	select {
	case err := <-offlineErr:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("MarkOffline was never called")
	}

	require.Eventually(t, func() bool { return hub.RoomSize(9) == 0 }, time.Second, 10*time.Millisecond)
	tracker.AssertExpectations(t)
	groupRepo.AssertExpectations(t)
}

func TestConcurrentBroadcastsToOneConnection(t *testing.T) {
	hub := NewHub()
	groupRepo := new(mocks.GroupRepositoryMock)
	tracker := new(mocks.TrackerMock)

	groupRepo.On("ListGroupIDsForUser", mock.Anything, 7).Return([]int{9}, nil).Once()
	tracker.On("MarkOnline", mock.Anything, 7).Return(nil).Once()
	tracker.On("MarkOffline", mock.Anything, 7).Return(nil).Maybe()

	ts := startWSServer(t, hub, groupRepo, tracker)
	conn := dialAndAuth(t, ts, 7)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.RoomSize(9) == 1 }, time.Second, 10*time.Millisecond)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			hub.BroadcastMessage(9, models.ChatMessage{ID: n, GroupID: 9, SenderID: 1, Content: "hi"})
		}(i + 1)
	}

	for i := 0; i < writers; i++ {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var event models.Event
		require.NoError(t, conn.ReadJSON(&event))
		require.Equal(t, "message", event.Type)
	}
	wg.Wait()
	require.Equal(t, 1, hub.RoomSize(9))
}
