package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"tripchat-service/internal/auth"
	"tripchat-service/internal/observability"
	"tripchat-service/internal/presence"
	"tripchat-service/internal/repositories"
)

const authFrameTimeout = 10 * time.Second

// Handler owns the single /ws endpoint. Clients authenticate with
// their first frame: {"type":"auth","userId":N}.
type Handler struct {
	hub          *Hub
	groupRepo    repositories.GroupRepository
	validator    auth.Validator
	tracker      presence.Tracker
	requireToken bool
}

// NewHandler constructs the websocket handler. When requireToken is set
// the upgrade request must carry a session token matching the auth
// frame's user id; otherwise a bare auth frame is accepted.
func NewHandler(hub *Hub, groupRepo repositories.GroupRepository, validator auth.Validator, tracker presence.Tracker, requireToken bool) *Handler {
	return &Handler{
		hub:          hub,
		groupRepo:    groupRepo,
		validator:    validator,
		tracker:      tracker,
		requireToken: requireToken,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type authFrame struct {
	Type   string `json:"type"`
	UserID int    `json:"userId"`
}

// Handle upgrades the connection, reads the auth frame, and registers
// the client in its group rooms.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("tripchat-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.Query("token")
	if token == "" {
		token = bearerToken(c.GetHeader("Authorization"))
	}
	if h.requireToken && token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	conn.SetReadDeadline(time.Now().Add(authFrameTimeout))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return
	}

	var frame authFrame
	if err := json.Unmarshal(raw, &frame); err != nil || frame.Type != "auth" || frame.UserID <= 0 {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"auth_failed","reason":"bad auth frame"}`))
		conn.Close()
		return
	}

	if token != "" {
		tokenUserID, err := h.validator.ValidateToken(ctx, token)
		if err != nil || tokenUserID != frame.UserID {
			conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"auth_failed","reason":"identity mismatch"}`))
			conn.Close()
			return
		}
	}
	userID := frame.UserID

	groupIDs, err := h.groupRepo.ListGroupIDsForUser(ctx, userID)
	if err != nil {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"auth_failed","reason":"membership lookup failed"}`))
		conn.Close()
		return
	}

	conn.SetReadDeadline(time.Time{})

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	// auth_ok goes out before the connection joins any room, so no
	// broadcast can race this write.
	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"auth_ok"}`))

	h.hub.AddClient(conn, info, groupIDs)
	if err := h.tracker.MarkOnline(ctx, userID); err != nil {
		// presence stays best effort; the connection is still usable
		observability.IncWSEvent("presence_error")
	}

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	_ = observability.PublishEvent(ctx, "ws_events.groups", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   wsEventPayload("ws_connect", info, 0, ""),
	}, observability.BuildHeaders(requestID, traceID))

	// Drain frames until the peer goes away, then clean up. The
	// handshake context dies as soon as Handle returns (hijacked
	// request), so the read loop runs on a detached one.
	go func() {
		connCtx := context.Background()
		var closeReason string
		defer func() {
			h.hub.RemoveClient(conn)
			if err := h.tracker.MarkOffline(connCtx, userID); err != nil {
				observability.IncWSEvent("presence_error")
			}
			observability.DecWSActive()
			observability.IncWSEvent("ws_disconnect")
			_ = observability.PublishEvent(connCtx, "ws_events.groups", observability.EventEnvelope{
				EventType: "ws_events",
				EventName: "ws_disconnect",
				Payload:   wsEventPayload("ws_disconnect", info, time.Since(info.ConnectedAt).Milliseconds(), closeReason),
			}, observability.BuildHeaders(requestID, traceID))
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("ws_error")
					_ = observability.PublishEvent(connCtx, "ws_events.groups", observability.EventEnvelope{
						EventType: "ws_events",
						EventName: "ws_error",
						Payload:   wsEventPayload("ws_error", info, time.Since(info.ConnectedAt).Milliseconds(), closeReason),
					}, observability.BuildHeaders(requestID, traceID))
				}
				return
			}
		}
	}()
}

func wsEventPayload(event string, info ConnInfo, durationMS int64, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": durationMS,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
