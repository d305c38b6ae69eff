package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
)

const maxReconnectInterval = 30 * time.Second

// Conn owns the single push connection for a session. It is constructed
// at session start and disposed at session end; nothing in this package
// keeps socket state in a package variable.
//
// A Conn that loses its transport flips Connected to false and retries
// with capped exponential backoff until Disconnect is called. Consumers
// keep polling through the API regardless; the push channel is never
// load-bearing.
type Conn struct {
	wsURL      string
	userID     int
	dialer     *websocket.Dialer
	dispatcher *Dispatcher

	mu        sync.Mutex
	ws        *websocket.Conn
	connected bool
	cancel    context.CancelFunc
}

// NewConn prepares a connection manager for the given session identity.
// The websocket scheme follows the base URL: https becomes wss.
func NewConn(baseURL, token string, userID int, dispatcher *Dispatcher) (*Conn, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	return &Conn{
		wsURL:      u.String(),
		userID:     userID,
		dialer:     websocket.DefaultDialer,
		dispatcher: dispatcher,
	}, nil
}

// Connect dials the push endpoint and sends the auth frame. The first
// dial is not retried; once a connection has been established, later
// transport losses reconnect in the background until Disconnect or ctx
// cancellation.
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	ws, err := c.dial(runCtx)
	if err != nil {
		cancel()
		return err
	}

	c.adopt(runCtx, ws)
	return nil
}

// Disconnect tears the connection down and stops any reconnect loop.
// Safe to call when already disconnected.
func (c *Conn) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.ws != nil {
		c.ws.Close()
		c.ws = nil
	}
	c.connected = false
}

// Connected reports whether the push channel is currently live.
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// SendMessage serializes payload and writes it to the open socket. The
// return value reports whether a write was attempted, not whether the
// server processed it. When disconnected it returns false and performs
// no network action.
func (c *Conn) SendMessage(payload interface{}) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("drop unserializable push payload: %v", err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected || c.ws == nil {
		return false
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, body); err != nil {
		c.ws.Close()
		c.ws = nil
		c.connected = false
	}
	return true
}

func (c *Conn) dial(ctx context.Context) (*websocket.Conn, error) {
	ws, _, err := c.dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial push channel: %w", err)
	}

	authFrame, _ := json.Marshal(map[string]interface{}{"type": "auth", "userId": c.userID})
	if err := ws.WriteMessage(websocket.TextMessage, authFrame); err != nil {
		ws.Close()
		return nil, fmt.Errorf("send auth frame: %w", err)
	}
	return ws, nil
}

func (c *Conn) adopt(ctx context.Context, ws *websocket.Conn) {
	c.mu.Lock()
	if ctx.Err() != nil {
		// Disconnect raced the dial; drop the fresh socket.
		c.mu.Unlock()
		ws.Close()
		return
	}
	c.ws = ws
	c.connected = true
	c.mu.Unlock()

	go c.readLoop(ctx, ws)
}

func (c *Conn) readLoop(ctx context.Context, ws *websocket.Conn) {
	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			break
		}
		if c.dispatcher != nil {
			c.dispatcher.Dispatch(raw)
		}
	}

	c.mu.Lock()
	if c.ws == ws {
		c.ws = nil
		c.connected = false
	}
	c.mu.Unlock()
	ws.Close()

	if ctx.Err() == nil {
		c.reconnect(ctx)
	}
}

func (c *Conn) reconnect(ctx context.Context) {
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = maxReconnectInterval
	bo.MaxElapsedTime = 0

	op := func() error {
		ws, err := c.dial(ctx)
		if err != nil {
			log.Printf("push channel reconnect failed: %v", err)
			return err
		}
		c.adopt(ctx, ws)
		return nil
	}
	_ = backoff.Retry(op, backoff.WithContext(bo, ctx))
}
