package client

import (
	"context"
	"net/http"
	"time"
)

// Config carries everything needed to act as one authenticated session.
type Config struct {
	// BaseURL is the service root, e.g. https://trips.example.com.
	BaseURL string
	// Token is the session token issued by the auth collaborator.
	Token string
	// UserID is the authenticated user.
	UserID int
	// HTTPClient overrides the default polling client when set.
	HTTPClient *http.Client
	// FeedInterval and StatusInterval override the default poll rates.
	FeedInterval   time.Duration
	StatusInterval time.Duration
}

// Client bundles the session-scoped pieces: the REST API, the push
// connection, and the event dispatcher. Feeds, status stores and
// composers are created per group or trip as views open.
type Client struct {
	cfg        Config
	API        *API
	Dispatcher *Dispatcher
	Conn       *Conn
}

// New builds a client for one authenticated session.
func New(cfg Config) (*Client, error) {
	api := NewAPI(cfg.BaseURL, cfg.Token, cfg.HTTPClient)
	dispatcher := NewDispatcher()
	conn, err := NewConn(cfg.BaseURL, cfg.Token, cfg.UserID, dispatcher)
	if err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, API: api, Dispatcher: dispatcher, Conn: conn}, nil
}

// Connect opens the push channel. Callers may skip this entirely;
// polling works without it.
func (c *Client) Connect(ctx context.Context) error {
	return c.Conn.Connect(ctx)
}

// Close tears down the push channel.
func (c *Client) Close() {
	c.Conn.Disconnect()
}

// NewMessageFeed opens a polling feed for one group.
func (c *Client) NewMessageFeed(groupID int) *MessageFeed {
	return NewMessageFeed(c.API, groupID, c.cfg.FeedInterval)
}

// NewStatusStore opens a polling check-in store for one trip.
func (c *Client) NewStatusStore(tripID int) *StatusStore {
	return NewStatusStore(c.API, tripID, c.cfg.UserID, c.cfg.StatusInterval)
}

// NewComposer creates a message composer bound to a group and its feed.
func (c *Client) NewComposer(groupID int, feed *MessageFeed) *Composer {
	return NewComposer(c.API, feed, groupID)
}
