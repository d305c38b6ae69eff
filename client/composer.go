package client

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrEmptyMessage is returned when a send is rejected locally because
// the content trims to nothing. No network call is made in that case.
var ErrEmptyMessage = errors.New("message content is empty")

// Composer validates and submits new group messages. On success it
// clears the draft and triggers an immediate feed refetch rather than
// waiting for the push channel or the next poll tick; on failure the
// draft stays intact.
type Composer struct {
	api     *API
	feed    *MessageFeed
	groupID int

	mu    sync.Mutex
	draft string
}

// NewComposer constructs a composer for the group. feed may be nil when
// no feed should be refetched after a send.
func NewComposer(api *API, feed *MessageFeed, groupID int) *Composer {
	return &Composer{api: api, feed: feed, groupID: groupID}
}

// SetDraft stores the typed-but-unsent content.
func (c *Composer) SetDraft(content string) {
	c.mu.Lock()
	c.draft = content
	c.mu.Unlock()
}

// Draft returns the current typed content.
func (c *Composer) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Send submits content as a new group message. Whitespace-only content
// is rejected locally with ErrEmptyMessage.
func (c *Composer) Send(ctx context.Context, content string) (Message, error) {
	if strings.TrimSpace(content) == "" {
		return Message{}, ErrEmptyMessage
	}

	msg, err := c.api.PostMessage(ctx, c.groupID, content)
	if err != nil {
		return Message{}, err
	}

	c.mu.Lock()
	c.draft = ""
	c.mu.Unlock()

	if c.feed != nil {
		if err := c.feed.Refresh(ctx); err != nil {
			// the send itself succeeded; the next poll tick catches up
			return msg, nil
		}
	}
	return msg, nil
}

// SendDraft submits the stored draft.
func (c *Composer) SendDraft(ctx context.Context) (Message, error) {
	return c.Send(ctx, c.Draft())
}

// SubmitOnEnter decides what the primary submit key does: without a
// modifier it submits, with the modifier held it inserts a newline.
func SubmitOnEnter(withModifier bool) bool {
	return !withModifier
}
