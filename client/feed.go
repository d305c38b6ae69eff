package client

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultFeedInterval is how often the feed refetches its group's
// messages. Polling is the authoritative freshness mechanism.
const DefaultFeedInterval = 2 * time.Second

// FeedUpdate signals that the feed has new content worth scrolling to.
// FirstLoad is set exactly once, on the first successful fetch; it is
// the cue for an instant scroll rather than a smooth one. Updates are
// never emitted for a poll tick that brought nothing new.
type FeedUpdate struct {
	FirstLoad bool
	LatestID  int
}

// DateBucket groups the messages of one local calendar day.
type DateBucket struct {
	Date     time.Time
	Messages []Message
}

// MessageFeed maintains the ordered message list of one group by
// polling at a fixed interval. The server response is ground truth; a
// later-resolving poll simply wins.
type MessageFeed struct {
	api      *API
	groupID  int
	interval time.Duration

	mu       sync.RWMutex
	messages []Message
	latestID int
	loaded   bool

	updates chan FeedUpdate
}

// NewMessageFeed constructs a feed for the group. interval <= 0 selects
// the default.
func NewMessageFeed(api *API, groupID int, interval time.Duration) *MessageFeed {
	if interval <= 0 {
		interval = DefaultFeedInterval
	}
	return &MessageFeed{
		api:      api,
		groupID:  groupID,
		interval: interval,
		updates:  make(chan FeedUpdate, 1),
	}
}

// Start polls until ctx is done. Poll failures keep the previous list
// intact; the next tick tries again.
func (f *MessageFeed) Start(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	if err := f.Refresh(ctx); err != nil {
		log.Printf("message feed initial fetch: %v", err)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.Refresh(ctx); err != nil {
				log.Printf("message feed poll: %v", err)
			}
		}
	}
}

// Refresh fetches the list once and replaces the local view. Emits a
// FeedUpdate only when the first load completes or the latest message
// id advanced.
func (f *MessageFeed) Refresh(ctx context.Context) error {
	msgs, err := f.api.ListMessages(ctx, f.groupID)
	if err != nil {
		return err
	}

	// De-dup by id while preserving server order.
	seen := make(map[int]struct{}, len(msgs))
	deduped := msgs[:0]
	latest := 0
	for _, m := range msgs {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		deduped = append(deduped, m)
		if m.ID > latest {
			latest = m.ID
		}
	}

	f.mu.Lock()
	firstLoad := !f.loaded
	advanced := latest > f.latestID
	f.messages = deduped
	f.latestID = latest
	f.loaded = true
	f.mu.Unlock()

	if firstLoad || advanced {
		// Drop any stale pending update so a slow consumer reads the
		// newest cue, not the oldest.
		select {
		case <-f.updates:
		default:
		}
		select {
		case f.updates <- FeedUpdate{FirstLoad: firstLoad, LatestID: latest}:
		default:
		}
	}
	return nil
}

// Updates delivers scroll cues. The channel holds at most one pending
// update; a consumer that falls behind sees only the newest.
func (f *MessageFeed) Updates() <-chan FeedUpdate {
	return f.updates
}

// Messages returns a snapshot of the current list.
func (f *MessageFeed) Messages() []Message {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Message, len(f.messages))
	copy(out, f.messages)
	return out
}

// Loaded reports whether at least one fetch has succeeded.
func (f *MessageFeed) Loaded() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loaded
}

// Buckets groups the current messages by local calendar day, oldest
// bucket first. Zero messages yield zero buckets; the consumer renders
// the empty state.
func (f *MessageFeed) Buckets() []DateBucket {
	msgs := f.Messages()
	return BucketByDate(msgs)
}

// BucketByDate splits an ordered message list into local-date buckets.
func BucketByDate(msgs []Message) []DateBucket {
	var buckets []DateBucket
	for _, m := range msgs {
		day := localMidnight(m.CreatedAt)
		if n := len(buckets); n > 0 && buckets[n-1].Date.Equal(day) {
			buckets[n-1].Messages = append(buckets[n-1].Messages, m)
			continue
		}
		buckets = append(buckets, DateBucket{Date: day, Messages: []Message{m}})
	}
	return buckets
}

// ShouldShowSender reports whether message i starts a sender run: true
// iff it is the first message or the previous message has a different
// sender.
func ShouldShowSender(msgs []Message, i int) bool {
	if i < 0 || i >= len(msgs) {
		return false
	}
	return i == 0 || msgs[i-1].SenderUserID != msgs[i].SenderUserID
}

// ShouldShowTimestamp reports whether message i ends a sender run: true
// iff it is the last message or the next message has a different sender.
func ShouldShowTimestamp(msgs []Message, i int) bool {
	if i < 0 || i >= len(msgs) {
		return false
	}
	return i == len(msgs)-1 || msgs[i+1].SenderUserID != msgs[i].SenderUserID
}

func localMidnight(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}
