package client

import (
	"encoding/json"
	"log"
	"sync"
)

// Event is a decoded push frame. The server imposes no schema beyond
// "valid JSON object", so consumers inspect the "type" field themselves.
type Event map[string]interface{}

// Type returns the event's type field, or "" when absent.
func (e Event) Type() string {
	if t, ok := e["type"].(string); ok {
		return t
	}
	return ""
}

// Dispatcher fans decoded push events out to subscribers. It retains
// exactly one slot of state: the most recent event. Intermediate events
// overwritten before a subscriber reads are gone by design; polling is
// the ground truth, push is only a freshness hint.
type Dispatcher struct {
	mu   sync.RWMutex
	last Event
	subs map[int]func(Event)
	next int
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{subs: make(map[int]func(Event))}
}

// Dispatch decodes a raw frame and notifies subscribers. Frames that
// are not JSON objects are discarded.
func (d *Dispatcher) Dispatch(raw []byte) {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		log.Printf("discarding non-json push frame: %v", err)
		return
	}

	d.mu.Lock()
	d.last = event
	subs := make([]func(Event), 0, len(d.subs))
	for _, fn := range d.subs {
		subs = append(subs, fn)
	}
	d.mu.Unlock()

	for _, fn := range subs {
		fn(event)
	}
}

// LastEvent returns the most recent event, or nil before any arrives.
func (d *Dispatcher) LastEvent() Event {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last
}

// Subscribe registers a callback for every future event. The returned
// function removes the subscription.
func (d *Dispatcher) Subscribe(fn func(Event)) func() {
	d.mu.Lock()
	id := d.next
	d.next++
	d.subs[id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}
