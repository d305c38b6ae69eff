package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcherKeepsOnlyTheLastEvent(t *testing.T) {
	d := NewDispatcher()
	require.Nil(t, d.LastEvent())

	d.Dispatch([]byte(`{"type":"check_in","tripId":1}`))
	d.Dispatch([]byte(`{"type":"message","groupId":2}`))

	last := d.LastEvent()
	require.Equal(t, "message", last.Type())
	// The earlier event was overwritten; only the most recent survives.
	require.Equal(t, float64(2), last["groupId"])
}

func TestDispatcherDiscardsNonJSONFrames(t *testing.T) {
	d := NewDispatcher()
	d.Dispatch([]byte(`{"type":"message"}`))
	d.Dispatch([]byte(`not json at all`))

	require.Equal(t, "message", d.LastEvent().Type())
}

func TestDispatcherNotifiesSubscribers(t *testing.T) {
	d := NewDispatcher()

	var got []string
	unsubscribe := d.Subscribe(func(e Event) {
		got = append(got, e.Type())
	})

	d.Dispatch([]byte(`{"type":"a"}`))
	d.Dispatch([]byte(`{"type":"b"}`))
	unsubscribe()
	d.Dispatch([]byte(`{"type":"c"}`))

	require.Equal(t, []string{"a", "b"}, got)
}

func TestEventTypeMissing(t *testing.T) {
	d := NewDispatcher()
	d.Dispatch([]byte(`{"groupId":1}`))
	require.Equal(t, "", d.LastEvent().Type())
}
