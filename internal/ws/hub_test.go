package ws

import (
	"testing"

	"tripchat-service/internal/models"
)

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub()

	hub.AddClient(nil, ConnInfo{UserID: 7}, []int{1, 2})
	if len(hub.rooms) != 2 {
		t.Fatalf("expected two rooms, got %d", len(hub.rooms))
	}
	if hub.RoomSize(1) != 1 || hub.RoomSize(2) != 1 {
		t.Fatalf("expected the client in both rooms")
	}

	hub.RemoveClient(nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected empty rooms after removal")
	}
	if len(hub.connInfo) != 0 {
		t.Fatalf("expected conn info cleared after removal")
	}
}

func TestHubBroadcastToEmptyRoom(t *testing.T) {
	hub := NewHub()

	// No clients in the room: broadcast is a no-op, not a panic.
	hub.BroadcastMessage(5, models.ChatMessage{ID: 1, GroupID: 5, Content: "anyone there"})
	hub.BroadcastCheckIn(5, models.CheckIn{ID: 1, TripID: 2, UserID: 7, Status: "ready"})
}

func TestHubRoomSizeUnknownRoom(t *testing.T) {
	hub := NewHub()
	if hub.RoomSize(42) != 0 {
		t.Fatalf("expected zero for unknown room")
	}
}
