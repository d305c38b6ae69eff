package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripchat-service/internal/models"
	"tripchat-service/internal/presence"
	"tripchat-service/internal/repositories"
)

// RosterHandler serves the read-only user roster used for name and
// initials resolution.
type RosterHandler struct {
	userRepo repositories.UserRepository
	tracker  presence.Tracker
}

// NewRosterHandler constructs a RosterHandler.
func NewRosterHandler(userRepo repositories.UserRepository, tracker presence.Tracker) *RosterHandler {
	return &RosterHandler{userRepo: userRepo, tracker: tracker}
}

// ListUsers returns every roster entry with a live online flag.
func (h *RosterHandler) ListUsers(c *gin.Context) {
	users, err := h.userRepo.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}

	type rosterResponse struct {
		models.User
		Online bool `json:"online"`
	}

	resp := make([]rosterResponse, 0, len(users))
	for _, u := range users {
		online, err := h.tracker.IsOnline(c.Request.Context(), u.ID)
		if err != nil {
			// presence is best effort; the roster still loads
			online = false
		}
		resp = append(resp, rosterResponse{User: u, Online: online})
	}

	c.JSON(http.StatusOK, gin.H{"users": resp})
}
