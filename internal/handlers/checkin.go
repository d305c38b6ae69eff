package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tripchat-service/internal/models"
	"tripchat-service/internal/repositories"
	"tripchat-service/internal/telemetry"
	"tripchat-service/internal/ws"
)

// CheckInHandler manages trip check-in endpoints.
type CheckInHandler struct {
	tripRepo    repositories.TripRepository
	checkInRepo repositories.CheckInRepository
	groupRepo   repositories.GroupRepository
	hub         *ws.Hub
	audit       *telemetry.AuditEmitter
}

// NewCheckInHandler constructs a CheckInHandler.
func NewCheckInHandler(tripRepo repositories.TripRepository, checkInRepo repositories.CheckInRepository, groupRepo repositories.GroupRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *CheckInHandler {
	return &CheckInHandler{
		tripRepo:    tripRepo,
		checkInRepo: checkInRepo,
		groupRepo:   groupRepo,
		hub:         hub,
		audit:       audit,
	}
}

// GetTrip returns trip details for a member of the owning group.
func (h *CheckInHandler) GetTrip(c *gin.Context) {
	trip, ok := h.tripForMember(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

// GetCheckInStatus returns the latest status of every user who has
// checked in on the trip. A trip with zero check-ins answers an empty
// list, not an error.
func (h *CheckInHandler) GetCheckInStatus(c *gin.Context) {
	trip, ok := h.tripForMember(c)
	if !ok {
		return
	}

	checkIns, err := h.checkInRepo.ListCheckIns(c.Request.Context(), trip.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load check-ins"})
		return
	}

	type statusResponse struct {
		UserID      int    `json:"userId"`
		Status      string `json:"status"`
		Notes       string `json:"notes"`
		CheckedInAt string `json:"checkedInAt"`
	}

	statuses := make([]statusResponse, 0, len(checkIns))
	for _, ci := range checkIns {
		statuses = append(statuses, statusResponse{
			UserID:      ci.UserID,
			Status:      ci.Status,
			Notes:       ci.Notes,
			CheckedInAt: ci.CheckedInAt.UTC().Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"checkInStatuses": statuses, "tripInfo": trip})
}

// GetUserCheckIn returns one user's current check-in or 404.
func (h *CheckInHandler) GetUserCheckIn(c *gin.Context) {
	trip, ok := h.tripForMember(c)
	if !ok {
		return
	}

	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	ci, err := h.checkInRepo.GetCheckIn(c.Request.Context(), trip.ID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrCheckInNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no check-in yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load check-in"})
		return
	}
	c.JSON(http.StatusOK, ci)
}

// PostCheckIn upserts the caller's check-in and broadcasts the new
// status to the trip's group room.
func (h *CheckInHandler) PostCheckIn(c *gin.Context) {
	trip, ok := h.tripForMember(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be ready, not-ready or maybe"})
		return
	}

	userID := c.GetInt("userID")
	ci, err := h.checkInRepo.UpsertCheckIn(c.Request.Context(), trip.ID, userID, req.Status, req.Notes)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store check-in"})
		return
	}

	h.hub.BroadcastCheckIn(trip.GroupID, ci)
	h.emitAudit(c, "INFO", "Check-in submitted")
	c.JSON(http.StatusCreated, ci)
}

// tripForMember resolves the trip and enforces that the caller is a
// member of the owning group. Writes the error response itself.
func (h *CheckInHandler) tripForMember(c *gin.Context) (models.Trip, bool) {
	tripID, err := strconv.Atoi(c.Param("trip_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return models.Trip{}, false
	}

	trip, err := h.tripRepo.GetTrip(c.Request.Context(), tripID)
	if err != nil {
		if errors.Is(err, repositories.ErrTripNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
			return models.Trip{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load trip"})
		return models.Trip{}, false
	}

	userID := c.GetInt("userID")
	member, err := h.groupRepo.IsMember(c.Request.Context(), trip.GroupID, userID)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return models.Trip{}, false
	}
	if !member {
		h.emitAudit(c, "ERROR", "not allowed")
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member"})
		return models.Trip{}, false
	}
	return trip, true
}

func (h *CheckInHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
