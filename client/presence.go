package client

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultStatusInterval is how often the status store refetches the
// trip's check-ins.
const DefaultStatusInterval = 10 * time.Second

// Recognized check-in status values. Anything else coming back from
// the server classifies as StatusUnknown for display.
const (
	StatusReady    = "ready"
	StatusNotReady = "not-ready"
	StatusMaybe    = "maybe"
	StatusUnknown  = "unknown"
)

// DisplayStatus folds an arbitrary stored status into one of the four
// render states. Unknown values never fail; they render the default
// branch.
func DisplayStatus(status string) string {
	switch status {
	case StatusReady, StatusNotReady, StatusMaybe:
		return status
	default:
		return StatusUnknown
	}
}

var statusValidate = validator.New()

type checkInSubmission struct {
	Status string `validate:"required,oneof=ready not-ready maybe"`
	Notes  string `validate:"max=500"`
}

// StatusStore tracks the check-in state of one trip for one user. It
// polls the trip statuses at a fixed interval; a submission refetches
// immediately instead of waiting for the next tick or trusting the push
// channel.
type StatusStore struct {
	api      *API
	tripID   int
	userID   int
	interval time.Duration

	mu       sync.RWMutex
	statuses []CheckInStatus
	tripInfo TripInfo
	mine     *CheckIn
	loaded   bool
}

// NewStatusStore constructs a store for the trip. interval <= 0 selects
// the default.
func NewStatusStore(api *API, tripID, userID int, interval time.Duration) *StatusStore {
	if interval <= 0 {
		interval = DefaultStatusInterval
	}
	return &StatusStore{api: api, tripID: tripID, userID: userID, interval: interval}
}

// Start polls until ctx is done. Failures keep the previous snapshot.
func (s *StatusStore) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.Refresh(ctx); err != nil {
		log.Printf("status store initial fetch: %v", err)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				log.Printf("status store poll: %v", err)
			}
		}
	}
}

// Refresh refetches the trip statuses and the caller's own check-in.
func (s *StatusStore) Refresh(ctx context.Context) error {
	statuses, tripInfo, err := s.api.TripCheckInStatus(ctx, s.tripID)
	if err != nil {
		return err
	}

	var mine *CheckIn
	ci, err := s.api.MyCheckIn(ctx, s.tripID, s.userID)
	switch {
	case err == nil:
		mine = &ci
	case errors.Is(err, ErrNotFound):
		// not checked in yet
	default:
		return err
	}

	s.mu.Lock()
	s.statuses = statuses
	s.tripInfo = tripInfo
	s.mine = mine
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Submit upserts the caller's check-in and refetches server truth. On
// failure the displayed state is left unchanged.
func (s *StatusStore) Submit(ctx context.Context, status, notes string) error {
	if err := statusValidate.Struct(checkInSubmission{Status: status, Notes: notes}); err != nil {
		return err
	}

	if _, err := s.api.SubmitCheckIn(ctx, s.tripID, status, notes); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Statuses returns the latest status of every user who has checked in.
// A trip with zero check-ins yields an empty snapshot.
func (s *StatusStore) Statuses() []CheckInStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CheckInStatus, len(s.statuses))
	copy(out, s.statuses)
	return out
}

// MyStatus returns the caller's current check-in, or nil before the
// first submission.
func (s *StatusStore) MyStatus() *CheckIn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.mine == nil {
		return nil
	}
	ci := *s.mine
	return &ci
}

// TripInfo returns the trip summary from the latest poll.
func (s *StatusStore) TripInfo() TripInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tripInfo
}

// Loaded reports whether at least one fetch has succeeded.
func (s *StatusStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
