package models

import "time"

// Check-in status values accepted on write. Anything else found in
// storage renders through StatusUnknown rather than failing.
const (
	StatusReady    = "ready"
	StatusNotReady = "not-ready"
	StatusMaybe    = "maybe"
	StatusUnknown  = "unknown"
)

// CheckIn is a per-user, per-trip readiness record. There is at most one
// row per (trip, user); a resubmission updates the existing record.
type CheckIn struct {
	ID          int       `db:"id" json:"id"`
	TripID      int       `db:"trip_id" json:"tripId"`
	UserID      int       `db:"user_id" json:"userId"`
	Status      string    `db:"status" json:"status"`
	Notes       string    `db:"notes" json:"notes"`
	CheckedInAt time.Time `db:"checked_in_at" json:"checkedInAt"`
}

// ClassifyStatus maps a stored status string to a display status,
// folding anything outside the enum into StatusUnknown.
func ClassifyStatus(status string) string {
	switch status {
	case StatusReady, StatusNotReady, StatusMaybe:
		return status
	default:
		return StatusUnknown
	}
}

// ValidStatus reports whether status may be written.
func ValidStatus(status string) bool {
	return status == StatusReady || status == StatusNotReady || status == StatusMaybe
}
