package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"tripchat-service/internal/models"
)

var ErrCheckInNotFound = errors.New("check-in not found")

// CheckInRepository defines interactions for trip check-ins.
type CheckInRepository interface {
	UpsertCheckIn(ctx context.Context, tripID int, userID int, status string, notes string) (models.CheckIn, error)
	ListCheckIns(ctx context.Context, tripID int) ([]models.CheckIn, error)
	GetCheckIn(ctx context.Context, tripID int, userID int) (models.CheckIn, error)
}

// CheckInRepo is a sqlx-backed implementation.
type CheckInRepo struct {
	db *sqlx.DB
}

// NewCheckInRepo constructs a CheckInRepo.
func NewCheckInRepo(db *sqlx.DB) *CheckInRepo {
	return &CheckInRepo{db: db}
}

// UpsertCheckIn creates the caller's check-in or updates the existing
// row for the same (trip, user). One row per pair is enforced by the
// unique constraint.
func (r *CheckInRepo) UpsertCheckIn(ctx context.Context, tripID int, userID int, status string, notes string) (models.CheckIn, error) {
	var ci models.CheckIn
	err := r.db.QueryRowxContext(ctx, `INSERT INTO check_ins (trip_id, user_id, status, notes, checked_in_at)
        VALUES ($1, $2, $3, $4, NOW())
        ON CONFLICT (trip_id, user_id)
        DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes, checked_in_at = NOW()
        RETURNING id, trip_id, user_id, status, notes, checked_in_at`, tripID, userID, status, notes).
		Scan(&ci.ID, &ci.TripID, &ci.UserID, &ci.Status, &ci.Notes, &ci.CheckedInAt)
	return ci, err
}

// ListCheckIns returns the latest check-in of every user on the trip.
func (r *CheckInRepo) ListCheckIns(ctx context.Context, tripID int) ([]models.CheckIn, error) {
	var cis []models.CheckIn
	err := r.db.SelectContext(ctx, &cis, `SELECT id, trip_id, user_id, status, notes, checked_in_at FROM check_ins WHERE trip_id=$1 ORDER BY checked_in_at DESC`, tripID)
	return cis, err
}

// GetCheckIn fetches one user's check-in for a trip.
func (r *CheckInRepo) GetCheckIn(ctx context.Context, tripID int, userID int) (models.CheckIn, error) {
	var ci models.CheckIn
	err := r.db.GetContext(ctx, &ci, `SELECT id, trip_id, user_id, status, notes, checked_in_at FROM check_ins WHERE trip_id=$1 AND user_id=$2`, tripID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CheckIn{}, ErrCheckInNotFound
	}
	return ci, err
}
