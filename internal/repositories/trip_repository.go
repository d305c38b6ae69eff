package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"tripchat-service/internal/models"
)

var ErrTripNotFound = errors.New("trip not found")

// TripRepository abstracts trip persistence.
type TripRepository interface {
	GetTrip(ctx context.Context, tripID int) (models.Trip, error)
	ListTripsForGroup(ctx context.Context, groupID int) ([]models.Trip, error)
}

// TripRepo is a sqlx implementation of TripRepository.
type TripRepo struct {
	db *sqlx.DB
}

// NewTripRepo constructs a TripRepo.
func NewTripRepo(db *sqlx.DB) *TripRepo {
	return &TripRepo{db: db}
}

// GetTrip fetches a single trip.
func (r *TripRepo) GetTrip(ctx context.Context, tripID int) (models.Trip, error) {
	var trip models.Trip
	err := r.db.GetContext(ctx, &trip, `SELECT id, group_id, name, destination, starts_at, ends_at, status, created_at FROM trips WHERE id=$1`, tripID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trip{}, ErrTripNotFound
	}
	return trip, err
}

// ListTripsForGroup returns a group's trips, soonest first.
func (r *TripRepo) ListTripsForGroup(ctx context.Context, groupID int) ([]models.Trip, error) {
	var trips []models.Trip
	err := r.db.SelectContext(ctx, &trips, `SELECT id, group_id, name, destination, starts_at, ends_at, status, created_at FROM trips WHERE group_id=$1 ORDER BY starts_at ASC`, groupID)
	return trips, err
}
