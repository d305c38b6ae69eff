package models

import "time"

// Trip is a planned journey owned by a group.
type Trip struct {
	ID          int    `db:"id" json:"id"`
	GroupID     int    `db:"group_id" json:"groupId"`
	Name        string `db:"name" json:"name"`
	Destination string `db:"destination" json:"destination"`
	// Dates are optional until the group settles on them; rows seeded
	// without dates scan as nil.
	StartsAt  *time.Time `db:"starts_at" json:"startsAt,omitempty"`
	EndsAt    *time.Time `db:"ends_at" json:"endsAt,omitempty"`
	Status    string     `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}
