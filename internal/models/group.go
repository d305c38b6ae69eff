package models

import "time"

// Group is a set of users planning trips together. Groups own messages
// and trips.
type Group struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	OwnerID   int       `db:"owner_id" json:"ownerId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// GroupMember links a user to a group.
type GroupMember struct {
	GroupID int `db:"group_id" json:"groupId"`
	UserID  int `db:"user_id" json:"userId"`
}
