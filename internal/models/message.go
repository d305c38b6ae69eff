package models

import "time"

// ChatMessage represents a message sent in a group. Messages are
// immutable once stored; there is no edit or delete path.
type ChatMessage struct {
	ID        int       `db:"id" json:"id"`
	GroupID   int       `db:"group_id" json:"groupId"`
	SenderID  int       `db:"sender_id" json:"senderUserId"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
