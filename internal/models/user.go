package models

import "time"

// User is a roster entry. This service never creates or mutates users;
// account management lives in the auth collaborator.
type User struct {
	ID          int       `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	DisplayName string    `db:"display_name" json:"displayName"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Initials derives the short avatar label shown next to messages and
// check-ins when no picture is available.
func (u User) Initials() string {
	name := u.DisplayName
	if name == "" {
		name = u.Username
	}
	initials := make([]rune, 0, 2)
	lastWasSpace := true
	for _, r := range name {
		if r == ' ' {
			lastWasSpace = true
			continue
		}
		if lastWasSpace && len(initials) < 2 {
			initials = append(initials, r)
		}
		lastWasSpace = false
	}
	return string(initials)
}
