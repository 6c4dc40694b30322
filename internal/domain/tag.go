package domain

import "time"

// Tag is a label owned by exactly one user.
type Tag struct {
	ID        int64
	UserID    int64
	Name      string
	CreatedAt time.Time
}

// AuthToken is the opaque credential issued to a user on login.
// A user holds at most one token.
type AuthToken struct {
	Key       string
	UserID    int64
	CreatedAt time.Time
}
