// Package entities contains main entities of service.
package entities

import (
	"time"
)

// Post ...
type Post struct {
	ID        uint64
	Owner     uint64
	Title     string
	Content   string
	CreatedAt time.Time
}

// CalculatedPost is a post with its likes count.
type CalculatedPost struct {
	Post
	Likes uint32
}

// Like is a record of "user liked post at time".
type Like struct {
	ID        uint64
	PostID    uint64
	UserID    uint64
	CreatedAt time.Time
}

// User ...
type User struct {
	ID        uint64
	Username  string
	CreatedAt time.Time
	LastLogin *time.Time
}

// UserStats combines the last successful authentication and the last observed
// request of a user. Either field may be nil.
type UserStats struct {
	LastLogin    *time.Time
	LastActivity *time.Time
}

// DayStats is a likes count for a single calendar day.
type DayStats struct {
	Date time.Time
	Qty  uint32
}
