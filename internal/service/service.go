// Package service contains interface for service business-logic.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/Blogd-net/kudos/internal/entities"
	"github.com/Blogd-net/kudos/internal/storage"
)

//go:generate mockgen -destination=./mock/service.go -package=mock -source=service.go

// ErrPostNotFound returned when a referenced post does not exist.
var ErrPostNotFound = errors.New("post not found")

// ErrUserNotFound returned when a referenced user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrAlreadyLiked returned when the caller tries to like a post twice.
var ErrAlreadyLiked = errors.New("already liked")

// ErrNotLiked returned when the caller tries to unlike a post they did not like.
var ErrNotLiked = errors.New("not liked")

// ErrNotPostOwner returned when someone but the owner tries to delete a post.
var ErrNotPostOwner = errors.New("not a post owner")

// ErrInvalidDateRange returned when date_from is after date_to.
var ErrInvalidDateRange = errors.New("invalid date range")

// ErrInvariantViolated returned when more than one like exists for a (post, user)
// pair. Must never happen while the unique constraint holds.
var ErrInvariantViolated = errors.New("likes uniqueness violated")

// ToggleAction ...
type ToggleAction string

const (
	// Liked means toggle created a like.
	Liked ToggleAction = "liked"
	// Unliked means toggle removed a like.
	Unliked ToggleAction = "unliked"
)

// Service ...
type Service interface {
	CreatePost(ctx context.Context, owner uint64, title, content string) (*entities.Post, error)
	GetPost(ctx context.Context, id uint64) (*entities.CalculatedPost, error)
	ListPosts(ctx context.Context, p *storage.ListPostsParams) ([]*entities.CalculatedPost, error)
	DeletePost(ctx context.Context, id, deletedBy uint64) error

	Like(ctx context.Context, postID, userID uint64) error
	Unlike(ctx context.Context, postID, userID uint64) error
	Toggle(ctx context.Context, postID, userID uint64) (ToggleAction, error)

	CountLikesByDay(ctx context.Context, from, to time.Time) ([]entities.DayStats, error)

	GetUserStats(ctx context.Context, userID uint64) (*entities.UserStats, error)
	TrackActivity(ctx context.Context, userID uint64, timestamp time.Time) error
}
