// Package storage contains a storage interface.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Blogd-net/kudos/internal/entities"
)

//go:generate mockgen -destination=./mock/storage.go -package=mock -source=storage.go

// ErrNotFound ...
var ErrNotFound = errors.New("not found")

// ErrAlreadyLiked returned when a like for the same (post, user) pair already exists.
var ErrAlreadyLiked = errors.New("already liked")

// ErrNotLiked returned when there is no like to delete.
var ErrNotLiked = errors.New("not liked")

// Storage provides methods for interacting with database.
type Storage interface {
	InTx(ctx context.Context, f func(s Storage) error) error

	CreatePost(ctx context.Context, owner uint64, title, content string) (*entities.Post, error)
	GetPost(ctx context.Context, id uint64) (*entities.CalculatedPost, error)
	ListPosts(ctx context.Context, p *ListPostsParams) ([]*entities.CalculatedPost, error)
	DeletePost(ctx context.Context, id uint64) error

	CreateLike(ctx context.Context, postID, userID uint64, timestamp time.Time) error
	DeleteLike(ctx context.Context, postID, userID uint64) error
	GetLikes(ctx context.Context, postID, userID uint64) ([]*entities.Like, error)
	CountLikesByDay(ctx context.Context, from, to time.Time) (map[string]uint32, error)

	GetUser(ctx context.Context, id uint64) (*entities.User, error)
	GetLastActivity(ctx context.Context, userID uint64, siteID uint32) (*time.Time, error)
	SetLastActivity(ctx context.Context, userID uint64, siteID uint32, timestamp time.Time) error
}

// ListPostsParams ...
type ListPostsParams struct {
	Limit uint16
	After *uint64
}
