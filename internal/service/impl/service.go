// Package impl is implementation of service interface.
package impl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"github.com/Blogd-net/kudos/internal/entities"
	"github.com/Blogd-net/kudos/internal/service"
	"github.com/Blogd-net/kudos/internal/storage"
)

var log = logrus.WithField("layer", "service")

const dayFormat = "2006-01-02"

type srv struct {
	s      storage.Storage
	siteID uint32
}

func (s srv) CreatePost(ctx context.Context, owner uint64, title, content string) (*entities.Post, error) {
	p, err := s.s.CreatePost(ctx, owner, title, content)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, service.ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return p, nil
}

func (s srv) GetPost(ctx context.Context, id uint64) (*entities.CalculatedPost, error) {
	p, err := s.s.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, service.ErrPostNotFound
		}

		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return p, nil
}

func (s srv) ListPosts(ctx context.Context, p *storage.ListPostsParams) ([]*entities.CalculatedPost, error) {
	posts, err := s.s.ListPosts(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

func (s srv) DeletePost(ctx context.Context, id, deletedBy uint64) error {
	return s.s.InTx(ctx, func(tx storage.Storage) error {
		p, err := tx.GetPost(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return service.ErrPostNotFound
			}

			return fmt.Errorf("failed to get post: %w", err)
		}

		if p.Owner != deletedBy {
			return service.ErrNotPostOwner
		}

		if err := tx.DeletePost(ctx, id); err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}

		return nil
	})
}

// Like is the two-button variant: a duplicate like is the caller's error.
func (s srv) Like(ctx context.Context, postID, userID uint64) error {
	if err := s.s.CreateLike(ctx, postID, userID, time.Now()); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return service.ErrPostNotFound
		case errors.Is(err, storage.ErrAlreadyLiked):
			return service.ErrAlreadyLiked
		}

		return fmt.Errorf("failed to create like: %w", err)
	}

	return nil
}

func (s srv) Unlike(ctx context.Context, postID, userID uint64) error {
	if err := s.s.DeleteLike(ctx, postID, userID); err != nil {
		if errors.Is(err, storage.ErrNotLiked) {
			return service.ErrNotLiked
		}

		return fmt.Errorf("failed to delete like: %w", err)
	}

	return nil
}

// Toggle flips the like state of a (post, user) pair. The check-and-mutate
// sequence runs in a single tx with the matched like rows locked, the unique
// constraint resolves insert races.
func (s srv) Toggle(ctx context.Context, postID, userID uint64) (service.ToggleAction, error) {
	var action service.ToggleAction

	if err := s.s.InTx(ctx, func(tx storage.Storage) error {
		if _, err := tx.GetPost(ctx, postID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return service.ErrPostNotFound
			}

			return fmt.Errorf("failed to get post: %w", err)
		}

		likes, err := tx.GetLikes(ctx, postID, userID)
		if err != nil {
			return fmt.Errorf("failed to get likes: %w", err)
		}

		switch len(likes) {
		case 0:
			if err := tx.CreateLike(ctx, postID, userID, time.Now()); err != nil {
				if errors.Is(err, storage.ErrAlreadyLiked) {
					// lost race, the pair is liked by a concurrent toggle
					return service.ErrAlreadyLiked
				}

				return fmt.Errorf("failed to create like: %w", err)
			}
			action = service.Liked
		case 1:
			if err := tx.DeleteLike(ctx, postID, userID); err != nil {
				return fmt.Errorf("failed to delete like: %w", err)
			}
			action = service.Unliked
		default:
			log.WithField("post_id", postID).WithField("user_id", userID).
				Errorf("found %d likes for a single pair: %s", len(likes), spew.Sdump(likes))
			return service.ErrInvariantViolated
		}

		return nil
	}); err != nil {
		return "", err
	}

	return action, nil
}

// CountLikesByDay returns one entry for every calendar day in [from, to],
// zero-filled for days without likes.
func (s srv) CountLikesByDay(ctx context.Context, from, to time.Time) ([]entities.DayStats, error) {
	from, to = truncateToDay(from), truncateToDay(to)

	if to.Before(from) {
		return nil, service.ErrInvalidDateRange
	}

	counts, err := s.s.CountLikesByDay(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	out := make([]entities.DayStats, 0, to.Sub(from)/(24*time.Hour)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, entities.DayStats{
			Date: d,
			Qty:  counts[d.Format(dayFormat)],
		})
	}

	return out, nil
}

func (s srv) GetUserStats(ctx context.Context, userID uint64) (*entities.UserStats, error) {
	u, err := s.s.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, service.ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	out := entities.UserStats{
		LastLogin: u.LastLogin,
	}

	switch activity, err := s.s.GetLastActivity(ctx, userID, s.siteID); {
	case err == nil:
		out.LastActivity = activity
	case errors.Is(err, storage.ErrNotFound):
		// no activity observed yet, report absent
	default:
		return nil, fmt.Errorf("failed to get last activity: %w", err)
	}

	return &out, nil
}

func (s srv) TrackActivity(ctx context.Context, userID uint64, timestamp time.Time) error {
	if err := s.s.SetLastActivity(ctx, userID, s.siteID, timestamp); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return service.ErrUserNotFound
		}

		return fmt.Errorf("failed to set last activity: %w", err)
	}

	return nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// New creates new instance of service.
func New(s storage.Storage, siteID uint32) service.Service {
	return srv{
		s:      s,
		siteID: siteID,
	}
}
