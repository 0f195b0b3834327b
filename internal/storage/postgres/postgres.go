// Package postgres is implementation of storage interface.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Blogd-net/kudos/internal/entities"
	"github.com/Blogd-net/kudos/internal/storage"
)

var log = logrus.WithField("layer", "storage").WithField("package", "postgres")
var errBeginCalledWithinTx = errors.New("can not run InTx in tx")

const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
)

type pg struct {
	ext sqlx.ExtContext
}

type postDTO struct {
	ID        uint64    `db:"id"`
	Owner     uint64    `db:"owner"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

type calculatedPostDTO struct {
	postDTO
	Likes uint32 `db:"likes"`
}

type likeDTO struct {
	ID        uint64    `db:"id"`
	PostID    uint64    `db:"post_id"`
	UserID    uint64    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

type userDTO struct {
	ID        uint64       `db:"id"`
	Username  string       `db:"username"`
	CreatedAt time.Time    `db:"created_at"`
	LastLogin sql.NullTime `db:"last_login"`
}

func (s pg) InTx(ctx context.Context, f func(s storage.Storage) error) error {
	db, ok := s.ext.(*sqlx.DB)
	if !ok {
		return errBeginCalledWithinTx
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to create tx: %w", err)
	}

	if err := f(pg{ext: tx}); err != nil {
		if err := tx.Rollback(); err != nil {
			log.WithError(err).Error("failed to rollback tx")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}

	return nil
}

func (s pg) CreatePost(ctx context.Context, owner uint64, title, content string) (*entities.Post, error) {
	var p postDTO

	if err := sqlx.GetContext(ctx, s.ext, &p, `
			INSERT INTO post(owner, title, content)
			VALUES($1, $2, $3)
			RETURNING id, owner, title, content, created_at
		`,
		owner, title, content,
	); err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == foreignKeyViolation {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to exec: %w", err)
	}

	return toPost(p), nil
}

func (s pg) GetPost(ctx context.Context, id uint64) (*entities.CalculatedPost, error) {
	var p calculatedPostDTO

	if err := sqlx.GetContext(ctx, s.ext, &p, `
			SELECT p.id, p.owner, p.title, p.content, p.created_at, count(l.id) AS likes
			FROM post p
			LEFT JOIN "like" l ON l.post_id = p.id
			WHERE p.id = $1
			GROUP BY p.id
		`,
		id,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return &entities.CalculatedPost{
		Post:  *toPost(p.postDTO),
		Likes: p.Likes,
	}, nil
}

func (s pg) ListPosts(ctx context.Context, params *storage.ListPostsParams) ([]*entities.CalculatedPost, error) {
	var pp []*calculatedPostDTO

	if err := sqlx.SelectContext(ctx, s.ext, &pp, `
			SELECT p.id, p.owner, p.title, p.content, p.created_at, count(l.id) AS likes
			FROM post p
			LEFT JOIN "like" l ON l.post_id = p.id
			WHERE $1::BIGINT IS NULL OR p.id < $1
			GROUP BY p.id
			ORDER BY p.id DESC
			LIMIT $2
		`,
		params.After, params.Limit,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.CalculatedPost, len(pp))
	for i, v := range pp {
		out[i] = &entities.CalculatedPost{
			Post:  *toPost(v.postDTO),
			Likes: v.Likes,
		}
	}

	return out, nil
}

func (s pg) DeletePost(ctx context.Context, id uint64) error {
	res, err := s.ext.ExecContext(ctx, `DELETE FROM post WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s pg) CreateLike(ctx context.Context, postID, userID uint64, timestamp time.Time) error {
	if _, err := s.ext.ExecContext(ctx, `
			INSERT INTO "like"(post_id, user_id, created_at) VALUES($1, $2, $3)
		`,
		postID, userID, timestamp.UTC(),
	); err != nil {
		if err, ok := err.(*pq.Error); ok {
			switch err.Code {
			case foreignKeyViolation:
				return storage.ErrNotFound
			case uniqueViolation:
				return storage.ErrAlreadyLiked
			}
		}

		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) DeleteLike(ctx context.Context, postID, userID uint64) error {
	res, err := s.ext.ExecContext(ctx,
		`DELETE FROM "like" WHERE post_id = $1 AND user_id = $2`,
		postID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrNotLiked
	}

	return nil
}

// GetLikes locks returned rows until the end of the current tx.
func (s pg) GetLikes(ctx context.Context, postID, userID uint64) ([]*entities.Like, error) {
	var ll []*likeDTO

	if err := sqlx.SelectContext(ctx, s.ext, &ll, `
			SELECT id, post_id, user_id, created_at FROM "like"
			WHERE post_id = $1 AND user_id = $2
			FOR UPDATE
		`,
		postID, userID,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Like, len(ll))
	for i, v := range ll {
		out[i] = &entities.Like{
			ID:        v.ID,
			PostID:    v.PostID,
			UserID:    v.UserID,
			CreatedAt: v.CreatedAt,
		}
	}

	return out, nil
}

func (s pg) CountLikesByDay(ctx context.Context, from, to time.Time) (map[string]uint32, error) {
	var dd []*struct {
		Day string `db:"day"`
		Qty uint32 `db:"qty"`
	}

	if err := sqlx.SelectContext(ctx, s.ext, &dd, `
			SELECT to_char(created_at, 'YYYY-MM-DD') AS day, count(*) AS qty
			FROM "like"
			WHERE created_at >= $1 AND created_at < $2
			GROUP BY day
		`,
		from.UTC(), to.UTC().AddDate(0, 0, 1),
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make(map[string]uint32, len(dd))
	for _, v := range dd {
		out[v.Day] = v.Qty
	}

	return out, nil
}

func (s pg) GetUser(ctx context.Context, id uint64) (*entities.User, error) {
	var u userDTO

	if err := sqlx.GetContext(ctx, s.ext, &u, `
			SELECT id, username, created_at, last_login FROM "user" WHERE id = $1
		`,
		id,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := entities.User{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}

	if u.LastLogin.Valid {
		t := u.LastLogin.Time
		out.LastLogin = &t
	}

	return &out, nil
}

func (s pg) GetLastActivity(ctx context.Context, userID uint64, siteID uint32) (*time.Time, error) {
	var t time.Time

	if err := sqlx.GetContext(ctx, s.ext, &t, `
			SELECT last_seen FROM user_activity WHERE user_id = $1 AND site_id = $2
		`,
		userID, siteID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return &t, nil
}

func (s pg) SetLastActivity(ctx context.Context, userID uint64, siteID uint32, timestamp time.Time) error {
	if _, err := s.ext.ExecContext(ctx, `
			INSERT INTO user_activity(user_id, site_id, last_seen)
			VALUES($1, $2, $3)
			ON CONFLICT(user_id, site_id) DO UPDATE SET
			last_seen=excluded.last_seen
		`,
		userID, siteID, timestamp.UTC(),
	); err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == foreignKeyViolation {
			return storage.ErrNotFound
		}

		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

// New creates new instance of pg.
func New(db *sql.DB) storage.Storage {
	return pg{
		ext: sqlx.NewDb(db, "postgres"),
	}
}

func toPost(p postDTO) *entities.Post {
	return &entities.Post{
		ID:        p.ID,
		Owner:     p.Owner,
		Title:     p.Title,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
	}
}
