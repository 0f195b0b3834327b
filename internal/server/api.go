package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Blogd-net/kudos/internal/entities"
	mm "github.com/Blogd-net/kudos/internal/middleware"
)

const maxLimit = 100
const defaultLimit = 20

// Error ...
type Error struct {
	Error string `json:"error"`
}

// Message is a human-readable outcome of a like operation.
type Message struct {
	Message string `json:"message"`
}

// Post ...
type Post struct {
	ID        uint64 `json:"id"`
	Owner     uint64 `json:"owner"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Likes     uint32 `json:"likes"`
	CreatedAt uint64 `json:"createdAt"`
}

// ListPostsResponse ...
type ListPostsResponse struct {
	Posts []*Post `json:"posts"`
}

// CreatePostRequest ...
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// LikeResponse ...
type LikeResponse struct {
	Post uint64 `json:"post"`
	User uint64 `json:"user"`
}

// DayStats ...
type DayStats struct {
	Qty uint32 `json:"qty"`
}

// UserStatsResponse ...
type UserStatsResponse struct {
	Login    *time.Time `json:"login"`
	Activity *time.Time `json:"activity"`
}

func writeOK(w http.ResponseWriter, status int, v interface{}) {
	data, _ := json.Marshal(v)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeOK(w, status, Error{Error: message})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeOK(w, status, Message{Message: message})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter, message string) {
	mm.GetLogger(ctx).Error(message)

	writeError(w, http.StatusInternalServerError, "internal error")
}

func toAPIPost(p *entities.CalculatedPost) *Post {
	if p == nil {
		return nil
	}

	return &Post{
		ID:        p.ID,
		Owner:     p.Owner,
		Title:     p.Title,
		Content:   p.Content,
		Likes:     p.Likes,
		CreatedAt: uint64(p.CreatedAt.Unix()),
	}
}
