package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/Blogd-net/kudos/internal/service"
	"github.com/Blogd-net/kudos/internal/storage"
)

var errInvalidRequest = errors.New("invalid request")

const dayFormat = "2006-01-02"

const (
	msgLiked        = "Liked successfully!"
	msgAlreadyLiked = "You had already liked this post"
	msgNotLiked     = "You did not like this post."
	msgPostNotFound = "Such post does not exist."
)

func (s server) createPost(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /posts Posts CreatePost
	//
	// Create a new post owned by the caller.
	//
	// ---
	// responses:
	//   '201':
	//     description: created post
	//   '400':
	//     description: bad request
	//   '401':
	//     description: caller is not authenticated
	//   '500':
	//     description: internal server error

	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "failed to decode request")
		return
	}

	if req.Title == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "title and content are required")
		return
	}

	p, err := s.s.CreatePost(r.Context(), userID, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeInternalError(r.Context(), w, "failed to create post: "+err.Error())
		return
	}

	writeOK(w, http.StatusCreated, Post{
		ID:        p.ID,
		Owner:     p.Owner,
		Title:     p.Title,
		Content:   p.Content,
		CreatedAt: uint64(p.CreatedAt.Unix()),
	})
}

func (s server) listPosts(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /posts Posts ListPosts
	//
	// Return posts with their likes counts, newest first.
	//
	// ---
	// parameters:
	// - name: limit
	//   description: limits count of returned posts
	//   in: query
	//   required: false
	//   default: 20
	//   maximum: 100
	// - name: after
	//   description: sets not-including bound for list by post id
	//   in: query
	//   required: false
	// responses:
	//   '200':
	//     description: posts
	//   '400':
	//     description: bad request
	//   '500':
	//     description: internal server error

	params, err := extractListParamsFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	posts, err := s.s.ListPosts(r.Context(), params)
	if err != nil {
		writeInternalError(r.Context(), w, "failed to list posts: "+err.Error())
		return
	}

	out := ListPostsResponse{
		Posts: make([]*Post, len(posts)),
	}
	for i, v := range posts {
		out.Posts[i] = toAPIPost(v)
	}

	writeOK(w, http.StatusOK, out)
}

func (s server) getPost(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /posts/{postID} Posts GetPost
	//
	// Get post by id.
	//
	// ---
	// responses:
	//   '200':
	//     description: post
	//   '404':
	//     description: post not found
	//   '500':
	//     description: internal server error

	postID, ok := pathID(w, r, "postID")
	if !ok {
		return
	}

	p, err := s.s.GetPost(r.Context(), postID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeInternalError(r.Context(), w, "failed to get post: "+err.Error())
		return
	}

	writeOK(w, http.StatusOK, toAPIPost(p))
}

func (s server) deletePost(w http.ResponseWriter, r *http.Request) {
	// swagger:operation DELETE /posts/{postID} Posts DeletePost
	//
	// Delete own post. Its likes are removed with it.
	//
	// ---
	// responses:
	//   '204':
	//     description: post deleted
	//   '403':
	//     description: caller does not own the post
	//   '404':
	//     description: post not found
	//   '500':
	//     description: internal server error

	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	postID, ok := pathID(w, r, "postID")
	if !ok {
		return
	}

	if err := s.s.DeletePost(r.Context(), postID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			writeError(w, http.StatusNotFound, "post not found")
		case errors.Is(err, service.ErrNotPostOwner):
			writeError(w, http.StatusForbidden, "forbidden")
		default:
			writeInternalError(r.Context(), w, "failed to delete post: "+err.Error())
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s server) likePost(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /like-post/{postID} Likes LikePost
	//
	// Like a post. Fails if the caller had already liked it.
	//
	// ---
	// responses:
	//   '201':
	//     description: like created
	//   '404':
	//     description: post not found
	//   '406':
	//     description: post is already liked by the caller
	//   '500':
	//     description: internal server error

	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	postID, ok := pathID(w, r, "postID")
	if !ok {
		return
	}

	if err := s.s.Like(r.Context(), postID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			writeMessage(w, http.StatusNotFound, msgPostNotFound)
		case errors.Is(err, service.ErrAlreadyLiked):
			writeMessage(w, http.StatusNotAcceptable, msgAlreadyLiked)
		default:
			writeInternalError(r.Context(), w, "failed to like post: "+err.Error())
		}
		return
	}

	writeOK(w, http.StatusCreated, LikeResponse{
		Post: postID,
		User: userID,
	})
}

func (s server) unlikePost(w http.ResponseWriter, r *http.Request) {
	// swagger:operation DELETE /unlike-post/{postID} Likes UnlikePost
	//
	// Unlike a post. Fails if the caller did not like it.
	//
	// ---
	// responses:
	//   '204':
	//     description: like removed
	//   '406':
	//     description: post is not liked by the caller
	//   '500':
	//     description: internal server error

	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	postID, ok := pathID(w, r, "postID")
	if !ok {
		return
	}

	if err := s.s.Unlike(r.Context(), postID, userID); err != nil {
		if errors.Is(err, service.ErrNotLiked) {
			writeMessage(w, http.StatusNotAcceptable, msgNotLiked)
			return
		}
		writeInternalError(r.Context(), w, "failed to unlike post: "+err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s server) toggleLike(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /like-unlike-post/{postID} Likes ToggleLike
	//
	// Like or unlike a post depending on its current state.
	//
	// ---
	// responses:
	//   '201':
	//     description: like created
	//   '204':
	//     description: like removed
	//   '404':
	//     description: post not found
	//   '406':
	//     description: toggle lost a race with a concurrent like
	//   '500':
	//     description: internal server error

	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	postID, ok := pathID(w, r, "postID")
	if !ok {
		return
	}

	action, err := s.s.Toggle(r.Context(), postID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			writeMessage(w, http.StatusNotFound, msgPostNotFound)
		case errors.Is(err, service.ErrAlreadyLiked):
			writeMessage(w, http.StatusNotAcceptable, msgAlreadyLiked)
		default:
			writeInternalError(r.Context(), w, "failed to toggle like: "+err.Error())
		}
		return
	}

	if action == service.Liked {
		writeMessage(w, http.StatusCreated, msgLiked)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s server) getAnalytics(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /analytics Analytics GetAnalytics
	//
	// Return likes count for every day in [date_from, date_to].
	//
	// ---
	// parameters:
	// - name: date_from
	//   in: query
	//   required: true
	//   example: 2024-01-01
	// - name: date_to
	//   in: query
	//   required: true
	//   example: 2024-01-03
	// responses:
	//   '200':
	//     description: likes count per day
	//   '400':
	//     description: bad request
	//   '500':
	//     description: internal server error

	from, err := parseDate(r.URL.Query().Get("date_from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date_from")
		return
	}

	to, err := parseDate(r.URL.Query().Get("date_to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date_to")
		return
	}

	stats, err := s.s.CountLikesByDay(r.Context(), from, to)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			writeError(w, http.StatusBadRequest, "date_from must not be after date_to")
			return
		}
		writeInternalError(r.Context(), w, "failed to count likes: "+err.Error())
		return
	}

	out := make(map[string]DayStats, len(stats))
	for _, v := range stats {
		out[v.Date.Format(dayFormat)] = DayStats{Qty: v.Qty}
	}

	writeOK(w, http.StatusOK, out)
}

func (s server) getUserStats(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /user-analytic/{userID} Analytics GetUserStats
	//
	// Return last login and last activity time of a user.
	//
	// ---
	// responses:
	//   '200':
	//     description: user stats
	//   '404':
	//     description: user not found
	//   '500':
	//     description: internal server error

	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	stats, err := s.s.GetUserStats(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeInternalError(r.Context(), w, "failed to get user stats: "+err.Error())
		return
	}

	writeOK(w, http.StatusOK, UserStatsResponse{
		Login:    stats.LastLogin,
		Activity: stats.LastActivity,
	})
}

// callerID extracts an already-authenticated caller identity set by the
// gateway. Writes 401 if it is absent.
func callerID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return 0, false
	}

	return id, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}

	return id, true
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dayFormat, s, time.UTC)
}

func extractListParamsFromQuery(q url.Values) (*storage.ListPostsParams, error) {
	out := storage.ListPostsParams{
		Limit: defaultLimit,
	}

	if s := q.Get("limit"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil || v == 0 {
			return nil, fmt.Errorf("%w: failed to parse limit", errInvalidRequest)
		}

		if v > maxLimit {
			return nil, fmt.Errorf("%w: limit is too big", errInvalidRequest)
		}

		out.Limit = uint16(v)
	}

	if s := q.Get("after"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse after", errInvalidRequest)
		}

		out.After = &v
	}

	return &out, nil
}
