// Package server Kudos
//
// The Kudos is a blogging backend which provides posts, likes and likes analytics.
//
//     Schemes: https
//     BasePath: /v1
//     Version: 1.0.0
//
//     Produces:
//     - application/json
//     Consumes:
//     - application/json
//
// swagger:meta
package server

import (
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"

	mm "github.com/Blogd-net/kudos/internal/middleware"
	"github.com/Blogd-net/kudos/internal/service"
)

const maxBodySize = 64 * 1024

const analyticsCacheTTL = time.Minute

type server struct {
	s service.Service
}

// SetupRouter setups handlers to chi router.
func SetupRouter(s service.Service, r chi.Router, timeout time.Duration) {
	r.Use(
		mm.RequestID,
		mm.Logger,
		middleware.StripSlashes,
		cors.AllowAll().Handler,
		middleware.Recoverer,
		middleware.Timeout(timeout),
		mm.BodyLimiter(maxBodySize),
		mm.TrackActivity(s),
	)

	srv := server{
		s: s,
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/posts", srv.createPost)
		r.Get("/posts", srv.listPosts)
		r.Get("/posts/{postID}", srv.getPost)
		r.Delete("/posts/{postID}", srv.deletePost)

		r.Post("/like-post/{postID}", srv.likePost)
		r.Delete("/unlike-post/{postID}", srv.unlikePost)
		r.Post("/like-unlike-post/{postID}", srv.toggleLike)

		r.Get("/analytics", mm.Cached(analyticsCacheTTL, srv.getAnalytics))
		r.Get("/user-analytic/{userID}", srv.getUserStats)
	})
}
