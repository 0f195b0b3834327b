// Package middleware contains http middleware for the server.
package middleware

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/Blogd-net/kudos/internal/middleware/memory"
)

// Cached serves the handler's response from an in-memory store for ttl,
// keyed by request URI. Only successful responses are cached.
func Cached(ttl time.Duration, handler http.HandlerFunc) http.HandlerFunc {
	store := memory.NewStorage()

	return func(w http.ResponseWriter, r *http.Request) {
		if content := store.Get(r.RequestURI); content != nil {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(content)
			return
		}

		rec := httptest.NewRecorder()
		handler(rec, r)

		for k, v := range rec.Header() {
			w.Header()[k] = v
		}
		w.WriteHeader(rec.Code)

		content := rec.Body.Bytes()
		if rec.Code == http.StatusOK {
			store.Set(r.RequestURI, content, ttl)
		}

		_, _ = w.Write(content)
	}
}
