package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// ActivityTracker records the last observed request of a user.
type ActivityTracker interface {
	TrackActivity(ctx context.Context, userID uint64, timestamp time.Time) error
}

// TrackActivity updates the last-seen timestamp for every authenticated
// request. Tracking failures do not fail the request.
func TrackActivity(t ActivityTracker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s := r.Header.Get("X-User-ID"); s != "" {
				if id, err := strconv.ParseUint(s, 10, 64); err == nil {
					if err := t.TrackActivity(r.Context(), id, time.Now()); err != nil {
						GetLogger(r.Context()).WithError(err).Warn("failed to track activity")
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
