package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const logCtxKey contextKey = "log_entry"

// RequestID assigns an id to every request and puts a request-scoped log entry
// into the context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", id)

		l := logrus.WithField("request_id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), logCtxKey, l)))
	})
}

// GetLogger returns request-scoped log entry from the context.
func GetLogger(ctx context.Context) *logrus.Entry {
	if l, ok := ctx.Value(logCtxKey).(*logrus.Entry); ok {
		return l
	}

	return logrus.NewEntry(logrus.StandardLogger())
}
