package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/maruel/colldb/internal/auth"
	apierrors "github.com/maruel/colldb/internal/errors"
	"github.com/maruel/colldb/internal/models"
)

// AuthMiddleware validates bearer tokens and adds the resolved user to the
// request context. Any failure is a plain 401 with no further detail.
func AuthMiddleware(authenticator *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, apierrors.Unauthorized())
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeError(w, apierrors.Unauthorized())
				return
			}

			user, err := authenticator.Resolve(parts[1])
			if err != nil {
				writeError(w, apierrors.Unauthorized())
				return
			}

			ctx := context.WithValue(r.Context(), models.UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(statusCode int) {
	s.status = statusCode
	s.ResponseWriter.WriteHeader(statusCode)
}

// LogMiddleware logs each request with its status and duration.
func LogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.InfoContext(r.Context(), "http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"dur", time.Since(start).Round(time.Microsecond))
	})
}
