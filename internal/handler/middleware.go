package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/progresar/progresar-core/internal/domain"
	"github.com/progresar/progresar-core/pkg/response"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionMiddleware materializes the caller's session from request headers.
// Token verification happens at the gateway; by the time a request reaches
// this service the identity headers are trusted.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawUserID := r.Header.Get("X-User-ID")
		if rawUserID == "" {
			response.Unauthorized(w, "missing X-User-ID header")
			return
		}

		userID, err := uuid.Parse(rawUserID)
		if err != nil {
			response.Unauthorized(w, "invalid X-User-ID header")
			return
		}

		session := &domain.Session{
			UserID:  userID,
			IsAdmin: r.Header.Get("X-Admin") == "true",
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the session placed by SessionMiddleware, or nil.
func SessionFromContext(ctx context.Context) *domain.Session {
	session, _ := ctx.Value(sessionKey).(*domain.Session)
	return session
}

// RequireAdmin guards admin-only handlers.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if session == nil || !session.IsAdmin {
			response.Forbidden(w, "admin access required")
			return
		}
		next(w, r)
	}
}
