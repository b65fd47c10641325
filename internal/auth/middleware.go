// internal/auth/middleware.go

package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/utils"
	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// Middleware guards routes that need a logged-in user or admin
type Middleware struct {
	sessions *Sessions
}

func NewMiddleware(sessions *Sessions) *Middleware {
	return &Middleware{sessions: sessions}
}

// RequireUser rejects requests without a user session
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return m.require(next, "Unauthorized. Please log in.", func(s *Session) bool { return s.UserID > 0 })
}

// RequireAdmin rejects requests without an admin session
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.require(next, "Unauthorized: Admin access required", func(s *Session) bool { return s.AdminID > 0 })
}

func (m *Middleware) require(next http.Handler, denied string, ok func(*Session) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.sessions.Load(r)
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			logger.Error(r.Context(), "session lookup failed", zap.Error(err))
			utils.RespondWithError(w, http.StatusInternalServerError, "Server error")
			return
		}
		if sess == nil || !ok(sess) {
			utils.RespondWithError(w, http.StatusUnauthorized, denied)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// WithSession attaches a session to ctx
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext returns the session placed by RequireUser or RequireAdmin
func SessionFromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*Session)
	return sess, ok && sess != nil
}

// GetUserIDFromContext extracts the logged-in user's id
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	sess, ok := SessionFromContext(ctx)
	if !ok || sess.UserID == 0 {
		return 0, false
	}
	return sess.UserID, true
}
