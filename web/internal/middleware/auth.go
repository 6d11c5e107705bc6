package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/devilmonastery/novel/web/internal/session"
)

type userKey struct{}

// UserFromContext returns the claims RequireAuth attached to the request
func UserFromContext(ctx context.Context) (*session.Claims, bool) {
	claims, ok := ctx.Value(userKey{}).(*session.Claims)
	return claims, ok
}

// AuthMiddleware handles authentication checks for requests
type AuthMiddleware struct {
	sessionManager *session.Manager
	log            *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessionManager *session.Manager, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		sessionManager: sessionManager,
		log:            logger.With(slog.String("component", "auth_middleware")),
	}
}

// RequireAuth ensures the session holds an unexpired token. Anonymous
// visitors are sent to the login page with a return path.
// The backend still has the final say: a rejected token surfaces as a 401
// from the API and the handler clears the session then.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.sessionManager.CurrentUser(r)
		if err != nil {
			m.log.Debug("no usable token in session, redirecting to login",
				slog.String("path", r.URL.Path),
				slog.String("reason", err.Error()))
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), userKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
