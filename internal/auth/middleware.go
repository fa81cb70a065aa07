package auth

import (
	"context"
	"log/slog"
	"net/http"

	"admissions-service/internal/httputil"
	"admissions-service/internal/session"
)

type contextKey string

// sessionKey is the context key for the resolved session
const sessionKey contextKey = "session"

// Middleware resolves the request's session cookie against the session store
// and, when the token maps to a live session, attaches it to the request
// context. It never rejects on its own; guards like RequireAdmin decide.
func Middleware(store session.Store, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := store.Get(r.Context(), token)
			if err != nil {
				if err != session.ErrNotFound {
					logger.ErrorContext(r.Context(), "session lookup failed", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the session attached by Middleware, if any.
func FromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*session.Session)
	return sess, ok
}

// RequireAdmin gates admin-only routes. A missing session, an expired or
// destroyed one, and a non-admin role all get the identical 403 - the guard
// does not leak which check failed, and the guarded handler never runs.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := FromContext(r.Context())
			if !ok || !sess.IsAdmin() {
				logger.WarnContext(r.Context(), "access denied", "path", r.URL.Path)
				httputil.RespondWithError(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
