package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/google/uuid"
)

type sessionContextKey struct{}

// StorefrontSession makes sure every request belongs to a browsing session.
// The id lives in a cookie; a missing or malformed cookie starts a new one.
func StorefrontSession(cfg *config.SessionConfig, cookieMaxAge int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""

			if cookie, err := r.Cookie(cfg.CookieName); err == nil {
				if id, err := uuid.Parse(cookie.Value); err == nil {
					sessionID = id.String()
				}
			}

			if sessionID == "" {
				sessionID = uuid.NewString()

				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   cookieMaxAge,
					HttpOnly: true,
					Secure:   cfg.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})

				LoggerFromContext(r.Context()).Debug("Started browsing session", slog.String("storefront_session", sessionID))
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, sessionID)
			ctx = WithLogger(ctx, LoggerFromContext(ctx).With(slog.String("storefront_session", sessionID)))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionContextKey{}).(string)

	return id, ok && id != ""
}

// WithSessionID is used by tests that bypass the cookie middleware.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sessionID)
}
