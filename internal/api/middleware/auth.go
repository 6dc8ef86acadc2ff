package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/tabletag-go/internal/api/apierr"
	"github.com/mcoot/tabletag-go/internal/services/authz"
	"github.com/mcoot/tabletag-go/internal/services/identity"
)

// SessionCookieName is the cookie carrying the session token
const SessionCookieName = "token"

type contextKey string

const sessionContextKey contextKey = "session"

// RequireTier creates middleware enforcing the given access tier. The
// resolved session is added to the request context; failures are written
// as a uniform 403 so they never leak whether the token was known.
func RequireTier(guard *authz.Guard, tier authz.Tier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := guard.Check(r.Context(), ExtractToken(r), tier)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			if session != nil {
				ctx := context.WithValue(r.Context(), sessionContextKey, session)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ExtractToken extracts the session token from the request. The
// Authorization header wins over the cookie.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetSession returns the resolved session from the request context, or nil
// for anonymous callers on public routes
func GetSession(ctx context.Context) *identity.Session {
	session, _ := ctx.Value(sessionContextKey).(*identity.Session)
	return session
}
