package middleware

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/skylarktravel/skylark/internal/model"
	"github.com/skylarktravel/skylark/internal/session"
)

// CookieName is the browser session cookie.
const CookieName = "skylark_session"

type contextKey string

const userKey contextKey = "skylark.user"

// SessionID returns the request's session cookie value, setting a fresh one
// when the browser arrives without it.
func SessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	sid := session.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
	return sid
}

// UserFrom returns the authenticated user placed on the context by
// RequireAuth, or nil.
func UserFrom(ctx context.Context) *model.User {
	u, _ := ctx.Value(userKey).(*model.User)
	return u
}

// WithUser returns a context carrying the user. Exposed for handler tests.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// RequireAuth gates protected pages on the session store. A session with no
// cached user gets one silent remember-token restore attempt before being
// bounced to the login page. HTMX-aware: HTMX requests get an HX-Redirect
// header instead of a 303.
func RequireAuth(sessions *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := SessionID(w, r)

			user, err := sessions.GetUser(sid)
			if err == nil && user == nil {
				user, _ = sessions.TryRestoreSession(r.Context(), sid)
			}
			if user == nil {
				redirectToLogin(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := "/auth/login?redirect=" + url.QueryEscape(r.URL.Path)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
