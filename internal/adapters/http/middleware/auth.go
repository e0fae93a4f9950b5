package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const authContextKey contextKey = "auth"

// SessionCookieName is the cookie holding the session token.
const SessionCookieName = "ksa_session"

// SecureCookies marks cookies Secure; set in production.
var SecureCookies bool

// AuthContext is what a handler knows about the caller: the session identity and
// the permission resolved for it on this request.
type AuthContext struct {
	Token      string
	Session    Session
	Permission account.Permission
}

// SignedIn reports whether the request carries a valid session.
func (a AuthContext) SignedIn() bool {
	return a.Session.AccountID != ""
}

// Can reports whether the caller holds at least min.
func (a AuthContext) Can(min account.Permission) bool {
	return a.SignedIn() && a.Permission.Allows(min)
}

// Auth returns middleware that loads the session from the cookie and resolves
// its permission. It does NOT block anonymous requests; use RequireSignedIn or
// RequirePermission for that.
func Auth(sessions SessionStore, lookup account.PermissionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			sess, ok, err := sessions.Get(ctx, cookie.Value)
			if err != nil {
				slog.Error("session_event", "event", "load_failed", "error", err)
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			perm, err := account.ResolvePermission(ctx, lookup, sess.AccountID)
			if err != nil {
				// identity stays valid; the caller just gets no access this request
				slog.Error("session_event", "event", "permission_failed", "account_id", sess.AccountID, "error", err)
			}
			ac := AuthContext{Token: cookie.Value, Session: sess, Permission: perm}
			next.ServeHTTP(w, r.WithContext(ContextWithAuth(ctx, ac)))
		})
	}
}

// FromContext returns the caller's AuthContext; the zero value when anonymous.
func FromContext(ctx context.Context) AuthContext {
	ac, _ := ctx.Value(authContextKey).(AuthContext)
	return ac
}

// ContextWithAuth returns a context carrying ac.
func ContextWithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

// RequireSignedIn blocks anonymous requests.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !FromContext(r.Context()).SignedIn() {
			deny(w, r, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission blocks callers below min. Anonymous callers are sent to
// the login page, signed-in callers without enough permission get 403.
func RequirePermission(min account.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac := FromContext(r.Context())
			switch {
			case !ac.SignedIn():
				deny(w, r, http.StatusUnauthorized)
			case !ac.Permission.Allows(min):
				slog.Warn("auth_event", "event", "forbidden", "account_id", ac.Session.AccountID,
					"permission", ac.Permission.String(), "required", min.String(), "path", r.URL.Path)
				deny(w, r, http.StatusForbidden)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// deny answers API calls with JSON and page loads with a redirect.
func deny(w http.ResponseWriter, r *http.Request, status int) {
	if wantsPage(r) {
		target := "/login"
		if status == http.StatusForbidden {
			target = "/no-access"
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(status)})
}

func wantsPage(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	return r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html")
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
