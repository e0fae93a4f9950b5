package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
)

type mockPermissions map[string]account.Permission

func (m mockPermissions) PermissionFor(_ context.Context, id string) (account.Permission, error) {
	if id == "broken" {
		return account.PermissionNone, errors.New("connection refused")
	}
	p, ok := m[id]
	if !ok {
		return account.PermissionNone, account.ErrAccountNotFound
	}
	return p, nil
}

// authed runs h behind Auth with a session cookie for accountID ("" sends no cookie).
func authed(t *testing.T, h http.Handler, accountID string, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	store := NewMemorySessionStore(0)
	perms := mockPermissions{"reader": account.PermissionRead, "editor": account.PermissionEdit, "admin": account.PermissionAdmin, "pending": account.PermissionNone}
	if accountID != "" {
		token, err := store.Create(context.Background(), Session{AccountID: accountID})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}
	rr := httptest.NewRecorder()
	Auth(store, perms)(h).ServeHTTP(rr, req)
	return rr
}

func TestAuth_ResolvesPermissionPerRequest(t *testing.T) {
	var got AuthContext
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { got = FromContext(r.Context()) })

	authed(t, h, "editor", httptest.NewRequest("GET", "/", nil))
	if !got.SignedIn() || got.Permission != account.PermissionEdit {
		t.Fatalf("editor: %+v", got)
	}
	if !got.Can(account.PermissionRead) || got.Can(account.PermissionAdmin) {
		t.Fatal("editor permissions wrong")
	}

	authed(t, h, "ghost", httptest.NewRequest("GET", "/", nil))
	if !got.SignedIn() || got.Permission != account.PermissionNone {
		t.Fatalf("session without profile should resolve to none: %+v", got)
	}

	authed(t, h, "broken", httptest.NewRequest("GET", "/", nil))
	if !got.SignedIn() || got.Permission != account.PermissionNone {
		t.Fatalf("lookup failure should resolve to none: %+v", got)
	}

	got = AuthContext{Session: Session{AccountID: "stale"}}
	authed(t, h, "", httptest.NewRequest("GET", "/", nil))
	if got.SignedIn() {
		t.Fatal("anonymous request must not be signed in")
	}
}

func TestAuth_UnknownTokenIsAnonymous(t *testing.T) {
	var got AuthContext
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { got = FromContext(r.Context()) })
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "forged"})
	authed(t, h, "", req)
	if got.SignedIn() {
		t.Fatal("forged token must not sign in")
	}
}

func TestRequirePermission(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	gate := RequirePermission(account.PermissionEdit)(ok)

	tests := []struct {
		name    string
		account string
		page    bool
		status  int
		target  string
	}{
		{"editor passes", "editor", false, http.StatusNoContent, ""},
		{"admin passes", "admin", false, http.StatusNoContent, ""},
		{"reader api forbidden", "reader", false, http.StatusForbidden, ""},
		{"reader page redirected", "reader", true, http.StatusSeeOther, "/no-access"},
		{"pending page redirected", "pending", true, http.StatusSeeOther, "/no-access"},
		{"anonymous api", "", false, http.StatusUnauthorized, ""},
		{"anonymous page", "", true, http.StatusSeeOther, "/login"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := "/api/leiding"
			if tc.page {
				path = "/leiding"
			}
			req := httptest.NewRequest("GET", path, nil)
			if tc.page {
				req.Header.Set("Accept", "text/html")
			}
			rr := authed(t, gate, tc.account, req)
			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d", rr.Code, tc.status)
			}
			if tc.target != "" && rr.Header().Get("Location") != tc.target {
				t.Fatalf("Location = %q, want %q", rr.Header().Get("Location"), tc.target)
			}
		})
	}
}

func TestRequireSignedIn(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	if rr := authed(t, RequireSignedIn(ok), "pending", httptest.NewRequest("GET", "/api/session", nil)); rr.Code != http.StatusNoContent {
		t.Fatalf("pending account: status = %d", rr.Code)
	}
	if rr := authed(t, RequireSignedIn(ok), "", httptest.NewRequest("GET", "/api/session", nil)); rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status = %d", rr.Code)
	}
}

func TestSessionCookies(t *testing.T) {
	rr := httptest.NewRecorder()
	SetSessionCookie(rr, "tok", 3600e9)
	c := rr.Result().Cookies()
	if len(c) != 1 || c[0].Value != "tok" || c[0].MaxAge != 3600 || !c[0].HttpOnly {
		t.Fatalf("cookie = %+v", c)
	}

	rr = httptest.NewRecorder()
	ClearSessionCookie(rr)
	c = rr.Result().Cookies()
	if len(c) != 1 || c[0].MaxAge >= 0 {
		t.Fatalf("clear cookie = %+v", c)
	}
}
