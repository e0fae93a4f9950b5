package web

import (
	"net/http"
	"net/url"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http/middleware"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/objectstore"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
)

// registerRoutes maps every URL. Access levels:
//
//	public   login, sign-up, static files, stored objects, calendar feed
//	signed   session info and the no-access page
//	read     dashboard, roster, profiles, groups, events, posts, exports
//	edit     every staff, group, event and post mutation
//	admin    settings, permissions, performance, audit log
func (s *Server) registerRoutes(mux *http.ServeMux) {
	read := middleware.RequirePermission(account.PermissionRead)
	edit := middleware.RequirePermission(account.PermissionEdit)
	admin := middleware.RequirePermission(account.PermissionAdmin)
	h := func(f http.HandlerFunc) http.Handler { return f }

	// public
	mux.Handle("GET /static/", staticHandler())
	mux.Handle("GET "+objectstore.URLPrefix, s.Objects.Handler())
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /signup", s.handleSignupPage)
	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /api/events.ics", s.handleEventsFeed)

	// signed in, any permission
	mux.Handle("GET /api/session", middleware.RequireSignedIn(h(s.handleSession)))
	mux.Handle("GET /no-access", middleware.RequireSignedIn(h(s.handleNoAccess)))

	// read
	mux.Handle("GET /{$}", read(h(s.handleDashboard)))
	mux.Handle("GET /leiding", read(h(s.handleRosterPage)))
	mux.Handle("GET /api/leiding", read(h(s.handleRosterAPI)))
	mux.Handle("POST /api/leiding/export", read(h(s.handleRosterExport)))
	mux.Handle("GET /leiding/{id}", read(h(s.handleLeidingPage)))
	mux.Handle("GET /groups", read(h(s.handleGroupsPage)))
	mux.Handle("GET /events", read(h(s.handleEventsPage)))
	mux.Handle("GET /events/{id}", read(h(s.handleEventPage)))
	mux.Handle("GET /posts", read(h(s.handlePostsPage)))
	mux.Handle("GET /posts/{id}", read(h(s.handlePostPage)))

	// edit
	mux.Handle("POST /leiding", edit(h(s.handleCreateLeiding)))
	mux.Handle("POST /leiding/{id}", edit(h(s.handleUpdateLeiding)))
	mux.Handle("POST /leiding/{id}/photo", edit(h(s.handleUploadPhoto)))
	mux.Handle("POST /leiding/{id}/enable", edit(h(s.handleEnableLeiding)))
	mux.Handle("POST /api/leiding/{id}/disable", edit(h(s.handleDisableLeiding)))
	mux.Handle("DELETE /api/leiding/{id}", edit(h(s.handleDeleteLeiding)))
	mux.Handle("POST /api/leiding/mass-edit", edit(h(s.handleMassEdit)))
	mux.Handle("POST /groups", edit(h(s.handleCreateGroup)))
	mux.Handle("POST /groups/{id}", edit(h(s.handleUpdateGroup)))
	mux.Handle("POST /groups/{id}/deactivate", edit(h(s.handleDeactivateGroup)))
	mux.Handle("POST /groups/{id}/activate", edit(h(s.handleActivateGroup)))
	mux.Handle("POST /events", edit(h(s.handleCreateEvent)))
	mux.Handle("POST /events/{id}", edit(h(s.handleUpdateEvent)))
	mux.Handle("POST /events/{id}/delete", edit(h(s.handleDeleteEvent)))
	mux.Handle("POST /posts", edit(h(s.handleCreatePost)))
	mux.Handle("POST /posts/{id}", edit(h(s.handleUpdatePost)))
	mux.Handle("POST /posts/{id}/cover", edit(h(s.handleUploadCover)))
	mux.Handle("POST /posts/{id}/delete", edit(h(s.handleDeletePost)))

	// admin
	mux.Handle("GET /settings", admin(h(s.handleSettingsPage)))
	mux.Handle("POST /settings/{key}/toggle", admin(h(s.handleToggleSetting)))
	mux.Handle("POST /settings/{key}/file", admin(h(s.handleUploadSettingFile)))
	mux.Handle("GET /accounts", admin(h(s.handleAccountsPage)))
	mux.Handle("POST /accounts/{id}/permission", admin(h(s.handleSetPermission)))
	mux.Handle("GET /admin/perf", admin(h(s.handlePerfPage)))
	mux.Handle("GET /admin/audit", admin(h(s.handleAuditPage)))

	mux.HandleFunc("/", s.handleNotFound)
}

// trustedOrigins returns the host of the public base URL for CSRF origin checks.
func trustedOrigins(baseURL string) []string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	s.render(w, r, http.StatusNotFound, "not_found.html", page{Title: "Niet gevonden"})
}
