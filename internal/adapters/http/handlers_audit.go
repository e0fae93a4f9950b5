package web

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http/middleware"
	auditStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/audit"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/audit"
)

// auditTimeout bounds audit writes made outside a request context.
const auditTimeout = 5 * time.Second

// record appends an audit event for the signed-in user. Failures are logged
// only: the change it describes already happened.
func (s *Server) record(r *http.Request, category audit.Category, action audit.Action, resourceType, resourceID, desc string) {
	if s.Audit == nil {
		return
	}
	sess := middleware.FromContext(r.Context()).Session
	e := audit.NewEvent(s.NewID(), s.Now(), category, action).
		WithActor(sess.AccountID, sess.Email).
		WithResource(resourceType, resourceID).
		WithDescription(desc).
		WithIP(middleware.ClientIP(r))
	if err := s.Audit.Save(context.WithoutCancel(r.Context()), e); err != nil {
		slog.Error("audit_write_failed", "action", string(action), "error", err)
	}
}

// recordSession is the SessionStore subscriber that logs sign-ins and sign-outs.
func (s *Server) recordSession(ev middleware.SessionEvent) {
	action := audit.ActionLogin
	switch ev.Kind {
	case middleware.SessionSignedOut:
		action = audit.ActionLogout
	case middleware.SessionExpired:
		action = audit.ActionSessionEnd
	}
	e := audit.NewEvent(s.NewID(), s.Now(), audit.CategoryAccount, action).
		WithActor(ev.Session.AccountID, ev.Session.Email).
		WithResource("account", ev.Session.AccountID)

	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()
	if err := s.Audit.Save(ctx, e); err != nil {
		slog.Error("audit_write_failed", "action", string(action), "error", err)
	}
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// auditLimit is how many events the audit page lists.
const auditLimit = 200

type auditPage struct {
	Events     []audit.Event
	Categories []audit.Category
	Category   audit.Category
	Enabled    bool
}

// handleAuditPage handles GET /admin/audit. ?category= narrows the list.
func (s *Server) handleAuditPage(w http.ResponseWriter, r *http.Request) {
	data := auditPage{Categories: audit.Categories, Enabled: s.Audit != nil}
	for _, c := range audit.Categories {
		if string(c) == r.URL.Query().Get("category") {
			data.Category = c
		}
	}
	if s.Audit != nil {
		events, err := s.Audit.List(r.Context(), auditStore.Filter{Category: data.Category}, auditLimit)
		if err != nil {
			s.fail(w, r, err, "")
			return
		}
		data.Events = events
	}
	s.render(w, r, http.StatusOK, "audit.html", page{Title: "Logboek", Nav: "audit", Data: data})
}
