package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http/middleware"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http/perf"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/application/listutil"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/application/orchestrators"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/application/projections"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/audit"
)

func (s *Server) settingDeps() orchestrators.SettingDeps {
	return orchestrators.SettingDeps{SettingStore: s.Stores.Settings, Objects: s.Objects, GenerateID: s.NewID}
}

// handleSettingsPage handles GET /settings
func (s *Server) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetSettings(r.Context(), s.Stores.Settings)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "settings.html", page{Title: "Instellingen", Nav: "settings", Data: res})
}

// handleToggleSetting handles POST /settings/{key}/toggle
func (s *Server) handleToggleSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	st, err := orchestrators.ExecuteToggleSetting(r.Context(), key, s.settingDeps())
	if err != nil {
		s.fail(w, r, err, "/settings")
		return
	}
	s.record(r, audit.CategorySettings, audit.ActionToggle, "setting", key, st.Value)
	state := "uit"
	if st.Value == "true" {
		state = "aan"
	}
	redirect(w, r, "/settings", "notice", st.Description+": "+state+".")
}

// handleUploadSettingFile handles POST /settings/{key}/file (multipart, field "file").
func (s *Server) handleUploadSettingFile(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, _, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, badInput("kies een PDF van maximaal 10 MB"), "/settings")
		return
	}
	defer file.Close()

	st, err := orchestrators.ExecuteUploadSettingPDF(r.Context(), key, file, s.settingDeps())
	if err != nil {
		s.fail(w, r, err, "/settings")
		return
	}
	s.record(r, audit.CategorySettings, audit.ActionUpload, "setting", key, st.Value)
	redirect(w, r, "/settings", "notice", st.Description+" geüpload.")
}

type accountsPage struct {
	View           projections.GetAccountsResult
	PerPageOptions []int
	Self           string
}

// handleAccountsPage handles GET /accounts
func (s *Server) handleAccountsPage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetAccounts(r.Context(), listutil.ParsePageParams(r.URL.Query()), s.Stores.Accounts)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "accounts.html", page{
		Title: "Accounts",
		Nav:   "accounts",
		Data: accountsPage{
			View:           res,
			PerPageOptions: listutil.PerPageOptions,
			Self:           middleware.FromContext(r.Context()).Session.AccountID,
		},
	})
}

// handleSetPermission handles POST /accounts/{id}/permission
func (s *Server) handleSetPermission(w http.ResponseWriter, r *http.Request) {
	p, err := account.ParsePermission(r.FormValue("permission"))
	if err != nil {
		s.fail(w, r, err, "/accounts")
		return
	}
	err = orchestrators.ExecuteSetPermission(r.Context(), orchestrators.SetPermissionInput{
		ActorID:    middleware.FromContext(r.Context()).Session.AccountID,
		AccountID:  r.PathValue("id"),
		Permission: p,
	}, orchestrators.SetPermissionDeps{AccountStore: s.Stores.Accounts})
	if err != nil {
		s.fail(w, r, err, "/accounts")
		return
	}
	s.record(r, audit.CategoryAccount, audit.ActionPermission, "account", r.PathValue("id"), permissionLabel(p))
	redirect(w, r, "/accounts", "notice", "Toegang gewijzigd naar "+permissionLabel(p)+".")
}

// perfTop is how many routes and queries the performance page lists.
const perfTop = 10

type perfPage struct {
	Report  perf.Report
	Window  time.Duration
	Started time.Time
	Enabled bool
}

// handlePerfPage handles GET /admin/perf. ?minutes=N sets the window (default 60).
func (s *Server) handlePerfPage(w http.ResponseWriter, r *http.Request) {
	minutes := 60
	if v, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && v > 0 && v <= 24*60 {
		minutes = v
	}
	window := time.Duration(minutes) * time.Minute
	data := perfPage{Window: window, Started: s.started, Enabled: s.Recorder != nil}
	if s.Recorder != nil {
		data.Report = s.Recorder.Report(time.Now().Add(-window), perfTop)
	}
	s.render(w, r, http.StatusOK, "perf.html", page{Title: "Prestaties", Nav: "perf", Data: data})
}
