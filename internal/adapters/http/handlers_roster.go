package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http/middleware"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/application/listutil"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/application/orchestrators"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/application/projections"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/audit"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/group"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/leiding"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/massedit"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/roster"
)

// filterCookie remembers the last roster view per browser.
const (
	filterCookie       = "roster_filter"
	filterCookieMaxAge = 365 * 24 * 60 * 60
)

// rosterQuery reads filter, search and inactive from the request. An explicit
// filter parameter wins over the remembered one; a remembered token that no
// longer parses falls back to the chronological view.
func rosterQuery(r *http.Request) (projections.GetRosterQuery, bool, error) {
	q := r.URL.Query()
	query := projections.GetRosterQuery{
		Search:   listutil.ParseSearch(q),
		Inactive: q.Get("inactive") == "1",
	}
	if token := q.Get("filter"); token != "" {
		f, err := roster.ParseFilter(token)
		if err != nil {
			return query, false, err
		}
		query.Filter = f
		return query, true, nil
	}
	if c, err := r.Cookie(filterCookie); err == nil {
		if f, err := roster.ParseFilter(c.Value); err == nil {
			query.Filter = f
		}
	}
	return query, false, nil
}

func rememberFilter(w http.ResponseWriter, f roster.Filter) {
	http.SetCookie(w, &http.Cookie{
		Name:     filterCookie,
		Value:    f.String(),
		Path:     "/",
		MaxAge:   filterCookieMaxAge,
		HttpOnly: true,
		Secure:   middleware.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) rosterDeps() projections.GetRosterDeps {
	return projections.GetRosterDeps{LeidingStore: s.Stores.Leiding, GroupStore: s.Stores.Groups}
}

// filterOption is one entry of the roster view menu.
type filterOption struct {
	Token    string
	Label    string
	Selected bool
}

func filterOptions(current roster.Filter, groups []group.Group) []filterOption {
	opts := []filterOption{
		{Token: roster.TokenChronological, Label: "Alle leiding (chronologisch)"},
		{Token: roster.TokenGrouped, Label: "Alle leiding per groep"},
		{Token: roster.TokenTeamLeads, Label: "Trekkers"},
		{Token: roster.TokenHeadStaff, Label: "Hoofdleiding"},
	}
	for _, g := range groups {
		opts = append(opts, filterOption{Token: roster.ByGroup(g.ID).String(), Label: g.Name})
	}
	cur := current.String()
	for i := range opts {
		opts[i].Selected = opts[i].Token == cur
	}
	return opts
}

type rosterPage struct {
	View     projections.GetRosterResult
	Filters  []filterOption
	Inactive bool
	CanEdit  bool
}

// handleRosterPage handles GET /leiding
func (s *Server) handleRosterPage(w http.ResponseWriter, r *http.Request) {
	query, explicit, err := rosterQuery(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	view, err := projections.QueryGetRoster(r.Context(), query, s.rosterDeps())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if explicit {
		rememberFilter(w, query.Filter)
	}
	s.render(w, r, http.StatusOK, "roster.html", page{
		Title: "Leiding",
		Nav:   "leiding",
		Data: rosterPage{
			View:     view,
			Filters:  filterOptions(view.Filter, view.Groups),
			Inactive: query.Inactive,
			CanEdit:  middleware.FromContext(r.Context()).Can(account.PermissionEdit),
		},
	})
}

// rowView is the JSON shape of one roster row.
type rowView struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	FullName    string `json:"full_name"`
	GroupID     *int64 `json:"group_id"`
	GroupName   string `json:"group_name"`
	GroupColor  string `json:"group_color"`
	IsTeamLead  bool   `json:"is_team_lead"`
	IsHeadStaff bool   `json:"is_head_staff"`
	BirthDate   string `json:"birth_date"`
	TenureStart string `json:"tenure_start"`
	TenureYear  string `json:"tenure_year"`
	PhotoURL    string `json:"photo_url"`
	Active      bool   `json:"active"`
}

type groupView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// rosterView is the JSON shape of GET /api/leiding and of a mass edit reply.
type rosterView struct {
	Filter string      `json:"filter"`
	Search string      `json:"search"`
	Total  int         `json:"total"`
	Rows   []rowView   `json:"rows"`
	Groups []groupView `json:"groups"`
}

func newRosterView(res projections.GetRosterResult) rosterView {
	v := rosterView{
		Filter: res.Filter.String(),
		Search: res.Search,
		Total:  res.Total,
		Rows:   make([]rowView, len(res.Rows)),
		Groups: make([]groupView, len(res.Groups)),
	}
	for i, row := range res.Rows {
		v.Rows[i] = rowView{
			ID:          row.ID,
			FirstName:   row.FirstName,
			LastName:    row.LastName,
			FullName:    row.FullName(),
			GroupID:     row.GroupID,
			GroupName:   row.GroupName,
			GroupColor:  row.GroupColor,
			IsTeamLead:  row.IsTeamLead,
			IsHeadStaff: row.IsHeadStaff,
			BirthDate:   leiding.FormatDate(row.BirthDate),
			TenureStart: leiding.FormatDate(row.TenureStart),
			TenureYear:  row.TenureYear(),
			PhotoURL:    row.PhotoURL,
			Active:      row.Active,
		}
	}
	for i, g := range res.Groups {
		v.Groups[i] = groupView{ID: g.ID, Name: g.Name, Color: g.EffectiveColor()}
	}
	return v
}

// handleRosterAPI handles GET /api/leiding
func (s *Server) handleRosterAPI(w http.ResponseWriter, r *http.Request) {
	query, explicit, err := rosterQuery(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	res, err := projections.QueryGetRoster(r.Context(), query, s.rosterDeps())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if explicit {
		rememberFilter(w, query.Filter)
	}
	writeJSON(w, http.StatusOK, newRosterView(res))
}

// viewRequest names the roster view a JSON action applies to.
type viewRequest struct {
	Filter   string `json:"filter"`
	Search   string `json:"q"`
	Inactive bool   `json:"inactive"`
}

func (v viewRequest) query() (projections.GetRosterQuery, error) {
	f, err := roster.ParseFilter(v.Filter)
	if err != nil {
		return projections.GetRosterQuery{}, err
	}
	return projections.GetRosterQuery{Filter: f, Search: listutil.ClampSearch(v.Search), Inactive: v.Inactive}, nil
}

type exportRequest struct {
	viewRequest
	Format string  `json:"format"`
	IDs    []int64 `json:"ids"`
}

// handleRosterExport handles POST /api/leiding/export. The file is built in
// memory so a failing exporter can still answer with a JSON error.
func (s *Server) handleRosterExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := strictDecode(r, &req); err != nil {
		s.fail(w, r, badInput("ongeldige aanvraag: %v", err), "")
		return
	}
	format, err := roster.ParseFormat(req.Format)
	if err != nil {
		s.fail(w, r, badInput("onbekend formaat %q", req.Format), "")
		return
	}
	query, err := req.query()
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	var buf bytes.Buffer
	err = projections.QueryExportRoster(r.Context(), &buf, projections.ExportRosterQuery{
		GetRosterQuery: query,
		Selected:       req.IDs,
		Format:         format,
	}, projections.ExportRosterDeps{GetRosterDeps: s.rosterDeps(), Exporters: s.exporters})
	if errors.Is(err, roster.ErrEmptySelection) {
		writeNotice(w, "Selecteer eerst minstens één leiding om te exporteren.")
		return
	}
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	s.record(r, audit.CategoryLeiding, audit.ActionExport, "leiding", joinIDs(req.IDs), req.Format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type massEditRequest struct {
	viewRequest
	IDs     []int64 `json:"ids"`
	Action  string  `json:"action"`
	GroupID int64   `json:"group_id"`
}

func (m massEditRequest) action() (massedit.Action, error) {
	switch m.Action {
	case "wipe_group":
		return massedit.WipeGroup(), nil
	case "reassign_group":
		return massedit.ReassignGroup(m.GroupID), nil
	case "disable":
		return massedit.Disable(), nil
	}
	return massedit.Action{}, massedit.ErrInvalidAction
}

type massEditReply struct {
	Updated int         `json:"updated"`
	Action  string      `json:"action"`
	Notice  string      `json:"notice"`
	Roster  *rosterView `json:"roster,omitempty"`
	// Stale asks the page to re-fetch /api/leiding itself.
	Stale bool `json:"stale,omitempty"`
}

var massEditNotices = map[massedit.ActionKind]string{
	massedit.ActionWipeGroup:     "Groep gewist voor %d leiding.",
	massedit.ActionReassignGroup: "%d leiding naar een andere groep verplaatst.",
	massedit.ActionDisable:       "%d leiding uitgeschakeld.",
}

// handleMassEdit handles POST /api/leiding/mass-edit. The browser already showed
// the confirmation dialog, so one request opens and confirms the batch, then
// answers with the reloaded roster. A failed batch answers 502 and nothing in
// the reply claims a change. When only the reload fails the batch still
// answers 200, marked stale.
func (s *Server) handleMassEdit(w http.ResponseWriter, r *http.Request) {
	var req massEditRequest
	if err := strictDecode(r, &req); err != nil {
		s.fail(w, r, badInput("ongeldige aanvraag: %v", err), "")
		return
	}
	action, err := req.action()
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	query, err := req.query()
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	var reloaded projections.GetRosterResult
	reload := func(ctx context.Context) error {
		res, err := projections.QueryGetRoster(ctx, query, s.rosterDeps())
		if err != nil {
			return err
		}
		reloaded = res
		return nil
	}

	res, err := orchestrators.ExecuteMassEdit(r.Context(), orchestrators.MassEditInput{
		IDs:    req.IDs,
		Action: action,
	}, orchestrators.MassEditDeps{Gateway: s.Stores.Leiding, Groups: s.Stores.Groups, Reload: reload})
	if errors.Is(err, massedit.ErrEmptySelection) {
		writeNotice(w, "Selecteer eerst minstens één leiding.")
		return
	}
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	s.record(r, audit.CategoryLeiding, audit.ActionMassEdit, "leiding", joinIDs(req.IDs),
		fmt.Sprintf("%s: %d bijgewerkt", res.Action, res.Updated))
	reply := massEditReply{
		Updated: res.Updated,
		Action:  res.Action,
		Notice:  fmt.Sprintf(massEditNotices[action.Kind], res.Updated),
		Stale:   !res.Reloaded,
	}
	if res.Reloaded {
		view := newRosterView(reloaded)
		reply.Roster = &view
	}
	writeJSON(w, http.StatusOK, reply)
}

// --- single leiding ---

type createLeidingForm struct {
	FirstName string `form:"first_name" validate:"required,max=100"`
	LastName  string `form:"last_name" validate:"max=100"`
}

// handleCreateLeiding handles POST /leiding
func (s *Server) handleCreateLeiding(w http.ResponseWriter, r *http.Request) {
	form := createLeidingForm{
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
	}
	if err := s.validate.Struct(form); err != nil {
		s.fail(w, r, err, "/leiding")
		return
	}
	groupID, err := formGroupID(r, "group_id")
	if err != nil {
		s.fail(w, r, err, "/leiding")
		return
	}

	id, err := orchestrators.ExecuteCreateLeiding(r.Context(), orchestrators.CreateLeidingInput{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		GroupID:   groupID,
	}, orchestrators.CreateLeidingDeps{LeidingStore: s.Stores.Leiding, Groups: s.Stores.Groups})
	if err != nil {
		s.fail(w, r, err, "/leiding")
		return
	}
	s.record(r, audit.CategoryLeiding, audit.ActionCreate, "leiding", strconv.FormatInt(id, 10), form.FirstName+" "+form.LastName)
	redirect(w, r, "/leiding/"+strconv.FormatInt(id, 10), "notice", "Leiding toegevoegd. Vul het profiel verder aan.")
}

// handleLeidingPage handles GET /leiding/{id}
func (s *Server) handleLeidingPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	profile, err := projections.QueryGetLeidingProfile(r.Context(), id, projections.GetLeidingProfileDeps{
		LeidingStore: s.Stores.Leiding,
		GroupStore:   s.Stores.Groups,
	})
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "leiding_edit.html", page{
		Title: profile.Leiding.FullName(),
		Nav:   "leiding",
		Data:  profile,
	})
}

type updateLeidingForm struct {
	FirstName  string `form:"first_name" validate:"required,max=100"`
	LastName   string `form:"last_name" validate:"max=100"`
	Work       string `form:"work" validate:"max=200"`
	Studies    string `form:"studies" validate:"max=200"`
	Experience string `form:"experience" validate:"max=2000"`
	About      string `form:"about" validate:"max=2000"`
}

// handleUpdateLeiding handles POST /leiding/{id}
func (s *Server) handleUpdateLeiding(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	back := "/leiding/" + strconv.FormatInt(id, 10)

	form := updateLeidingForm{
		FirstName:  strings.TrimSpace(r.FormValue("first_name")),
		LastName:   strings.TrimSpace(r.FormValue("last_name")),
		Work:       strings.TrimSpace(r.FormValue("work")),
		Studies:    strings.TrimSpace(r.FormValue("studies")),
		Experience: strings.TrimSpace(r.FormValue("experience")),
		About:      strings.TrimSpace(r.FormValue("about")),
	}
	if err := s.validate.Struct(form); err != nil {
		s.fail(w, r, err, back)
		return
	}
	groupID, err := formGroupID(r, "group_id")
	if err != nil {
		s.fail(w, r, err, back)
		return
	}
	birth, err := formDate(r, "birth_date")
	if err != nil {
		s.fail(w, r, err, back)
		return
	}
	tenure, err := formDate(r, "tenure_start")
	if err != nil {
		s.fail(w, r, err, back)
		return
	}

	_, err = orchestrators.ExecuteUpdateLeiding(r.Context(), orchestrators.UpdateLeidingInput{
		ID:          id,
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		BirthDate:   birth,
		Work:        form.Work,
		Studies:     form.Studies,
		IsTeamLead:  formBool(r, "is_team_lead"),
		IsHeadStaff: formBool(r, "is_head_staff"),
		GroupID:     groupID,
		TenureStart: tenure,
		Experience:  form.Experience,
		About:       form.About,
	}, orchestrators.UpdateLeidingDeps{LeidingStore: s.Stores.Leiding, Groups: s.Stores.Groups})
	if err != nil {
		s.fail(w, r, err, back)
		return
	}
	s.record(r, audit.CategoryLeiding, audit.ActionUpdate, "leiding", strconv.FormatInt(id, 10), "")
	redirect(w, r, back, "notice", "Wijzigingen bewaard.")
}

// handleUploadPhoto handles POST /leiding/{id}/photo (multipart, field "photo").
func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	back := "/leiding/" + strconv.FormatInt(id, 10)

	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, _, err := r.FormFile("photo")
	if err != nil {
		s.fail(w, r, badInput("kies een foto van maximaal 10 MB"), back)
		return
	}
	defer file.Close()

	if _, err := orchestrators.ExecuteUploadLeidingPhoto(r.Context(), id, file, orchestrators.UploadLeidingPhotoDeps{
		LeidingStore: s.Stores.Leiding,
		Objects:      s.Objects,
		GenerateID:   s.NewID,
	}); err != nil {
		s.fail(w, r, err, back)
		return
	}
	redirect(w, r, back, "notice", "Foto bijgewerkt.")
}

// handleEnableLeiding handles POST /leiding/{id}/enable from the inactive list.
func (s *Server) handleEnableLeiding(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if err := orchestrators.ExecuteEnableLeiding(r.Context(), id, orchestrators.SetLeidingActiveDeps{LeidingStore: s.Stores.Leiding}); err != nil {
		s.fail(w, r, err, "/leiding?inactive=1")
		return
	}
	s.record(r, audit.CategoryLeiding, audit.ActionEnable, "leiding", strconv.FormatInt(id, 10), "")
	redirect(w, r, "/leiding?inactive=1", "notice", "Leiding opnieuw actief.")
}

// handleDisableLeiding handles POST /api/leiding/{id}/disable
func (s *Server) handleDisableLeiding(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if err := orchestrators.ExecuteDisableLeiding(r.Context(), id, orchestrators.SetLeidingActiveDeps{LeidingStore: s.Stores.Leiding}); err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.record(r, audit.CategoryLeiding, audit.ActionDisable, "leiding", strconv.FormatInt(id, 10), "")
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "active": false})
}

// handleDeleteLeiding handles DELETE /api/leiding/{id}
func (s *Server) handleDeleteLeiding(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if err := orchestrators.ExecuteDeleteLeiding(r.Context(), id, orchestrators.DeleteLeidingDeps{
		LeidingStore: s.Stores.Leiding,
		Objects:      s.Objects,
	}); err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.record(r, audit.CategoryLeiding, audit.ActionDelete, "leiding", strconv.FormatInt(id, 10), "")
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

// --- dashboard ---

// handleDashboard handles GET /
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ac := middleware.FromContext(r.Context())
	res, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{
		Permission: ac.Permission,
		Now:        s.Now().UTC().Truncate(24 * time.Hour),
	}, projections.GetDashboardDeps{
		LeidingStore: s.Stores.Leiding,
		GroupStore:   s.Stores.Groups,
		EventStore:   s.Stores.Events,
		PostStore:    s.Stores.Posts,
		AccountStore: s.Stores.Accounts,
	})
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "dashboard.html", page{Title: "Overzicht", Nav: "dashboard", Data: res})
}
