package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http/middleware"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/objectstore"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/application/orchestrators"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/group"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/leiding"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/massedit"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/roster"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/setting"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// maxUpload bounds multipart bodies (photos, covers, PDFs).
const maxUpload = 10 << 20

var pageNames = []string{
	"login.html",
	"signup.html",
	"no_access.html",
	"not_found.html",
	"error.html",
	"dashboard.html",
	"roster.html",
	"leiding_edit.html",
	"groups.html",
	"events.html",
	"event_edit.html",
	"posts.html",
	"post_edit.html",
	"settings.html",
	"accounts.html",
	"perf.html",
	"audit.html",
}

var funcMap = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("02/01/2006")
	},
	"isoDate": leiding.FormatDate,
	"groupColor": func(color string) string {
		if hex, ok := group.ColorHex[color]; ok {
			return hex
		}
		return group.ColorHex[group.DefaultColor]
	},
	"permissionLabel": permissionLabel,
	"permissions": func() []account.Permission {
		return []account.Permission{account.PermissionNone, account.PermissionRead, account.PermissionEdit, account.PermissionAdmin}
	},
	"colors": func() []string { return group.ValidColors },
	"trusted": func(s string) template.HTML { return template.HTML(s) },
	"ms": func(d time.Duration) string {
		return strconv.FormatFloat(float64(d.Microseconds())/1000, 'f', 1, 64) + " ms"
	},
	"yesNo": func(b bool) string {
		if b {
			return "ja"
		}
		return "nee"
	},
	"join": strings.Join,
	"timestamp": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format("02/01/2006 15:04:05")
	},
	"add":  func(a, b int) int { return a + b },
	"sub":  func(a, b int) int { return a - b },
	"hasID": func(ids []int64, id int64) bool {
		for _, x := range ids {
			if x == id {
				return true
			}
		}
		return false
	},
	"deref": func(p *int64) int64 {
		if p == nil {
			return 0
		}
		return *p
	},
}

func permissionLabel(p account.Permission) string {
	switch p {
	case account.PermissionRead:
		return "Lezen"
	case account.PermissionEdit:
		return "Bewerken"
	case account.PermissionAdmin:
		return "Beheerder"
	}
	return "Geen toegang"
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = tpl
	}
	return pages, nil
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

// page is the data every template receives.
type page struct {
	Title     string
	Nav       string
	Auth      middleware.AuthContext
	CSRFField template.HTML
	CSRFToken string // for the roster script's X-CSRF-Token header
	Notice    string
	Error     string
	Data      any
}

// render executes a page template. Flash messages travel in the notice and
// error query parameters of a redirect.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	tpl, ok := s.pages[name]
	if !ok {
		internalError(w, fmt.Errorf("unknown template %q", name))
		return
	}
	p.Auth = middleware.FromContext(r.Context())
	p.CSRFField = csrf.TemplateField(r)
	p.CSRFToken = csrf.Token(r)
	q := r.URL.Query()
	if p.Notice == "" {
		p.Notice = q.Get("notice")
	}
	if p.Error == "" {
		p.Error = q.Get("error")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tpl.Execute(w, p); err != nil {
		slog.Error("render_failed", "template", name, "error", err)
	}
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode_failed", "error", err)
	}
}

// writeNotice answers 200 with a message the page shows instead of an error.
func writeNotice(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"notice": msg})
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// redirect sends the browser to target after a form post, carrying an optional flash.
func redirect(w http.ResponseWriter, r *http.Request, target, key, msg string) {
	if msg != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + key + "=" + url.QueryEscape(msg)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// badRequestErrors are caller mistakes answered with 400 and their message.
var badRequestErrors = []error{
	orchestrators.ErrUnknownGroup,
	orchestrators.ErrNotAPDF,
	orchestrators.ErrEmailAlreadyExists,
	orchestrators.ErrOwnPermission,
	account.ErrInvalidPermission,
	account.ErrEmptyPassword,
	account.ErrPasswordTooShort,
	leiding.ErrAlreadyActive,
	leiding.ErrAlreadyInactive,
	group.ErrAlreadyInactive,
	setting.ErrWrongType,
	massedit.ErrInvalidAction,
	massedit.ErrInvalidTarget,
	roster.ErrUnknownFilter,
	objectstore.ErrInvalidKey,
	objectstore.ErrNotAnImage,
	massedit.ErrInvalidState,
}

// inputError is a request the handler could not decode.
type inputError string

func (e inputError) Error() string { return string(e) }

func badInput(format string, args ...any) error {
	return inputError(fmt.Sprintf(format, args...))
}

func isBadRequest(err error) bool {
	var ie inputError
	if orchestrators.IsValidation(err) || errors.As(err, &ie) {
		return true
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// fail maps err onto a response. back is where HTML form posts return to
// with the message as flash; empty renders an error page instead.
//
//	validation      400 (JSON) or redirect with error
//	not found       404
//	anything else   502: the data store failed, the user can retry
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	switch {
	case isBadRequest(err):
		msg := s.message(err)
		if isAPI(r) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		} else if back != "" {
			redirect(w, r, back, "error", msg)
		} else {
			s.render(w, r, http.StatusBadRequest, "error.html", page{Title: "Ongeldige invoer", Error: msg})
		}
	case errors.Is(err, storage.ErrNotFound):
		if isAPI(r) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		} else {
			s.render(w, r, http.StatusNotFound, "not_found.html", page{Title: "Niet gevonden"})
		}
	case errors.Is(err, context.Canceled):
		slog.Info("request_canceled", "path", r.URL.Path)
	default:
		slog.Error("gateway_error", "method", r.Method, "path", r.URL.Path, "error", err)
		msg := "De gegevens konden niet worden opgehaald of bewaard. Probeer het opnieuw."
		if isAPI(r) {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": msg})
		} else {
			s.render(w, r, http.StatusBadGateway, "error.html", page{Title: "Er ging iets mis", Error: msg})
		}
	}
}

// message turns validator errors into "field: rule" text; other errors keep their own message.
func (s *Server) message(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is verplicht")
		case "max":
			parts = append(parts, fe.Field()+" is te lang (max "+fe.Param()+")")
		case "min":
			parts = append(parts, fe.Field()+" is te kort (min "+fe.Param()+")")
		case "email":
			parts = append(parts, fe.Field()+" is geen geldig e-mailadres")
		case "oneof":
			parts = append(parts, fe.Field()+" moet een van "+fe.Param()+" zijn")
		default:
			parts = append(parts, fe.Field()+" is ongeldig")
		}
	}
	return strings.Join(parts, "; ")
}

// --- form helpers ---

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badInput("ongeldig id %q", r.PathValue("id"))
	}
	return id, nil
}

// formGroupID reads an optional group id; empty means "no group".
func formGroupID(r *http.Request, key string) (*int64, error) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil, badInput("ongeldige groep")
	}
	return &id, nil
}

func formDate(r *http.Request, key string) (time.Time, error) {
	t, err := leiding.ParseDate(strings.TrimSpace(r.FormValue(key)))
	if err != nil {
		return time.Time{}, badInput("%s moet een datum (JJJJ-MM-DD) zijn", key)
	}
	return t, nil
}

func formBool(r *http.Request, key string) bool {
	switch r.FormValue(key) {
	case "on", "true", "1":
		return true
	}
	return false
}

func formIDs(values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return nil, badInput("ongeldig id %q", v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
