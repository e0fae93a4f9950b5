package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http/middleware"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/application/orchestrators"
)

type loginForm struct {
	Email    string `form:"email" validate:"required,email,max=254"`
	Password string `form:"password" validate:"required"`
}

type signupForm struct {
	FirstName string `form:"first_name" validate:"required,max=100"`
	LastName  string `form:"last_name" validate:"max=100"`
	Email     string `form:"email" validate:"required,email,max=254"`
	Password  string `form:"password" validate:"required,min=8"`
	Confirm   string `form:"password_confirm" validate:"eqfield=Password"`
}

// handleLoginPage handles GET /login
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.FromContext(r.Context()).SignedIn() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", page{Title: "Aanmelden"})
}

// handleLogin handles POST /login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	form := loginForm{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	if err := s.validate.Struct(form); err != nil {
		s.render(w, r, http.StatusBadRequest, "login.html", page{Title: "Aanmelden", Error: s.message(err), Data: form.Email})
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    form.Email,
		Password: form.Password,
	}, orchestrators.LoginDeps{AccountStore: s.Stores.Accounts, Now: s.Now})
	if errors.Is(err, orchestrators.ErrInvalidCredentials) || errors.Is(err, orchestrators.ErrAccountLocked) {
		msg := "Onjuist e-mailadres of wachtwoord."
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			msg = "Te veel mislukte pogingen. Probeer het over een kwartier opnieuw."
		}
		s.render(w, r, http.StatusUnauthorized, "login.html", page{Title: "Aanmelden", Error: msg, Data: form.Email})
		return
	}
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	if err := s.startSession(w, r, middleware.Session{AccountID: result.AccountID, Email: result.Email, Name: result.Name}); err != nil {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleSignupPage handles GET /signup
func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "signup.html", page{Title: "Account aanmaken"})
}

// handleSignup handles POST /signup. New accounts have no permission until an
// administrator grants one; the user lands on the no-access page meanwhile.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	form := signupForm{
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Email:     strings.TrimSpace(r.FormValue("email")),
		Password:  r.FormValue("password"),
		Confirm:   r.FormValue("password_confirm"),
	}
	if err := s.validate.Struct(form); err != nil {
		s.render(w, r, http.StatusBadRequest, "signup.html", page{Title: "Account aanmaken", Error: s.message(err), Data: form})
		return
	}

	acct, err := orchestrators.ExecuteSignUp(r.Context(), orchestrators.SignUpInput{
		Email:     form.Email,
		Password:  form.Password,
		FirstName: form.FirstName,
		LastName:  form.LastName,
	}, orchestrators.SignUpDeps{
		AccountStore: s.Stores.Accounts,
		Mailer:       s.Mailer,
		BaseURL:      s.BaseURL,
		GenerateID:   s.NewID,
		Now:          s.Now,
	})
	if err != nil {
		if isBadRequest(err) {
			s.render(w, r, http.StatusBadRequest, "signup.html", page{Title: "Account aanmaken", Error: s.message(err), Data: form})
			return
		}
		s.fail(w, r, err, "")
		return
	}

	if err := s.startSession(w, r, middleware.Session{AccountID: acct.ID, Email: acct.Email, Name: acct.DisplayName()}); err != nil {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, sess middleware.Session) error {
	token, err := s.Sessions.Create(r.Context(), sess)
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(w, token, s.SessionTTL)
	return nil
}

// handleLogout handles POST /logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := s.Sessions.Delete(r.Context(), cookie.Value); err != nil {
			s.fail(w, r, err, "")
			return
		}
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// sessionView is the JSON shape of GET /api/session.
type sessionView struct {
	AccountID       string `json:"account_id"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	Permission      int    `json:"permission"`
	PermissionLabel string `json:"permission_label"`
}

// handleSession handles GET /api/session
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	ac := middleware.FromContext(r.Context())
	writeJSON(w, http.StatusOK, sessionView{
		AccountID:       ac.Session.AccountID,
		Email:           ac.Session.Email,
		Name:            ac.Session.Name,
		Permission:      int(ac.Permission),
		PermissionLabel: permissionLabel(ac.Permission),
	})
}

// handleNoAccess handles GET /no-access
func (s *Server) handleNoAccess(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusForbidden, "no_access.html", page{Title: "Geen toegang"})
}
