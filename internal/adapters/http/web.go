// Package web serves the leiding dashboard: server-rendered pages for the
// chapter's staff plus the small JSON API the roster script talks to.
package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/email"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/export"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http/middleware"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http/perf"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/objectstore"
	accountStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/account"
	auditStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/audit"
	eventStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/event"
	groupStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/group"
	leidingStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/leiding"
	postStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/post"
	settingStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/setting"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/roster"
)

// Stores holds all storage dependencies.
type Stores struct {
	Leiding  leidingStore.Store
	Groups   groupStore.Store
	Events   eventStore.Store
	Posts    postStore.Store
	Settings settingStore.Store
	Accounts accountStore.Store
}

// Options configures the HTTP surface.
type Options struct {
	Stores     Stores
	Objects    *objectstore.Store
	Sessions   middleware.SessionStore
	SessionTTL time.Duration
	Mailer     email.Sender // nil disables sign-up mail
	BaseURL    string       // public origin, used in mails and trusted for CSRF
	CSRFKey    []byte       // 32 bytes
	Secure     bool         // production: Secure cookies, TLS-only CSRF
	Recorder   *perf.Recorder
	Audit      auditStore.Store // nil disables the audit log
	// SlowRequest is the WARN threshold for request timing; 0 uses the default.
	SlowRequest time.Duration
	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit int
	Now       func() time.Time
	NewID     func() string
}

// Server carries the dependencies every handler needs.
type Server struct {
	Options
	validate  *validator.Validate
	pages     map[string]*template.Template
	exporters map[roster.Format]roster.Exporter
	calendar  export.Calendar
	started   time.Time
}

// NewServer validates opts and parses the page templates.
func NewServer(opts Options) (*Server, error) {
	if len(opts.CSRFKey) != 32 {
		return nil, errors.New("csrf key must be 32 bytes")
	}
	if opts.Stores.Leiding == nil || opts.Stores.Accounts == nil || opts.Sessions == nil || opts.Objects == nil {
		return nil, errors.New("stores, sessions and objects are required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = generateID
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = middleware.DefaultSessionTTL
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their form name
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return f.Name
	})

	s := &Server{
		Options:  opts,
		validate: validate,
		pages:    pages,
		exporters: map[roster.Format]roster.Exporter{
			roster.FormatXLSX: export.XLSX{},
			roster.FormatPDF:  export.PDF{Title: "Leiding KSA Petegem", Now: opts.Now},
		},
		calendar: export.Calendar{Name: "KSA Petegem", Now: opts.Now},
		started:  opts.Now(),
	}
	if s.Audit != nil {
		s.Sessions.Subscribe(s.recordSession)
	}
	return s, nil
}

// Handler returns the routed mux wrapped in the middleware chain.
// ctx bounds background work such as the rate limiter sweep.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	middleware.SecureCookies = s.Secure

	chain := []func(http.Handler) http.Handler{
		middleware.Auth(s.Sessions, s.Stores.Accounts),
		middleware.CSRF(s.CSRFKey, s.Secure, trustedOrigins(s.BaseURL)),
		middleware.SecurityHeaders,
	}
	if s.RateLimit > 0 {
		chain = append(chain, middleware.RateLimit(middleware.NewRateLimiter(ctx, s.RateLimit, time.Second)))
	}
	// outermost last: Timing sees every request, Recover guards everything
	chain = append(chain, middleware.Timing(s.Recorder, s.SlowRequest), middleware.Recover)
	return middleware.Chain(mux, chain...)
}

// NewMux wires HTTP handlers for the app.
func NewMux(ctx context.Context, opts Options) (http.Handler, error) {
	s, err := NewServer(opts)
	if err != nil {
		return nil, err
	}
	return s.Handler(ctx), nil
}

// CSRFKey decodes the configured hex key. Without one, production fails and
// development gets a random key that does not survive a restart.
func CSRFKey(keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, errors.New("csrf key must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	if production {
		return nil, errors.New("csrf key is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate csrf key: %w", err)
	}
	slog.Warn("config_event", "event", "random_csrf_key", "hint", "set KSA_CSRF_KEY to keep forms valid across restarts")
	return key, nil
}

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}
