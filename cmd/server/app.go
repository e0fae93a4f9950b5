package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/email"
	web "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http/middleware"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http/perf"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/objectstore"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage"
	accountStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/account"
	auditStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/audit"
	eventStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/event"
	groupStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/group"
	leidingStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/leiding"
	postStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/post"
	settingStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/setting"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/application/orchestrators"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/config"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/setting"
)

// sessionSweepInterval paces the purge of expired in-memory sessions.
const sessionSweepInterval = 10 * time.Minute

// app holds the long-lived dependencies built from config.
type app struct {
	db       *storage.TimedDB
	stores   web.Stores
	audit    auditStore.Store
	objects  *objectstore.Store
	sessions middleware.SessionStore
	mailer   email.Sender
	recorder *perf.Recorder
	closers  []func() error
}

// openDB connects, wraps the pool with timing and applies migrations.
func openDB(ctx context.Context, cfg *config.Config, rec *perf.Recorder) (*storage.TimedDB, error) {
	dialect := storage.Dialect(cfg.DB.Driver)
	raw, err := storage.Open(ctx, dialect, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	db := storage.NewTimedDB(raw, dialect, rec)
	db.SetSlowThreshold(cfg.SlowQuery)
	if err := storage.MigrateDB(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	rec := perf.NewRecorder(perf.DefaultCapacity)
	db, err := openDB(ctx, cfg, rec)
	if err != nil {
		return nil, err
	}
	a := &app{db: db, recorder: rec, closers: []func() error{db.Close}}

	a.stores = web.Stores{
		Leiding:  leidingStore.NewSQLStore(db),
		Groups:   groupStore.NewSQLStore(db),
		Events:   eventStore.NewSQLStore(db),
		Posts:    postStore.NewSQLStore(db),
		Settings: settingStore.NewSQLStore(db),
		Accounts: accountStore.NewSQLStore(db),
	}
	a.audit = auditStore.NewSQLStore(db)
	if err := a.stores.Settings.EnsureDefaults(ctx, setting.DefaultSettings()); err != nil {
		a.Close()
		return nil, fmt.Errorf("default settings: %w", err)
	}

	if a.objects, err = objectstore.NewOnDisk(cfg.StorageRoot, cfg.PublicBaseURL); err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Mail.ResendKey != "" {
		a.mailer = email.NewResendSender(cfg.Mail.ResendKey, cfg.Mail.From)
	} else {
		slog.Warn("config_event", "event", "noop_mailer", "hint", "set KSA_MAIL_RESEND_KEY to deliver account mail")
		a.mailer = email.NewNoopSender()
	}

	if cfg.RedisAddr != "" {
		rs, err := middleware.DialRedisSessionStore(ctx, cfg.RedisAddr, cfg.SessionTTL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.sessions = rs
		a.closers = append(a.closers, rs.Close)
	} else {
		ms := middleware.NewMemorySessionStore(cfg.SessionTTL)
		ms.StartSweep(ctx, sessionSweepInterval)
		a.sessions = ms
	}
	return a, nil
}

func (a *app) signUpDeps(cfg *config.Config) orchestrators.SignUpDeps {
	return orchestrators.SignUpDeps{
		AccountStore: a.stores.Accounts,
		Mailer:       a.mailer,
		BaseURL:      cfg.PublicBaseURL,
		GenerateID:   func() string { return uuid.New().String() },
		Now:          time.Now,
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Error("close_failed", "error", err)
		}
	}
}
