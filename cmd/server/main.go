package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	web "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/application/orchestrators"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/config"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// shutdownGrace bounds how long in-flight requests may finish on SIGTERM.
const shutdownGrace = 15 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "ksa-admin",
		Short:         "Leiding dashboard for KSA Petegem",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv(config.EnvPrefix+"_CONFIG"), "path to a YAML config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending schema migrations and exit",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(cmd.Context(), configPath)
			},
		},
		newSeedAdminCmd(&configPath),
	)
	return root
}

func newSeedAdminCmd(configPath *string) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the first administrator when no accounts exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeedAdmin(cmd.Context(), *configPath, email, password)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "administrator email (defaults to admin_email)")
	cmd.Flags().StringVar(&password, "password", "", "administrator password (defaults to admin_password)")
	return cmd
}

// setup loads config and installs logging. The returned func flushes the logger.
func setup(configPath string) (*config.Config, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.Install(logger), nil
}

func runServe(ctx context.Context, configPath string) error {
	cfg, flush, err := setup(configPath)
	if err != nil {
		return err
	}
	defer flush()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if cfg.AdminEmail != "" {
		if _, err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.SeedAdminInput{
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		}, app.signUpDeps(cfg)); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	csrfKey, err := web.CSRFKey(cfg.CSRFKey, cfg.IsProduction())
	if err != nil {
		return err
	}
	srv, err := web.NewServer(web.Options{
		Stores:      app.stores,
		Objects:     app.objects,
		Sessions:    app.sessions,
		SessionTTL:  cfg.SessionTTL,
		Mailer:      app.mailer,
		BaseURL:     cfg.PublicBaseURL,
		CSRFKey:     csrfKey,
		Secure:      cfg.IsProduction(),
		Recorder:    app.recorder,
		Audit:       app.audit,
		SlowRequest: cfg.SlowRequest,
		RateLimit:   cfg.RateLimit,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server_event", "event", "listening", "addr", cfg.Addr, "env", cfg.Env, "version", version)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_event", "event", "shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server_event", "event", "stopped")
	return nil
}

func runMigrate(ctx context.Context, configPath string) error {
	cfg, flush, err := setup(configPath)
	if err != nil {
		return err
	}
	defer flush()

	db, err := openDB(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("migrate_event", "event", "done", "driver", cfg.DB.Driver)
	return nil
}

func runSeedAdmin(ctx context.Context, configPath, email, password string) error {
	cfg, flush, err := setup(configPath)
	if err != nil {
		return err
	}
	defer flush()

	if email == "" {
		email = cfg.AdminEmail
	}
	if password == "" {
		password = cfg.AdminPassword
	}
	if email == "" || password == "" {
		return errors.New("seed-admin needs --email and --password (or admin_email and admin_password)")
	}

	app, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	created, err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.SeedAdminInput{Email: email, Password: password}, app.signUpDeps(cfg))
	if err != nil {
		return err
	}
	if !created {
		slog.Info("seed_event", "event", "admin_skipped", "reason", "accounts exist")
	}
	return nil
}
