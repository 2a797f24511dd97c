package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vaughan-dsouza/storekeeper/internal/auth"
	"github.com/vaughan-dsouza/storekeeper/internal/config"
	"github.com/vaughan-dsouza/storekeeper/internal/db"
	"github.com/vaughan-dsouza/storekeeper/internal/dbx"
	"github.com/vaughan-dsouza/storekeeper/internal/handlers"
	"github.com/vaughan-dsouza/storekeeper/internal/logging"
	"github.com/vaughan-dsouza/storekeeper/internal/middleware"
	"github.com/vaughan-dsouza/storekeeper/internal/repositories"
	"github.com/vaughan-dsouza/storekeeper/internal/repositories/memory"
	"github.com/vaughan-dsouza/storekeeper/internal/router"
	"github.com/vaughan-dsouza/storekeeper/internal/services"
	"github.com/vaughan-dsouza/storekeeper/internal/ui"
)

// memoryURL selects the in-process backend instead of Postgres.
const memoryURL = "memory://"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "storekeeper:", err)
		os.Exit(1)
	}
}

func run() error {
	envErr := godotenv.Load()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := logging.New(os.Stdout, cfg.Log.Level, cfg.IsProduction())
	if envErr != nil {
		log.Debug(context.Background(), "no .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	issuer, err := auth.NewIssuer(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		return err
	}
	cookies := auth.NewCookiePolicy(cfg.IsProduction())

	var (
		conn  dbx.DBTX
		tx    dbx.TxFunc
		repos repositories.Manager
		ping  handlers.Pinger
	)
	if cfg.Database.URL == memoryURL {
		log.Warn(ctx, "using in-memory storage, data is lost on exit")
		m := memory.NewManager()
		tx, repos = m.Tx, m
	} else {
		dbConn, err := db.Shared(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		if err := db.Migrate(ctx, dbConn); err != nil {
			return err
		}
		conn, tx, repos, ping = dbConn, dbx.TxFor(dbConn), repositories.NewPostgresManager(), dbConn
	}

	renderer, err := ui.New()
	if err != nil {
		return err
	}

	deps := handlers.Deps{
		AuthService: services.NewAuthService(conn, tx, repos, issuer, cfg.Session.BcryptCost),
		ItemService: services.NewItemService(conn, repos),
		Cookies:     cookies,
		DB:          ping,
		Renderer:    renderer,
		Log:         log,
	}
	if cfg.GoogleEnabled() {
		deps.OAuth = auth.NewGoogleProvider(cfg.Google.ClientID, cfg.Google.ClientSecret,
			cfg.Server.PublicURL+"/api/auth/google/callback")
	}

	h := handlers.NewHandler(deps)
	sessions := middleware.NewSessions(issuer, cookies, log)

	routes := router.New(h, sessions, log, router.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		TrustProxy:  cfg.Server.TrustProxy,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           routes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", srv.Addr, "env", string(cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info(context.Background(), "server exited")
	return nil
}
