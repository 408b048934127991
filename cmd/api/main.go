package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"opsportal.org/internal/auth"
	"opsportal.org/internal/config"
	"opsportal.org/internal/directory"
	"opsportal.org/internal/httpapi"
	"opsportal.org/internal/obs"
	"opsportal.org/internal/seed"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Postgres is optional; without a DSN the service keeps accounts in
	// memory, which is enough for demos and local frontend work.
	var db *sql.DB
	var store auth.Store
	if cfg.PostgresDSN != "" {
		db, err = sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		store = auth.NewPGStore(db)
	} else {
		store = auth.NewMemoryStore()
	}

	hasher := auth.NewPasswordHasher(0)

	var tokens *auth.TokenIssuer
	if cfg.LoginMode == config.LoginModeToken {
		tokens, err = auth.NewTokenIssuer(cfg.SigningSecret, cfg.TokenTTL)
		if err != nil {
			log.Fatalf("token issuer: %v", err)
		}
	}

	dir := directory.NewClient(cfg.DirectoryBaseURL, cfg.DirectoryToken, cfg.DirectoryTimeout)

	svc, err := auth.NewService(store, hasher, tokens, dir, auth.LoginMode(cfg.LoginMode))
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := seed.DemoUsers(seedCtx, store, hasher); err != nil {
		log.Fatalf("seed demo users: %v", err)
	}
	cancelSeed()

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, svc, dir)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting opsportal-auth %s on %s (mode=%s)", version, srv.Addr, cfg.LoginMode)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
