// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	"github.com/matthewemeh/pollara-build-gems-sub001/cache"
	"github.com/matthewemeh/pollara-build-gems-sub001/cliparse"
	"github.com/matthewemeh/pollara-build-gems-sub001/db"
	"github.com/matthewemeh/pollara-build-gems-sub001/mail"
	"github.com/matthewemeh/pollara-build-gems-sub001/middleware"
	"github.com/matthewemeh/pollara-build-gems-sub001/notify"
	"github.com/matthewemeh/pollara-build-gems-sub001/router"
	"github.com/matthewemeh/pollara-build-gems-sub001/token"
)

func main() {
	var err error

	// Load .env if present; real env vars win
	godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL
	dbConn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Mail client for ballot receipts (disabled when unconfigured)
	mailer, err := mail.NewClient(cfg.SMTPHost, cfg.SMTPUser, cfg.SMTPPass,
		cfg.MailAddress, cfg.MailSkipVerify)
	if err != nil {
		slog.Error("mail client setup failed", "error", err)
		os.Exit(1)
	}

	// Background sweep for lapsed vote tokens
	tokens := token.NewService(dbConn, cfg.TokenSalt, cfg.TokenTTL)
	c := cron.New()
	c.AddFunc("@every 5m", func() {
		n, err := tokens.PruneExpired()
		if err != nil {
			slog.Error("token sweep failed", "error", err)
			return
		}
		if n > 0 {
			slog.Info("pruned expired vote tokens", "count", n)
		}
	})
	c.Start()
	defer c.Stop()

	// Create router
	mux := router.NewRouter(dbConn, cfg, cache.NewMemory(), notify.New(dbConn, mailer))

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
