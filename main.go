package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/goose-ws/PartyPlanner/cliparse"
	"github.com/goose-ws/PartyPlanner/db"
	"github.com/goose-ws/PartyPlanner/middleware"
	"github.com/goose-ws/PartyPlanner/notify"
	"github.com/goose-ws/PartyPlanner/router"
	"github.com/goose-ws/PartyPlanner/scheduler"
	"github.com/goose-ws/PartyPlanner/seed"
	"github.com/goose-ws/PartyPlanner/store"
)

func main() {
	var err error

	if err := cliparse.LoadEnv(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err, "type", cfg.DatabaseType)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Notifications go to the log and to each campaign's webhook
	logger := slog.Default()
	dispatcher := notify.NewDispatcher(
		notify.Multi(notify.LogNotifier{Logger: logger}, notify.NewWebhook(nil, logger)),
		cfg.NotifyTimeout,
		logger,
	)
	svc := scheduler.New(store.New(dbConn), dispatcher, scheduler.Options{
		SlugSalt: cfg.AdminKeySalt,
		BaseURL:  cfg.AppURL,
		Logger:   logger,
	})

	// Seed campaigns from YAML
	if cfg.CampaignsFile != "" {
		campaigns, err := seed.LoadCampaigns(cfg.CampaignsFile)
		if err != nil {
			slog.Error("campaign seed failed", "error", err, "file", cfg.CampaignsFile)
			os.Exit(1)
		}
		for i := range campaigns {
			if _, err := svc.SaveCampaign(context.Background(), &campaigns[i], time.Now()); err != nil {
				slog.Error("campaign seed failed", "error", err, "campaign", campaigns[i].Name)
				os.Exit(1)
			}
		}
		slog.Info("Campaigns seeded", "count", len(campaigns), "file", cfg.CampaignsFile)
	}

	// Start the tick scheduler
	runner, err := scheduler.NewRunner(svc, cfg.TickSchedule, logger)
	if err != nil {
		slog.Error("scheduler setup failed", "error", err)
		os.Exit(1)
	}
	runner.Start()

	// Create router
	mux := router.NewRouter(svc, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		// Wait for Ctrl-C signal
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
		if err := runner.Stop(ctx); err != nil {
			slog.Warn("tick still running at shutdown", "error", err)
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "app_url", cfg.AppURL)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
		return
	}
	// let an in-flight tick finish before the database closes
	<-stopped
	slog.Info("Server closed", "error", err)
}
