// @title Clash Teams API
// @version 1.0
// @description Team assignment for League of Legends Clash on Discord servers.
// @BasePath /
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

	"github.com/Dosada05/clash-teams/broadcast"
	"github.com/Dosada05/clash-teams/config"
	"github.com/Dosada05/clash-teams/db"
	"github.com/Dosada05/clash-teams/handlers"
	"github.com/Dosada05/clash-teams/repositories"
	api "github.com/Dosada05/clash-teams/routes"
	"github.com/Dosada05/clash-teams/services"
	"github.com/Dosada05/clash-teams/storage"
	"github.com/go-chi/chi/v5"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("store", cfg.StoreDriver),
		slog.Bool("export_enabled", cfg.R2.Enabled()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	// Exports stay disabled unless R2 is configured; the interface must stay
	// nil in that case.
	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewR2Uploader(ctx, storage.R2Config{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		}, logger)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2.BucketName))
	}

	hub := broadcast.NewHub(logger)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()
	logger.Info("WebSocket hub started")

	tournamentService := services.NewTournamentService(store.Tournaments)
	tentativeService := services.NewTentativeService(store.Tentative, logger)
	profileService := services.NewProfileService(store.Subscriptions)
	teamService := services.NewTeamService(store.Teams, store.Tournaments, tentativeService, hub, logger)
	queryService := services.NewTeamQueryService(store.Teams, tournamentService, profileService)
	exportService := services.NewExportService(queryService, uploader, logger)
	logger.Info("Services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.AllowedOrigins,
		handlers.NewTeamHandler(teamService, queryService, tournamentService),
		handlers.NewTentativeHandler(teamService, tentativeService, tournamentService),
		handlers.NewTournamentHandler(tournamentService),
		handlers.NewProfileHandler(profileService),
		handlers.NewExportHandler(exportService),
		handlers.NewWebSocketHandler(hub, cfg.AllowedOrigins, logger),
	)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}

	stop()
	<-hubDone
	logger.Info("application exited")
}

// openStore connects the configured backend. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverDynamoDB:
		client, err := db.ConnectDynamo(ctx, db.DynamoOptions{
			Region:          cfg.Dynamo.Region,
			Endpoint:        cfg.Dynamo.Endpoint,
			AccessKeyID:     cfg.Dynamo.AccessKeyID,
			SecretAccessKey: cfg.Dynamo.SecretAccessKey,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("DynamoDB client initialized",
			slog.String("region", cfg.Dynamo.Region),
			slog.String("teams_table", cfg.Dynamo.TeamsTable))
		store := repositories.NewDynamoStore(client, repositories.DynamoTables{
			Teams:         cfg.Dynamo.TeamsTable,
			Tentative:     cfg.Dynamo.TentativeTable,
			Tournaments:   cfg.Dynamo.TournamentsTable,
			Subscriptions: cfg.Dynamo.SubscriptionsTable,
		})
		return store, func() {}, nil

	default:
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureSchema(ctx, dbConn); err != nil {
			dbConn.Close()
			return nil, nil, err
		}
		logger.Info("database connection established")
		closeFn := func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		}
		return repositories.NewPostgresStore(dbConn), closeFn, nil
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
