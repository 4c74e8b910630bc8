package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/Katzler/shapeshifter/pkg/auth"
	"github.com/Katzler/shapeshifter/pkg/config"
	"github.com/Katzler/shapeshifter/pkg/database"
	"github.com/Katzler/shapeshifter/pkg/handlers"
	"github.com/Katzler/shapeshifter/pkg/logging"
	"github.com/Katzler/shapeshifter/pkg/scheduler"
	"github.com/Katzler/shapeshifter/pkg/store"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	gin.SetMode(cfg.Server.GinMode)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		logger.Error("init database", slog.Any("error", err))
		os.Exit(1)
	}

	authSvc := auth.New(db, cfg.Auth, logger)
	if err := authSvc.EnsureAdminExists(context.Background()); err != nil {
		logger.Warn("ensure admin user", slog.Any("error", err))
	}

	sched := scheduler.New(cfg.Scheduler.Weights)
	st := store.New(db,
		store.WithScheduler(sched),
		store.WithMaxWorkspaces(cfg.Database.MaxWorkspaces),
	)
	router := handlers.NewRouter(handlers.New(db, authSvc, st, sched, logger))

	logger.Info("server starting", slog.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Error("could not run server", slog.Any("error", err))
		os.Exit(1)
	}
}
