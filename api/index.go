package handler

import (
	"context"
	"log/slog"
	"net/http"
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

var r http.Handler

func init() {
	// .env is only present under `vercel dev`.
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(gin.ReleaseMode)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		panic(err)
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
	r = handlers.NewRouter(handlers.New(db, authSvc, st, sched, logger))
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
