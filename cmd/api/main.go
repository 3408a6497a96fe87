package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/shoplist-app/shoplist-backend/config"
	cronjob "github.com/shoplist-app/shoplist-backend/internal/admin/cron"
	"github.com/shoplist-app/shoplist-backend/internal/auth"
	"github.com/shoplist-app/shoplist-backend/internal/bootstrap"
	"github.com/shoplist-app/shoplist-backend/internal/realtime"
	fsadapter "github.com/shoplist-app/shoplist-backend/internal/store/firestore"
	"github.com/shoplist-app/shoplist-backend/pkg/logging"
)

func main() {
	logging.Setup()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	app, err := auth.InitializeFirebase(&cfg.Firebase)
	if err != nil {
		slog.Error("initializing firebase", "error", err)
		os.Exit(1)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		slog.Error("creating auth client", "error", err)
		os.Exit(1)
	}
	fsClient, err := app.Firestore(ctx)
	if err != nil {
		slog.Error("creating firestore client", "error", err)
		os.Exit(1)
	}
	defer fsClient.Close()

	var bus *realtime.Bus
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, realtime relay disabled", "addr", cfg.Redis.Addr, "error", err)
	} else {
		bus = realtime.NewBus(rdb)
	}

	deps := bootstrap.RouterDeps{
		Cfg:        cfg,
		AuthClient: authClient,
		Store:      fsadapter.New(fsClient),
		Bus:        bus,
	}

	if cfg.Database.DSN != "" {
		auditDB, err := bootstrap.OpenAuditDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN})
		if err != nil {
			slog.Error("opening audit database", "error", err)
			os.Exit(1)
		}
		defer auditDB.Close()
		deps.AuditDB = auditDB
	} else {
		slog.Warn("AUDIT_DB_DSN not set, admin audit log disabled")
	}

	r, adminSvc, auditRepo := bootstrap.BuildRouter(deps)

	if auditRepo != nil {
		if err := auditRepo.EnsureSchema(ctx); err != nil {
			slog.Error("ensuring audit schema", "error", err)
			os.Exit(1)
		}
	}

	cronjob.NewScheduler(adminSvc, auditRepo, cfg.Admin.AuditRetentionDays).Start()

	slog.Info("server starting", "port", cfg.Server.Port, "env", cfg.App.Environment)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
