package main

import (
	"context"
	"time"

	"github.com/NALLOO/AnTruaNao-V2/internal/admin"
	"github.com/NALLOO/AnTruaNao-V2/internal/config"
	"github.com/NALLOO/AnTruaNao-V2/internal/database"
	"github.com/NALLOO/AnTruaNao-V2/internal/obs"
)

func main() {
	cfg, err := config.LoadSeed()
	if err != nil {
		bootLogger := obs.NewLogger("console", "info")
		bootLogger.Fatal().Err(err).Msg("load config")
	}
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	// The session manager is unused here; seeding only writes the account.
	svc := admin.NewService(admin.NewRepository(db), nil)
	a, err := svc.Seed(ctx, cfg.AdminUserName, cfg.AdminPassword)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed admin")
	}

	logger.Info().Str("user_name", a.UserName).Str("id", a.ID).Msg("admin account ready")
}
