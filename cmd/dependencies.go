package cmd

import (
	"estate-metrics/config"
	"estate-metrics/internal/repository"
	"estate-metrics/internal/service"
	"estate-metrics/pkg/cache"
	"estate-metrics/pkg/logger"
	"estate-metrics/pkg/postgres"
	"estate-metrics/pkg/telegram"
)

// AppDependency holds every wired component a command can run with.
type AppDependency struct {
	Cfg     *config.Config
	Log     *logger.Logger
	DB      *postgres.DB
	Repo    *repository.Repository
	Service *service.Service
}

func initDependencies() (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	db, err := postgres.NewDB(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	notifier, err := telegram.NewNotifier(&cfg.Telegram, log)
	if err != nil {
		return nil, err
	}

	inmemoryCache := cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval)
	repo := repository.NewRepository(db.DB)
	svc := service.NewService(cfg, log, repo, inmemoryCache, notifier)

	return &AppDependency{
		Cfg:     cfg,
		Log:     log,
		DB:      db,
		Repo:    repo,
		Service: svc,
	}, nil
}

func (d *AppDependency) Close() {
	if err := d.DB.Close(); err != nil {
		d.Log.Error("Failed to close database connection")
	}
	_ = d.Log.Sync()
}
