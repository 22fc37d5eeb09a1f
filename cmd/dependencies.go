package cmd

import (
	"context"

	"credit-intelligence/config"
	"credit-intelligence/internal/repository"
	"credit-intelligence/internal/scoring"
	"credit-intelligence/internal/service"
	"credit-intelligence/pkg/cache"
	"credit-intelligence/pkg/logger"
	"credit-intelligence/pkg/metrics"
	"credit-intelligence/pkg/postgres"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AppDependency struct {
	db         *postgres.DB
	cfg        *config.Config
	log        *logger.Logger
	validator  *goValidator.Validate
	echo       *echo.Echo
	cache      cache.Cache
	metrics    *metrics.Recorder
	modelState *scoring.ModelState
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
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
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	return &AppDependency{
		cfg:        cfg,
		log:        log,
		validator:  goValidator.New(),
		db:         db,
		echo:       e,
		cache:      cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
		metrics:    metrics.New(nil),
		modelState: scoring.NewModelState(),
	}, nil
}

// Services wires repositories and services on top of the dependency set.
func (d *AppDependency) Services() *service.Service {
	repo := repository.NewRepository(d.cfg, d.db.DB, d.log)
	return service.NewService(d.cfg, d.log, repo, d.cache, d.metrics, d.modelState)
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	defer func() { _ = d.log.Sync() }()
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
