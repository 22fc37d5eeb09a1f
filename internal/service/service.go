package service

import (
	"credit-intelligence/config"
	"credit-intelligence/internal/repository"
	"credit-intelligence/internal/scoring"
	"credit-intelligence/internal/strategy"
	"credit-intelligence/pkg/cache"
	"credit-intelligence/pkg/logger"
	"credit-intelligence/pkg/metrics"
	"credit-intelligence/pkg/utils"
)

type Service struct {
	SchedulerService SchedulerService
	TaskExecutor     TaskExecutor
	ScoringService   ScoringService
	RegistryService  RegistryService
	IngestionService IngestionService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	recorder *metrics.Recorder,
	state *scoring.ModelState,
) *Service {
	scoringService := NewScoringService(cfg, log, state, repo, inmemoryCache, recorder)
	ingestionService := NewIngestionService(cfg, log, repo)

	executorStrategies := strategy.NewExecutorStrategies(
		strategy.NewModelTrainingStrategy(log, scoringService),
		strategy.NewScoreRefreshStrategy(log, scoringService),
		strategy.NewMacroIngestStrategy(log, ingestionService),
		strategy.NewDataCleanUpStrategy(log, repo.JobRepo, utils.TimeNow),
	)
	taskExecutor := NewTaskExecutor(cfg, log, repo.JobRepo, recorder, executorStrategies)

	return &Service{
		SchedulerService: NewSchedulerService(cfg, log, repo.JobRepo, taskExecutor),
		TaskExecutor:     taskExecutor,
		ScoringService:   scoringService,
		RegistryService:  NewRegistryService(cfg, log, repo),
		IngestionService: ingestionService,
	}
}
