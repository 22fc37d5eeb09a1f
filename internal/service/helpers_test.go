package service

import (
	"context"
	"testing"
	"time"

	"credit-intelligence/config"
	"credit-intelligence/internal/dto"
	"credit-intelligence/internal/repository"
	"credit-intelligence/internal/scoring"
	"credit-intelligence/internal/testutil"
	"credit-intelligence/pkg/cache"
	"credit-intelligence/pkg/logger"
	"credit-intelligence/pkg/metrics"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeFRED struct {
	observations map[string]*dto.FREDObservation
	errs         map[string]error
}

func (f *fakeFRED) LatestObservation(ctx context.Context, seriesID string) (*dto.FREDObservation, error) {
	if err, ok := f.errs[seriesID]; ok {
		return nil, err
	}
	if obs, ok := f.observations[seriesID]; ok {
		return obs, nil
	}
	return nil, repository.ErrNoObservation
}

type testEnv struct {
	cfg       *config.Config
	db        *gorm.DB
	repo      *repository.Repository
	state     *scoring.ModelState
	scoring   *scoringService
	registry  RegistryService
	ingestion *ingestionService
}

func testConfig() *config.Config {
	gbm := scoring.DefaultGBMParams()
	gbm.NumRounds = 60
	return &config.Config{
		API:       config.API{MaxScoreHistory: 3},
		Scheduler: config.Scheduler{MaxConcurrency: 2, TimeoutDuration: time.Minute},
		Cache:     config.Cache{DefaultExpiration: time.Minute, CleanupInterval: time.Minute, LatestScoreTTL: time.Minute},
		Scoring:   config.Scoring{AutoTrain: true, EventWindowDays: 14, RefreshConcurrency: 2, GBM: gbm},
		FRED: config.FRED{
			APIKey: "test-key",
			Series: config.FREDSeries{GDPGrowth: "GDP", InterestRate: "FEDFUNDS", Inflation: "CPI", CreditSpread: "SPREAD"},
		},
	}
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}
	log := logger.NewNop()
	db := testutil.NewDB(t)
	repo := repository.NewRepository(cfg, db, log)
	repo.FREDRepo = &fakeFRED{}
	state := scoring.NewModelState()

	return &testEnv{
		cfg:       cfg,
		db:        db,
		repo:      repo,
		state:     state,
		scoring:   NewScoringService(cfg, log, state, repo, cache.NewCache(time.Minute, time.Minute), metrics.New(nil)),
		registry:  NewRegistryService(cfg, log, repo),
		ingestion: NewIngestionService(cfg, log, repo),
	}
}

// seed loads the demo data set and returns the company ids by name.
func (e *testEnv) seed(t *testing.T) map[string]uint {
	t.Helper()
	_, err := e.ingestion.Seed(context.Background(), 7)
	require.NoError(t, err)

	companies, err := e.repo.CompanyRepo.List(context.Background())
	require.NoError(t, err)
	ids := make(map[string]uint, len(companies))
	for _, c := range companies {
		ids[c.Name] = c.ID
	}
	return ids
}
