package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"credit-intelligence/config"
	"credit-intelligence/internal/dto"
	"credit-intelligence/internal/model"
	"credit-intelligence/internal/repository"
	"credit-intelligence/internal/scoring"
	"credit-intelligence/pkg/logger"
	"credit-intelligence/pkg/utils"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

var ErrFREDNotConfigured = errors.New("fred.api_key is not configured")

// IngestionService pulls macro data from FRED and loads demo data.
type IngestionService interface {
	IngestMacro(ctx context.Context) (*dto.MacroIngestResult, error)
	Seed(ctx context.Context, seed int64) (*dto.SeedResult, error)
}

type ingestionService struct {
	cfg           *config.Config
	log           *logger.Logger
	fredRepo      repository.FREDRepository
	companyRepo   repository.CompanyRepository
	financialRepo repository.FinancialRepository
	macroRepo     repository.MacroRepository
	eventRepo     repository.EventRepository
	uow           repository.UnitOfWork
	now           func() time.Time
}

func NewIngestionService(cfg *config.Config, log *logger.Logger, repo *repository.Repository) *ingestionService {
	return &ingestionService{
		cfg:           cfg,
		log:           log,
		fredRepo:      repo.FREDRepo,
		companyRepo:   repo.CompanyRepo,
		financialRepo: repo.FinancialRepo,
		macroRepo:     repo.MacroRepo,
		eventRepo:     repo.EventRepo,
		uow:           repo.UnitOfWork,
		now:           utils.TimeNow,
	}
}

// IngestMacro fetches the latest observation of each configured series and appends
// one macro snapshot dated at the newest observation. A series without a usable
// observation is stored as missing.
func (s *ingestionService) IngestMacro(ctx context.Context) (*dto.MacroIngestResult, error) {
	if s.cfg.FRED.APIKey == "" {
		return nil, ErrFREDNotConfigured
	}

	series := s.cfg.FRED.Series
	columns := []struct {
		name     string
		seriesID string
	}{
		{scoring.FeatureGDPGrowth, series.GDPGrowth},
		{scoring.FeatureInterestRate, series.InterestRate},
		{scoring.FeatureInflation, series.Inflation},
		{scoring.FeatureCreditSpread, series.CreditSpread},
	}

	var (
		mu           sync.Mutex
		observations = make(map[string]*dto.FREDObservation, len(columns))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, col := range columns {
		col := col
		if col.seriesID == "" {
			continue
		}
		g.Go(func() error {
			obs, err := s.fredRepo.LatestObservation(gctx, col.seriesID)
			if errors.Is(err, repository.ErrNoObservation) {
				s.log.WarnContext(gctx, "FRED series has no usable observation",
					logger.StringField("series_id", col.seriesID),
					logger.StringField("column", col.name))
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			observations[col.name] = obs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch FRED series", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to fetch FRED series: %w", err)
	}
	if len(observations) == 0 {
		return nil, fmt.Errorf("no FRED series returned data: %w", scoring.ErrDataUnavailable)
	}

	result := &dto.MacroIngestResult{Values: make(map[string]float64, len(observations))}
	snapshot := &model.MacroSnapshot{}
	for _, col := range columns {
		obs, ok := observations[col.name]
		if !ok {
			result.MissingSeries = append(result.MissingSeries, col.name)
			continue
		}
		result.Values[col.name] = obs.Value
		if obs.Date.After(snapshot.ReportDate) {
			snapshot.ReportDate = obs.Date
		}
		value := obs.Value
		switch col.name {
		case scoring.FeatureGDPGrowth:
			snapshot.GDPGrowth = &value
		case scoring.FeatureInterestRate:
			snapshot.InterestRate = &value
		case scoring.FeatureInflation:
			snapshot.Inflation = &value
		case scoring.FeatureCreditSpread:
			snapshot.CreditSpread = &value
		}
	}

	if err := s.macroRepo.Create(ctx, snapshot); err != nil {
		s.log.ErrorContext(ctx, "Failed to store macro snapshot", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to store macro snapshot: %w", err)
	}
	result.SnapshotID = snapshot.ID
	result.ReportDate = snapshot.ReportDate

	s.log.InfoContext(ctx, "Macro snapshot ingested from FRED",
		logger.UintField("snapshot_id", snapshot.ID),
		logger.StringField("report_date", snapshot.ReportDate.Format("2006-01-02")),
		logger.IntField("missing_series", len(result.MissingSeries)),
	)
	return result, nil
}

type demoCompany struct {
	name, ticker, sector string
}

type demoEvent struct {
	company   string
	text      string
	sentiment float64
	tag       string
}

var (
	demoCompanies = []demoCompany{
		{"Acme Steel", "ACME", "Materials"},
		{"Nova Retail", "NOVA", "Consumer"},
		{"ZenTech Systems", "ZENT", "Technology"},
	}
	demoEvents = []demoEvent{
		{"Acme Steel", "Debt restructuring announced", -0.6, scoring.TagDebtRestructuring},
		{"ZenTech Systems", "Raised guidance for Q3", 0.5, scoring.TagGuidanceRaise},
	}
)

// Seed registers the demo companies, one macro snapshot, random financials for every
// registered company and two demo events, all in one transaction.
func (s *ingestionService) Seed(ctx context.Context, seed int64) (*dto.SeedResult, error) {
	rng := rand.New(rand.NewSource(seed))
	now := s.now()
	today := utils.StartOfDay(now)
	result := &dto.SeedResult{}

	err := s.uow.Run(func(opts ...utils.DBOption) error {
		ids := make(map[string]uint, len(demoCompanies))
		for _, c := range demoCompanies {
			company, err := s.companyRepo.Register(ctx, &model.Company{
				Name:   c.name,
				Ticker: utils.ToPointer(c.ticker),
				Sector: utils.ToPointer(c.sector),
			}, opts...)
			if err != nil {
				return fmt.Errorf("register %s: %w", c.name, err)
			}
			ids[c.name] = company.ID
		}

		macro := &model.MacroSnapshot{
			ReportDate:   today,
			GDPGrowth:    utils.ToPointer(5.9),
			InterestRate: utils.ToPointer(6.5),
			Inflation:    utils.ToPointer(4.1),
			CreditSpread: utils.ToPointer(2.3),
		}
		if err := s.macroRepo.Create(ctx, macro, opts...); err != nil {
			return fmt.Errorf("create macro snapshot: %w", err)
		}

		companies, err := s.companyRepo.List(ctx, opts...)
		if err != nil {
			return err
		}
		for _, c := range companies {
			snapshot := &model.FinancialSnapshot{
				CompanyID:        c.ID,
				ReportDate:       today,
				DebtRatio:        utils.ToPointer(uniform(rng, 0.2, 0.8, 2)),
				PERatio:          utils.ToPointer(uniform(rng, 8, 35, 1)),
				Revenue:          utils.ToPointer(uniform(rng, 500, 5000, 2)),
				ProfitMargin:     utils.ToPointer(uniform(rng, -0.05, 0.25, 3)),
				CashRatio:        utils.ToPointer(uniform(rng, 0.2, 2.5, 2)),
				InterestCoverage: utils.ToPointer(uniform(rng, 0.5, 15, 2)),
			}
			if err := s.financialRepo.Create(ctx, snapshot, opts...); err != nil {
				return fmt.Errorf("create financials for company %d: %w", c.ID, err)
			}
			result.Financials++
			result.CompanyIDs = append(result.CompanyIDs, c.ID)
		}

		for _, e := range demoEvents {
			event := &model.Event{
				CompanyID:   ids[e.company],
				EventText:   e.text,
				EventDate:   now,
				Sentiment:   utils.ToPointer(e.sentiment),
				Tags:        datatypes.JSONSlice[string]{e.tag},
				ImpactScore: utils.ToPointer(0.0),
			}
			if err := s.eventRepo.Create(ctx, event, opts...); err != nil {
				return fmt.Errorf("create event for %s: %w", e.company, err)
			}
			result.Events++
		}
		return nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to seed demo data", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to seed demo data: %w", err)
	}

	sort.Slice(result.CompanyIDs, func(i, j int) bool { return result.CompanyIDs[i] < result.CompanyIDs[j] })
	s.log.InfoContext(ctx, "Seeded demo data",
		logger.IntField("companies", len(result.CompanyIDs)),
		logger.IntField("events", result.Events),
	)
	return result, nil
}

// uniform draws from [lo, hi) rounded to the given decimal places.
func uniform(rng *rand.Rand, lo, hi float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round((lo+rng.Float64()*(hi-lo))*p) / p
}
