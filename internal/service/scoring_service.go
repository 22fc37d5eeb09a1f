package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"credit-intelligence/config"
	"credit-intelligence/internal/dto"
	"credit-intelligence/internal/model"
	"credit-intelligence/internal/repository"
	"credit-intelligence/internal/scoring"
	"credit-intelligence/pkg/cache"
	"credit-intelligence/pkg/logger"
	"credit-intelligence/pkg/metrics"
	"credit-intelligence/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

const latestScoreKeyFormat = "latest_score:%d"

type ScoringService interface {
	Train(ctx context.Context) (*scoring.TrainingReport, error)
	Score(ctx context.Context, companyID uint) (*dto.ScoreResult, error)
	ScoreAll(ctx context.Context, ids []uint) (*dto.ScoreRefreshResult, error)
	WhatIf(ctx context.Context, companyID uint, overrides map[string]interface{}) (*dto.WhatIfResult, error)
	LatestScore(ctx context.Context, companyID uint) (*dto.ScoreResult, error)
	History(ctx context.Context, param model.GetScoreHistoryParam) ([]dto.ScoreResult, error)
	Status() scoring.Status
}

type scoringService struct {
	cfg           *config.Config
	log           *logger.Logger
	state         *scoring.ModelState
	adjuster      *scoring.EventAdjuster
	financialRepo repository.FinancialRepository
	macroRepo     repository.MacroRepository
	eventRepo     repository.EventRepository
	scoreRepo     repository.ScoreRepository
	uow           repository.UnitOfWork
	cache         cache.Cache
	metrics       *metrics.Recorder
	now           func() time.Time
}

func NewScoringService(
	cfg *config.Config,
	log *logger.Logger,
	state *scoring.ModelState,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	recorder *metrics.Recorder,
) *scoringService {
	return &scoringService{
		cfg:           cfg,
		log:           log,
		state:         state,
		adjuster:      scoring.NewEventAdjuster(cfg.Scoring.EventWindow()),
		financialRepo: repo.FinancialRepo,
		macroRepo:     repo.MacroRepo,
		eventRepo:     repo.EventRepo,
		scoreRepo:     repo.ScoreRepo,
		uow:           repo.UnitOfWork,
		cache:         inmemoryCache,
		metrics:       recorder,
		now:           utils.TimeNow,
	}
}

func (s *scoringService) Status() scoring.Status {
	return s.state.Status()
}

func (s *scoringService) Train(ctx context.Context) (*scoring.TrainingReport, error) {
	m, err := s.train(ctx, false)
	if err != nil {
		return nil, err
	}
	report := m.Report
	return &report, nil
}

// train fits and installs a model. With onlyIfUntrained it returns the installed
// model instead when another caller trained while this one waited for the lock.
func (s *scoringService) train(ctx context.Context, onlyIfUntrained bool) (*scoring.TrainedModel, error) {
	unlock := s.state.TrainLock()
	defer unlock()

	if onlyIfUntrained {
		if m, ok := s.state.Snapshot(); ok {
			return m, nil
		}
	}

	start := time.Now()
	var m *scoring.TrainedModel
	panel, err := s.buildPanel(ctx)
	if err == nil {
		m, err = scoring.Train(panel, s.cfg.Scoring.GBM, s.now())
	}
	if err != nil {
		s.metrics.RecordTraining(time.Since(start), nil, err)
		s.log.ErrorContext(ctx, "Failed to train scoring model", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to train model: %w", err)
	}
	s.metrics.RecordTraining(time.Since(start), m.Report.R2, nil)

	s.state.Install(m)

	fields := []zap.Field{
		logger.IntField("rows", m.Report.Rows),
		logger.IntField("train_rows", m.Report.TrainRows),
		logger.IntField("validation_rows", m.Report.ValidationRows),
		logger.DurationField("duration", time.Since(start)),
	}
	if m.Report.R2 != nil {
		fields = append(fields, logger.Float64Field("r2", *m.Report.R2))
	}
	if m.Report.MAE != nil {
		fields = append(fields, logger.Float64Field("mae", *m.Report.MAE))
	}
	s.log.InfoContext(ctx, "Scoring model trained", fields...)
	return m, nil
}

func (s *scoringService) ensureTrained(ctx context.Context) (*scoring.TrainedModel, error) {
	if m, ok := s.state.Snapshot(); ok {
		return m, nil
	}
	if !s.cfg.Scoring.AutoTrain {
		return nil, scoring.ErrModelNotTrained
	}
	s.log.InfoContext(ctx, "Model is untrained, training before scoring")
	return s.train(ctx, true)
}

// buildPanel reads the latest financials and macro snapshot in one transaction.
func (s *scoringService) buildPanel(ctx context.Context) (*scoring.Panel, error) {
	var (
		snapshots []model.FinancialSnapshot
		macro     *model.MacroSnapshot
	)
	err := s.uow.Run(func(opts ...utils.DBOption) error {
		var err error
		snapshots, err = s.financialRepo.GetLatestPerCompany(ctx, opts...)
		if err != nil {
			return err
		}
		macro, err = s.macroRepo.GetLatest(ctx, opts...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read panel data: %w", err)
	}
	if macro == nil {
		return nil, scoring.ErrDataUnavailable
	}

	financials := make(map[uint]scoring.Financials, len(snapshots))
	for _, f := range snapshots {
		financials[f.CompanyID] = f.ToScoring()
	}
	return scoring.BuildPanel(financials, macro.ToScoring())
}

func (s *scoringService) eventAdjustment(ctx context.Context, companyID uint, asOf time.Time) (scoring.EventAdjustment, error) {
	events, err := s.eventRepo.FindInWindow(ctx, companyID, s.adjuster.WindowStart(asOf), asOf)
	if err != nil {
		return scoring.EventAdjustment{}, fmt.Errorf("failed to read events: %w", err)
	}
	inputs := make([]scoring.EventInput, len(events))
	for i, e := range events {
		inputs[i] = e.ToScoring()
	}
	return s.adjuster.Adjust(inputs, asOf), nil
}

func (s *scoringService) Score(ctx context.Context, companyID uint) (*dto.ScoreResult, error) {
	result, err := s.score(ctx, companyID)
	s.metrics.RecordScore("score", err)
	return result, err
}

func (s *scoringService) score(ctx context.Context, companyID uint) (*dto.ScoreResult, error) {
	m, err := s.ensureTrained(ctx)
	if err != nil {
		return nil, err
	}
	panel, err := s.buildPanel(ctx)
	if err != nil {
		return nil, err
	}
	return s.scoreRow(ctx, m, panel, panel.Medians(), companyID)
}

// scoreRow composes and persists the score of one panel row.
func (s *scoringService) scoreRow(ctx context.Context, m *scoring.TrainedModel, panel *scoring.Panel, medians scoring.FeatureVector, companyID uint) (*dto.ScoreResult, error) {
	row, ok := panel.Row(companyID)
	if !ok {
		return nil, fmt.Errorf("company %d: %w", companyID, scoring.ErrEntityNotScored)
	}
	x := scoring.Impute(row, medians)
	_, base := m.Predict(x)
	attr := m.Explainer.Attribute(x)

	asOf := s.now()
	adj, err := s.eventAdjustment(ctx, companyID, asOf)
	if err != nil {
		return nil, err
	}
	comp := scoring.Compose(base, adj, attr)

	explanation, err := json.Marshal(comp.Explanation)
	if err != nil {
		return nil, fmt.Errorf("failed to encode explanation: %w", err)
	}
	record := &model.Score{
		CompanyID:       companyID,
		Score:           comp.FinalScore,
		BaseScore:       comp.BaseScore,
		EventAdjustment: comp.EventAdjustment,
		Explanation:     datatypes.JSON(explanation),
		CreatedAt:       asOf,
	}
	if err := s.scoreRepo.Create(ctx, record); err != nil {
		s.log.ErrorContext(ctx, "Failed to persist score", logger.ErrorField(err), logger.UintField("company_id", companyID))
		return nil, fmt.Errorf("failed to persist score: %w", err)
	}

	result := toScoreResult(record, comp.Explanation)
	s.cache.Set(fmt.Sprintf(latestScoreKeyFormat, companyID), result, s.cfg.Cache.LatestScoreTTL)
	s.metrics.RecordLastScore(companyID, comp.FinalScore)

	s.log.InfoContext(ctx, "Company scored",
		logger.UintField("company_id", companyID),
		logger.Float64Field("base_score", comp.BaseScore),
		logger.Float64Field("event_adjustment", comp.EventAdjustment),
		logger.Float64Field("final_score", comp.FinalScore),
		logger.IntField("event_reasons", len(comp.Explanation.EventReasons)),
	)
	return result, nil
}

func (s *scoringService) ScoreAll(ctx context.Context, ids []uint) (*dto.ScoreRefreshResult, error) {
	m, err := s.ensureTrained(ctx)
	if err != nil {
		return nil, err
	}
	panel, err := s.buildPanel(ctx)
	if err != nil {
		return nil, err
	}
	medians := panel.Medians()

	if len(ids) == 0 {
		for _, r := range panel.Rows {
			ids = append(ids, r.CompanyID)
		}
	}

	var (
		mu     sync.Mutex
		result = &dto.ScoreRefreshResult{Failed: map[uint]string{}}
	)
	g, gctx := errgroup.WithContext(ctx)
	limit := s.cfg.Scoring.RefreshConcurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			if !utils.ShouldContinue(gctx, s.log) {
				return gctx.Err()
			}
			scored, err := s.scoreRow(gctx, m, panel, medians, id)
			s.metrics.RecordScore("score", err)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Scored = append(result.Scored, *scored)
			case errors.Is(err, scoring.ErrEntityNotScored):
				result.Skipped = append(result.Skipped, id)
			default:
				result.Failed[id] = err.Error()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result.Scored, func(i, j int) bool { return result.Scored[i].CompanyID < result.Scored[j].CompanyID })
	sort.Slice(result.Skipped, func(i, j int) bool { return result.Skipped[i] < result.Skipped[j] })
	s.log.InfoContext(ctx, "Score refresh finished",
		logger.IntField("scored", len(result.Scored)),
		logger.IntField("skipped", len(result.Skipped)),
		logger.IntField("failed", len(result.Failed)),
	)
	return result, nil
}

func (s *scoringService) WhatIf(ctx context.Context, companyID uint, overrides map[string]interface{}) (*dto.WhatIfResult, error) {
	result, err := s.whatIf(ctx, companyID, overrides)
	s.metrics.RecordScore("whatif", err)
	return result, err
}

func (s *scoringService) whatIf(ctx context.Context, companyID uint, overrides map[string]interface{}) (*dto.WhatIfResult, error) {
	m, err := s.ensureTrained(ctx)
	if err != nil {
		return nil, err
	}
	panel, err := s.buildPanel(ctx)
	if err != nil {
		return nil, err
	}
	row, ok := panel.Row(companyID)
	if !ok {
		return nil, fmt.Errorf("company %d: %w", companyID, scoring.ErrEntityNotScored)
	}

	x, applied, err := scoring.ApplyOverrides(scoring.Impute(row, panel.Medians()), overrides)
	if err != nil {
		return nil, err
	}
	_, base := m.Predict(x)

	adj, err := s.eventAdjustment(ctx, companyID, s.now())
	if err != nil {
		return nil, err
	}
	attr := m.Explainer.Attribute(x)
	comp := scoring.Compose(base, adj, attr)

	s.log.DebugContext(ctx, "What-if simulated",
		logger.UintField("company_id", companyID),
		logger.IntField("overrides", len(applied)),
		logger.Float64Field("final_score", comp.FinalScore),
	)
	return &dto.WhatIfResult{
		CompanyID:     companyID,
		Explanation:   comp.Explanation,
		Baseline:      attr.Baseline,
		Contributions: attr.Rounded(),
		Features:      x.Map(),
		Overrides:     applied,
	}, nil
}

func (s *scoringService) LatestScore(ctx context.Context, companyID uint) (*dto.ScoreResult, error) {
	key := fmt.Sprintf(latestScoreKeyFormat, companyID)
	if cached, ok := cache.GetFromCache[*dto.ScoreResult](s.cache, key); ok {
		return cached, nil
	}

	record, err := s.scoreRepo.GetLatest(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to read latest score: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("company %d has no score: %w", companyID, scoring.ErrEntityNotScored)
	}
	result, err := decodeScore(*record)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, result, s.cfg.Cache.LatestScoreTTL)
	return result, nil
}

// History returns persisted scores oldest first, capped at api.max_score_history.
func (s *scoringService) History(ctx context.Context, param model.GetScoreHistoryParam) ([]dto.ScoreResult, error) {
	if maxHistory := s.cfg.API.MaxScoreHistory; maxHistory > 0 && (param.Limit <= 0 || param.Limit > maxHistory) {
		param.Limit = maxHistory
	}
	records, err := s.scoreRepo.GetHistory(ctx, param)
	if err != nil {
		return nil, fmt.Errorf("failed to read score history: %w", err)
	}

	results := make([]dto.ScoreResult, 0, len(records))
	for _, r := range records {
		decoded, err := decodeScore(r)
		if err != nil {
			return nil, err
		}
		results = append(results, *decoded)
	}
	return results, nil
}

func decodeScore(record model.Score) (*dto.ScoreResult, error) {
	var explanation scoring.Explanation
	if len(record.Explanation) > 0 {
		if err := json.Unmarshal(record.Explanation, &explanation); err != nil {
			return nil, fmt.Errorf("failed to decode explanation of score %d: %w", record.ID, err)
		}
	}
	return toScoreResult(&record, explanation), nil
}

func toScoreResult(record *model.Score, explanation scoring.Explanation) *dto.ScoreResult {
	return &dto.ScoreResult{
		ID:              record.ID,
		CompanyID:       record.CompanyID,
		Score:           record.Score,
		BaseScore:       record.BaseScore,
		EventAdjustment: record.EventAdjustment,
		Explanation:     explanation,
		CreatedAt:       record.CreatedAt,
	}
}
