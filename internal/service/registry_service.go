package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"credit-intelligence/config"
	"credit-intelligence/internal/dto"
	"credit-intelligence/internal/model"
	"credit-intelligence/internal/repository"
	"credit-intelligence/pkg/logger"
	"credit-intelligence/pkg/utils"
)

// ErrInvalidInput marks a request rejected before reaching storage.
var ErrInvalidInput = errors.New("invalid input")

// RegistryService records companies and the raw data the scoring engine reads.
type RegistryService interface {
	RegisterCompany(ctx context.Context, req dto.RegisterCompanyRequest) (*model.Company, error)
	ListCompanies(ctx context.Context) ([]model.Company, error)
	RecordFinancials(ctx context.Context, req dto.RecordFinancialsRequest) (*model.FinancialSnapshot, error)
	RecordMacro(ctx context.Context, req dto.RecordMacroRequest) (*model.MacroSnapshot, error)
	RecordEvent(ctx context.Context, req dto.RecordEventRequest) (*model.Event, error)
}

type registryService struct {
	cfg           *config.Config
	log           *logger.Logger
	companyRepo   repository.CompanyRepository
	financialRepo repository.FinancialRepository
	macroRepo     repository.MacroRepository
	eventRepo     repository.EventRepository
}

func NewRegistryService(cfg *config.Config, log *logger.Logger, repo *repository.Repository) RegistryService {
	return &registryService{
		cfg:           cfg,
		log:           log,
		companyRepo:   repo.CompanyRepo,
		financialRepo: repo.FinancialRepo,
		macroRepo:     repo.MacroRepo,
		eventRepo:     repo.EventRepo,
	}
}

func (s *registryService) RegisterCompany(ctx context.Context, req dto.RegisterCompanyRequest) (*model.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: company name is empty", ErrInvalidInput)
	}
	company, err := s.companyRepo.Register(ctx, &model.Company{Name: name, Ticker: req.Ticker, Sector: req.Sector})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to register company", logger.ErrorField(err), logger.StringField("name", name))
		return nil, fmt.Errorf("failed to register company: %w", err)
	}
	s.log.InfoContext(ctx, "Company registered", logger.UintField("company_id", company.ID), logger.StringField("name", company.Name))
	return company, nil
}

func (s *registryService) ListCompanies(ctx context.Context) ([]model.Company, error) {
	return s.companyRepo.List(ctx)
}

func (s *registryService) RecordFinancials(ctx context.Context, req dto.RecordFinancialsRequest) (*model.FinancialSnapshot, error) {
	if _, err := s.companyRepo.FindByID(ctx, req.CompanyID); err != nil {
		return nil, err
	}
	reportDate, err := utils.ParseDate(req.ReportDate)
	if err != nil {
		return nil, fmt.Errorf("%w: report_date: %v", ErrInvalidInput, err)
	}

	snapshot := &model.FinancialSnapshot{
		CompanyID:        req.CompanyID,
		ReportDate:       reportDate,
		DebtRatio:        req.DebtRatio,
		PERatio:          req.PERatio,
		Revenue:          req.Revenue,
		ProfitMargin:     req.ProfitMargin,
		CashRatio:        req.CashRatio,
		InterestCoverage: req.InterestCoverage,
	}
	if err := s.financialRepo.Create(ctx, snapshot); err != nil {
		s.log.ErrorContext(ctx, "Failed to record financials", logger.ErrorField(err), logger.UintField("company_id", req.CompanyID))
		return nil, fmt.Errorf("failed to record financials: %w", err)
	}
	return snapshot, nil
}

func (s *registryService) RecordMacro(ctx context.Context, req dto.RecordMacroRequest) (*model.MacroSnapshot, error) {
	reportDate, err := utils.ParseDate(req.ReportDate)
	if err != nil {
		return nil, fmt.Errorf("%w: report_date: %v", ErrInvalidInput, err)
	}

	snapshot := &model.MacroSnapshot{
		ReportDate:   reportDate,
		GDPGrowth:    req.GDPGrowth,
		InterestRate: req.InterestRate,
		Inflation:    req.Inflation,
		CreditSpread: req.CreditSpread,
	}
	if err := s.macroRepo.Create(ctx, snapshot); err != nil {
		s.log.ErrorContext(ctx, "Failed to record macro snapshot", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to record macro snapshot: %w", err)
	}
	return snapshot, nil
}

func (s *registryService) RecordEvent(ctx context.Context, req dto.RecordEventRequest) (*model.Event, error) {
	if _, err := s.companyRepo.FindByID(ctx, req.CompanyID); err != nil {
		return nil, err
	}

	eventDate := utils.TimeNow()
	if req.EventDate != "" {
		parsed, err := utils.ParseDate(req.EventDate)
		if err != nil {
			return nil, fmt.Errorf("%w: event_date: %v", ErrInvalidInput, err)
		}
		eventDate = parsed.UTC()
	}

	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	event := &model.Event{
		CompanyID:   req.CompanyID,
		EventText:   req.EventText,
		EventDate:   eventDate,
		Sentiment:   req.Sentiment,
		Tags:        tags,
		ImpactScore: req.ImpactScore,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.log.ErrorContext(ctx, "Failed to record event", logger.ErrorField(err), logger.UintField("company_id", req.CompanyID))
		return nil, fmt.Errorf("failed to record event: %w", err)
	}
	s.log.InfoContext(ctx, "Event recorded",
		logger.UintField("company_id", req.CompanyID),
		logger.Field("tags", tags),
	)
	return event, nil
}
