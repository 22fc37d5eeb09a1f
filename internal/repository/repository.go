package repository

import (
	"credit-intelligence/config"
	"credit-intelligence/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	CompanyRepo   CompanyRepository
	FinancialRepo FinancialRepository
	MacroRepo     MacroRepository
	EventRepo     EventRepository
	ScoreRepo     ScoreRepository
	JobRepo       JobRepository
	FREDRepo      FREDRepository
	UnitOfWork    UnitOfWork
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) *Repository {
	return &Repository{
		CompanyRepo:   NewCompanyRepository(db),
		FinancialRepo: NewFinancialRepository(db),
		MacroRepo:     NewMacroRepository(db),
		EventRepo:     NewEventRepository(db),
		ScoreRepo:     NewScoreRepository(db),
		JobRepo:       NewJobRepository(db),
		FREDRepo:      NewFREDRepository(cfg, log),
		UnitOfWork:    NewUnitOfWork(db),
	}
}
