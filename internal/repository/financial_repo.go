package repository

import (
	"context"

	"credit-intelligence/internal/model"
	"credit-intelligence/pkg/utils"

	"gorm.io/gorm"
)

type FinancialRepository interface {
	Create(ctx context.Context, snapshot *model.FinancialSnapshot, opts ...utils.DBOption) error
	// GetLatestPerCompany returns each company's snapshot with the latest report date.
	GetLatestPerCompany(ctx context.Context, opts ...utils.DBOption) ([]model.FinancialSnapshot, error)
}

type financialRepository struct {
	db *gorm.DB
}

func NewFinancialRepository(db *gorm.DB) FinancialRepository {
	return &financialRepository{db: db}
}

func (r *financialRepository) Create(ctx context.Context, snapshot *model.FinancialSnapshot, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(snapshot).Error
}

func (r *financialRepository) GetLatestPerCompany(ctx context.Context, opts ...utils.DBOption) ([]model.FinancialSnapshot, error) {
	var snapshots []model.FinancialSnapshot

	// a snapshot is latest when no later one (by report date, then id) exists for its company
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Table("financials AS f").
		Select("f.*").
		Joins("JOIN companies c ON c.id = f.company_id").
		Where(`NOT EXISTS (
			SELECT 1 FROM financials g
			WHERE g.company_id = f.company_id
			AND (g.report_date > f.report_date OR (g.report_date = f.report_date AND g.id > f.id))
		)`).
		Order("f.company_id ASC").
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}
