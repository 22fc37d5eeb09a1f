package repository

import (
	"context"
	"errors"

	"credit-intelligence/internal/model"
	"credit-intelligence/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCompanyNotFound = errors.New("company not found")

type CompanyRepository interface {
	// Register inserts the company unless its name already exists, and returns the stored row.
	Register(ctx context.Context, company *model.Company, opts ...utils.DBOption) (*model.Company, error)
	FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Company, error)
	List(ctx context.Context, opts ...utils.DBOption) ([]model.Company, error)
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Register(ctx context.Context, company *model.Company, opts ...utils.DBOption) (*model.Company, error) {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(company).Error
	if err != nil {
		return nil, err
	}

	var stored model.Company
	if err := db.Where("name = ?", company.Name).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *companyRepository) FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Company, error) {
	var company model.Company
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).First(&company, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) List(ctx context.Context, opts ...utils.DBOption) ([]model.Company, error) {
	var companies []model.Company
	if err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).Order("id ASC").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}
