package repository

import (
	"context"
	"errors"

	"credit-intelligence/internal/model"
	"credit-intelligence/pkg/utils"

	"gorm.io/gorm"
)

type MacroRepository interface {
	Create(ctx context.Context, snapshot *model.MacroSnapshot, opts ...utils.DBOption) error
	// GetLatest returns nil when no snapshot exists.
	GetLatest(ctx context.Context, opts ...utils.DBOption) (*model.MacroSnapshot, error)
}

type macroRepository struct {
	db *gorm.DB
}

func NewMacroRepository(db *gorm.DB) MacroRepository {
	return &macroRepository{db: db}
}

func (r *macroRepository) Create(ctx context.Context, snapshot *model.MacroSnapshot, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(snapshot).Error
}

func (r *macroRepository) GetLatest(ctx context.Context, opts ...utils.DBOption) (*model.MacroSnapshot, error) {
	var snapshot model.MacroSnapshot
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Order("report_date DESC, id DESC").
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}
