package repository

import (
	"context"
	"errors"

	"credit-intelligence/internal/model"
	"credit-intelligence/pkg/utils"

	"gorm.io/gorm"
)

// ScoreRepository only appends and reads; score rows are never updated or deleted.
type ScoreRepository interface {
	Create(ctx context.Context, score *model.Score, opts ...utils.DBOption) error
	GetHistory(ctx context.Context, param model.GetScoreHistoryParam, opts ...utils.DBOption) ([]model.Score, error)
	// GetLatest returns nil when the company was never scored.
	GetLatest(ctx context.Context, companyID uint, opts ...utils.DBOption) (*model.Score, error)
}

type scoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) Create(ctx context.Context, score *model.Score, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(score).Error
}

func (r *scoreRepository) GetHistory(ctx context.Context, param model.GetScoreHistoryParam, opts ...utils.DBOption) ([]model.Score, error) {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...).Where("company_id = ?", param.CompanyID)
	if !param.From.IsZero() {
		db = db.Where("created_at >= ?", param.From)
	}
	if !param.To.IsZero() {
		db = db.Where("created_at <= ?", param.To)
	}
	if param.Limit > 0 {
		db = db.Limit(param.Limit)
	}

	var scores []model.Score
	if err := db.Order("created_at DESC, id DESC").Find(&scores).Error; err != nil {
		return nil, err
	}

	// newest N were selected; return them oldest first for charting
	for i, j := 0, len(scores)-1; i < j; i, j = i+1, j-1 {
		scores[i], scores[j] = scores[j], scores[i]
	}
	return scores, nil
}

func (r *scoreRepository) GetLatest(ctx context.Context, companyID uint, opts ...utils.DBOption) (*model.Score, error) {
	var score model.Score
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("company_id = ?", companyID).
		Order("created_at DESC, id DESC").
		First(&score).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &score, nil
}
