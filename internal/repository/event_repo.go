package repository

import (
	"context"
	"time"

	"credit-intelligence/internal/model"
	"credit-intelligence/pkg/utils"

	"gorm.io/gorm"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event, opts ...utils.DBOption) error
	// FindInWindow returns a company's events dated within [from, to], newest first.
	FindInWindow(ctx context.Context, companyID uint, from, to time.Time, opts ...utils.DBOption) ([]model.Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(event).Error
}

func (r *eventRepository) FindInWindow(ctx context.Context, companyID uint, from, to time.Time, opts ...utils.DBOption) ([]model.Event, error) {
	var events []model.Event
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("company_id = ?", companyID).
		Where("event_date >= ? AND event_date <= ?", from, to).
		Order("event_date DESC, id DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
