package model

import (
	"time"

	"gorm.io/datatypes"
)

// Score is one persisted scoring invocation. Rows are append-only.
type Score struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CompanyID       uint           `gorm:"not null;index:idx_scores_company_created" json:"company_id"`
	Score           float64        `gorm:"not null" json:"score"`
	BaseScore       float64        `gorm:"not null" json:"base_score"`
	EventAdjustment float64        `gorm:"not null" json:"event_adjustment"`
	Explanation     datatypes.JSON `gorm:"type:jsonb" json:"explanation"`
	CreatedAt       time.Time      `gorm:"autoCreateTime;index:idx_scores_company_created" json:"created_at"`
}

func (Score) TableName() string {
	return "scores"
}

type GetScoreHistoryParam struct {
	CompanyID uint
	From      time.Time
	To        time.Time
	Limit     int
}
