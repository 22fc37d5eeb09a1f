package model

import (
	"time"

	"credit-intelligence/internal/scoring"

	"gorm.io/datatypes"
)

// Event is a qualitative news item about a company, optionally tagged and scored by an analyst.
type Event struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	CompanyID   uint                        `gorm:"not null;index:idx_events_company_date" json:"company_id"`
	EventText   string                      `gorm:"type:text;not null" json:"event_text"`
	EventDate   time.Time                   `gorm:"not null;index:idx_events_company_date" json:"event_date"`
	Sentiment   *float64                    `json:"sentiment"`
	Tags        datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"tags"`
	ImpactScore *float64                    `json:"impact_score"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime" json:"created_at"`
}

func (Event) TableName() string {
	return "events"
}

func (e Event) ToScoring() scoring.EventInput {
	return scoring.EventInput{
		Text:        e.EventText,
		Date:        e.EventDate,
		Sentiment:   e.Sentiment,
		Tags:        []string(e.Tags),
		ImpactScore: e.ImpactScore,
	}
}
