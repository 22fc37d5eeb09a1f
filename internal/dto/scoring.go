package dto

import (
	"time"

	"credit-intelligence/internal/scoring"
)

// ScoreResult is a persisted score together with its explanation.
type ScoreResult struct {
	ID              uint                `json:"id"`
	CompanyID       uint                `json:"company_id"`
	Score           float64             `json:"score"`
	BaseScore       float64             `json:"base_score"`
	EventAdjustment float64             `json:"event_adjustment"`
	Explanation     scoring.Explanation `json:"explanation"`
	CreatedAt       time.Time           `json:"created_at"`
}

// WhatIfResult is a counterfactual score. It is never persisted.
type WhatIfResult struct {
	CompanyID uint `json:"company_id"`
	scoring.Explanation
	Baseline      float64            `json:"baseline"`
	Contributions map[string]float64 `json:"contributions"`
	Features      map[string]float64 `json:"features"`
	Overrides     map[string]float64 `json:"overrides"`
}

// ScoreRefreshResult summarizes a batch scoring run.
type ScoreRefreshResult struct {
	Scored  []ScoreResult   `json:"scored"`
	Skipped []uint          `json:"skipped,omitempty"`
	Failed  map[uint]string `json:"failed,omitempty"`
}

// MacroIngestResult reports which series fed a new macro snapshot.
type MacroIngestResult struct {
	SnapshotID    uint               `json:"snapshot_id"`
	ReportDate    time.Time          `json:"report_date"`
	Values        map[string]float64 `json:"values"`
	MissingSeries []string           `json:"missing_series,omitempty"`
}

// SeedResult lists what the demo seed created.
type SeedResult struct {
	CompanyIDs []uint `json:"company_ids"`
	Financials int    `json:"financials"`
	Events     int    `json:"events"`
}
