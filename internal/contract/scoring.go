package contract

import (
	"context"

	"credit-intelligence/internal/dto"
	"credit-intelligence/internal/scoring"
)

type ModelTrainerContract interface {
	Train(ctx context.Context) (*scoring.TrainingReport, error)
}

type ScoreRefreshContract interface {
	// ScoreAll scores the given companies, or every panel company when ids is empty.
	ScoreAll(ctx context.Context, ids []uint) (*dto.ScoreRefreshResult, error)
}

type MacroIngestContract interface {
	IngestMacro(ctx context.Context) (*dto.MacroIngestResult, error)
}
