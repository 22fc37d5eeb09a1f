package strategy

import (
	"context"
	"fmt"

	"credit-intelligence/internal/contract"
	"credit-intelligence/internal/model"
	"credit-intelligence/pkg/logger"
)

// ScoreRefreshPayload limits the refresh to the given companies. Empty means every
// company in the panel.
type ScoreRefreshPayload struct {
	CompanyIDs []uint `json:"company_ids"`
}

type ScoreRefreshStrategy struct {
	log       *logger.Logger
	refresher contract.ScoreRefreshContract
}

func NewScoreRefreshStrategy(log *logger.Logger, refresher contract.ScoreRefreshContract) JobExecutionStrategy {
	return &ScoreRefreshStrategy{log: log, refresher: refresher}
}

func (s *ScoreRefreshStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	var payload ScoreRefreshPayload
	if err := decodePayload(job, &payload); err != nil {
		s.log.ErrorContext(ctx, "Failed to unmarshal job payload", logger.ErrorField(err), logger.IntField("job_id", int(job.ID)))
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to unmarshal job payload: %v", err)}, fmt.Errorf("failed to unmarshal job payload: %w", err)
	}

	result, err := s.refresher.ScoreAll(ctx, payload.CompanyIDs)
	if err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to refresh scores: %v", err)}, err
	}

	exitCode := int32(JOB_EXIT_CODE_SUCCESS)
	switch {
	case len(result.Scored) == 0:
		exitCode = JOB_EXIT_CODE_SKIPPED
	case len(result.Failed) > 0 || len(result.Skipped) > 0:
		exitCode = JOB_EXIT_CODE_PARTIAL_SUCCESS
	}
	return JobResult{ExitCode: exitCode, Output: outputJSON(result)}, nil
}

func (s *ScoreRefreshStrategy) GetType() JobType {
	return JobTypeScoreRefresh
}
