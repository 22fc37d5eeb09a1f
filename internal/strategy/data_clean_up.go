package strategy

import (
	"context"
	"fmt"
	"time"

	"credit-intelligence/internal/model"
	"credit-intelligence/internal/repository"
	"credit-intelligence/pkg/logger"
)

const defaultRetentionDays = 30

// DataCleanUpPayload sets how many days of job history to keep. Score records are
// append-only and never cleaned up.
type DataCleanUpPayload struct {
	RetentionDays int `json:"retention_days"`
}

type DataCleanUpResult struct {
	Table string `json:"table"`
	Total int64  `json:"total"`
	Error string `json:"error,omitempty"`
}

type DataCleanUpStrategy struct {
	log     *logger.Logger
	jobRepo repository.JobRepository
	now     func() time.Time
}

func NewDataCleanUpStrategy(log *logger.Logger, jobRepo repository.JobRepository, now func() time.Time) JobExecutionStrategy {
	return &DataCleanUpStrategy{
		log:     log,
		jobRepo: jobRepo,
		now:     now,
	}
}

func (s *DataCleanUpStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	s.log.InfoContext(ctx, "Starting data clean up")

	payload := DataCleanUpPayload{RetentionDays: defaultRetentionDays}
	if err := decodePayload(job, &payload); err != nil {
		s.log.ErrorContext(ctx, "Failed to unmarshal job payload", logger.ErrorField(err), logger.IntField("job_id", int(job.ID)))
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to unmarshal job payload: %v", err)}, fmt.Errorf("failed to unmarshal job payload: %w", err)
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = defaultRetentionDays
	}

	date := s.now().AddDate(0, 0, -payload.RetentionDays)
	totalDeleted, err := s.jobRepo.DeleteTaskHistoryOlderThan(ctx, date)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to delete job history", logger.ErrorField(err), logger.IntField("job_id", int(job.ID)))
		output := []DataCleanUpResult{{
			Table: "task_execution_history",
			Total: totalDeleted,
			Error: fmt.Sprintf("failed to delete job history older than %v: %v", date, err),
		}}
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: outputJSON(output)}, err
	}

	output := []DataCleanUpResult{{Table: "task_execution_history", Total: totalDeleted}}
	return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: outputJSON(output)}, nil
}

func (s *DataCleanUpStrategy) GetType() JobType {
	return JobTypeDataCleanUp
}
