package strategy

import (
	"context"
	"fmt"

	"credit-intelligence/internal/contract"
	"credit-intelligence/internal/model"
	"credit-intelligence/pkg/logger"
)

type ModelTrainingStrategy struct {
	log     *logger.Logger
	trainer contract.ModelTrainerContract
}

func NewModelTrainingStrategy(log *logger.Logger, trainer contract.ModelTrainerContract) JobExecutionStrategy {
	return &ModelTrainingStrategy{log: log, trainer: trainer}
}

func (s *ModelTrainingStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	s.log.InfoContext(ctx, "Starting model training", logger.IntField("job_id", int(job.ID)))

	report, err := s.trainer.Train(ctx)
	if err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to train model: %v", err)}, err
	}
	return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: outputJSON(report)}, nil
}

func (s *ModelTrainingStrategy) GetType() JobType {
	return JobTypeModelTraining
}
