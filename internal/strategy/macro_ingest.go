package strategy

import (
	"context"
	"fmt"

	"credit-intelligence/internal/contract"
	"credit-intelligence/internal/model"
	"credit-intelligence/pkg/logger"
)

type MacroIngestStrategy struct {
	log      *logger.Logger
	ingester contract.MacroIngestContract
}

func NewMacroIngestStrategy(log *logger.Logger, ingester contract.MacroIngestContract) JobExecutionStrategy {
	return &MacroIngestStrategy{log: log, ingester: ingester}
}

func (s *MacroIngestStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	result, err := s.ingester.IngestMacro(ctx)
	if err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to ingest macro data: %v", err)}, err
	}

	exitCode := int32(JOB_EXIT_CODE_SUCCESS)
	if len(result.MissingSeries) > 0 {
		exitCode = JOB_EXIT_CODE_PARTIAL_SUCCESS
	}
	return JobResult{ExitCode: exitCode, Output: outputJSON(result)}, nil
}

func (s *MacroIngestStrategy) GetType() JobType {
	return JobTypeMacroIngest
}
