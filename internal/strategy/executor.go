package strategy

import (
	"context"
	"encoding/json"

	"credit-intelligence/internal/model"
)

const (
	JOB_EXIT_CODE_SUCCESS         = 200
	JOB_EXIT_CODE_FAILED          = 500
	JOB_EXIT_CODE_SKIPPED         = 204
	JOB_EXIT_CODE_PARTIAL_SUCCESS = 206
)

type JobType string

const (
	JobTypeModelTraining JobType = "model_training"
	JobTypeScoreRefresh  JobType = "score_refresh"
	JobTypeMacroIngest   JobType = "macro_ingest"
	JobTypeDataCleanUp   JobType = "data_clean_up"
)

type JobResult struct {
	ExitCode int32  `json:"exit_code"`
	Output   string `json:"output"`
}

// JobExecutionStrategy defines the interface for different job execution strategies.
type JobExecutionStrategy interface {
	Execute(ctx context.Context, job *model.Job) (JobResult, error)
	GetType() JobType
}

// NewExecutorStrategies indexes strategies by the job type they handle.
func NewExecutorStrategies(strategies ...JobExecutionStrategy) map[JobType]JobExecutionStrategy {
	m := make(map[JobType]JobExecutionStrategy, len(strategies))
	for _, s := range strategies {
		m[s.GetType()] = s
	}
	return m
}

func outputJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return err.Error()
	}
	return string(b)
}

// decodePayload unmarshals a job payload; an empty payload leaves v untouched.
func decodePayload(job *model.Job, v interface{}) error {
	if len(job.Payload) == 0 || string(job.Payload) == "null" {
		return nil
	}
	return json.Unmarshal(job.Payload, v)
}
