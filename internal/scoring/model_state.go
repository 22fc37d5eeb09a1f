package scoring

import "sync"

// State is the lifecycle of the shared scoring model.
type State string

const (
	StateUntrained State = "untrained"
	StateTrained   State = "trained"
)

// Status is a read-only view of the model state.
type Status struct {
	State  State           `json:"state"`
	Report *TrainingReport `json:"report,omitempty"`
}

// ModelState owns the process-wide fitted model. Readers get a consistent
// regressor/explainer pair from Snapshot; Install swaps the pair under the write
// lock. Training runs are serialized through TrainLock so there is a single writer.
type ModelState struct {
	mu    sync.RWMutex
	model *TrainedModel

	trainMu sync.Mutex
}

func NewModelState() *ModelState {
	return &ModelState{}
}

func (s *ModelState) Snapshot() (*TrainedModel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model, s.model != nil
}

// Install moves the state to Trained with the given model.
func (s *ModelState) Install(m *TrainedModel) {
	s.mu.Lock()
	s.model = m
	s.mu.Unlock()
}

func (s *ModelState) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil {
		return Status{State: StateUntrained}
	}
	report := s.model.Report
	return Status{State: StateTrained, Report: &report}
}

// TrainLock serializes training runs. The returned func releases it.
func (s *ModelState) TrainLock() func() {
	s.trainMu.Lock()
	return s.trainMu.Unlock
}
