package scoring

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelState(t *testing.T) {
	s := NewModelState()
	assert.Equal(t, Status{State: StateUntrained}, s.Status())
	_, ok := s.Snapshot()
	assert.False(t, ok)

	m, err := Train(syntheticPanel(10, 4), GBMParams{NumRounds: 10}, time.Unix(100, 0))
	require.NoError(t, err)
	s.Install(m)

	got, ok := s.Snapshot()
	require.True(t, ok)
	assert.Same(t, m, got)
	status := s.Status()
	assert.Equal(t, StateTrained, status.State)
	require.NotNil(t, status.Report)
	assert.Equal(t, 10, status.Report.Rows)
}

func TestModelState_ConcurrentReadersSeeConsistentPairs(t *testing.T) {
	s := NewModelState()
	models := make([]*TrainedModel, 3)
	for i := range models {
		m, err := Train(syntheticPanel(8, int64(i+1)), GBMParams{NumRounds: 5}, time.Now())
		require.NoError(t, err)
		models[i] = m
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				unlock := s.TrainLock()
				s.Install(models[(i+j)%len(models)])
				unlock()
			}
		}(i)
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				m, ok := s.Snapshot()
				if !ok {
					continue
				}
				assert.InDelta(t, m.Regressor.BaseScore()+sumExpected(m.Regressor), m.Explainer.Baseline(), 1e-9)
			}
		}()
	}
	wg.Wait()
}

func sumExpected(r *Regressor) float64 {
	var sum float64
	for i := range r.Trees() {
		sum += r.Trees()[i].ExpectedValue()
	}
	return sum
}
