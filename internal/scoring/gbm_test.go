package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitRegressor(t *testing.T) {
	panel := syntheticPanel(80, 1)
	X := panel.Matrix()
	y := make([]float64, len(X))
	for i, r := range panel.Rows {
		y[i] = SynthesizeLabel(r.Features)
	}

	reg, err := FitRegressor(X, y, DefaultGBMParams())
	require.NoError(t, err)
	assert.Len(t, reg.Trees(), 300)
	assert.InDelta(t, mean(y), reg.BaseScore(), 1e-9)

	var baseErr, fitErr float64
	for i := range X {
		baseErr += (y[i] - reg.BaseScore()) * (y[i] - reg.BaseScore())
		d := y[i] - reg.Predict(X[i])
		fitErr += d * d
	}
	assert.Less(t, fitErr, baseErr*0.2, "boosting should explain most of the training variance")

	for _, tree := range reg.Trees() {
		assert.LessOrEqual(t, tree.Depth(), 4)
		for _, n := range tree.Nodes {
			if !n.IsLeaf() {
				assert.InDelta(t, n.Cover, tree.Nodes[n.Left].Cover+tree.Nodes[n.Right].Cover, 1e-9)
			}
		}
	}
}

func TestFitRegressor_Deterministic(t *testing.T) {
	panel := syntheticPanel(30, 2)
	X := panel.Matrix()
	y := make([]float64, len(X))
	for i, r := range panel.Rows {
		y[i] = SynthesizeLabel(r.Features)
	}

	a, err := FitRegressor(X, y, DefaultGBMParams())
	require.NoError(t, err)
	b, err := FitRegressor(X, y, DefaultGBMParams())
	require.NoError(t, err)
	for i := range X {
		assert.Equal(t, a.Predict(X[i]), b.Predict(X[i]))
	}
}

func TestFitRegressor_Errors(t *testing.T) {
	_, err := FitRegressor(nil, nil, DefaultGBMParams())
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = FitRegressor(make([]FeatureVector, 2), []float64{1}, DefaultGBMParams())
	assert.Error(t, err)
}

func TestFitRegressor_ConstantTarget(t *testing.T) {
	X := syntheticPanel(10, 3).Matrix()
	y := make([]float64, len(X))
	for i := range y {
		y[i] = 42
	}
	reg, err := FitRegressor(X, y, GBMParams{NumRounds: 5})
	require.NoError(t, err)
	for i := range X {
		assert.InDelta(t, 42, reg.Predict(X[i]), 1e-9)
	}
}

func TestGBMParams_WithDefaults(t *testing.T) {
	got := GBMParams{NumRounds: 10, LearningRate: 0.3}.withDefaults()
	assert.Equal(t, 10, got.NumRounds)
	assert.Equal(t, 0.3, got.LearningRate)
	assert.Equal(t, 4, got.MaxDepth)
	assert.Equal(t, 0.9, got.Subsample)
	assert.Equal(t, 0.8, got.ColSampleByTree)
	assert.Equal(t, int64(42), got.Seed)
}
