package scoring

import (
	"math"
	"math/rand"
	"time"
)

const validationFraction = 0.25

// TrainingReport describes one training run. Validation metrics are informational
// and nil when the held-out split is too small to compute them.
type TrainingReport struct {
	TrainedAt      time.Time `json:"trained_at"`
	Rows           int       `json:"rows"`
	TrainRows      int       `json:"train_rows"`
	ValidationRows int       `json:"validation_rows"`
	R2             *float64  `json:"r2,omitempty"`
	MAE            *float64  `json:"mae,omitempty"`
}

// TrainedModel pairs a regressor with the explainer built from it.
type TrainedModel struct {
	Regressor *Regressor
	Explainer Explainer
	Report    TrainingReport
}

// Predict returns the raw and clipped output for one imputed row.
func (m *TrainedModel) Predict(x FeatureVector) (raw, clipped float64) {
	raw = m.Regressor.Predict(x)
	return raw, ClipScore(raw)
}

// Train fits a regressor on the panel against synthesized labels.
func Train(panel *Panel, params GBMParams, now time.Time) (*TrainedModel, error) {
	n := len(panel.Rows)
	if n == 0 {
		return nil, ErrInsufficientData
	}
	params = params.withDefaults()

	X := panel.Matrix()
	y := make([]float64, n)
	for i, r := range panel.Rows {
		y[i] = SynthesizeLabel(r.Features)
	}

	nTest := 0
	if n >= 2 {
		nTest = int(math.Ceil(validationFraction * float64(n)))
	}
	perm := rand.New(rand.NewSource(params.Seed)).Perm(n)
	testIdx, trainIdx := perm[:nTest], perm[nTest:]

	Xtr, ytr := subset(X, y, trainIdx)
	reg, err := FitRegressor(Xtr, ytr, params)
	if err != nil {
		return nil, err
	}

	report := TrainingReport{
		TrainedAt:      now,
		Rows:           n,
		TrainRows:      len(trainIdx),
		ValidationRows: len(testIdx),
	}
	if len(testIdx) > 0 {
		Xte, yte := subset(X, y, testIdx)
		preds := make([]float64, len(Xte))
		for i := range Xte {
			preds[i] = reg.Predict(Xte[i])
		}
		mae := meanAbsoluteError(yte, preds)
		report.MAE = &mae
		if r2, ok := r2Score(yte, preds); ok {
			report.R2 = &r2
		}
	}

	return &TrainedModel{
		Regressor: reg,
		Explainer: NewTreeExplainer(reg),
		Report:    report,
	}, nil
}

func subset(X []FeatureVector, y []float64, idx []int) ([]FeatureVector, []float64) {
	xs := make([]FeatureVector, len(idx))
	ys := make([]float64, len(idx))
	for i, j := range idx {
		xs[i] = X[j]
		ys[i] = y[j]
	}
	return xs, ys
}

func meanAbsoluteError(truth, preds []float64) float64 {
	var sum float64
	for i := range truth {
		sum += math.Abs(truth[i] - preds[i])
	}
	return sum / float64(len(truth))
}

// r2Score is undefined for fewer than two samples. A constant target scores 1 when
// predicted exactly and 0 otherwise.
func r2Score(truth, preds []float64) (float64, bool) {
	if len(truth) < 2 {
		return 0, false
	}
	m := mean(truth)
	var ssRes, ssTot float64
	for i := range truth {
		ssRes += (truth[i] - preds[i]) * (truth[i] - preds[i])
		ssTot += (truth[i] - m) * (truth[i] - m)
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1, true
		}
		return 0, true
	}
	return 1 - ssRes/ssTot, true
}
