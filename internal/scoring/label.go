package scoring

import "math"

const (
	ScoreMin = 0.0
	ScoreMax = 100.0

	// labelFallback is used when the proxy formula is undefined.
	labelFallback = 50.0
)

// SynthesizeLabel computes the bootstrap training target for one row.
// The coefficients are a placeholder for a real default/loss label source.
func SynthesizeLabel(v FeatureVector) float64 {
	debt := zeroIfMissing(v.Get(FeatureDebtRatio))
	margin := zeroIfMissing(v.Get(FeatureProfitMargin))
	cash := zeroIfMissing(v.Get(FeatureCashRatio))
	coverage := zeroIfMissing(v.Get(FeatureInterestCoverage))
	spread := zeroIfMissing(v.Get(FeatureCreditSpread))

	score := clip(1-debt, 0, 1)*40 +
		clip(margin, -0.2, 0.4)*100*0.25 +
		clip(cash, 0, 3)*10 +
		clip(coverage, 0, 20)*1.5 -
		clip(spread, 0, 10)*2
	if math.IsNaN(score) {
		score = labelFallback
	}
	return ClipScore(score)
}

// ClipScore bounds a raw value to the score range.
func ClipScore(v float64) float64 {
	return clip(v, ScoreMin, ScoreMax)
}

func zeroIfMissing(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
