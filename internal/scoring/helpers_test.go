package scoring

import (
	"math"
	"math/rand"
)

// syntheticPanel builds n companies with random ratios against one macro snapshot.
// Roughly one in ten values is left missing.
func syntheticPanel(n int, seed int64) *Panel {
	rng := rand.New(rand.NewSource(seed))
	maybe := func(v float64) float64 {
		if rng.Intn(10) == 0 {
			return math.NaN()
		}
		return v
	}
	rows := make([]PanelRow, n)
	for i := range rows {
		rows[i] = PanelRow{
			CompanyID: uint(i + 1),
			Features: FeatureVector{
				maybe(0.2 + rng.Float64()*0.6),
				maybe(8 + rng.Float64()*27),
				maybe(500 + rng.Float64()*4500),
				maybe(-0.05 + rng.Float64()*0.3),
				maybe(0.2 + rng.Float64()*2.3),
				maybe(0.5 + rng.Float64()*14.5),
				5.9,
				6.5,
				4.1,
				2.3,
			},
		}
	}
	return &Panel{Rows: rows}
}
