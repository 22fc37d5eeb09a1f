package scoring

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOverrides(t *testing.T) {
	base := vector(map[string]float64{FeatureDebtRatio: 0.7, FeatureGDPGrowth: 1})

	t.Run("recognized names are substituted", func(t *testing.T) {
		got, applied, err := ApplyOverrides(base, map[string]interface{}{
			FeatureDebtRatio:  0.4,
			FeatureGDPGrowth:  json.Number("3"),
			FeatureCashRatio:  2,
			"not_a_feature":   "ignored",
			"another_unknown": nil,
		})
		require.NoError(t, err)
		assert.Equal(t, 0.4, got.Get(FeatureDebtRatio))
		assert.Equal(t, 3.0, got.Get(FeatureGDPGrowth))
		assert.Equal(t, 2.0, got.Get(FeatureCashRatio))
		assert.Equal(t, map[string]float64{FeatureDebtRatio: 0.4, FeatureGDPGrowth: 3, FeatureCashRatio: 2}, applied)
		assert.Equal(t, 0.7, base.Get(FeatureDebtRatio), "input vector is not mutated")
	})

	t.Run("empty overrides change nothing", func(t *testing.T) {
		got, applied, err := ApplyOverrides(base, map[string]interface{}{})
		require.NoError(t, err)
		assert.Empty(t, applied)
		assert.Equal(t, base.Get(FeatureDebtRatio), got.Get(FeatureDebtRatio))
	})

	invalid := []interface{}{"0.4", true, nil, math.NaN(), math.Inf(1), []float64{1}, json.Number("abc")}
	for _, v := range invalid {
		_, _, err := ApplyOverrides(base, map[string]interface{}{FeatureDebtRatio: v})
		assert.ErrorIs(t, err, ErrInvalidOverride, "value %v", v)
	}
}
