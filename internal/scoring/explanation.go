package scoring

import (
	"encoding/json"
	"fmt"
	"sort"
)

const topFactorCount = 2

// Factor is a named attribution, serialized as a [name, value] pair.
type Factor struct {
	Name  string
	Value float64
}

func (f Factor) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{f.Name, f.Value})
}

func (f *Factor) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("factor must be a [name, value] pair, got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &f.Name); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &f.Value)
}

// Explanation is the persisted account of one score.
type Explanation struct {
	BaseScore          float64       `json:"base_score"`
	EventAdjustment    float64       `json:"event_adjustment"`
	FinalScore         float64       `json:"final_score"`
	TopPositiveFactors []Factor      `json:"top_positive_factors"`
	TopNegativeFactors []Factor      `json:"top_negative_factors"`
	EventReasons       []EventReason `json:"event_reasons"`
}

// Composition is the outcome of combining a base score with an event adjustment.
type Composition struct {
	BaseScore       float64
	EventAdjustment float64
	FinalScore      float64
	Explanation     Explanation
}

// Compose clips base+adjustment to the score range and builds the explanation.
// base must already be clipped.
func Compose(base float64, adj EventAdjustment, attr Attribution) Composition {
	final := ClipScore(base + adj.Delta)

	reasons := adj.Reasons
	if reasons == nil {
		reasons = []EventReason{}
	}
	pos, neg := TopFactors(attr, topFactorCount)
	return Composition{
		BaseScore:       base,
		EventAdjustment: adj.Delta,
		FinalScore:      final,
		Explanation: Explanation{
			BaseScore:          round(base, 2),
			EventAdjustment:    round(adj.Delta, 2),
			FinalScore:         round(final, 2),
			TopPositiveFactors: pos,
			TopNegativeFactors: neg,
			EventReasons:       reasons,
		},
	}
}

// TopFactors returns the n highest and n lowest rounded contributions.
// Ties keep feature column order.
func TopFactors(attr Attribution, n int) (positive, negative []Factor) {
	factors := make([]Factor, NumFeatures)
	for i, name := range FeatureNames {
		factors[i] = Factor{Name: name, Value: round(attr.Contributions[i], 3)}
	}
	if n > NumFeatures {
		n = NumFeatures
	}

	desc := append([]Factor(nil), factors...)
	sort.SliceStable(desc, func(i, j int) bool { return desc[i].Value > desc[j].Value })
	asc := append([]Factor(nil), factors...)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].Value < asc[j].Value })
	return desc[:n], asc[:n]
}
