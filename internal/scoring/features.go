package scoring

import (
	"math"
	"sort"
)

// Feature names in model column order.
const (
	FeatureDebtRatio        = "debt_ratio"
	FeaturePERatio          = "pe_ratio"
	FeatureRevenue          = "revenue"
	FeatureProfitMargin     = "profit_margin"
	FeatureCashRatio        = "cash_ratio"
	FeatureInterestCoverage = "interest_coverage"
	FeatureGDPGrowth        = "gdp_growth"
	FeatureInterestRate     = "interest_rate"
	FeatureInflation        = "inflation"
	FeatureCreditSpread     = "credit_spread"
)

const NumFeatures = 10

var FeatureNames = [NumFeatures]string{
	FeatureDebtRatio,
	FeaturePERatio,
	FeatureRevenue,
	FeatureProfitMargin,
	FeatureCashRatio,
	FeatureInterestCoverage,
	FeatureGDPGrowth,
	FeatureInterestRate,
	FeatureInflation,
	FeatureCreditSpread,
}

var featureIndex = func() map[string]int {
	m := make(map[string]int, NumFeatures)
	for i, name := range FeatureNames {
		m[name] = i
	}
	return m
}()

// FeatureIndex returns the column of a feature name.
func FeatureIndex(name string) (int, bool) {
	i, ok := featureIndex[name]
	return i, ok
}

// FeatureVector holds one panel row. NaN marks a missing value.
type FeatureVector [NumFeatures]float64

func (v FeatureVector) Get(name string) float64 {
	i, ok := featureIndex[name]
	if !ok {
		return math.NaN()
	}
	return v[i]
}

// Map returns the vector keyed by feature name; missing values are omitted.
func (v FeatureVector) Map() map[string]float64 {
	out := make(map[string]float64, NumFeatures)
	for i, name := range FeatureNames {
		if !math.IsNaN(v[i]) {
			out[name] = v[i]
		}
	}
	return out
}

// Financials is the ratio part of a panel row, nil meaning not reported.
type Financials struct {
	DebtRatio        *float64
	PERatio          *float64
	Revenue          *float64
	ProfitMargin     *float64
	CashRatio        *float64
	InterestCoverage *float64
}

// Macro is the macroeconomic part of a panel row.
type Macro struct {
	GDPGrowth    *float64
	InterestRate *float64
	Inflation    *float64
	CreditSpread *float64
}

// PanelRow is one company's latest financials broadcast against the latest macro snapshot.
type PanelRow struct {
	CompanyID uint
	Features  FeatureVector
}

// Panel is the per-company feature table used for training and inference.
type Panel struct {
	Rows []PanelRow
}

// BuildPanel joins each company's latest financials with the macro snapshot.
// financials must already hold exactly one entry per company.
func BuildPanel(financials map[uint]Financials, macro *Macro) (*Panel, error) {
	if macro == nil {
		return nil, ErrDataUnavailable
	}

	ids := make([]uint, 0, len(financials))
	for id := range financials {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([]PanelRow, 0, len(ids))
	for _, id := range ids {
		f := financials[id]
		rows = append(rows, PanelRow{
			CompanyID: id,
			Features: FeatureVector{
				valueOrNaN(f.DebtRatio),
				valueOrNaN(f.PERatio),
				valueOrNaN(f.Revenue),
				valueOrNaN(f.ProfitMargin),
				valueOrNaN(f.CashRatio),
				valueOrNaN(f.InterestCoverage),
				valueOrNaN(macro.GDPGrowth),
				valueOrNaN(macro.InterestRate),
				valueOrNaN(macro.Inflation),
				valueOrNaN(macro.CreditSpread),
			},
		})
	}
	return &Panel{Rows: rows}, nil
}

// Row looks up a company's row.
func (p *Panel) Row(companyID uint) (FeatureVector, bool) {
	for _, r := range p.Rows {
		if r.CompanyID == companyID {
			return r.Features, true
		}
	}
	return FeatureVector{}, false
}

// Medians returns per-column medians over present values.
// A column with no present value gets 0.
func (p *Panel) Medians() FeatureVector {
	var medians FeatureVector
	col := make([]float64, 0, len(p.Rows))
	for j := 0; j < NumFeatures; j++ {
		col = col[:0]
		for _, r := range p.Rows {
			if !math.IsNaN(r.Features[j]) {
				col = append(col, r.Features[j])
			}
		}
		medians[j] = median(col)
	}
	return medians
}

// Impute replaces missing values with the given medians.
func Impute(v FeatureVector, medians FeatureVector) FeatureVector {
	for j := range v {
		if math.IsNaN(v[j]) {
			v[j] = medians[j]
		}
	}
	return v
}

// Matrix returns every row imputed with the panel medians.
func (p *Panel) Matrix() []FeatureVector {
	medians := p.Medians()
	out := make([]FeatureVector, len(p.Rows))
	for i, r := range p.Rows {
		out[i] = Impute(r.Features, medians)
	}
	return out
}

func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
