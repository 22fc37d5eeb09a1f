package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"credit-intelligence/config"
	"credit-intelligence/internal/dto"
	"credit-intelligence/internal/model"
	"credit-intelligence/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(series string, date time.Time, value float64) *dto.FREDObservation {
	return &dto.FREDObservation{SeriesID: series, Date: date, Value: value}
}

func TestIngestionService_IngestMacro(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	may := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	june := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	e.ingestion.fredRepo = &fakeFRED{observations: map[string]*dto.FREDObservation{
		"FEDFUNDS": obs("FEDFUNDS", june, 5.33),
		"CPI":      obs("CPI", may, 313.5),
		"SPREAD":   obs("SPREAD", june, 1.8),
	}}

	result, err := e.ingestion.IngestMacro(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{scoring.FeatureGDPGrowth}, result.MissingSeries)
	assert.Equal(t, june, result.ReportDate.UTC())
	assert.Equal(t, 5.33, result.Values[scoring.FeatureInterestRate])

	latest, err := e.repo.MacroRepo.GetLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, result.SnapshotID, latest.ID)
	assert.Nil(t, latest.GDPGrowth)
	assert.Equal(t, 313.5, *latest.Inflation)
	assert.Equal(t, 1.8, *latest.CreditSpread)
}

func TestIngestionService_IngestMacroFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("missing api key", func(t *testing.T) {
		e := newTestEnv(t, func(cfg *config.Config) { cfg.FRED.APIKey = "" })
		_, err := e.ingestion.IngestMacro(ctx)
		assert.ErrorIs(t, err, ErrFREDNotConfigured)
	})

	t.Run("no series has data", func(t *testing.T) {
		e := newTestEnv(t)
		_, err := e.ingestion.IngestMacro(ctx)
		assert.ErrorIs(t, err, scoring.ErrDataUnavailable)
	})

	t.Run("transport error fails the run", func(t *testing.T) {
		e := newTestEnv(t)
		boom := errors.New("connection refused")
		e.ingestion.fredRepo = &fakeFRED{
			observations: map[string]*dto.FREDObservation{"GDP": obs("GDP", time.Now(), 2.0)},
			errs:         map[string]error{"CPI": boom},
		}
		_, err := e.ingestion.IngestMacro(ctx)
		assert.ErrorIs(t, err, boom)

		var n int64
		require.NoError(t, e.db.Model(&model.MacroSnapshot{}).Count(&n).Error)
		assert.Zero(t, n)
	})
}

func TestIngestionService_Seed(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	first, err := e.ingestion.Seed(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, first.CompanyIDs, 3)
	assert.Equal(t, 3, first.Financials)
	assert.Equal(t, 2, first.Events)

	financials, err := e.repo.FinancialRepo.GetLatestPerCompany(ctx)
	require.NoError(t, err)
	require.Len(t, financials, 3)
	for _, f := range financials {
		assert.GreaterOrEqual(t, *f.DebtRatio, 0.2)
		assert.LessOrEqual(t, *f.DebtRatio, 0.8)
		assert.GreaterOrEqual(t, *f.InterestCoverage, 0.5)
		assert.LessOrEqual(t, *f.InterestCoverage, 15.0)
	}

	// companies are registered by name, so a second seed adds data but no companies
	second, err := e.ingestion.Seed(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, first.CompanyIDs, second.CompanyIDs)
}
