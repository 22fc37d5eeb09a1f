package repository

import (
	"context"
	"testing"

	"credit-intelligence/internal/model"
	"credit-intelligence/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinancialRepository_GetLatestPerCompany(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	companies := NewCompanyRepository(db)
	repo := NewFinancialRepository(db)

	acme, err := companies.Register(ctx, &model.Company{Name: "Acme Steel"})
	require.NoError(t, err)
	nova, err := companies.Register(ctx, &model.Company{Name: "Nova Retail"})
	require.NoError(t, err)
	_, err = companies.Register(ctx, &model.Company{Name: "No Financials Inc"})
	require.NoError(t, err)

	rows := []model.FinancialSnapshot{
		{CompanyID: acme.ID, ReportDate: testutil.Date(2024, 1, 1), DebtRatio: testutil.Float(0.7)},
		{CompanyID: acme.ID, ReportDate: testutil.Date(2024, 6, 1), DebtRatio: testutil.Float(0.4)},
		{CompanyID: acme.ID, ReportDate: testutil.Date(2024, 3, 1), DebtRatio: testutil.Float(0.9)},
		{CompanyID: nova.ID, ReportDate: testutil.Date(2024, 2, 1), DebtRatio: testutil.Float(0.5)},
		// same report date as the previous row: the later insert wins
		{CompanyID: nova.ID, ReportDate: testutil.Date(2024, 2, 1), DebtRatio: testutil.Float(0.6)},
	}
	for i := range rows {
		require.NoError(t, repo.Create(ctx, &rows[i]))
	}

	latest, err := repo.GetLatestPerCompany(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)

	assert.Equal(t, acme.ID, latest[0].CompanyID)
	assert.InDelta(t, 0.4, *latest[0].DebtRatio, 1e-12)
	assert.Equal(t, nova.ID, latest[1].CompanyID)
	assert.InDelta(t, 0.6, *latest[1].DebtRatio, 1e-12)
}

func TestFinancialRepository_IgnoresOrphans(t *testing.T) {
	ctx := context.Background()
	repo := NewFinancialRepository(testutil.NewDB(t))

	require.NoError(t, repo.Create(ctx, &model.FinancialSnapshot{CompanyID: 42, ReportDate: testutil.Date(2024, 1, 1)}))

	latest, err := repo.GetLatestPerCompany(ctx)
	require.NoError(t, err)
	assert.Empty(t, latest)
}
