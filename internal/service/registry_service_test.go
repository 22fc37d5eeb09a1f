package service

import (
	"context"
	"testing"
	"time"

	"credit-intelligence/internal/dto"
	"credit-intelligence/internal/repository"
	"credit-intelligence/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryService_RegisterCompany(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	first, err := e.registry.RegisterCompany(ctx, dto.RegisterCompanyRequest{Name: "  Acme Steel ", Ticker: utils.ToPointer("ACME")})
	require.NoError(t, err)
	assert.Equal(t, "Acme Steel", first.Name)

	again, err := e.registry.RegisterCompany(ctx, dto.RegisterCompanyRequest{Name: "Acme Steel"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = e.registry.RegisterCompany(ctx, dto.RegisterCompanyRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	list, err := e.registry.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRegistryService_RecordFinancials(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	c, err := e.registry.RegisterCompany(ctx, dto.RegisterCompanyRequest{Name: "Nova Retail"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     dto.RecordFinancialsRequest
		wantErr error
	}{
		{"plain date", dto.RecordFinancialsRequest{CompanyID: c.ID, ReportDate: "2024-03-31", DebtRatio: utils.ToPointer(0.4)}, nil},
		{"timestamp", dto.RecordFinancialsRequest{CompanyID: c.ID, ReportDate: "2024-06-30T00:00:00Z"}, nil},
		{"unknown company", dto.RecordFinancialsRequest{CompanyID: c.ID + 10, ReportDate: "2024-03-31"}, repository.ErrCompanyNotFound},
		{"bad date", dto.RecordFinancialsRequest{CompanyID: c.ID, ReportDate: "31/03/2024"}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot, err := e.registry.RecordFinancials(ctx, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, snapshot.ID)
		})
	}

	latest, err := e.repo.FinancialRepo.GetLatestPerCompany(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Nil(t, latest[0].DebtRatio, "the June snapshot is the latest and has no debt ratio")
}

func TestRegistryService_RecordEvent(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	c, err := e.registry.RegisterCompany(ctx, dto.RegisterCompanyRequest{Name: "ZenTech Systems"})
	require.NoError(t, err)

	before := utils.TimeNow().Add(-time.Second)
	event, err := e.registry.RecordEvent(ctx, dto.RecordEventRequest{
		CompanyID: c.ID,
		EventText: "Lawsuit filed",
		Tags:      []string{" lawsuit ", ""},
	})
	require.NoError(t, err)
	assert.True(t, event.EventDate.After(before), "event date defaults to now")
	assert.Equal(t, []string{"lawsuit"}, []string(event.Tags))

	dated, err := e.registry.RecordEvent(ctx, dto.RecordEventRequest{CompanyID: c.ID, EventText: "Old news", EventDate: "2020-01-01"})
	require.NoError(t, err)
	assert.Equal(t, 2020, dated.EventDate.Year())

	_, err = e.registry.RecordEvent(ctx, dto.RecordEventRequest{CompanyID: 404, EventText: "nobody"})
	assert.ErrorIs(t, err, repository.ErrCompanyNotFound)
}

func TestRegistryService_RecordMacro(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	_, err := e.registry.RecordMacro(ctx, dto.RecordMacroRequest{ReportDate: "2024-01-01", CreditSpread: utils.ToPointer(2.1)})
	require.NoError(t, err)
	_, err = e.registry.RecordMacro(ctx, dto.RecordMacroRequest{ReportDate: "yesterday"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	latest, err := e.repo.MacroRepo.GetLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 2.1, *latest.CreditSpread)
}
