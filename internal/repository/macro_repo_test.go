package repository

import (
	"context"
	"testing"

	"credit-intelligence/internal/model"
	"credit-intelligence/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMacroRepository_GetLatest(t *testing.T) {
	ctx := context.Background()
	repo := NewMacroRepository(testutil.NewDB(t))

	none, err := repo.GetLatest(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, repo.Create(ctx, &model.MacroSnapshot{ReportDate: testutil.Date(2024, 5, 1), GDPGrowth: testutil.Float(2.0)}))
	require.NoError(t, repo.Create(ctx, &model.MacroSnapshot{ReportDate: testutil.Date(2024, 1, 1), GDPGrowth: testutil.Float(1.0)}))

	latest, err := repo.GetLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.InDelta(t, 2.0, *latest.GDPGrowth, 1e-12)
	assert.Nil(t, latest.Inflation)
}
