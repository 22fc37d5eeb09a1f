package repository

import (
	"context"
	"testing"

	"credit-intelligence/internal/model"
	"credit-intelligence/internal/testutil"
	"credit-intelligence/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyRepository_RegisterIsIdempotentByName(t *testing.T) {
	ctx := context.Background()
	repo := NewCompanyRepository(testutil.NewDB(t))

	first, err := repo.Register(ctx, &model.Company{Name: "Acme Steel", Ticker: utils.ToPointer("ACME")})
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := repo.Register(ctx, &model.Company{Name: "Acme Steel", Ticker: utils.ToPointer("OTHER")})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "ACME", *second.Ticker, "existing row is returned unchanged")

	companies, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, companies, 1)
}

func TestCompanyRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	repo := NewCompanyRepository(testutil.NewDB(t))

	c, err := repo.Register(ctx, &model.Company{Name: "Nova Retail"})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nova Retail", found.Name)

	_, err = repo.FindByID(ctx, c.ID+100)
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}
