package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cagmc/jwtauth/internal/models"
	"github.com/cagmc/jwtauth/internal/repo"
)

func TestMagicalObjectService(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := &MagicalObjectService{Store: f.repo}
	ctx := context.Background()

	items, err := svc.List(ctx, repo.MagicalObjectFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = svc.List(ctx, repo.MagicalObjectFilter{Elementals: []models.ElementalType{"Plasma"}})
	assert.ErrorIs(t, err, ErrValidation)

	from := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.List(ctx, repo.MagicalObjectFilter{DiscoveredFrom: &from, DiscoveredTo: &to})
	assert.ErrorIs(t, err, ErrValidation)

	obj := &models.MagicalObject{
		Name:       "Storm Bell",
		Elemental:  models.ElementalLightning,
		Discovered: time.Date(1888, 8, 8, 0, 0, 0, 0, time.UTC),
		Properties: []models.MagicalProperty{{Name: "Thunder", Value: "7"}},
	}
	require.NoError(t, svc.Create(ctx, obj))

	err = svc.Create(ctx, &models.MagicalObject{Name: "Storm Bell", Elemental: models.ElementalAir, Discovered: time.Now()})
	assert.ErrorIs(t, err, ErrConflict)

	err = svc.Create(ctx, &models.MagicalObject{Name: " ", Elemental: "Plasma"})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := svc.Get(ctx, obj.ID)
	require.NoError(t, err)
	assert.Equal(t, "Storm Bell", got.Name)
	require.Len(t, got.Properties, 1)

	_, err = svc.Get(ctx, 4242)
	assert.ErrorIs(t, err, ErrNotFound)

	upd, err := svc.Update(ctx, obj.ID, &models.MagicalObject{
		Name: "Storm Bell", Elemental: models.ElementalAir, Discovered: obj.Discovered,
	})
	require.NoError(t, err)
	assert.Empty(t, upd.Properties)

	_, err = svc.Update(ctx, 4242, &models.MagicalObject{Name: "x", Elemental: models.ElementalAir, Discovered: time.Now()})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, obj.ID))
	assert.ErrorIs(t, svc.Delete(ctx, obj.ID), ErrNotFound)
}
