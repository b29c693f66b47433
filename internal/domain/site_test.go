package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSite_FromGrid(t *testing.T) {
	g := testGrid(t)

	site, err := NewSite(g, []float64{0.03}, 50, nil)
	require.NoError(t, err)

	assert.Empty(t, site.Warnings)
	assert.Len(t, site.Sectors, 4)
	assert.InDelta(t, 55.5, site.Latitude, 1e-12)

	// Every sector is Weibull(7, 2.2), so the mixture collapses onto it.
	w := mustWeibull(t, 7, 2.2)
	for _, v := range []float64{2, 6, 11} {
		assert.InDelta(t, w.PDF(v), site.Distribution.PDF(v), 1e-12)
		assert.InDelta(t, w.CDF(v), site.Distribution.CDF(v), 1e-12)
	}
}

func TestNewSite_ShelterScalesOnlyA(t *testing.T) {
	g := testGrid(t)
	obstacle := Obstacle{Direction: 180, Distance: 300, Height: 25, Width: 150}

	open, err := NewSite(g, []float64{0.03}, 50, nil)
	require.NoError(t, err)
	sheltered, err := NewSite(g, []float64{0.03}, 50, []Obstacle{obstacle})
	require.NoError(t, err)

	assert.Less(t, sheltered.Sectors[2].A, open.Sectors[2].A)
	assert.Equal(t, open.Sectors[2].K, sheltered.Sectors[2].K)
	assert.Equal(t, open.Sectors[0].A, sheltered.Sectors[0].A)
	assert.Less(t, MeanWindSpeed(sheltered.Distribution), MeanWindSpeed(open.Distribution))
}

func TestNewSite_CopiesInputs(t *testing.T) {
	g := testGrid(t)
	roughness := []float64{0.03}
	obstacles := []Obstacle{{Direction: 0, Distance: 200, Height: 10}}

	site, err := NewSite(g, roughness, 50, obstacles)
	require.NoError(t, err)

	roughness[0] = 1
	obstacles[0].Height = 99
	assert.Equal(t, []float64{0.03}, site.Roughness)
	assert.Equal(t, 10.0, site.Obstacles[0].Height)
}

func TestDistributionFromGrid_Warnings(t *testing.T) {
	g := testGrid(t)

	d, warns, err := DistributionFromGrid(g, []float64{0.03}, 120, nil)
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, "height", warns[0].Axis)
	assert.InDelta(t, 1.0, d.CDF(200), 1e-6)
}

func TestDistributionFromGrid_InvalidObstacle(t *testing.T) {
	g := testGrid(t)

	_, _, err := DistributionFromGrid(g, []float64{0.03}, 50, []Obstacle{{Distance: 100, Height: 10, Porosity: 2}})
	var dErr *DomainError
	assert.ErrorAs(t, err, &dErr)
}

func TestStaticGridSource(t *testing.T) {
	g := testGrid(t)
	src := NewStaticGridSource(g)

	got, err := src.Grid(context.Background(), -33.9, 151.2)
	require.NoError(t, err)
	assert.Same(t, g, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Grid(ctx, 0, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
