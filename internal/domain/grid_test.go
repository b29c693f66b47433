package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testGridSpec is a 2x2x4 grid: roughness {0, 0.03}, heights {10, 50}.
func testGridSpec() GridSpec {
	return GridSpec{
		Latitude:  55.5,
		Longitude: 8.1,
		Roughness: []float64{0.0, 0.03},
		Heights:   []float64{10, 50},
		Sectors:   4,
		A: [][][]float64{
			{{5.5, 5.5, 5.5, 5.5}, {6.5, 6.5, 6.5, 6.5}},
			{{6, 6, 6, 6}, {7, 7, 7, 7}},
		},
		K: [][][]float64{
			{{1.8, 1.8, 1.8, 1.8}, {2.0, 2.0, 2.0, 2.0}},
			{{1.9, 1.9, 1.9, 1.9}, {2.2, 2.2, 2.2, 2.2}},
		},
		Frequency: [][]float64{
			{10, 20, 30, 40},
			{25, 25, 25, 25},
		},
	}
}

func testGrid(t *testing.T) *ClimateGrid {
	t.Helper()
	g, err := NewClimateGrid(testGridSpec())
	require.NoError(t, err)
	return g
}

func TestNewClimateGrid_Valid(t *testing.T) {
	g := testGrid(t)

	assert.Equal(t, 4, g.Sectors())
	assert.Equal(t, []float64{0.0, 0.03}, g.Roughness())
	assert.Equal(t, []float64{10, 50}, g.Heights())
	assert.InDelta(t, 55.5, g.Latitude(), 1e-12)
	assert.InDelta(t, 8.1, g.Longitude(), 1e-12)
	assert.InDelta(t, 90.0, g.SectorAngle(1), 1e-12)
}

func TestNewClimateGrid_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GridSpec)
	}{
		{"no roughness", func(s *GridSpec) { s.Roughness = nil }},
		{"no heights", func(s *GridSpec) { s.Heights = nil }},
		{"zero sectors", func(s *GridSpec) { s.Sectors = 0 }},
		{"descending roughness", func(s *GridSpec) { s.Roughness = []float64{0.03, 0.0} }},
		{"negative roughness", func(s *GridSpec) { s.Roughness = []float64{-0.1, 0.03} }},
		{"zero height", func(s *GridSpec) { s.Heights = []float64{0, 50} }},
		{"missing roughness row", func(s *GridSpec) { s.A = s.A[:1] }},
		{"short sector row", func(s *GridSpec) { s.K[1][0] = []float64{1, 2, 3} }},
		{"non-positive A", func(s *GridSpec) { s.A[0][1][2] = 0 }},
		{"non-positive k", func(s *GridSpec) { s.K[1][1][3] = -2 }},
		{"frequencies off 100", func(s *GridSpec) { s.Frequency[1] = []float64{25, 25, 25, 20} }},
		{"negative frequency", func(s *GridSpec) { s.Frequency[0] = []float64{-10, 40, 30, 40} }},
		{"frequency row length", func(s *GridSpec) { s.Frequency[0] = []float64{50, 50} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := testGridSpec()
			tt.mutate(&spec)

			_, err := NewClimateGrid(spec)

			var mErr *MalformedGridError
			require.Error(t, err)
			assert.True(t, errors.As(err, &mErr), "want MalformedGridError, got %T", err)
		})
	}
}

func TestNewClimateGrid_CopiesInput(t *testing.T) {
	spec := testGridSpec()
	g, err := NewClimateGrid(spec)
	require.NoError(t, err)

	spec.A[1][1][0] = 99
	spec.Roughness[1] = 5

	c, err := g.Cell(1, 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 7.0, c.A, 1e-12)
	assert.Equal(t, []float64{0.0, 0.03}, g.Roughness())
}

func TestClimateGrid_Cell(t *testing.T) {
	g := testGrid(t)

	c, err := g.Cell(0, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, Cell{A: 6.5, K: 2.0, Frequency: 40}, c)
}

func TestClimateGrid_CellOutOfRange(t *testing.T) {
	g := testGrid(t)

	tests := []struct {
		name    string
		r, h, s int
		axis    string
	}{
		{"roughness high", 2, 0, 0, "roughness"},
		{"roughness negative", -1, 0, 0, "roughness"},
		{"height", 0, 2, 0, "height"},
		{"sector", 0, 0, 4, "sector"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Cell(tt.r, tt.h, tt.s)

			var idxErr *IndexError
			require.ErrorAs(t, err, &idxErr)
			assert.Equal(t, tt.axis, idxErr.Axis)
		})
	}
}

func TestClimateGrid_SpecRoundTrip(t *testing.T) {
	g := testGrid(t)

	again, err := NewClimateGrid(g.Spec())
	require.NoError(t, err)
	assert.Equal(t, g, again)
}
