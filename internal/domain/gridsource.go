package domain

import "context"

// GridSource supplies the generalized wind climate nearest to a coordinate.
// Implementations may fetch remotely, read a file or serve from cache.
type GridSource interface {
	Grid(ctx context.Context, lat, lon float64) (*ClimateGrid, error)
}

// StaticGridSource serves one grid for every coordinate, as when a single
// site file is configured.
type StaticGridSource struct {
	grid *ClimateGrid
}

// NewStaticGridSource wraps grid as a GridSource.
func NewStaticGridSource(grid *ClimateGrid) *StaticGridSource {
	return &StaticGridSource{grid: grid}
}

func (s *StaticGridSource) Grid(ctx context.Context, _, _ float64) (*ClimateGrid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.grid, nil
}
