package domain

import (
	"math"
	"slices"
)

// Site is a resolved location: the sector table at hub height after
// roughness, height and shelter corrections, and the combined distribution.
type Site struct {
	Latitude     float64
	Longitude    float64
	Roughness    []float64
	HubHeight    float64
	Obstacles    []Obstacle
	Sectors      []SectorDistribution
	Distribution Distribution
	Warnings     []ExtrapolationWarning
}

// NewSite resolves the site distribution at hubHeight from grid. roughness
// holds one value or one per grid sector. Obstacles reduce each sector's A
// before the sectors are combined.
func NewSite(grid *ClimateGrid, roughness []float64, hubHeight float64, obstacles []Obstacle) (*Site, error) {
	sectors, warns, err := grid.SectorDistributions(roughness, hubHeight)
	if err != nil {
		return nil, err
	}
	if len(obstacles) > 0 {
		factors, err := ShelterFactors(obstacles, grid.Sectors(), hubHeight, roughness)
		if err != nil {
			return nil, err
		}
		for i := range sectors {
			sectors[i].A *= factors[i]
		}
	}
	mix, err := NewSectorMixture(sectors)
	if err != nil {
		return nil, err
	}
	return &Site{
		Latitude:     grid.Latitude(),
		Longitude:    grid.Longitude(),
		Roughness:    slices.Clone(roughness),
		HubHeight:    hubHeight,
		Obstacles:    slices.Clone(obstacles),
		Sectors:      sectors,
		Distribution: mix,
		Warnings:     warns,
	}, nil
}

// DistributionFromGrid returns the sector mixture at height for the given
// roughness profile and obstacles, together with any clamping warnings.
func DistributionFromGrid(grid *ClimateGrid, roughness []float64, height float64, obstacles []Obstacle) (Distribution, []ExtrapolationWarning, error) {
	site, err := NewSite(grid, roughness, height, obstacles)
	if err != nil {
		return nil, nil, err
	}
	return site.Distribution, site.Warnings, nil
}

const (
	minShape        = 0.5
	maxShape        = 50.0
	shapeIterations = 200
)

// EquivalentWeibull returns the single Weibull law with the same mean and
// second moment as d. It summarizes a site and is not used for energy.
func EquivalentWeibull(d Distribution) (Weibull, error) {
	m1, m2 := Moment(d, 1), Moment(d, 2)
	if !(m1 > 0) || !(m2 > 0) {
		return Weibull{}, &DomainError{Field: "mean wind speed", Value: m1, Reason: "distribution has no spread to match"}
	}
	target := m1 * m1 / m2

	// Γ(1+1/k)²/Γ(1+2/k) increases monotonically with k.
	ratio := func(k float64) float64 {
		g1 := math.Gamma(1 + 1/k)
		return g1 * g1 / math.Gamma(1+2/k)
	}
	lo, hi := minShape, maxShape
	switch {
	case target <= ratio(lo):
		hi = lo
	case target >= ratio(hi):
		lo = hi
	default:
		for range shapeIterations {
			mid := (lo + hi) / 2
			if ratio(mid) < target {
				lo = mid
			} else {
				hi = mid
			}
			if hi-lo < 1e-12 {
				break
			}
		}
	}
	k := (lo + hi) / 2
	return NewWeibull(m1/math.Gamma(1+1/k), k)
}
