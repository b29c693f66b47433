package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wideObstacle(direction, distance, height float64) Obstacle {
	// 200 m wide at 400 m covers about 28 degrees.
	return Obstacle{Direction: direction, Distance: distance, Height: height, Width: 200}
}

func TestObstacle_ReductionGrowsWithHeight(t *testing.T) {
	prev := 0.0
	for _, h := range []float64{10, 15, 20, 30, 40} {
		r := wideObstacle(0, 400, h).Reduction(50, 0.03)
		assert.Greater(t, r, prev, "height %g", h)
		prev = r
	}
}

func TestObstacle_ReductionDecaysWithDistance(t *testing.T) {
	prev := 1.0
	for _, x := range []float64{5, 10, 25, 50, 100, 200, 400, 800} {
		r := wideObstacle(0, x, 10).Reduction(10, 0.03)
		assert.Less(t, r, prev, "distance %g", x)
		prev = r
	}
}

func TestObstacle_NearFieldContinuousAtThreshold(t *testing.T) {
	inside := wideObstacle(0, 50-1e-9, 10).Reduction(10, 0.03)
	threshold := wideObstacle(0, 50, 10).Reduction(10, 0.03)
	assert.InDelta(t, threshold, inside, 1e-9)
}

func TestObstacle_NearFieldGrowsWithHeightBelowTop(t *testing.T) {
	// Hub at 30 m, 100 m from obstacles whose tops are above it: every case
	// sits in the near field and most below the wake peak.
	prev := 0.0
	for _, h := range []float64{40, 60, 80, 100, 150} {
		r := Obstacle{Distance: 100, Height: h}.Reduction(30, 0.03)
		assert.Greater(t, r, prev, "height %g", h)
		assert.Less(t, r, 1.0, "height %g", h)
		prev = r
	}
}

func TestObstacle_FullyPorousHasNoEffect(t *testing.T) {
	o := wideObstacle(0, 100, 20)
	o.Porosity = 1

	assert.Equal(t, 0.0, o.Reduction(30, 0.03))

	factors, err := ShelterFactors([]Obstacle{o}, 4, 30, []float64{0.03})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1}, factors)
}

func TestObstacle_PorosityAttenuates(t *testing.T) {
	solid := wideObstacle(0, 200, 15)
	porous := solid
	porous.Porosity = 0.5

	assert.InDelta(t, solid.Reduction(20, 0.03)/2, porous.Reduction(20, 0.03), 1e-12)
}

func TestObstacle_Validate(t *testing.T) {
	tests := []struct {
		name string
		o    Obstacle
	}{
		{"zero distance", Obstacle{Distance: 0, Height: 10}},
		{"negative distance", Obstacle{Distance: -5, Height: 10}},
		{"zero height", Obstacle{Distance: 100, Height: 0}},
		{"porosity above one", Obstacle{Distance: 100, Height: 10, Porosity: 1.2}},
		{"negative porosity", Obstacle{Distance: 100, Height: 10, Porosity: -0.1}},
		{"negative width", Obstacle{Distance: 100, Height: 10, Width: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dErr *DomainError
			require.ErrorAs(t, tt.o.Validate(), &dErr)

			_, err := ShelterFactors([]Obstacle{tt.o}, 4, 50, []float64{0.03})
			require.ErrorAs(t, err, &dErr)
		})
	}
}

func TestShelterFactors_OnlyCoveredSector(t *testing.T) {
	o := wideObstacle(90, 400, 30)

	factors, err := ShelterFactors([]Obstacle{o}, 4, 50, []float64{0.03})
	require.NoError(t, err)

	assert.Equal(t, 1.0, factors[0])
	assert.Less(t, factors[1], 1.0)
	assert.Equal(t, 1.0, factors[2])
	assert.Equal(t, 1.0, factors[3])

	share := 2 * o.halfWidth() / 90
	assert.InDelta(t, 1-share*o.Reduction(50, 0.03), factors[1], 1e-12)
}

func TestShelterFactors_TallerObstacleLowersA(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		hub      float64
		heights  []float64
	}{
		{"far field", 400, 50, []float64{10, 20, 30, 40}},
		{"near field below top", 100, 30, []float64{40, 60, 80, 100}},
		{"crossing into near field", 150, 20, []float64{10, 25, 30, 45}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := 1.0
			for _, h := range tt.heights {
				factors, err := ShelterFactors([]Obstacle{wideObstacle(0, tt.distance, h)}, 4, tt.hub, []float64{0.03})
				require.NoError(t, err)
				assert.Less(t, factors[0], prev, "height %g", h)
				assert.Greater(t, factors[0], 0.0, "height %g", h)
				prev = factors[0]
			}
		})
	}
}

func TestShelterFactors_OverlappingTakeMaximum(t *testing.T) {
	a := wideObstacle(0, 400, 20)
	b := wideObstacle(5, 400, 30)

	both, err := ShelterFactors([]Obstacle{a, b}, 4, 50, []float64{0.03})
	require.NoError(t, err)
	onlyB, err := ShelterFactors([]Obstacle{b}, 4, 50, []float64{0.03})
	require.NoError(t, err)

	assert.InDelta(t, onlyB[0], both[0], 1e-12)
}

func TestShelterFactors_DisjointUseDominant(t *testing.T) {
	// Same height/distance ratio; the nearer obstacle dominates even though
	// the farther one shelters the hub more.
	near := Obstacle{Direction: -30, Distance: 100, Height: 5, Width: 20}
	far := Obstacle{Direction: 30, Distance: 800, Height: 40, Width: 160}

	require.Greater(t, far.Reduction(50, 0.03), 0.0)

	both, err := ShelterFactors([]Obstacle{far, near}, 4, 50, []float64{0.03})
	require.NoError(t, err)
	onlyNear, err := ShelterFactors([]Obstacle{near}, 4, 50, []float64{0.03})
	require.NoError(t, err)

	assert.InDelta(t, onlyNear[0], both[0], 1e-12)
}

func TestNewObstacleAt(t *testing.T) {
	o, err := NewObstacleAt(100, 0, 10, 0, 0)
	require.NoError(t, err)

	assert.InDelta(t, 90.0, o.Direction, 1e-9)
	assert.InDelta(t, 100.0, o.Distance, 1e-9)

	o, err = NewObstacleAt(0, -50, 10, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 180.0, o.Direction, 1e-9)
}

func TestAzimuthConversion(t *testing.T) {
	tests := []struct {
		azimuth, cartesian float64
	}{
		{0, 90},
		{90, 0},
		{180, 270},
		{270, 180},
		{45, 45},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.cartesian, AzimuthToCartesian(tt.azimuth), 1e-12)
		assert.InDelta(t, tt.azimuth, CartesianToAzimuth(tt.cartesian), 1e-12)
	}
}

func TestArcOverlap(t *testing.T) {
	assert.InDelta(t, 10.0, arcOverlap(0, 45, 0, 5), 1e-12)
	assert.InDelta(t, 5.0, arcOverlap(0, 45, 45, 5), 1e-12)
	assert.InDelta(t, 5.0, arcOverlap(0, 45, 315, 5), 1e-12)
	assert.InDelta(t, 0.0, arcOverlap(0, 45, 180, 5), 1e-12)
	assert.InDelta(t, 10.0, arcOverlap(0, 180, 200, 5), 1e-12)
}
