package domain

import "math"

const (
	vonKarman = 0.4
	// shelterProfileExponent is the power-law exponent of the approach flow.
	shelterProfileExponent = 0.14
	// nearFieldHeights is the distance, in obstacle heights, at which the
	// near field begins.
	nearFieldHeights = 5.0
	// minFootprint is the angular width (degrees) assigned to a point obstacle.
	minFootprint = 1.0
)

// wakePeak is the η at which η·exp(-0.67η^1.5) peaks.
var wakePeak = math.Pow(1/(1.5*0.67), 1/1.5)

// Obstacle is a sheltering object seen from the site: a building, tree line
// or similar. Direction is the compass bearing from the site to the obstacle.
type Obstacle struct {
	Direction float64 `json:"direction"`
	Distance  float64 `json:"distance"`
	Height    float64 `json:"height"`
	Porosity  float64 `json:"porosity"`
	Width     float64 `json:"width,omitempty"`
}

// NewObstacleAt places an obstacle by its east/north offset (m) from the site.
func NewObstacleAt(east, north, height, porosity, width float64) (Obstacle, error) {
	o := Obstacle{
		Direction: CartesianToAzimuth(math.Atan2(north, east) * 180 / math.Pi),
		Distance:  math.Hypot(east, north),
		Height:    height,
		Porosity:  porosity,
		Width:     width,
	}
	return o, o.Validate()
}

// Validate checks the obstacle's physical parameters.
func (o Obstacle) Validate() error {
	switch {
	case !(o.Distance > 0) || math.IsInf(o.Distance, 0):
		return &DomainError{Field: "obstacle distance", Value: o.Distance, Reason: "must be positive"}
	case !(o.Height > 0) || math.IsInf(o.Height, 0):
		return &DomainError{Field: "obstacle height", Value: o.Height, Reason: "must be positive"}
	case !(o.Porosity >= 0 && o.Porosity <= 1):
		return &DomainError{Field: "obstacle porosity", Value: o.Porosity, Reason: "must lie in [0, 1]"}
	case !(o.Width >= 0) || math.IsInf(o.Width, 0):
		return &DomainError{Field: "obstacle width", Value: o.Width, Reason: "must be non-negative"}
	case math.IsNaN(o.Direction) || math.IsInf(o.Direction, 0):
		return &DomainError{Field: "obstacle direction", Value: o.Direction, Reason: "must be finite"}
	}
	return nil
}

// Reduction is the relative speed deficit ΔU/U behind the obstacle at height
// z above terrain of roughness z0, for flow straight across it. Beyond the
// near-field threshold of 5h it follows the Perera wake. Inside it the
// undisturbed fraction at the threshold shrinks linearly with x/5h, with
// the wake profile held at its peak for hubs below the peak. The result
// stays below 1.
func (o Obstacle) Reduction(z, z0 float64) float64 {
	z0 = max(z0, MinRoughness)
	if o.Height <= z0 || o.Porosity >= 1 || z <= 0 {
		return 0
	}
	solidity := 1 - o.Porosity
	threshold := nearFieldHeights * o.Height
	if o.Distance >= threshold {
		return math.Min(solidity*wakeDeficit(z, z0, o.Height, o.Distance, false), 1)
	}
	edge := math.Min(wakeDeficit(z, z0, o.Height, threshold, true), 1)
	return solidity * (1 - (1-edge)*o.Distance/threshold)
}

// wakeDeficit is the solid-obstacle Perera deficit at distance x. With
// envelope set, η below the wake peak is lifted to the peak.
func wakeDeficit(z, z0, h, x float64, envelope bool) float64 {
	k := 2 * vonKarman * vonKarman / math.Log(h/z0)
	eta := (z / h) * math.Pow(k*x/h, -1/(shelterProfileExponent+2))
	if envelope {
		eta = max(eta, wakePeak)
	}
	return 9.75 * (h / x) * eta * math.Exp(-0.67*math.Pow(eta, 1.5))
}

// halfWidth is half the angular footprint of the obstacle in degrees.
func (o Obstacle) halfWidth() float64 {
	hw := math.Atan(o.Width/2/o.Distance) * 180 / math.Pi
	return max(hw, minFootprint/2)
}

// ShelterFactors returns, per sector, the factor (1 - ΔU/U) applied to A.
// roughness holds one value or one per sector. Each obstacle's deficit is
// weighted by the share of the sector its footprint covers. Obstacles with
// overlapping footprints combine by maximum; when a sector holds disjoint
// groups, only the group of the dominant obstacle (largest height/distance,
// nearest on ties) applies.
func ShelterFactors(obstacles []Obstacle, sectors int, hubHeight float64, roughness []float64) ([]float64, error) {
	if sectors <= 0 {
		return nil, &DomainError{Field: "sector count", Value: float64(sectors), Reason: "must be positive"}
	}
	if len(roughness) != 1 && len(roughness) != sectors {
		return nil, &DomainError{Field: "roughness count", Value: float64(len(roughness)),
			Reason: "must be 1 or match the sector count"}
	}
	for _, o := range obstacles {
		if err := o.Validate(); err != nil {
			return nil, err
		}
	}

	factors := make([]float64, sectors)
	halfSector := 180 / float64(sectors)
	for s := range sectors {
		center := sectorCenter(s, sectors)
		z0 := roughnessFor(roughness, s)

		var hits []shelterHit
		for _, o := range obstacles {
			covered := arcOverlap(center, halfSector, o.Direction, o.halfWidth())
			if covered <= 0 {
				continue
			}
			share := math.Min(covered/(2*halfSector), 1)
			hits = append(hits, shelterHit{obstacle: o, reduction: share * o.Reduction(hubHeight, z0)})
		}
		factors[s] = 1 - combineShelter(hits)
	}
	return factors, nil
}

type shelterHit struct {
	obstacle  Obstacle
	reduction float64
}

func combineShelter(hits []shelterHit) float64 {
	if len(hits) == 0 {
		return 0
	}

	// Union overlapping footprints into clusters.
	cluster := make([]int, len(hits))
	for i := range cluster {
		cluster[i] = i
	}
	find := func(i int) int {
		for cluster[i] != i {
			cluster[i] = cluster[cluster[i]]
			i = cluster[i]
		}
		return i
	}
	for i := range hits {
		for j := i + 1; j < len(hits); j++ {
			a, b := hits[i].obstacle, hits[j].obstacle
			if arcOverlap(a.Direction, a.halfWidth(), b.Direction, b.halfWidth()) > 0 {
				cluster[find(i)] = find(j)
			}
		}
	}

	dominant := 0
	for i := 1; i < len(hits); i++ {
		if dominates(hits[i].obstacle, hits[dominant].obstacle) {
			dominant = i
		}
	}

	root := find(dominant)
	var reduction float64
	for i := range hits {
		if find(i) == root {
			reduction = math.Max(reduction, hits[i].reduction)
		}
	}
	return math.Min(reduction, 1)
}

// dominates reports whether a shelters more than b by height/distance,
// preferring the nearer obstacle on ties.
func dominates(a, b Obstacle) bool {
	ra, rb := a.Height/a.Distance, b.Height/b.Distance
	if ra != rb {
		return ra > rb
	}
	return a.Distance < b.Distance
}
