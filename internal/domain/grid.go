package domain

import (
	"math"
	"slices"
)

// FrequencyTolerance is the allowed deviation, in percentage points, of a
// roughness level's sector frequencies from 100.
const FrequencyTolerance = 1.0

// GridSpec is the structural contract a grid source fills in. Arrays are
// indexed [roughness][height][sector] and frequencies [roughness][sector].
type GridSpec struct {
	Latitude  float64
	Longitude float64
	Elevation float64
	Roughness []float64
	Heights   []float64
	Sectors   int
	A         [][][]float64
	K         [][][]float64
	Frequency [][]float64
}

// Cell is the stored Weibull pair and sector frequency (percent) at one node.
type Cell struct {
	A         float64
	K         float64
	Frequency float64
}

// ClimateGrid is an immutable generalized wind climate. Values live in flat
// arrays addressed by (roughness, height, sector).
type ClimateGrid struct {
	lat, lon, elev float64
	roughness      []float64
	heights        []float64
	sectors        int
	a              []float64
	k              []float64
	freq           []float64
}

// NewClimateGrid validates spec and copies it into flat storage.
func NewClimateGrid(spec GridSpec) (*ClimateGrid, error) {
	nr, nh, ns := len(spec.Roughness), len(spec.Heights), spec.Sectors
	if nr == 0 {
		return nil, malformed("no roughness levels")
	}
	if nh == 0 {
		return nil, malformed("no heights")
	}
	if ns <= 0 {
		return nil, malformed("sector count %d must be positive", ns)
	}
	if err := checkAxis("roughness", spec.Roughness, 0, true); err != nil {
		return nil, err
	}
	if err := checkAxis("height", spec.Heights, 0, false); err != nil {
		return nil, err
	}
	if len(spec.A) != nr || len(spec.K) != nr || len(spec.Frequency) != nr {
		return nil, malformed("roughness dimension mismatch: levels=%d A=%d k=%d frequency=%d",
			nr, len(spec.A), len(spec.K), len(spec.Frequency))
	}

	g := &ClimateGrid{
		lat:       spec.Latitude,
		lon:       spec.Longitude,
		elev:      spec.Elevation,
		roughness: slices.Clone(spec.Roughness),
		heights:   slices.Clone(spec.Heights),
		sectors:   ns,
		a:         make([]float64, 0, nr*nh*ns),
		k:         make([]float64, 0, nr*nh*ns),
		freq:      make([]float64, 0, nr*ns),
	}

	for r := range nr {
		if len(spec.A[r]) != nh || len(spec.K[r]) != nh {
			return nil, malformed("height dimension mismatch at roughness %d: heights=%d A=%d k=%d",
				r, nh, len(spec.A[r]), len(spec.K[r]))
		}
		for h := range nh {
			if len(spec.A[r][h]) != ns || len(spec.K[r][h]) != ns {
				return nil, malformed("sector dimension mismatch at roughness %d height %d", r, h)
			}
			for s := range ns {
				a, k := spec.A[r][h][s], spec.K[r][h][s]
				if !(a > 0) || math.IsInf(a, 0) {
					return nil, malformed("A=%g at (%d,%d,%d) must be positive", a, r, h, s)
				}
				if !(k > 0) || math.IsInf(k, 0) {
					return nil, malformed("k=%g at (%d,%d,%d) must be positive", k, r, h, s)
				}
				g.a = append(g.a, a)
				g.k = append(g.k, k)
			}
		}

		if len(spec.Frequency[r]) != ns {
			return nil, malformed("frequency row %d has %d sectors, want %d", r, len(spec.Frequency[r]), ns)
		}
		var sum float64
		for s, f := range spec.Frequency[r] {
			if !(f >= 0) || math.IsInf(f, 0) {
				return nil, malformed("frequency=%g at (%d,%d) must be non-negative", f, r, s)
			}
			sum += f
			g.freq = append(g.freq, f)
		}
		if math.Abs(sum-100) > FrequencyTolerance {
			return nil, malformed("frequencies at roughness %d sum to %g, want 100", r, sum)
		}
	}
	return g, nil
}

func checkAxis(name string, values []float64, lower float64, inclusive bool) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < lower || (!inclusive && v == lower) {
			return malformed("%s[%d]=%g out of domain", name, i, v)
		}
		if i > 0 && v <= values[i-1] {
			return malformed("%s levels must be strictly ascending at index %d", name, i)
		}
	}
	return nil
}

// Cell returns the stored values at one grid node.
func (g *ClimateGrid) Cell(r, h, s int) (Cell, error) {
	if r < 0 || r >= len(g.roughness) {
		return Cell{}, &IndexError{Axis: "roughness", Index: r, Length: len(g.roughness)}
	}
	if h < 0 || h >= len(g.heights) {
		return Cell{}, &IndexError{Axis: "height", Index: h, Length: len(g.heights)}
	}
	if s < 0 || s >= g.sectors {
		return Cell{}, &IndexError{Axis: "sector", Index: s, Length: g.sectors}
	}
	i := g.index(r, h, s)
	return Cell{A: g.a[i], K: g.k[i], Frequency: g.freq[r*g.sectors+s]}, nil
}

func (g *ClimateGrid) index(r, h, s int) int {
	return (r*len(g.heights)+h)*g.sectors + s
}

func (g *ClimateGrid) Latitude() float64  { return g.lat }
func (g *ClimateGrid) Longitude() float64 { return g.lon }
func (g *ClimateGrid) Elevation() float64 { return g.elev }
func (g *ClimateGrid) Sectors() int       { return g.sectors }

// Roughness returns a copy of the roughness levels.
func (g *ClimateGrid) Roughness() []float64 { return slices.Clone(g.roughness) }

// Heights returns a copy of the height levels.
func (g *ClimateGrid) Heights() []float64 { return slices.Clone(g.heights) }

// SectorAngle is the centre direction of sector s in degrees.
func (g *ClimateGrid) SectorAngle(s int) float64 {
	return sectorCenter(s, g.sectors)
}

// Spec returns a deep copy of the grid in nested form, as consumed by encoders.
func (g *ClimateGrid) Spec() GridSpec {
	nr, nh, ns := len(g.roughness), len(g.heights), g.sectors
	spec := GridSpec{
		Latitude:  g.lat,
		Longitude: g.lon,
		Elevation: g.elev,
		Roughness: g.Roughness(),
		Heights:   g.Heights(),
		Sectors:   ns,
		A:         make([][][]float64, nr),
		K:         make([][][]float64, nr),
		Frequency: make([][]float64, nr),
	}
	for r := range nr {
		spec.A[r] = make([][]float64, nh)
		spec.K[r] = make([][]float64, nh)
		for h := range nh {
			i := g.index(r, h, 0)
			spec.A[r][h] = slices.Clone(g.a[i : i+ns])
			spec.K[r][h] = slices.Clone(g.k[i : i+ns])
		}
		spec.Frequency[r] = slices.Clone(g.freq[r*ns : (r+1)*ns])
	}
	return spec
}
