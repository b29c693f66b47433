package domain

import (
	"math"
	"sort"
)

// MinRoughness is the roughness length (m) used on the logarithmic axis in
// place of zero, which grids use for open water.
const MinRoughness = 0.0002

// SectorDistribution is the Weibull pair and frequency (percent) of one
// direction sector at a specific roughness and height.
type SectorDistribution struct {
	Sector    int     `json:"sector"`
	Direction float64 `json:"direction"`
	A         float64 `json:"a"`
	K         float64 `json:"k"`
	Frequency float64 `json:"frequency"`
}

// At interpolates every sector at a uniform roughness length z0 and height h.
func (g *ClimateGrid) At(z0, h float64) ([]SectorDistribution, []ExtrapolationWarning, error) {
	return g.SectorDistributions([]float64{z0}, h)
}

// SectorDistributions interpolates the grid at height for each sector.
// roughness holds either one value for all sectors or one value per sector.
// Roughness is interpolated first (linear in ln z0) at the two bracketing
// heights, then A follows the log wind profile across height while k and
// frequency are linear in height. Queries outside the grid are clamped and
// reported as warnings.
func (g *ClimateGrid) SectorDistributions(roughness []float64, height float64) ([]SectorDistribution, []ExtrapolationWarning, error) {
	if len(roughness) != 1 && len(roughness) != g.sectors {
		return nil, nil, &DomainError{Field: "roughness count", Value: float64(len(roughness)),
			Reason: "must be 1 or match the sector count"}
	}
	for _, z0 := range roughness {
		if err := checkRoughness(z0); err != nil {
			return nil, nil, err
		}
	}
	if !(height > 0) || math.IsInf(height, 0) {
		return nil, nil, &DomainError{Field: "height", Value: height, Reason: "must be positive"}
	}

	logLevels := make([]float64, len(g.roughness))
	for i, r := range g.roughness {
		logLevels[i] = math.Log(max(r, MinRoughness))
	}

	var warns warningSet
	out := make([]SectorDistribution, g.sectors)
	for s := range g.sectors {
		sd, err := g.interpolateSector(s, roughnessFor(roughness, s), height, logLevels, &warns)
		if err != nil {
			return nil, nil, err
		}
		out[s] = sd
	}
	return out, warns.list, nil
}

func (g *ClimateGrid) interpolateSector(s int, z0, height float64, logLevels []float64, warns *warningSet) (SectorDistribution, error) {
	logZ := math.Log(max(z0, MinRoughness))
	r0, r1, t, clamped := bracket(logLevels, logZ)
	if clamped {
		warns.add(ExtrapolationWarning{Axis: "roughness", Requested: z0, Clamped: g.roughness[r0]})
		logZ = logLevels[r0]
	}
	zEff := math.Exp(logZ)
	if height <= zEff {
		return SectorDistribution{}, &DomainError{Field: "height", Value: height, Reason: "must exceed the roughness length"}
	}

	h0, h1, w, clamped := bracket(g.heights, height)
	if clamped {
		warns.add(ExtrapolationWarning{Axis: "height", Requested: height, Clamped: g.heights[h0]})
	}

	a0, k0, f0 := g.blendRoughness(h0, s, r0, r1, t)
	if h0 == h1 {
		return SectorDistribution{Sector: s, Direction: g.SectorAngle(s), A: a0, K: k0, Frequency: f0}, nil
	}

	a1, k1, f1 := g.blendRoughness(h1, s, r0, r1, t)
	scale0, err := logProfile(zEff, g.heights[h0], height)
	if err != nil {
		return SectorDistribution{}, err
	}
	scale1, err := logProfile(zEff, g.heights[h1], height)
	if err != nil {
		return SectorDistribution{}, err
	}
	return SectorDistribution{
		Sector:    s,
		Direction: g.SectorAngle(s),
		A:         lerp(a0*scale0, a1*scale1, w),
		K:         lerp(k0, k1, w),
		Frequency: lerp(f0, f1, w),
	}, nil
}

// blendRoughness interpolates one height row of sector s between two
// roughness levels.
func (g *ClimateGrid) blendRoughness(h, s, r0, r1 int, t float64) (a, k, f float64) {
	i0, i1 := g.index(r0, h, s), g.index(r1, h, s)
	a = lerp(g.a[i0], g.a[i1], t)
	k = lerp(g.k[i0], g.k[i1], t)
	f = lerp(g.freq[r0*g.sectors+s], g.freq[r1*g.sectors+s], t)
	return a, k, f
}

// logProfile is the log-law speed ratio ln(to/z0)/ln(from/z0).
func logProfile(z0, from, to float64) (float64, error) {
	if from <= z0 {
		return 0, &DomainError{Field: "reference height", Value: from, Reason: "must exceed the roughness length"}
	}
	if to <= z0 {
		return 0, &DomainError{Field: "height", Value: to, Reason: "must exceed the roughness length"}
	}
	return math.Log(to/z0) / math.Log(from/z0), nil
}

// bracket locates x on an ascending axis. Values outside the axis collapse
// onto the nearest end and report clamped.
func bracket(axis []float64, x float64) (lo, hi int, t float64, clamped bool) {
	n := len(axis)
	if x <= axis[0] {
		return 0, 0, 0, x < axis[0]
	}
	if x >= axis[n-1] {
		return n - 1, n - 1, 0, x > axis[n-1]
	}
	hi = sort.SearchFloat64s(axis, x)
	if axis[hi] == x {
		return hi, hi, 0, false
	}
	lo = hi - 1
	return lo, hi, (x - axis[lo]) / (axis[hi] - axis[lo]), false
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func roughnessFor(roughness []float64, s int) float64 {
	if len(roughness) == 1 {
		return roughness[0]
	}
	return roughness[s]
}

func checkRoughness(z0 float64) error {
	if !(z0 >= 0) || math.IsInf(z0, 0) {
		return &DomainError{Field: "roughness", Value: z0, Reason: "must be a non-negative length"}
	}
	return nil
}

// warningSet keeps the first occurrence of each (axis, value) warning.
type warningSet struct {
	list []ExtrapolationWarning
}

func (w *warningSet) add(warn ExtrapolationWarning) {
	for _, existing := range w.list {
		if existing.Axis == warn.Axis && existing.Requested == warn.Requested {
			return
		}
	}
	w.list = append(w.list, warn)
}
