package domain

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// Distribution is a continuous wind-speed law on v >= 0. CDF is the
// antiderivative of PDF with CDF(0) = 0 and CDF(v) -> 1 as v grows.
type Distribution interface {
	PDF(v float64) float64
	CDF(v float64) float64
}

// RawMomenter is implemented by laws with a closed-form raw moment E[v^n].
type RawMomenter interface {
	RawMoment(n float64) float64
}

// PDFs evaluates d's density at every speed in vs.
func PDFs(d Distribution, vs []float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = d.PDF(v)
	}
	return out
}

// CDFs evaluates d's cumulative distribution at every speed in vs.
func CDFs(d Distribution, vs []float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = d.CDF(v)
	}
	return out
}

const (
	// tailMass is the probability left beyond the integration bound of
	// quadrature-based moments.
	tailMass = 1e-10
	// maxSupport caps the upper integration bound (m/s).
	maxSupport = 500.0
	// momentPanels bounds the Gauss-Legendre panels used for a moment.
	momentPanels = 200
	quadPoints   = 16
)

// Moment returns the raw moment E[v^n] of d, in closed form when available.
func Moment(d Distribution, n float64) float64 {
	if m, ok := d.(RawMomenter); ok {
		return m.RawMoment(n)
	}
	upper := upperSupport(d)
	panels := min(momentPanels, max(1, int(math.Ceil(upper))))
	f := func(v float64) float64 { return math.Pow(v, n) * d.PDF(v) }
	width := upper / float64(panels)
	var sum float64
	for i := range panels {
		lo := float64(i) * width
		sum += quad.Fixed(f, lo, lo+width, quadPoints, nil, 0)
	}
	return sum
}

// upperSupport finds a speed beyond which d holds less than tailMass.
func upperSupport(d Distribution) float64 {
	v := 1.0
	for v < maxSupport && 1-d.CDF(v) > tailMass {
		v *= 1.5
	}
	return math.Min(v, maxSupport)
}

// MeanWindSpeed is the first moment of d in m/s.
func MeanWindSpeed(d Distribution) float64 {
	return Moment(d, 1)
}

// MeanPowerDensity is the mean kinetic power flux 0.5·ρ·E[v³] in W/m².
func MeanPowerDensity(d Distribution, airDensity float64) float64 {
	return 0.5 * airDensity * Moment(d, 3)
}
