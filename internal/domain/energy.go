package domain

import (
	"math"
	"time"

	"gonum.org/v1/gonum/integrate/quad"
)

const (
	// MaxStep is the widest sub-interval (m/s) of a power-curve segment
	// handed to one Gauss-Legendre rule.
	MaxStep = 0.25
	// maxSubdivisions caps the sub-intervals of a single segment.
	maxSubdivisions = 64
	// ZeroTolerance is the mean power, relative to rated power, below which
	// the result is reported as exactly zero.
	ZeroTolerance = 1e-9
	// HoursPerYear is a Julian year of 365.25 days.
	HoursPerYear = 8766.0
)

// Year is HoursPerYear as a duration.
const Year = time.Duration(HoursPerYear) * time.Hour

// MeanPower returns E[P] = ∫ P(v)·pdf(v) dv in W. Each curve segment is
// integrated with composite Gauss-Legendre quadrature, subdividing it so
// no panel is wider than MaxStep. A declared rated plateau contributes
// rated·(1 - CDF(cut-out)) in closed form.
func MeanPower(t *Turbine, d Distribution) float64 {
	c := t.Curve
	rated := c.Rated()
	if rated == 0 {
		return 0
	}
	if !c.HasPlateau() && d.CDF(c.CutOut())-d.CDF(c.CutIn()) <= 0 {
		return 0
	}

	f := func(v float64) float64 { return c.Power(v) * d.PDF(v) }
	var sum float64
	for i := range c.segments() {
		a, b := c.speed(i), c.speed(i+1)
		if c.powers[i] == 0 && c.powers[i+1] == 0 {
			continue
		}
		n := min(maxSubdivisions, max(1, int(math.Ceil((b-a)/MaxStep))))
		width := (b - a) / float64(n)
		for j := range n {
			lo := a + float64(j)*width
			sum += quad.Fixed(f, lo, lo+width, quadPoints, nil, 0)
		}
	}
	if c.HasPlateau() {
		sum += c.lastPower() * (1 - d.CDF(c.CutOut()))
	}

	if !(sum > ZeroTolerance*rated) {
		return 0
	}
	return sum
}

// EnergyProduction is the expected energy (Wh) produced over period.
func EnergyProduction(t *Turbine, d Distribution, period time.Duration) (float64, error) {
	if period < 0 {
		return 0, &DomainError{Field: "period", Value: period.Hours(), Reason: "must not be negative"}
	}
	return MeanPower(t, d) * period.Hours(), nil
}

// AnnualEnergyProduction is the expected energy (Wh) over a Julian year.
func AnnualEnergyProduction(t *Turbine, d Distribution) float64 {
	return MeanPower(t, d) * HoursPerYear
}

// CapacityFactor is mean power over rated power.
func CapacityFactor(t *Turbine, d Distribution) float64 {
	rated := t.RatedPower()
	if rated == 0 {
		return 0
	}
	return MeanPower(t, d) / rated
}
