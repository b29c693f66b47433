package domain

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Weibull is the two-parameter wind-speed law with scale A (m/s) and shape k.
type Weibull struct {
	A   float64
	K   float64
	law distuv.Weibull
}

// NewWeibull validates A and k and returns the law.
func NewWeibull(a, k float64) (Weibull, error) {
	if !(a > 0) || math.IsInf(a, 0) {
		return Weibull{}, &DomainError{Field: "weibull A", Value: a, Reason: "must be positive"}
	}
	if !(k > 0) || math.IsInf(k, 0) {
		return Weibull{}, &DomainError{Field: "weibull k", Value: k, Reason: "must be positive"}
	}
	return Weibull{A: a, K: k, law: distuv.Weibull{K: k, Lambda: a}}, nil
}

func (w Weibull) PDF(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v == 0:
		// The density's limit at zero depends on the shape alone.
		switch {
		case w.K < 1:
			return math.Inf(1)
		case w.K == 1:
			return 1 / w.A
		default:
			return 0
		}
	}
	return w.law.Prob(v)
}

func (w Weibull) CDF(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return w.law.CDF(v)
}

// RawMoment is A^n·Γ(1 + n/k).
func (w Weibull) RawMoment(n float64) float64 {
	return math.Pow(w.A, n) * math.Gamma(1+n/w.K)
}

// Scale returns the same law with A multiplied by factor.
func (w Weibull) Scale(factor float64) (Weibull, error) {
	return NewWeibull(w.A*factor, w.K)
}
