package domain

import "math"

// Scaled is the law of c·X for a base law X, used to move a distribution
// between heights along the log wind profile.
type Scaled struct {
	base   Distribution
	factor float64
}

// NewScaled wraps base with the speed transform v -> factor·v.
func NewScaled(base Distribution, factor float64) (*Scaled, error) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return nil, &DomainError{Field: "scale factor", Value: factor, Reason: "must be positive"}
	}
	return &Scaled{base: base, factor: factor}, nil
}

// LogProfileFactor is the log-law speed ratio between two heights over
// terrain of roughness z0: ln(to/z0) / ln(from/z0).
func LogProfileFactor(z0, from, to float64) (float64, error) {
	if err := checkRoughness(z0); err != nil {
		return 0, err
	}
	return logProfile(max(z0, MinRoughness), from, to)
}

func (s *Scaled) PDF(v float64) float64 {
	return s.base.PDF(v/s.factor) / s.factor
}

func (s *Scaled) CDF(v float64) float64 {
	return s.base.CDF(v / s.factor)
}

// RawMoment is c^n·E[X^n], in closed form only when the base law has one.
func (s *Scaled) RawMoment(n float64) float64 {
	return math.Pow(s.factor, n) * Moment(s.base, n)
}

// DistributionFromData fits a KDE to speeds observed at measurementHeight
// and moves it to targetHeight with the log wind profile for roughness z0.
func DistributionFromData(samples []float64, z0, measurementHeight, targetHeight float64) (Distribution, error) {
	if !(measurementHeight > 0) {
		return nil, &DomainError{Field: "measurement height", Value: measurementHeight, Reason: "must be positive"}
	}
	kde, err := NewKDE(samples)
	if err != nil {
		return nil, err
	}
	if measurementHeight == targetHeight {
		return kde, nil
	}
	factor, err := LogProfileFactor(z0, measurementHeight, targetHeight)
	if err != nil {
		return nil, err
	}
	return NewScaled(kde, factor)
}
