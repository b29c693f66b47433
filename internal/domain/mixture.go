package domain

import "math"

// Mixture is a frequency-weighted sum of per-sector Weibull laws. Weights
// are normalized to sum to 1.
type Mixture struct {
	components []Weibull
	weights    []float64
}

// NewSectorMixture builds the exact mixture density of the given sectors.
// Sectors with zero frequency are dropped.
func NewSectorMixture(sectors []SectorDistribution) (*Mixture, error) {
	var total float64
	for _, s := range sectors {
		if !(s.Frequency >= 0) || math.IsInf(s.Frequency, 0) {
			return nil, &DomainError{Field: "sector frequency", Value: s.Frequency, Reason: "must be non-negative"}
		}
		total += s.Frequency
	}
	if total <= 0 {
		return nil, &DomainError{Field: "total frequency", Value: total, Reason: "mixture needs positive mass"}
	}

	m := &Mixture{}
	for _, s := range sectors {
		if s.Frequency == 0 {
			continue
		}
		w, err := NewWeibull(s.A, s.K)
		if err != nil {
			return nil, err
		}
		m.components = append(m.components, w)
		m.weights = append(m.weights, s.Frequency/total)
	}
	return m, nil
}

func (m *Mixture) PDF(v float64) float64 {
	var p float64
	for i, c := range m.components {
		p += m.weights[i] * c.PDF(v)
	}
	return p
}

func (m *Mixture) CDF(v float64) float64 {
	var p float64
	for i, c := range m.components {
		p += m.weights[i] * c.CDF(v)
	}
	return math.Min(p, 1)
}

func (m *Mixture) RawMoment(n float64) float64 {
	var p float64
	for i, c := range m.components {
		p += m.weights[i] * c.RawMoment(n)
	}
	return p
}

// Weights returns a copy of the normalized component weights.
func (m *Mixture) Weights() []float64 {
	return append([]float64(nil), m.weights...)
}
