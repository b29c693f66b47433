package domain

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// KDE is a Gaussian kernel density estimate of observed wind speeds,
// reflected at zero so that no probability mass falls on negative speeds.
type KDE struct {
	samples   []float64
	bandwidth float64
}

// NewKDE fits a KDE using Silverman's rule: h = (3n/4)^(-1/5)·σ.
func NewKDE(samples []float64) (*KDE, error) {
	if len(samples) < 2 {
		return nil, &DomainError{Field: "sample count", Value: float64(len(samples)), Reason: "need at least two samples"}
	}
	for _, v := range samples {
		if !(v >= 0) || math.IsInf(v, 0) {
			return nil, &DomainError{Field: "wind speed sample", Value: v, Reason: "must be a finite non-negative speed"}
		}
	}
	sigma := stat.StdDev(samples, nil)
	if !(sigma > 0) {
		return nil, &DomainError{Field: "sample spread", Value: sigma, Reason: "samples must not be identical"}
	}
	n := float64(len(samples))
	return &KDE{
		samples:   slices.Clone(samples),
		bandwidth: math.Pow(3*n/4, -0.2) * sigma,
	}, nil
}

// Bandwidth is the kernel standard deviation in m/s.
func (d *KDE) Bandwidth() float64 { return d.bandwidth }

func (d *KDE) PDF(v float64) float64 {
	if v < 0 {
		return 0
	}
	h := d.bandwidth
	var p float64
	for _, x := range d.samples {
		p += distuv.UnitNormal.Prob((v-x)/h) + distuv.UnitNormal.Prob((v+x)/h)
	}
	return p / (float64(len(d.samples)) * h)
}

func (d *KDE) CDF(v float64) float64 {
	if v <= 0 {
		return 0
	}
	h := d.bandwidth
	var p float64
	for _, x := range d.samples {
		p += distuv.UnitNormal.CDF((v-x)/h) - distuv.UnitNormal.CDF(-x/h) +
			distuv.UnitNormal.CDF((v+x)/h) - distuv.UnitNormal.CDF(x/h)
	}
	return math.Min(p/float64(len(d.samples)), 1)
}
