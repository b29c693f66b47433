package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// CurvePoint is one sample of a power curve: speed in m/s, power in W.
type CurvePoint struct {
	Speed float64 `json:"speed"`
	Power float64 `json:"power"`
}

type curveOptions struct {
	plateau bool
}

// CurveOption configures a PowerCurve.
type CurveOption func(*curveOptions)

// WithRatedPlateau declares that the turbine holds its last power value
// above the last curve point instead of cutting out. The last two points
// must carry equal power.
func WithRatedPlateau() CurveOption {
	return func(o *curveOptions) { o.plateau = true }
}

// PowerCurve is an immutable piecewise-linear power curve. Power is zero
// below the first point and, unless a rated plateau was declared, above the
// last point.
type PowerCurve struct {
	speeds  []float64
	powers  []float64
	plateau bool
	fit     interp.PiecewiseLinear
}

// NewPowerCurve validates points and builds the curve.
func NewPowerCurve(points []CurvePoint, opts ...CurveOption) (*PowerCurve, error) {
	var o curveOptions
	for _, opt := range opts {
		opt(&o)
	}
	if len(points) < 2 {
		return nil, &DomainError{Field: "power curve length", Value: float64(len(points)), Reason: "need at least two points"}
	}

	c := &PowerCurve{
		speeds:  make([]float64, len(points)),
		powers:  make([]float64, len(points)),
		plateau: o.plateau,
	}
	for i, p := range points {
		if !(p.Speed >= 0) || math.IsInf(p.Speed, 0) {
			return nil, &DomainError{Field: "power curve speed", Value: p.Speed, Reason: "must be a finite non-negative speed"}
		}
		if i > 0 && p.Speed <= points[i-1].Speed {
			return nil, &DomainError{Field: "power curve speed", Value: p.Speed, Reason: "speeds must be strictly increasing"}
		}
		if !(p.Power >= 0) || math.IsInf(p.Power, 0) {
			return nil, &DomainError{Field: "power curve power", Value: p.Power, Reason: "must be finite and non-negative"}
		}
		c.speeds[i] = p.Speed
		c.powers[i] = p.Power
	}

	n := len(points)
	if c.plateau && c.powers[n-1] != c.powers[n-2] {
		return nil, &DomainError{Field: "power curve plateau", Value: c.powers[n-1],
			Reason: "rated plateau requires the last two points to carry equal power"}
	}
	if err := c.fit.Fit(c.speeds, c.powers); err != nil {
		return nil, fmt.Errorf("fit power curve: %w", err)
	}
	return c, nil
}

// Power returns the electrical power (W) at wind speed v.
func (c *PowerCurve) Power(v float64) float64 {
	n := len(c.speeds)
	switch {
	case math.IsNaN(v) || v < c.speeds[0]:
		return 0
	case v > c.speeds[n-1]:
		if c.plateau {
			return c.powers[n-1]
		}
		return 0
	}
	return c.fit.Predict(v)
}

// Points returns a copy of the curve samples.
func (c *PowerCurve) Points() []CurvePoint {
	pts := make([]CurvePoint, len(c.speeds))
	for i := range c.speeds {
		pts[i] = CurvePoint{Speed: c.speeds[i], Power: c.powers[i]}
	}
	return pts
}

func (c *PowerCurve) CutIn() float64      { return c.speeds[0] }
func (c *PowerCurve) CutOut() float64     { return c.speeds[len(c.speeds)-1] }
func (c *PowerCurve) HasPlateau() bool    { return c.plateau }
func (c *PowerCurve) lastPower() float64  { return c.powers[len(c.powers)-1] }
func (c *PowerCurve) segments() int       { return len(c.speeds) - 1 }
func (c *PowerCurve) speed(i int) float64 { return c.speeds[i] }

// Rated is the largest power on the curve.
func (c *PowerCurve) Rated() float64 {
	var rated float64
	for _, p := range c.powers {
		rated = math.Max(rated, p)
	}
	return rated
}

// Turbine is a named power curve mounted at a hub height.
type Turbine struct {
	Name          string
	Curve         *PowerCurve
	RotorDiameter float64
	HubHeight     float64
}

// NewTurbine validates the geometry and returns the turbine.
func NewTurbine(name string, curve *PowerCurve, rotorDiameter, hubHeight float64) (*Turbine, error) {
	if curve == nil {
		return nil, &DomainError{Field: "power curve", Reason: "required"}
	}
	if !(rotorDiameter > 0) || math.IsInf(rotorDiameter, 0) {
		return nil, &DomainError{Field: "rotor diameter", Value: rotorDiameter, Reason: "must be positive"}
	}
	if !(hubHeight > 0) || math.IsInf(hubHeight, 0) {
		return nil, &DomainError{Field: "hub height", Value: hubHeight, Reason: "must be positive"}
	}
	return &Turbine{Name: name, Curve: curve, RotorDiameter: rotorDiameter, HubHeight: hubHeight}, nil
}

// RotorArea is the swept area π·D²/4 in m².
func (t *Turbine) RotorArea() float64 {
	return math.Pi * t.RotorDiameter * t.RotorDiameter / 4
}

// RatedPower is the largest power on the turbine's curve, in W.
func (t *Turbine) RatedPower() float64 {
	return t.Curve.Rated()
}

// PowerCoefficient is P(v) / (0.5·ρ·A·v³). It is undefined at v <= 0.
func (t *Turbine) PowerCoefficient(v, airDensity float64) (float64, error) {
	if !(v > 0) {
		return 0, &DomainError{Field: "wind speed", Value: v, Reason: "power coefficient needs a positive speed"}
	}
	if !(airDensity > 0) {
		return 0, &DomainError{Field: "air density", Value: airDensity, Reason: "must be positive"}
	}
	return t.Curve.Power(v) / (0.5 * airDensity * t.RotorArea() * v * v * v), nil
}

// PowerCoefficients evaluates Cp at every curve speed, skipping zero speed.
func (t *Turbine) PowerCoefficients(airDensity float64) (speeds, cp []float64, err error) {
	for _, p := range t.Curve.Points() {
		if p.Speed == 0 {
			continue
		}
		c, err := t.PowerCoefficient(p.Speed, airDensity)
		if err != nil {
			return nil, nil, err
		}
		speeds = append(speeds, p.Speed)
		cp = append(cp, c)
	}
	return speeds, cp, nil
}

func (t *Turbine) String() string {
	return fmt.Sprintf("%s, %.3g MW, height:%g m, diameter:%g m",
		t.Name, t.RatedPower()/1e6, t.HubHeight, t.RotorDiameter)
}
