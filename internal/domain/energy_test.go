package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

func TestMeanPower_Siemens(t *testing.T) {
	turbine := siemensTurbine(t)
	w := mustWeibull(t, 6, 2)

	assert.InEpsilon(t, 852943.66, MeanPower(turbine, w), 1e-6)
	assert.InEpsilon(t, 7476.9041e6, AnnualEnergyProduction(turbine, w), 1e-6)
	assert.InEpsilon(t, 852943.66/3.3e6, CapacityFactor(turbine, w), 1e-6)
}

func TestMeanPower_RampAgainstFineTrapezoid(t *testing.T) {
	curve := rampCurve(t)
	turbine, err := NewTurbine("ramp", curve, 50, 80)
	require.NoError(t, err)
	w := mustWeibull(t, 8, 2)

	mean := MeanPower(turbine, w)
	assert.Greater(t, mean, 0.0)
	assert.Less(t, mean, 1000.0)

	// Independent check at ten times the quadrature resolution.
	xs := make([]float64, int((25-3)/MaxStep)*10+1)
	floats.Span(xs, 3, 25)
	ys := make([]float64, len(xs))
	for i, v := range xs {
		ys[i] = curve.Power(v) * w.PDF(v)
	}
	check := integrate.Trapezoidal(xs, ys)

	assert.InEpsilon(t, check, mean, 1e-3)
	assert.InDelta(t, 519.7677, mean, 1e-3)
}

func TestMeanPower_PlateauAddsTail(t *testing.T) {
	w := mustWeibull(t, 12, 2)
	cutOut := siemensTurbine(t)
	plateau := siemensTurbine(t, WithRatedPlateau())

	tail := 3.3e6 * (1 - w.CDF(25))
	assert.InDelta(t, MeanPower(cutOut, w)+tail, MeanPower(plateau, w), 1e-6)
}

func TestMeanPower_UnreachableCutIn(t *testing.T) {
	curve, err := NewPowerCurve([]CurvePoint{{30, 0}, {35, 2000}, {40, 2000}, {45, 0}})
	require.NoError(t, err)
	turbine, err := NewTurbine("tail", curve, 80, 100)
	require.NoError(t, err)

	realistic := mustWeibull(t, 8, 2)
	aep := AnnualEnergyProduction(turbine, realistic)
	assert.InDelta(t, 0, aep/(turbine.RatedPower()*HoursPerYear), 1e-6)

	calm := mustWeibull(t, 6, 2)
	assert.Equal(t, 0.0, MeanPower(turbine, calm))
	assert.Equal(t, 0.0, AnnualEnergyProduction(turbine, calm))
}

func TestMeanPower_ZeroCurve(t *testing.T) {
	curve, err := NewPowerCurve([]CurvePoint{{3, 0}, {25, 0}})
	require.NoError(t, err)
	turbine, err := NewTurbine("idle", curve, 80, 100)
	require.NoError(t, err)

	w := mustWeibull(t, 8, 2)
	assert.Equal(t, 0.0, MeanPower(turbine, w))
	assert.Equal(t, 0.0, CapacityFactor(turbine, w))
}

func TestEnergyProduction_Period(t *testing.T) {
	turbine := siemensTurbine(t)
	w := mustWeibull(t, 6, 2)
	mean := MeanPower(turbine, w)

	month, err := EnergyProduction(turbine, w, 30*24*time.Hour)
	require.NoError(t, err)
	assert.InDelta(t, mean*720, month, 1e-3)

	year, err := EnergyProduction(turbine, w, Year)
	require.NoError(t, err)
	assert.InDelta(t, AnnualEnergyProduction(turbine, w), year, 1e-3)

	_, err = EnergyProduction(turbine, w, -time.Hour)
	var dErr *DomainError
	assert.ErrorAs(t, err, &dErr)
}

func TestMeanPower_KDE(t *testing.T) {
	turbine := siemensTurbine(t)
	d, err := DistributionFromData(testSamples(), 0.03, 10, 135)
	require.NoError(t, err)

	mean := MeanPower(turbine, d)
	assert.Greater(t, mean, 0.0)
	assert.Less(t, mean, turbine.RatedPower())
}
