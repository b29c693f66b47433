package domain

import "math"

const (
	// StandardAirDensity is the ISA sea-level air density in kg/m³.
	StandardAirDensity = 1.225
	// ISATemperature is the ISA sea-level temperature in K.
	ISATemperature = 288.15
	// ISAPressure is the ISA sea-level pressure in Pa.
	ISAPressure = 101325.0

	dryAirGasConstant = 287.058 // J/(kg·K)
	vaporGasConstant  = 461.495 // J/(kg·K)
)

// AirDensity is the density of moist air (kg/m³) for a temperature in K, a
// pressure in Pa and a relative humidity in [0, 1].
func AirDensity(temperature, pressure, relativeHumidity float64) (float64, error) {
	if !(temperature > 0) {
		return 0, &DomainError{Field: "temperature", Value: temperature, Reason: "must be a positive absolute temperature"}
	}
	if !(pressure > 0) {
		return 0, &DomainError{Field: "pressure", Value: pressure, Reason: "must be positive"}
	}
	if !(relativeHumidity >= 0 && relativeHumidity <= 1) {
		return 0, &DomainError{Field: "relative humidity", Value: relativeHumidity, Reason: "must lie in [0, 1]"}
	}
	saturation := 611.2 * math.Exp(17.67*(temperature-273.15)/(temperature-29.65))
	vapor := saturation * relativeHumidity
	dry := pressure - vapor
	return dry/(dryAirGasConstant*temperature) + vapor/(vaporGasConstant*temperature), nil
}
