package domain

import "math"

// sectorCenter is the centre bearing of sector s out of n, in degrees.
// Sector 0 is centred on north.
func sectorCenter(s, n int) float64 {
	return 360 * float64(s) / float64(n)
}

// normalizeDegrees maps a to [0, 360).
func normalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// angleDiff is the signed smallest rotation from b to a, in (-180, 180].
func angleDiff(a, b float64) float64 {
	d := normalizeDegrees(a - b)
	if d > 180 {
		d -= 360
	}
	return d
}

// AzimuthToCartesian converts a compass bearing (0 = north, clockwise) to a
// mathematical angle (0 = east, counter-clockwise), both in degrees.
func AzimuthToCartesian(azimuth float64) float64 {
	return normalizeDegrees(90 - azimuth)
}

// CartesianToAzimuth is the inverse of AzimuthToCartesian.
func CartesianToAzimuth(angle float64) float64 {
	return normalizeDegrees(90 - angle)
}

// arcOverlap returns the angular length (degrees) shared by the arcs
// [c1-w1, c1+w1] and [c2-w2, c2+w2]. A half-width of 180 covers the circle.
func arcOverlap(c1, w1, c2, w2 float64) float64 {
	if w1 >= 180 {
		return min(2*w2, 360)
	}
	if w2 >= 180 {
		return min(2*w1, 360)
	}
	d := math.Abs(angleDiff(c1, c2))
	return max(0, min(w1, d+w2)-max(-w1, d-w2))
}
