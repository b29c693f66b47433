// Package domain models wind resources and turbine yield.
//
// # Generalized Wind Climate
//
// A generalized wind climate (GWC) describes regional wind statistics
// independent of local terrain. It is a grid of Weibull parameters indexed by
// surface roughness length z0, height above ground and direction sector:
//
//	A[roughness][height][sector]   scale parameter, m/s
//	k[roughness][height][sector]   shape parameter
//	f[roughness][sector]           sector frequency, percent (sums to ~100)
//
// Sector i of n is centred on the compass bearing 360·i/n degrees. A roughness
// of 0 denotes open water and is evaluated on the logarithmic axis at
// [MinRoughness].
//
// # Interpolation
//
// A query at (z0, h) is resolved per sector. Roughness is interpolated first,
// linearly in ln z0, at the two grid heights bracketing h. The two results
// are then carried to h with the log wind profile
//
//	A(h) = A(h_ref) · ln(h/z0) / ln(h_ref/z0)
//
// and blended linearly in h; k and frequency are linear in h. Queries outside
// the grid clamp to the boundary and report an [ExtrapolationWarning].
//
// # Shelter
//
// Obstacles near the site reduce A per sector following the Risø/DTU
// (Perera) shelter model:
//
//	ΔU/U = 9.75 · (1 − P) · (h/x) · η · exp(−0.67 η^1.5)
//	η    = (z/h) · (K·x/h)^(−1/(n+2)),  K = 2κ²/ln(h/z0),  n = 0.14
//
// where h is the obstacle height, x its distance (at least 5h), P its
// porosity and z the hub height. The deficit is weighted by the share of the
// sector covered by the obstacle's angular footprint. k is left unchanged.
//
// # Distributions
//
// Any law implementing [Distribution] can drive the energy integral: a single
// [Weibull], the frequency-weighted sector [Mixture], or a [KDE] fit to
// observations and moved between heights with [Scaled].
//
// # Energy
//
// Mean power is E[P] = ∫ P(v)·pdf(v) dv, integrated per power-curve segment
// with composite Gauss-Legendre quadrature. Annual energy uses a Julian year
// of 8766 hours. All quantities are SI: m, m/s, W, Wh, kg/m³.
//
// # Assessment IDs
//
// Assessment IDs are deterministic SHA-256 hashes of the site and turbine
// set, so replaying a request yields the same key downstream. See [generateID].
package domain
