package netcdf

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// Scanner walks an ERA5 single-level file one timestamp at a time and
// yields the 10 m wind speed at the grid point nearest a site.
type Scanner struct {
	nc       api.Group
	u10, v10 packedVar
	times    int64
	lat, lon int // nearest grid indices
	pointLat float64
	pointLon float64
	pos      int64
	skipped  int64
	speed    float64
	err      error
}

// packedVar is a variable stored as scaled integers. fill holds the raw
// _FillValue and missing_value markers.
type packedVar struct {
	api.VarGetter
	scale, offset float64
	fill          []float64
}

// NewScanner opens an ERA5 file and locates the grid point nearest (lat, lon).
func NewScanner(path string, lat, lon float64) (*Scanner, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open era5 %s: %w", path, err)
	}
	s := &Scanner{nc: nc}
	if err := s.init(lat, lon); err != nil {
		nc.Close()
		return nil, err
	}
	return s, nil
}

func (s *Scanner) init(lat, lon float64) error {
	lats, err := vector(s.nc, "latitude")
	if err != nil {
		return err
	}
	lons, err := vector(s.nc, "longitude")
	if err != nil {
		return err
	}
	if len(lats) == 0 || len(lons) == 0 {
		return errors.New("era5 file has no latitude/longitude points")
	}
	s.lat = nearest(lats, lat)
	s.lon = nearest(lons, normalizeLongitude(lon, lons))
	s.pointLat, s.pointLon = lats[s.lat], lons[s.lon]

	if s.u10, err = packed(s.nc, "u10"); err != nil {
		return err
	}
	if s.v10, err = packed(s.nc, "v10"); err != nil {
		return err
	}
	s.times = s.u10.Len()
	return nil
}

func packed(nc api.Group, name string) (packedVar, error) {
	vg, err := nc.GetVarGetter(name)
	if err != nil {
		return packedVar{}, fmt.Errorf("era5 variable %s: %w", name, err)
	}
	p := packedVar{VarGetter: vg, scale: 1}
	attrs := vg.Attributes()
	if v, ok := attrs.Get("scale_factor"); ok {
		p.scale = toFloat(v, 1)
	}
	if v, ok := attrs.Get("add_offset"); ok {
		p.offset = toFloat(v, 0)
	}
	for _, key := range []string{"_FillValue", "missing_value"} {
		if v, ok := attrs.Get(key); ok {
			if f := toFloat(v, math.NaN()); !math.IsNaN(f) {
				p.fill = append(p.fill, f)
			}
		}
	}
	return p, nil
}

// Close closes the underlying file.
func (s *Scanner) Close() {
	s.nc.Close()
}

// Summary returns dataset facts suitable for logging.
func (s *Scanner) Summary() []any {
	return []any{
		"timestamps", s.times,
		"latitude", s.pointLat,
		"longitude", s.pointLon,
	}
}

// Scan reads the wind speed for the next timestamp. Timestamps where either
// component is a fill value are skipped.
func (s *Scanner) Scan() bool {
	for s.err == nil && s.pos < s.times {
		u, uValid, ok := s.read(s.u10)
		if !ok {
			return false
		}
		v, vValid, ok := s.read(s.v10)
		if !ok {
			return false
		}
		s.pos++
		if !uValid || !vValid {
			s.skipped++
			continue
		}
		s.speed = math.Hypot(u, v)
		return true
	}
	return false
}

// read returns the unpacked value at the current timestamp, whether it is
// a real sample, and false in ok when reading failed.
func (s *Scanner) read(p packedVar) (x float64, valid, ok bool) {
	raw, err := p.GetSlice(s.pos, s.pos+1)
	if err != nil {
		s.err = err
		return 0, false, false
	}
	switch t := raw.(type) {
	case [][][]int16:
		x = float64(t[0][s.lat][s.lon])
	case [][][]float32:
		x = float64(t[0][s.lat][s.lon])
	case [][][]float64:
		x = t[0][s.lat][s.lon]
	default:
		s.err = fmt.Errorf("era5 wind has unsupported type %T", raw)
		return 0, false, false
	}
	if math.IsNaN(x) || slices.Contains(p.fill, x) {
		return 0, false, true
	}
	return x*p.scale + p.offset, true, true
}

// Speed returns the wind speed read by the last Scan, in m/s.
func (s *Scanner) Speed() float64 { return s.speed }

// Skipped is the number of timestamps dropped as fill values.
func (s *Scanner) Skipped() int64 { return s.skipped }

// Err returns the first error met while scanning.
func (s *Scanner) Err() error { return s.err }

// WindSpeeds reads every 10 m wind speed at the point nearest (lat, lon).
func WindSpeeds(path string, lat, lon float64) ([]float64, error) {
	s, err := NewScanner(path, lat, lon)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	speeds := make([]float64, 0, s.times)
	for s.Scan() {
		speeds = append(speeds, s.Speed())
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan era5 %s: %w", path, err)
	}
	return speeds, nil
}

func nearest(axis []float64, x float64) int {
	best := 0
	for i, v := range axis {
		if math.Abs(v-x) < math.Abs(axis[best]-x) {
			best = i
		}
	}
	return best
}

// normalizeLongitude maps lon into [0, 360) when the file uses that convention.
func normalizeLongitude(lon float64, axis []float64) float64 {
	for _, v := range axis {
		if v > 180 {
			return math.Mod(lon+360, 360)
		}
	}
	return lon
}

func toFloat(v any, fallback float64) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case []float64:
		if len(t) > 0 {
			return t[0]
		}
	case []float32:
		if len(t) > 0 {
			return float64(t[0])
		}
	case []int16:
		if len(t) > 0 {
			return float64(t[0])
		}
	case []int32:
		if len(t) > 0 {
			return float64(t[0])
		}
	}
	return fallback
}
