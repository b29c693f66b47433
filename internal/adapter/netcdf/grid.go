// Package netcdf loads climate grids and ERA5 wind samples from NetCDF files.
//
// Grid files carry these variables:
//
//	location  (coord)                     latitude, longitude, elevation
//	roughness (roughness)                 m
//	height    (height)                    m
//	A         (roughness, height, sector) m/s
//	k         (roughness, height, sector)
//	frequency (roughness, sector)         %
package netcdf

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"

	"github.com/couchcryptid/wind-yield/internal/domain"
)

// LoadGrid reads a climate grid from path.
func LoadGrid(path string) (*domain.ClimateGrid, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid %s: %w", path, err)
	}
	defer nc.Close()

	var spec domain.GridSpec
	loc, err := vector(nc, "location")
	if err != nil {
		return nil, err
	}
	if len(loc) < 2 {
		return nil, &domain.MalformedGridError{Reason: fmt.Sprintf("location has %d values, want lat, lon[, elevation]", len(loc))}
	}
	spec.Latitude, spec.Longitude = loc[0], loc[1]
	if len(loc) > 2 {
		spec.Elevation = loc[2]
	}
	if spec.Roughness, err = vector(nc, "roughness"); err != nil {
		return nil, err
	}
	if spec.Heights, err = vector(nc, "height"); err != nil {
		return nil, err
	}
	if spec.A, err = cube(nc, "A"); err != nil {
		return nil, err
	}
	if spec.K, err = cube(nc, "k"); err != nil {
		return nil, err
	}
	if spec.Frequency, err = matrix(nc, "frequency"); err != nil {
		return nil, err
	}
	if len(spec.Frequency) > 0 {
		spec.Sectors = len(spec.Frequency[0])
	}
	return domain.NewClimateGrid(spec)
}

// WriteGrid stores g at path in the layout LoadGrid reads.
func WriteGrid(path string, g *domain.ClimateGrid) error {
	spec := g.Spec()
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return fmt.Errorf("create grid %s: %w", path, err)
	}

	vars := []struct {
		name   string
		values any
		dims   []string
		units  string
	}{
		{"location", []float64{spec.Latitude, spec.Longitude, spec.Elevation}, []string{"coord"}, "degrees_north, degrees_east, m"},
		{"roughness", spec.Roughness, []string{"roughness"}, "m"},
		{"height", spec.Heights, []string{"height"}, "m"},
		{"A", spec.A, []string{"roughness", "height", "sector"}, "m s-1"},
		{"k", spec.K, []string{"roughness", "height", "sector"}, "1"},
		{"frequency", spec.Frequency, []string{"roughness", "sector"}, "%"},
	}
	for _, v := range vars {
		attrs, err := util.NewOrderedMap([]string{"units"}, map[string]any{"units": v.units})
		if err != nil {
			cw.Close()
			return err
		}
		if err := cw.AddVar(v.name, api.Variable{Values: v.values, Dimensions: v.dims, Attributes: attrs}); err != nil {
			cw.Close()
			return fmt.Errorf("write %s: %w", v.name, err)
		}
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("close grid %s: %w", path, err)
	}
	return nil
}

func values(nc api.Group, name string) (any, error) {
	vg, err := nc.GetVarGetter(name)
	if err != nil {
		return nil, &domain.MalformedGridError{Reason: fmt.Sprintf("missing variable %q", name)}
	}
	v, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return v, nil
}

func vector(nc api.Group, name string) ([]float64, error) {
	v, err := values(nc, name)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case []float64:
		return t, nil
	case []float32:
		return widen(t), nil
	}
	return nil, wrongShape(name, v)
}

func matrix(nc api.Group, name string) ([][]float64, error) {
	v, err := values(nc, name)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case [][]float64:
		return t, nil
	case [][]float32:
		out := make([][]float64, len(t))
		for i, row := range t {
			out[i] = widen(row)
		}
		return out, nil
	}
	return nil, wrongShape(name, v)
}

func cube(nc api.Group, name string) ([][][]float64, error) {
	v, err := values(nc, name)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case [][][]float64:
		return t, nil
	case [][][]float32:
		out := make([][][]float64, len(t))
		for i, plane := range t {
			out[i] = make([][]float64, len(plane))
			for j, row := range plane {
				out[i][j] = widen(row)
			}
		}
		return out, nil
	}
	return nil, wrongShape(name, v)
}

func widen(row []float32) []float64 {
	out := make([]float64, len(row))
	for i, x := range row {
		out[i] = float64(x)
	}
	return out
}

func wrongShape(name string, v any) error {
	return &domain.MalformedGridError{Reason: fmt.Sprintf("variable %q has unsupported type %T", name, v)}
}
