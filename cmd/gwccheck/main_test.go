package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
	"github.com/couchcryptid/wind-yield/internal/adapter/gridfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixture = filepath.Join("..", "..", "internal", "adapter", "gwc", "testdata", "site.lib")

const turbinesJSON = `[
	{"name": "low", "rotor_diameter": 50, "hub_height": 30,
	 "power_curve": [[3, 0], [10, 1000], [15, 1000], [25, 0]]},
	{"name": "tall", "rotor_diameter": 50, "hub_height": 120,
	 "power_curve": [[3, 0], [10, 1000], [15, 1000], [25, 0]]}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCheck(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Grid(t *testing.T) {
	code, out, errOut := runCheck(t, "-grid", fixture, "-roughness", "0.03", "-hub", "50")
	require.Equal(t, 0, code, errOut)

	assert.Contains(t, out, "Location:   55.5000, 8.1000 (elevation 12 m)")
	assert.Contains(t, out, "Sectors:    4 (90.0° wide)")
	assert.Contains(t, out, "Equivalent Weibull:  A=7.00 m/s k=2.200")
	assert.Contains(t, out, "All checks passed.")
}

func TestRun_GridWithTurbines(t *testing.T) {
	turbines := writeFile(t, "turbines.json", turbinesJSON)

	code, out, errOut := runCheck(t, "-grid", fixture, "-hub", "50", "-turbines", turbines)
	require.Equal(t, 0, code, errOut)

	assert.Contains(t, out, "Turbine yields:")
	assert.Contains(t, out, "low")
	assert.Contains(t, out, "tall")
}

func TestRun_SingleTurbineObject(t *testing.T) {
	turbine := writeFile(t, "turbine.json",
		`{"name": "solo", "rotor_diameter": 50, "hub_height": 50, "power_curve": [[3, 0], [10, 1000], [25, 1000]]}`)

	code, out, errOut := runCheck(t, "-grid", fixture, "-turbines", turbine)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "solo")
}

func TestRun_ExtrapolationWarned(t *testing.T) {
	code, out, _ := runCheck(t, "-grid", fixture, "-hub", "150")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "WARN height 150 outside grid range, clamped to 50")
}

func TestRun_Convert(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"site.nc", "site.lib"} {
		t.Run(name, func(t *testing.T) {
			dst := filepath.Join(dir, name)
			code, out, errOut := runCheck(t, "-grid", fixture, "-hub", "50", "-convert", dst)
			require.Equal(t, 0, code, errOut)
			assert.Contains(t, out, "Wrote "+dst)

			src, err := gridfile.Load(fixture)
			require.NoError(t, err)
			got, err := gridfile.Load(dst)
			require.NoError(t, err)
			assert.Equal(t, src.Spec(), got.Spec())
		})
	}
}

func TestRun_ERA5(t *testing.T) {
	path := writeERA5(t)
	turbines := writeFile(t, "turbines.json", turbinesJSON)

	code, out, errOut := runCheck(t, "-era5", path, "-lat", "55.5", "-lon", "8.1",
		"-roughness", "0.03", "-hub", "80", "-turbines", turbines)
	require.Equal(t, 0, code, errOut)

	assert.Contains(t, out, "Samples:  12")
	assert.Contains(t, out, "Mean wind speed:")
	assert.Contains(t, out, "Turbine yields:")
}

func TestRun_Errors(t *testing.T) {
	badTurbine := writeFile(t, "bad.json", `[{"name": "x", "rotor_diameter": 50, "hub_height": 50, "power_curve": [[3, 0]]}]`)
	emptyTurbines := writeFile(t, "empty.json", `[]`)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no input", nil, 2},
		{"both inputs", []string{"-grid", fixture, "-era5", "x.nc"}, 2},
		{"convert era5", []string{"-era5", "x.nc", "-convert", "y.nc"}, 2},
		{"bad roughness", []string{"-grid", fixture, "-roughness", "rough"}, 2},
		{"unknown flag", []string{"-grid", fixture, "-nope"}, 2},
		{"missing grid", []string{"-grid", filepath.Join(t.TempDir(), "none.lib")}, 1},
		{"negative roughness", []string{"-grid", fixture, "-roughness", "-1"}, 1},
		{"bad turbine", []string{"-grid", fixture, "-turbines", badTurbine}, 1},
		{"no turbines", []string{"-grid", fixture, "-turbines", emptyTurbines}, 1},
		{"era5 sector roughness", []string{"-era5", "x.nc", "-roughness", "0.03,0.1"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCheck(t, tt.args...)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, errOut)
		})
	}
}

func TestRun_Help(t *testing.T) {
	code, _, errOut := runCheck(t, "-h")
	assert.Equal(t, 0, code)
	assert.Contains(t, errOut, "-grid")
}

// writeERA5 builds a one-point ERA5-like file holding twelve hourly samples.
func writeERA5(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "era5.nc")
	cw, err := cdf.OpenWriter(path)
	require.NoError(t, err)

	packing, err := util.NewOrderedMap(
		[]string{"scale_factor", "add_offset"},
		map[string]any{"scale_factor": 0.01, "add_offset": 0.0},
	)
	require.NoError(t, err)

	speeds := []int16{310, 450, 520, 680, 730, 220, 890, 550, 610, 440, 970, 380}
	times := make([]int32, len(speeds))
	u := make([][][]int16, len(speeds))
	v := make([][][]int16, len(speeds))
	for i, s := range speeds {
		times[i] = int32(1_000_000 + i)
		u[i] = [][]int16{{s}}
		v[i] = [][]int16{{0}}
	}

	require.NoError(t, cw.AddVar("time", api.Variable{Values: times, Dimensions: []string{"time"}}))
	require.NoError(t, cw.AddVar("latitude", api.Variable{Values: []float32{55.5}, Dimensions: []string{"latitude"}}))
	require.NoError(t, cw.AddVar("longitude", api.Variable{Values: []float32{8.0}, Dimensions: []string{"longitude"}}))
	dims := []string{"time", "latitude", "longitude"}
	require.NoError(t, cw.AddVar("u10", api.Variable{Values: u, Dimensions: dims, Attributes: packing}))
	require.NoError(t, cw.AddVar("v10", api.Variable{Values: v, Dimensions: dims, Attributes: packing}))
	require.NoError(t, cw.Close())
	return path
}
