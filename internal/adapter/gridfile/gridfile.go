// Package gridfile loads a generalized wind climate from disk, choosing the
// codec from the file extension.
package gridfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/wind-yield/internal/adapter/gwc"
	"github.com/couchcryptid/wind-yield/internal/adapter/netcdf"
	"github.com/couchcryptid/wind-yield/internal/domain"
)

// IsNetCDF reports whether path names a NetCDF file.
func IsNetCDF(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nc", ".nc4", ".cdf":
		return true
	}
	return false
}

// Load reads a NetCDF grid for .nc files and a GWC text grid otherwise.
func Load(path string) (*domain.ClimateGrid, error) {
	if IsNetCDF(path) {
		return netcdf.LoadGrid(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid file: %w", err)
	}
	defer f.Close()

	g, err := gwc.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return g, nil
}
