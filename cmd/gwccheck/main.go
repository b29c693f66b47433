// Command gwccheck inspects a generalized wind climate before it is served.
// It validates a GWC or NetCDF grid, prints the sector table at a hub
// height, and optionally evaluates turbines against it. With -era5 the
// distribution is fitted from ERA5 10 m wind samples instead of a grid.
//
// Usage:
//
//	go run ./cmd/gwccheck -grid site.lib -roughness 0.03 -hub 80 \
//	  -turbines turbines.json -convert site.nc
//
//	go run ./cmd/gwccheck -era5 era5.nc -lat 55.5 -lon 8.1 -roughness 0.03 \
//	  -hub 80 -turbines turbines.json
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/couchcryptid/wind-yield/internal/adapter/gridfile"
	"github.com/couchcryptid/wind-yield/internal/adapter/gwc"
	"github.com/couchcryptid/wind-yield/internal/adapter/netcdf"
	"github.com/couchcryptid/wind-yield/internal/domain"
)

// era5Height is the measurement height of the ERA5 u10/v10 fields.
const era5Height = 10.0

type options struct {
	grid      string
	era5      string
	lat, lon  float64
	roughness []float64
	hub       float64
	turbines  string
	convert   string
	density   float64
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 2
	}

	var turbines []domain.TurbineSpec
	if opts.turbines != "" {
		turbines, err = loadTurbines(opts.turbines)
		if err != nil {
			fmt.Fprintf(stderr, "FATAL: load turbines: %v\n", err)
			return 1
		}
	}

	if opts.era5 != "" {
		err = checkERA5(stdout, opts, turbines)
	} else {
		err = checkGrid(stdout, opts, turbines)
	}
	if err != nil {
		fmt.Fprintf(stderr, "FAIL: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "\nAll checks passed.")
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("gwccheck", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	var roughness string
	fs.StringVar(&opts.grid, "grid", "", "GWC (.lib) or NetCDF (.nc) grid file")
	fs.StringVar(&opts.era5, "era5", "", "ERA5 NetCDF file with u10/v10 wind components")
	fs.Float64Var(&opts.lat, "lat", 0, "site latitude for -era5")
	fs.Float64Var(&opts.lon, "lon", 0, "site longitude for -era5")
	fs.StringVar(&roughness, "roughness", "0.03", "roughness length in m, or one comma-separated value per sector")
	fs.Float64Var(&opts.hub, "hub", 80, "hub height in m for the sector table")
	fs.StringVar(&opts.turbines, "turbines", "", "JSON file with one turbine or a list of turbines")
	fs.StringVar(&opts.convert, "convert", "", "write the grid to this path (.nc for NetCDF, GWC otherwise)")
	fs.Float64Var(&opts.density, "density", domain.StandardAirDensity, "air density in kg/m³ for the power density")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	switch {
	case opts.grid == "" && opts.era5 == "":
		fs.Usage()
		return options{}, errors.New("one of -grid or -era5 is required")
	case opts.grid != "" && opts.era5 != "":
		return options{}, errors.New("-grid and -era5 are mutually exclusive")
	case opts.era5 != "" && opts.convert != "":
		return options{}, errors.New("-convert needs -grid")
	}

	z0, err := parseRoughness(roughness)
	if err != nil {
		return options{}, err
	}
	opts.roughness = z0
	return opts, nil
}

func parseRoughness(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid -roughness %q: %w", s, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// loadTurbines accepts either a JSON array of turbines or a single object.
func loadTurbines(path string) ([]domain.TurbineSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var specs []domain.TurbineSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		var one domain.TurbineSpec
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		}
		specs = []domain.TurbineSpec{one}
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%s holds no turbines", filepath.Base(path))
	}
	for _, s := range specs {
		if _, err := s.Turbine(); err != nil {
			return nil, fmt.Errorf("turbine %q: %w", s.Name, err)
		}
	}
	return specs, nil
}

// ── Grid checks ──

func checkGrid(w io.Writer, opts options, turbines []domain.TurbineSpec) error {
	grid, err := gridfile.Load(opts.grid)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "=== Climate Grid: %s ===\n\n", filepath.Base(opts.grid))
	printGridSummary(w, grid)

	site, err := domain.NewSite(grid, opts.roughness, opts.hub, nil)
	if err != nil {
		return fmt.Errorf("resolve site at %g m: %w", opts.hub, err)
	}
	fmt.Fprintf(w, "\nSector table at %g m, roughness %v:\n", opts.hub, opts.roughness)
	printSectors(w, site.Sectors)
	printWarnings(w, site.Warnings)
	if err := printDistribution(w, site.Distribution, opts.density); err != nil {
		return err
	}

	if len(turbines) > 0 {
		rows := make([]yieldRow, 0, len(turbines))
		for _, spec := range turbines {
			d, warns, err := domain.DistributionFromGrid(grid, opts.roughness, spec.HubHeight, nil)
			if err != nil {
				return fmt.Errorf("turbine %q: %w", spec.Name, err)
			}
			row, err := evaluate(spec, d)
			if err != nil {
				return err
			}
			row.warnings = len(warns)
			rows = append(rows, row)
		}
		printYields(w, rows)
	}

	if opts.convert != "" {
		if err := convert(grid, opts.convert); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nWrote %s\n", opts.convert)
	}
	return nil
}

func printGridSummary(w io.Writer, g *domain.ClimateGrid) {
	fmt.Fprintf(w, "Location:   %.4f, %.4f (elevation %g m)\n", g.Latitude(), g.Longitude(), g.Elevation())
	fmt.Fprintf(w, "Sectors:    %d (%.1f° wide)\n", g.Sectors(), 360/float64(g.Sectors()))
	fmt.Fprintf(w, "Roughness:  %v m\n", g.Roughness())
	fmt.Fprintf(w, "Heights:    %v m\n", g.Heights())
}

func printSectors(w io.Writer, sectors []domain.SectorDistribution) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "sector\tdirection\tfreq %\tA m/s\tk\t")
	for _, s := range sectors {
		fmt.Fprintf(tw, "%d\t%.1f\t%.2f\t%.2f\t%.3f\t\n", s.Sector, s.Direction, s.Frequency, s.A, s.K)
	}
	tw.Flush()
}

func printWarnings(w io.Writer, warns []domain.ExtrapolationWarning) {
	for _, warn := range warns {
		fmt.Fprintf(w, "  WARN %s\n", warn)
	}
}

func printDistribution(w io.Writer, d domain.Distribution, density float64) error {
	eq, err := domain.EquivalentWeibull(d)
	if err != nil {
		return fmt.Errorf("equivalent weibull: %w", err)
	}
	fmt.Fprintf(w, "\nMean wind speed:     %.2f m/s\n", domain.MeanWindSpeed(d))
	fmt.Fprintf(w, "Mean power density:  %.1f W/m²\n", domain.MeanPowerDensity(d, density))
	fmt.Fprintf(w, "Equivalent Weibull:  A=%.2f m/s k=%.3f\n", eq.A, eq.K)
	return nil
}

func convert(grid *domain.ClimateGrid, path string) error {
	if gridfile.IsNetCDF(path) {
		return netcdf.WriteGrid(path, grid)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := gwc.Encode(f, grid); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ── ERA5 checks ──

func checkERA5(w io.Writer, opts options, turbines []domain.TurbineSpec) error {
	if len(opts.roughness) != 1 {
		return errors.New("-era5 takes a single roughness length")
	}
	speeds, err := netcdf.WindSpeeds(opts.era5, opts.lat, opts.lon)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "=== ERA5 Samples: %s ===\n\n", filepath.Base(opts.era5))
	fmt.Fprintf(w, "Point:    %.4f, %.4f\n", opts.lat, opts.lon)
	fmt.Fprintf(w, "Samples:  %d\n", len(speeds))

	dist, err := domain.DistributionFromData(speeds, opts.roughness[0], era5Height, opts.hub)
	if err != nil {
		return fmt.Errorf("fit distribution: %w", err)
	}
	fmt.Fprintf(w, "\nDistribution at %g m, roughness %g:\n", opts.hub, opts.roughness[0])
	if err := printDistribution(w, dist, opts.density); err != nil {
		return err
	}

	if len(turbines) > 0 {
		rows := make([]yieldRow, 0, len(turbines))
		for _, spec := range turbines {
			d, err := domain.DistributionFromData(speeds, opts.roughness[0], era5Height, spec.HubHeight)
			if err != nil {
				return fmt.Errorf("turbine %q: %w", spec.Name, err)
			}
			row, err := evaluate(spec, d)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		printYields(w, rows)
	}
	return nil
}

// ── Turbine yields ──

type yieldRow struct {
	name      string
	hub       float64
	rated     float64
	meanPower float64
	aep       float64
	cf        float64
	warnings  int
}

func evaluate(spec domain.TurbineSpec, d domain.Distribution) (yieldRow, error) {
	t, err := spec.Turbine()
	if err != nil {
		return yieldRow{}, fmt.Errorf("turbine %q: %w", spec.Name, err)
	}
	return yieldRow{
		name:      spec.Name,
		hub:       spec.HubHeight,
		rated:     t.RatedPower(),
		meanPower: domain.MeanPower(t, d),
		aep:       domain.AnnualEnergyProduction(t, d),
		cf:        domain.CapacityFactor(t, d),
	}, nil
}

func printYields(w io.Writer, rows []yieldRow) {
	fmt.Fprintln(w, "\nTurbine yields:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "turbine\thub m\trated kW\tmean kW\tAEP MWh\tCF %\twarnings\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%g\t%.1f\t%.1f\t%.1f\t%.1f\t%d\t\n",
			r.name, r.hub, r.rated/1e3, r.meanPower/1e3, r.aep/1e6, 100*r.cf, r.warnings)
	}
	tw.Flush()
}
