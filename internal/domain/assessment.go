package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

// AssessmentRequest asks for the yield of one or more turbines at a site.
type AssessmentRequest struct {
	ID          string        `json:"id,omitempty"`
	Site        SiteRequest   `json:"site"`
	Turbines    []TurbineSpec `json:"turbines"`
	AirDensity  float64       `json:"air_density,omitempty"`
	PeriodHours float64       `json:"period_hours,omitempty"`
}

// SiteRequest locates the site and describes its surroundings. Roughness
// holds one length for all sectors or one per grid sector.
type SiteRequest struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Roughness []float64  `json:"roughness"`
	Obstacles []Obstacle `json:"obstacles,omitempty"`
}

// TurbineSpec is the wire form of a turbine. PowerCurve holds [speed, power]
// pairs in m/s and W.
type TurbineSpec struct {
	Name          string       `json:"name"`
	RotorDiameter float64      `json:"rotor_diameter"`
	HubHeight     float64      `json:"hub_height"`
	RatedPlateau  bool         `json:"rated_plateau,omitempty"`
	PowerCurve    [][2]float64 `json:"power_curve"`
}

// Turbine builds the validated turbine model.
func (s TurbineSpec) Turbine() (*Turbine, error) {
	points := make([]CurvePoint, len(s.PowerCurve))
	for i, p := range s.PowerCurve {
		points[i] = CurvePoint{Speed: p[0], Power: p[1]}
	}
	var opts []CurveOption
	if s.RatedPlateau {
		opts = append(opts, WithRatedPlateau())
	}
	curve, err := NewPowerCurve(points, opts...)
	if err != nil {
		return nil, err
	}
	return NewTurbine(s.Name, curve, s.RotorDiameter, s.HubHeight)
}

// ParseRequest decodes and validates an assessment request from a raw event.
func ParseRequest(raw RawEvent) (AssessmentRequest, error) {
	var req AssessmentRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return AssessmentRequest{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := req.Validate(); err != nil {
		return AssessmentRequest{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return req, nil
}

// Validate checks the parts of a request that do not depend on the grid.
func (r AssessmentRequest) Validate() error {
	if r.Site.Latitude < -90 || r.Site.Latitude > 90 {
		return &DomainError{Field: "latitude", Value: r.Site.Latitude, Reason: "must lie in [-90, 90]"}
	}
	if r.Site.Longitude < -180 || r.Site.Longitude > 180 {
		return &DomainError{Field: "longitude", Value: r.Site.Longitude, Reason: "must lie in [-180, 180]"}
	}
	if len(r.Site.Roughness) == 0 {
		return errors.New("site roughness is required")
	}
	for _, z0 := range r.Site.Roughness {
		if err := checkRoughness(z0); err != nil {
			return err
		}
	}
	for _, o := range r.Site.Obstacles {
		if err := o.Validate(); err != nil {
			return err
		}
	}
	if len(r.Turbines) == 0 {
		return errors.New("at least one turbine is required")
	}
	for _, t := range r.Turbines {
		if _, err := t.Turbine(); err != nil {
			return fmt.Errorf("turbine %q: %w", t.Name, err)
		}
	}
	if !(r.AirDensity >= 0) || math.IsInf(r.AirDensity, 0) {
		return &DomainError{Field: "air density", Value: r.AirDensity, Reason: "must be positive"}
	}
	if !(r.PeriodHours >= 0) || math.IsInf(r.PeriodHours, 0) {
		return &DomainError{Field: "period hours", Value: r.PeriodHours, Reason: "must be finite and not negative"}
	}
	return nil
}

// Assessment is the yield report for one request.
type Assessment struct {
	ID         string         `json:"id"`
	Latitude   float64        `json:"latitude"`
	Longitude  float64        `json:"longitude"`
	GridSource string         `json:"grid_source"`
	AirDensity float64        `json:"air_density"`
	Turbines   []TurbineYield `json:"turbines"`
	ComputedAt time.Time      `json:"computed_at"`
}

// TurbineYield is the expected production of one turbine at the site.
type TurbineYield struct {
	Name              string                 `json:"name"`
	HubHeight         float64                `json:"hub_height"`
	RatedPower        float64                `json:"rated_power"`
	MeanPower         float64                `json:"mean_power"`
	PeriodHours       float64                `json:"period_hours"`
	Energy            float64                `json:"energy_wh"`
	AnnualEnergy      float64                `json:"annual_energy_wh"`
	CapacityFactor    float64                `json:"capacity_factor"`
	MeanWindSpeed     float64                `json:"mean_wind_speed"`
	MeanPowerDensity  float64                `json:"mean_power_density"`
	EquivalentWeibull WeibullParams          `json:"equivalent_weibull"`
	Sectors           []SectorDistribution   `json:"sectors"`
	Warnings          []ExtrapolationWarning `json:"warnings,omitempty"`
}

// WeibullParams is the wire form of a Weibull law.
type WeibullParams struct {
	A float64 `json:"a"`
	K float64 `json:"k"`
}

// AssessOptions tunes Assess. Zero values select the defaults.
type AssessOptions struct {
	AirDensity  float64
	Concurrency int
	Source      string
}

// Assess evaluates every turbine of req against grid. Turbines are
// evaluated concurrently, bounded by opts.Concurrency.
func Assess(ctx context.Context, grid *ClimateGrid, req AssessmentRequest, opts AssessOptions) (Assessment, error) {
	rho := StandardAirDensity
	switch {
	case req.AirDensity > 0:
		rho = req.AirDensity
	case opts.AirDensity > 0:
		rho = opts.AirDensity
	}
	period := HoursPerYear
	if req.PeriodHours > 0 {
		period = req.PeriodHours
	}

	yields := make([]TurbineYield, len(req.Turbines))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Concurrency))
	for i, spec := range req.Turbines {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			y, err := assessTurbine(grid, req.Site, spec, rho, period)
			if err != nil {
				return fmt.Errorf("assess turbine %q: %w", spec.Name, err)
			}
			yields[i] = y
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Assessment{}, err
	}

	id := req.ID
	if id == "" {
		id = generateID(req)
	}
	return Assessment{
		ID:         id,
		Latitude:   req.Site.Latitude,
		Longitude:  req.Site.Longitude,
		GridSource: opts.Source,
		AirDensity: rho,
		Turbines:   yields,
		ComputedAt: clock.Now().UTC(),
	}, nil
}

// assessTurbine evaluates one turbine; period is in hours.
func assessTurbine(grid *ClimateGrid, site SiteRequest, spec TurbineSpec, rho, period float64) (TurbineYield, error) {
	turbine, err := spec.Turbine()
	if err != nil {
		return TurbineYield{}, err
	}
	s, err := NewSite(grid, site.Roughness, turbine.HubHeight, site.Obstacles)
	if err != nil {
		return TurbineYield{}, err
	}
	eq, err := EquivalentWeibull(s.Distribution)
	if err != nil {
		return TurbineYield{}, err
	}
	mean := MeanPower(turbine, s.Distribution)
	var cf float64
	if rated := turbine.RatedPower(); rated > 0 {
		cf = mean / rated
	}
	return TurbineYield{
		Name:              turbine.Name,
		HubHeight:         turbine.HubHeight,
		RatedPower:        turbine.RatedPower(),
		MeanPower:         mean,
		PeriodHours:       period,
		Energy:            mean * period,
		AnnualEnergy:      mean * HoursPerYear,
		CapacityFactor:    cf,
		MeanWindSpeed:     MeanWindSpeed(s.Distribution),
		MeanPowerDensity:  MeanPowerDensity(s.Distribution, rho),
		EquivalentWeibull: WeibullParams{A: eq.A, K: eq.K},
		Sectors:           s.Sectors,
		Warnings:          s.Warnings,
	}, nil
}

// generateID hashes the canonical JSON of the request, less its ID, so
// replays of the same request map to the same assessment.
func generateID(req AssessmentRequest) string {
	req.ID = ""
	data, err := json.Marshal(req)
	if err != nil {
		data = fmt.Appendf(nil, "%#v", req)
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
