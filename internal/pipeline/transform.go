package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/wind-yield/internal/domain"
	"github.com/couchcryptid/wind-yield/internal/observability"
)

// Assessor resolves the climate grid for a request and evaluates it.
// It implements Transformer and backs the HTTP assessment endpoint.
type Assessor struct {
	source  domain.GridSource
	opts    domain.AssessOptions
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewAssessor creates an Assessor that reads grids from source.
func NewAssessor(source domain.GridSource, opts domain.AssessOptions, metrics *observability.Metrics, logger *slog.Logger) *Assessor {
	return &Assessor{
		source:  source,
		opts:    opts,
		metrics: metrics,
		logger:  logger,
	}
}

// Transform parses a request event, assesses it and serializes the result.
func (a *Assessor) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := domain.ParseRequest(raw)
	if err != nil {
		a.metrics.Assessments.WithLabelValues("invalid").Inc()
		return domain.OutputEvent{}, err
	}
	result, err := a.Assess(ctx, req)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	return domain.NewOutputEvent(result)
}

// Assess evaluates an already validated request.
func (a *Assessor) Assess(ctx context.Context, req domain.AssessmentRequest) (domain.Assessment, error) {
	grid, err := a.source.Grid(ctx, req.Site.Latitude, req.Site.Longitude)
	if err != nil {
		a.metrics.Assessments.WithLabelValues("error").Inc()
		return domain.Assessment{}, fmt.Errorf("resolve climate grid: %w", err)
	}

	result, err := domain.Assess(ctx, grid, req, a.opts)
	if err != nil {
		a.metrics.Assessments.WithLabelValues(outcome(err)).Inc()
		return domain.Assessment{}, err
	}

	for _, t := range result.Turbines {
		for _, w := range t.Warnings {
			a.metrics.ExtrapolationWarnings.WithLabelValues(w.Axis).Inc()
			a.logger.Warn("climate grid extrapolated",
				"assessment_id", result.ID,
				"turbine", t.Name,
				"axis", w.Axis,
				"requested", w.Requested,
				"clamped", w.Clamped,
			)
		}
	}
	a.metrics.Assessments.WithLabelValues("success").Inc()
	a.logger.Debug("site assessed", "assessment_id", result.ID, "turbines", len(result.Turbines))
	return result, nil
}

// outcome labels an assessment failure: invalid input or an internal error.
func outcome(err error) string {
	var dErr *domain.DomainError
	var mErr *domain.MalformedGridError
	if errors.As(err, &dErr) || errors.As(err, &mErr) {
		return "invalid"
	}
	return "error"
}
