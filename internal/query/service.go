// Package query is the boundary between callers and the aggregation core. It
// resolves query parameters, runs the pure domain functions, and records
// logs, metrics and trace spans for each result.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/school-accident-trends/internal/domain"
	"github.com/couchcryptid/school-accident-trends/internal/observability"
)

const tracerName = "github.com/couchcryptid/school-accident-trends/internal/query"

// Options tunes the service.
type Options struct {
	// Workers bounds the number of hour slots projected concurrently.
	Workers int

	Thresholds domain.Thresholds

	// Default hourly grid window.
	FromHour int
	ToHour   int
}

// DefaultOptions matches the hourly tables of the published report.
func DefaultOptions() Options {
	return Options{Workers: 4, Thresholds: domain.DefaultThresholds, FromHour: 6, ToHour: 22}
}

// Service answers queries against one loaded dataset.
type Service struct {
	dataset *domain.Dataset
	logger  *slog.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
	opts    Options
}

// NewService creates a Service over ds.
func NewService(ds *domain.Dataset, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Service {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	metrics.DatasetRecords.Set(float64(ds.Len()))
	metrics.DatasetYears.Set(float64(len(ds.Years())))

	return &Service{
		dataset: ds,
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
		opts:    opts,
	}
}

// CheckReadiness returns nil once a dataset with at least one year is loaded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.dataset == nil || len(s.dataset.Years()) == 0 {
		return errors.New("no dataset loaded")
	}
	return nil
}

// Window returns the default hourly grid window.
func (s *Service) Window() (from, to int) {
	return s.opts.FromHour, s.opts.ToHour
}

// Catalog lists dimensions, regions, weekdays and dataset years.
func (s *Service) Catalog() Catalog {
	return Catalog{
		Dimensions:        domain.Dimensions(),
		Regions:           slices.Clone(domain.Regions),
		Weekdays:          slices.Clone(domain.Weekdays),
		Years:             s.dataset.Years(),
		DefaultTargetYear: s.dataset.DefaultTargetYear(),
		GridFromHour:      s.opts.FromHour,
		GridToHour:        s.opts.ToHour,
		Thresholds:        s.opts.Thresholds,
	}
}

// Tabulate returns per-year counts and distributions for q.
func (s *Service) Tabulate(ctx context.Context, q Query) (TabulateResult, error) {
	meta := s.newMeta()
	ctx, span := s.startSpan(ctx, "tabulate", meta, q.Dimension)
	defer span.End()
	start := clock.Now()

	dim, err := s.resolve(ctx, span, q.Dimension)
	if err != nil {
		return TabulateResult{}, err
	}

	tab := domain.Tabulate(s.dataset, q.filter(), dim)
	s.reportSkipped(ctx, meta, dim, tab.Skipped)
	s.observe("tabulate", dim, start)

	return TabulateResult{Meta: meta, Tabulation: tab}, nil
}

// Project tabulates q and extrapolates every label to the target year.
func (s *Service) Project(ctx context.Context, q Query) (ProjectResult, error) {
	meta := s.newMeta()
	ctx, span := s.startSpan(ctx, "project", meta, q.Dimension)
	defer span.End()
	start := clock.Now()

	dim, err := s.resolve(ctx, span, q.Dimension)
	if err != nil {
		return ProjectResult{}, err
	}

	target := s.targetYear(q.TargetYear)
	span.SetAttributes(attribute.Int("target_year", target))

	tab := domain.Tabulate(s.dataset, q.filter(), dim)
	p := domain.ProjectTabulation(tab, s.dataset.Years(), dim, target)
	s.reportSkipped(ctx, meta, dim, tab.Skipped)
	s.reportFits(dim, p)
	s.observe("project", dim, start)

	return ProjectResult{Meta: meta, History: tab, Projection: p}, nil
}

// Grid projects every one-hour slot of [q.FromHour, q.ToHour). Slots are
// computed concurrently and returned in hour order.
func (s *Service) Grid(ctx context.Context, q GridQuery) (GridResult, error) {
	meta := s.newMeta()
	ctx, span := s.startSpan(ctx, "grid", meta, q.Dimension)
	defer span.End()
	start := clock.Now()

	dim, err := s.resolve(ctx, span, q.Dimension)
	if err != nil {
		return GridResult{}, err
	}

	target := s.targetYear(q.TargetYear)
	filters := domain.HourSlots(q.Region, q.Weekday, q.FromHour, q.ToHour)
	years := s.dataset.Years()
	projections := make([]domain.Projection, len(filters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, f := range filters {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tab := domain.Tabulate(s.dataset, f, dim)
			projections[i] = domain.ProjectTabulation(tab, years, dim, target)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GridResult{}, fmt.Errorf("project grid: %w", err)
	}

	grid := domain.Grid{
		Dimension:  dim.Name,
		Region:     q.Region,
		Weekday:    q.Weekday,
		TargetYear: target,
		Labels:     dim.Labels,
		Thresholds: s.opts.Thresholds,
		Slots:      make([]domain.GridSlot, len(projections)),
	}
	for i, p := range projections {
		grid.Slots[i] = domain.NewGridSlot(p, dim, s.opts.Thresholds)
		s.reportFits(dim, p)
	}
	if len(projections) > 0 {
		// Every slot reads the same years, so the skips are identical.
		s.reportSkipped(ctx, meta, dim, projections[0].Skipped)
	}
	s.observe("grid", dim, start)

	return GridResult{Meta: meta, Grid: grid}, nil
}

// Weekdays tabulates each weekday of a region and hour window.
func (s *Service) Weekdays(ctx context.Context, q WeekdayQuery) (WeekdaysResult, error) {
	meta := s.newMeta()
	ctx, span := s.startSpan(ctx, "weekdays", meta, q.Dimension)
	defer span.End()
	start := clock.Now()

	dim, err := s.resolve(ctx, span, q.Dimension)
	if err != nil {
		return WeekdaysResult{}, err
	}

	b := domain.BreakdownByWeekday(s.dataset, q.Region, q.HourStart, q.HourEnd, dim)
	s.reportSkipped(ctx, meta, dim, b.Skipped)
	s.observe("weekdays", dim, start)

	return WeekdaysResult{Meta: meta, Breakdown: b}, nil
}

func (s *Service) newMeta() Meta {
	return Meta{QueryID: uuid.NewString(), GeneratedAt: clock.Now().UTC()}
}

func (s *Service) startSpan(ctx context.Context, op string, meta Meta, dimension string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "query."+op, trace.WithAttributes(
		attribute.String("query_id", meta.QueryID),
		attribute.String("dimension", dimension),
	))
}

// resolve checks the context and looks up the dimension.
func (s *Service) resolve(ctx context.Context, span trace.Span, name string) (domain.Dimension, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dimension{}, err
	}
	dim, err := domain.DimensionByName(name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Dimension{}, err
	}
	return dim, nil
}

func (s *Service) targetYear(requested int) int {
	if requested == 0 {
		return s.dataset.DefaultTargetYear()
	}
	return requested
}

func (s *Service) reportSkipped(ctx context.Context, meta Meta, dim domain.Dimension, skipped []domain.SkippedYear) {
	for _, sk := range skipped {
		s.logger.WarnContext(ctx, "year skipped",
			"query_id", meta.QueryID,
			"year", sk.Year,
			"dimension", dim.Name,
			"reason", sk.Reason,
		)
		s.metrics.YearsSkipped.WithLabelValues(skipReason(sk.Err)).Inc()
	}
}

func (s *Service) reportFits(dim domain.Dimension, p domain.Projection) {
	if n := len(p.Degenerate); n > 0 {
		s.metrics.DegenerateFits.WithLabelValues(dim.Name).Add(float64(n))
	}
	if n := len(p.Clamped); n > 0 {
		s.metrics.ClampedPredictions.WithLabelValues(dim.Name).Add(float64(n))
	}
}

func (s *Service) observe(op string, dim domain.Dimension, start time.Time) {
	s.metrics.Queries.WithLabelValues(op, dim.Name).Inc()
	s.metrics.QueryDuration.WithLabelValues(op).Observe(clock.Since(start).Seconds())
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTimeColumnMissing):
		return "time_column_missing"
	case errors.Is(err, domain.ErrNoParsableTimes):
		return "no_parsable_times"
	default:
		return "other"
	}
}
