package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-prep/internal/domain"
	"github.com/couchcryptid/weather-prep/internal/observability"
)

// Publisher sends a prepared split downstream and returns the number of rows written.
type Publisher interface {
	PublishSplit(ctx context.Context, split domain.Split) (int, error)
}

// Options configures a preparation run.
type Options struct {
	Schema   domain.Schema
	TestSize float64
	Seed     uint64

	// Geocoder enables Latitude/Longitude enrichment of the location column.
	// Nil disables the step.
	Geocoder domain.Geocoder
	Region   string

	// Publisher receives the split after a successful run. Nil disables the step.
	Publisher Publisher

	// Clock stamps the report and the split. Nil means the real clock.
	Clock clockwork.Clock
}

// Result is the output of a successful run.
type Result struct {
	Split  domain.Split
	Report Report
}

// Pipeline turns a raw observation CSV into a train/test split.
type Pipeline struct {
	opts    Options
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline with the given options and observability.
func New(opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	clk := opts.Clock
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &Pipeline{opts: opts, clock: clk, logger: logger, metrics: metrics}
}

// state is the data handed from one step to the next.
type state struct {
	input   io.Reader
	dataset *domain.Dataset
	matrix  domain.Matrix
	split   domain.Split
	report  *Report
}

type step struct {
	name string
	run  func(ctx context.Context, s *state) ([]domain.Warning, error)
	skip bool
}

// Run executes every step in order. A step that cannot find its columns
// records a warning and the run continues; any returned error aborts it.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (Result, error) {
	report := &Report{StartedAt: p.clock.Now().UTC()}
	p.metrics.LastRunTime.Set(float64(report.StartedAt.Unix()))
	p.logger.Info("preparation started",
		"test_size", p.opts.TestSize,
		"seed", p.opts.Seed,
		"target", p.opts.Schema.Target,
	)

	s := &state{input: r, report: report}
	for _, st := range p.steps() {
		if st.skip {
			continue
		}
		if err := ctx.Err(); err != nil {
			p.metrics.RunSuccess.Set(0)
			return Result{Report: *report}, err
		}
		if err := p.runStep(ctx, st, s); err != nil {
			p.metrics.RunSuccess.Set(0)
			p.logger.Error("preparation failed", "step", st.name, "error", err)
			return Result{Report: *report}, fmt.Errorf("%s: %w", st.name, err)
		}
	}

	p.metrics.RunSuccess.Set(1)
	p.logger.Info("preparation complete",
		"rows_loaded", report.RowsLoaded,
		"rows_dropped", report.RowsDropped,
		"features", report.Features,
		"train_rows", report.TrainRows,
		"test_rows", report.TestRows,
		"warnings", len(report.Warnings),
	)
	return Result{Split: s.split, Report: *report}, nil
}

func (p *Pipeline) runStep(ctx context.Context, st step, s *state) error {
	start := p.clock.Now()
	warnings, err := st.run(ctx, s)
	elapsed := p.clock.Since(start)

	p.metrics.StepDuration.WithLabelValues(st.name).Observe(elapsed.Seconds())
	s.report.Steps = append(s.report.Steps, StepTiming{Name: st.name, Duration: elapsed})
	for _, w := range warnings {
		p.logger.Warn(w.Message, "step", w.Step, "column", w.Column)
		p.metrics.Warnings.WithLabelValues(w.Step).Inc()
	}
	s.report.Warnings = append(s.report.Warnings, warnings...)
	if err != nil {
		return err
	}
	p.logger.Debug("step complete", "step", st.name, "duration", elapsed)
	return nil
}

func (p *Pipeline) steps() []step {
	schema := p.opts.Schema
	return []step{
		{name: "load", run: p.load},
		{name: "drop_columns", run: func(_ context.Context, s *state) ([]domain.Warning, error) {
			dropped, err := domain.DropColumns(s.dataset, schema.DropColumns)
			s.report.DroppedColumns = dropped
			return nil, err
		}},
		{name: "dropna", run: p.dropIncomplete},
		{name: "convert_date", run: func(_ context.Context, s *state) ([]domain.Warning, error) {
			return domain.ConvertDates(s.dataset, schema.DateColumn, schema.DateLayouts)
		}, skip: schema.DateColumn == ""},
		{name: "geocode", run: p.geocode, skip: p.opts.Geocoder == nil},
		{name: "label_encode", run: func(_ context.Context, s *state) ([]domain.Warning, error) {
			return domain.LabelEncode(s.dataset, schema.Categorical)
		}},
		{name: "check_target", run: func(_ context.Context, s *state) ([]domain.Warning, error) {
			if !s.dataset.Has(schema.Target) {
				return nil, fmt.Errorf("%q: %w", schema.Target, domain.ErrMissingTarget)
			}
			return nil, nil
		}},
		{name: "date_parts", run: func(_ context.Context, s *state) ([]domain.Warning, error) {
			return domain.AddDateParts(s.dataset, schema.DateColumn)
		}, skip: schema.DateColumn == ""},
		{name: "temp_diff", run: func(_ context.Context, s *state) ([]domain.Warning, error) {
			return domain.AddDifference(s.dataset, schema.TempDiff)
		}, skip: schema.TempDiff.Name == ""},
		{name: "impute_mean", run: func(_ context.Context, s *state) ([]domain.Warning, error) {
			return domain.ImputeMean(s.dataset, schema.Numeric)
		}},
		{name: "log1p", run: func(_ context.Context, s *state) ([]domain.Warning, error) {
			return domain.Log1p(s.dataset, schema.Skewed)
		}},
		{name: "standardize", run: func(_ context.Context, s *state) ([]domain.Warning, error) {
			return domain.Standardize(s.dataset, schema.Numeric)
		}, skip: !schema.Standardize},
		{name: "drop_date", run: func(_ context.Context, s *state) ([]domain.Warning, error) {
			_, err := domain.DropColumns(s.dataset, []string{schema.DateColumn})
			return nil, err
		}, skip: schema.DateColumn == ""},
		{name: "one_hot", run: func(_ context.Context, s *state) ([]domain.Warning, error) {
			return domain.OneHotEncode(s.dataset, schema.OneHotColumns())
		}},
		{name: "feature_matrix", run: p.featureMatrix},
		{name: "split", run: p.split},
		{name: "publish", run: p.publish, skip: p.opts.Publisher == nil},
	}
}

func (p *Pipeline) load(_ context.Context, s *state) ([]domain.Warning, error) {
	d, err := domain.ReadCSV(s.input)
	if err != nil {
		return nil, err
	}
	s.dataset = d
	s.report.RowsLoaded = d.Rows()
	s.report.Columns = len(d.Columns())
	p.metrics.RowsLoaded.Add(float64(d.Rows()))
	return nil, nil
}

func (p *Pipeline) dropIncomplete(_ context.Context, s *state) ([]domain.Warning, error) {
	removed, err := domain.DropIncompleteRows(s.dataset)
	s.report.RowsDropped = removed
	p.metrics.RowsDropped.Add(float64(removed))
	if err != nil {
		return nil, err
	}
	s.report.RowsKept = s.dataset.Rows()
	p.metrics.RowsKept.Set(float64(s.report.RowsKept))
	return nil, nil
}

func (p *Pipeline) geocode(ctx context.Context, s *state) ([]domain.Warning, error) {
	summary, warnings, err := domain.EnrichWithGeocoding(ctx, s.dataset, p.opts.Schema.LocationColumn,
		p.opts.Geocoder, p.opts.Region, p.logger)
	s.report.Geocode = summary
	return warnings, err
}

func (p *Pipeline) featureMatrix(_ context.Context, s *state) ([]domain.Warning, error) {
	m, warnings, err := domain.FeatureMatrix(s.dataset, p.opts.Schema.Target)
	if err != nil {
		return warnings, err
	}
	s.matrix = m
	s.report.Features = len(m.Features)
	p.metrics.FeatureCount.Set(float64(len(m.Features)))
	return warnings, nil
}

func (p *Pipeline) split(_ context.Context, s *state) ([]domain.Warning, error) {
	split, err := domain.TrainTestSplit(s.matrix, p.opts.TestSize, p.opts.Seed, p.clock.Now())
	if err != nil {
		return nil, err
	}
	if problems := domain.CheckSplit(split); len(problems) > 0 {
		return nil, errors.New(problems[0])
	}
	s.split = split
	s.report.TrainRows = split.TrainRows()
	s.report.TestRows = split.TestRows()
	return nil, nil
}

func (p *Pipeline) publish(ctx context.Context, s *state) ([]domain.Warning, error) {
	n, err := p.opts.Publisher.PublishSplit(ctx, s.split)
	s.report.Published = n
	p.metrics.RowsPublished.Add(float64(n))
	if err != nil {
		return nil, fmt.Errorf("publish split: %w", err)
	}
	return nil, nil
}
