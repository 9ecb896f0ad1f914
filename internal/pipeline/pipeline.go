package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/ballpark-weather-etl/internal/domain"
	"github.com/couchcryptid/ballpark-weather-etl/internal/observability"
	"golang.org/x/sync/errgroup"
)

// StationResolver chooses a station and returns its observations.
type StationResolver interface {
	Resolve(ctx context.Context, loc domain.Location, rng domain.DateRange) (Resolution, error)
}

// TableLoader writes the finished table to a destination.
type TableLoader interface {
	LoadTable(ctx context.Context, table domain.Table) error
}

// Sink is a named TableLoader; the name labels logs and metrics.
type Sink struct {
	Name   string
	Loader TableLoader
}

// Options bounds a batch run.
type Options struct {
	StartYear int
	EndYear   int
	Workers   int
}

// Pipeline drives the (year, location) batch and exports the result.
type Pipeline struct {
	resolver StationResolver
	registry domain.Registry
	sinks    []Sink
	logger   *slog.Logger
	metrics  *observability.Metrics
	opts     Options
	ready    atomic.Bool
	status   statusTracker
}

// pair is one unit of work.
type pair struct {
	year     int
	location domain.Location
}

// New creates a Pipeline with the given stages and observability.
func New(resolver StationResolver, registry domain.Registry, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pipeline{
		resolver: resolver,
		registry: registry,
		sinks:    sinks,
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
	}
}

// CheckReadiness returns nil once the pipeline has completed at least one
// pair, or an error describing why the batch is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed any pairs yet")
	}
	return nil
}

// Status reports the progress of the current or last run.
func (p *Pipeline) Status() Status {
	return p.status.snapshot()
}

// Run collects every (year, location) pair, concatenates the shaped rows in
// year then registry order, and writes the table once to each sink. The
// first error aborts the run before anything is written.
func (p *Pipeline) Run(ctx context.Context) (table domain.Table, err error) {
	p.metrics.RunRunning.Set(1)
	defer p.metrics.RunRunning.Set(0)

	pairs := p.pairs()
	p.status.start(len(pairs))
	defer func() {
		p.status.finish(table.RunID, table.ExportedAt, len(table.Rows), err)
	}()

	p.logger.Info("batch started",
		"start_year", p.opts.StartYear,
		"end_year", p.opts.EndYear,
		"locations", len(p.registry.Locations),
		"pairs", len(pairs),
		"workers", p.opts.Workers,
	)

	rows, err := p.collect(ctx, pairs)
	if err != nil {
		return domain.Table{}, err
	}

	table = domain.NewTable(rows)
	p.metrics.RowsExported.Add(float64(len(table.Rows)))

	for _, s := range p.sinks {
		if err := s.Loader.LoadTable(ctx, table); err != nil {
			p.metrics.SinkWrites.WithLabelValues(s.Name, "error").Inc()
			return table, fmt.Errorf("load %s: %w", s.Name, err)
		}
		p.metrics.SinkWrites.WithLabelValues(s.Name, "success").Inc()
		p.logger.Info("table loaded", "sink", s.Name, "rows", len(table.Rows), "run_id", table.RunID)
	}

	p.logger.Info("batch complete", "rows", len(table.Rows), "run_id", table.RunID)
	return table, nil
}

func (p *Pipeline) pairs() []pair {
	var out []pair
	for year := p.opts.StartYear; year <= p.opts.EndYear; year++ {
		for _, loc := range p.registry.Locations {
			out = append(out, pair{year: year, location: loc})
		}
	}
	return out
}

// collect processes pairs on at most Workers goroutines. Results are slotted
// by pair index so the concatenation order never depends on scheduling.
func (p *Pipeline) collect(ctx context.Context, pairs []pair) ([]domain.ShapedRecord, error) {
	results := make([][]domain.ShapedRecord, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, pr := range pairs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// g.Go may have blocked on the limit while another pair failed.
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, err := p.processPair(gctx, pr)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	rows := make([]domain.ShapedRecord, 0, total)
	for _, r := range results {
		rows = append(rows, r...)
	}
	return rows, nil
}

// processPair resolves, fetches and shapes one pair. An empty resolution
// yields no rows and no error.
func (p *Pipeline) processPair(ctx context.Context, pr pair) ([]domain.ShapedRecord, error) {
	start := time.Now()
	rng := domain.YearRange(pr.year)

	res, err := p.resolver.Resolve(ctx, pr.location, rng)
	if err != nil {
		return nil, fmt.Errorf("%s %d: %w", pr.location.Name, pr.year, err)
	}
	defer func() {
		p.metrics.PairDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}()

	if res.Empty() {
		p.metrics.PairsProcessed.WithLabelValues("empty").Inc()
		p.status.pairDone(true)
		p.logger.Info("no station data, skipping",
			"stadium", pr.location.Name,
			"year", pr.year,
			"station_id", res.StationID,
		)
		return nil, nil
	}

	rows := domain.Shape(res.Observations, rng, res.StationID, pr.location.Name)
	p.metrics.PairsProcessed.WithLabelValues("exported").Inc()
	p.status.pairDone(false)
	p.logger.Info("pair shaped",
		"stadium", pr.location.Name,
		"year", pr.year,
		"station_id", res.StationID,
		"source", res.Source,
		"observations", len(res.Observations),
		"rows", len(rows),
	)
	return rows, nil
}
