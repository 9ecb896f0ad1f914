package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/ballpark-weather-etl/internal/domain"
	"github.com/couchcryptid/ballpark-weather-etl/internal/observability"
)

// Resolution sources, also used as metric labels.
const (
	SourceOverride = "override"
	SourceNearest  = "nearest"
	SourceNone     = "none"
)

// Resolution is the station chosen for a location and range together with
// the observations that qualified it.
type Resolution struct {
	StationID    domain.StationID
	Observations []domain.DailyObservation
	Source       string
}

// Empty reports whether no station produced data.
func (r Resolution) Empty() bool {
	return len(r.Observations) == 0
}

// Resolver picks the station for a location: the pinned override when the
// registry has one, otherwise the nearest station with data.
type Resolver struct {
	registry   domain.Registry
	directory  domain.StationDirectory
	source     domain.ObservationSource
	candidates int
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewResolver creates a Resolver trying up to candidates nearby stations.
func NewResolver(registry domain.Registry, directory domain.StationDirectory, source domain.ObservationSource, candidates int, metrics *observability.Metrics, logger *slog.Logger) *Resolver {
	return &Resolver{
		registry:   registry,
		directory:  directory,
		source:     source,
		candidates: candidates,
		metrics:    metrics,
		logger:     logger,
	}
}

// Resolve returns the station and observations for loc over r. A location
// with no station yielding data returns an empty Resolution and a nil error;
// transport and decoding failures are returned as errors.
func (r *Resolver) Resolve(ctx context.Context, loc domain.Location, rng domain.DateRange) (Resolution, error) {
	if id, ok := r.registry.Override(loc.Name); ok {
		return r.resolveOverride(ctx, loc, id, rng)
	}

	ids, err := r.directory.NearbyStations(ctx, loc, rng, r.candidates)
	if err != nil {
		return Resolution{}, err
	}

	for i, id := range ids {
		obs, err := r.source.Daily(ctx, id, rng)
		if err != nil {
			return Resolution{}, fmt.Errorf("fetch station %s: %w", id, err)
		}
		if len(obs) == 0 {
			r.logger.Debug("station returned no data, trying next",
				"stadium", loc.Name,
				"station_id", id,
				"candidate", i+1,
			)
			continue
		}
		r.metrics.CandidatesTried.Observe(float64(i + 1))
		r.metrics.StationResolutions.WithLabelValues(SourceNearest).Inc()
		return Resolution{StationID: id, Observations: obs, Source: SourceNearest}, nil
	}

	r.metrics.CandidatesTried.Observe(float64(len(ids)))
	r.metrics.StationResolutions.WithLabelValues(SourceNone).Inc()
	return Resolution{Source: SourceNone}, nil
}

func (r *Resolver) resolveOverride(ctx context.Context, loc domain.Location, id domain.StationID, rng domain.DateRange) (Resolution, error) {
	obs, err := r.source.Daily(ctx, id, rng)
	if err != nil {
		return Resolution{}, fmt.Errorf("fetch override station %s for %q: %w", id, loc.Name, err)
	}
	if len(obs) == 0 {
		r.metrics.StationResolutions.WithLabelValues(SourceNone).Inc()
		return Resolution{StationID: id, Source: SourceNone}, nil
	}
	r.metrics.StationResolutions.WithLabelValues(SourceOverride).Inc()
	return Resolution{StationID: id, Observations: obs, Source: SourceOverride}, nil
}
