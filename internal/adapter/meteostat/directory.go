package meteostat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/ballpark-weather-etl/internal/domain"
)

// StationLookup is the raw station API surface used by Directory. Client
// implements it directly; CachedLookup wraps it.
type StationLookup interface {
	Nearby(ctx context.Context, lat, lon float64, limit int) ([]domain.StationID, error)
	StationMeta(ctx context.Context, id domain.StationID) (domain.Station, error)
}

// Directory implements domain.StationDirectory: a distance-ranked nearby
// query narrowed by each station's daily inventory.
type Directory struct {
	lookup   StationLookup
	poolSize int
	logger   *slog.Logger
}

// NewDirectory creates a Directory that inspects up to poolSize nearby
// stations per query.
func NewDirectory(lookup StationLookup, poolSize int, logger *slog.Logger) *Directory {
	return &Directory{lookup: lookup, poolSize: poolSize, logger: logger}
}

// NearbyStations returns up to limit stations closest to loc whose daily
// inventory covers r, preserving the API's distance order.
func (d *Directory) NearbyStations(ctx context.Context, loc domain.Location, r domain.DateRange, limit int) ([]domain.StationID, error) {
	pool := d.poolSize
	if pool < limit {
		pool = limit
	}

	ids, err := d.lookup.Nearby(ctx, loc.Lat, loc.Lon, pool)
	if err != nil {
		return nil, fmt.Errorf("nearby stations for %q: %w", loc.Name, err)
	}

	out := make([]domain.StationID, 0, limit)
	for _, id := range ids {
		if len(out) == limit {
			break
		}
		station, err := d.lookup.StationMeta(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("station meta %s: %w", id, err)
		}
		if !station.CoversDaily(r) {
			d.logger.Debug("station lacks daily inventory",
				"stadium", loc.Name,
				"station_id", id,
				"range", r.String(),
			)
			continue
		}
		out = append(out, id)
	}
	return out, nil
}
