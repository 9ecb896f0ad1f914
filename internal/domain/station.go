package domain

import (
	"context"
	"time"
)

// Station is the directory metadata needed to decide whether a station can
// serve a date range.
type Station struct {
	ID         StationID
	Name       string
	Lat        float64
	Lon        float64
	DailyStart *time.Time // first day of daily inventory, nil when unknown
	DailyEnd   *time.Time // last day of daily inventory, nil when unknown
}

// CoversDaily reports whether the station's daily inventory spans r.
// Stations without a known inventory never qualify.
func (s Station) CoversDaily(r DateRange) bool {
	if s.DailyStart == nil || s.DailyEnd == nil {
		return false
	}
	return !s.DailyStart.After(r.Start) && !s.DailyEnd.Before(r.End)
}

// StationDirectory finds stations near a location.
type StationDirectory interface {
	// NearbyStations returns up to limit station ids ordered by distance whose
	// daily inventory covers r.
	NearbyStations(ctx context.Context, loc Location, r DateRange, limit int) ([]StationID, error)
}

// ObservationSource fetches daily observations for one station.
type ObservationSource interface {
	// Daily returns the station's observations in r. An empty slice with a
	// nil error means the station has no data for the range.
	Daily(ctx context.Context, id StationID, r DateRange) ([]DailyObservation, error)
}
