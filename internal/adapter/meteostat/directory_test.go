package meteostat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/ballpark-weather-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wrigley = domain.Location{Name: "Wrigley Field", Lat: 41.947746, Lon: -87.656036}

func inventory(id domain.StationID, from, to int) domain.Station {
	start := time.Date(from, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to, time.December, 31, 0, 0, 0, 0, time.UTC)
	return domain.Station{ID: id, DailyStart: &start, DailyEnd: &end}
}

func TestDirectory_FiltersByInventoryInDistanceOrder(t *testing.T) {
	lookup := &fakeLookup{
		nearby: []domain.StationID{"A", "B", "C", "D", "E"},
		stations: map[domain.StationID]domain.Station{
			"A": inventory("A", 2000, 2019), // ends too early
			"B": inventory("B", 1990, 2024),
			"C": {ID: "C"}, // no inventory
			"D": inventory("D", 2021, 2021),
			"E": inventory("E", 1950, 2030),
		},
	}
	dir := NewDirectory(lookup, 50, discardLogger())

	ids, err := dir.NearbyStations(context.Background(), wrigley, domain.YearRange(2021), 10)
	require.NoError(t, err)
	assert.Equal(t, []domain.StationID{"B", "D", "E"}, ids)
	assert.Equal(t, 50, lookup.lastLimit)
}

func TestDirectory_StopsAtLimit(t *testing.T) {
	lookup := &fakeLookup{
		nearby: []domain.StationID{"A", "B", "C"},
		stations: map[domain.StationID]domain.Station{
			"A": inventory("A", 1990, 2024),
			"B": inventory("B", 1990, 2024),
			"C": inventory("C", 1990, 2024),
		},
	}
	dir := NewDirectory(lookup, 50, discardLogger())

	ids, err := dir.NearbyStations(context.Background(), wrigley, domain.YearRange(2021), 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.StationID{"A", "B"}, ids)
	assert.Zero(t, lookup.metaCalls["C"], "should not inspect stations past the limit")
}

func TestDirectory_PoolNeverBelowLimit(t *testing.T) {
	lookup := &fakeLookup{}
	dir := NewDirectory(lookup, 5, discardLogger())

	_, err := dir.NearbyStations(context.Background(), wrigley, domain.YearRange(2021), 10)
	require.NoError(t, err)
	assert.Equal(t, 10, lookup.lastLimit)
}

func TestDirectory_Errors(t *testing.T) {
	dir := NewDirectory(&fakeLookup{nearbyErr: errors.New("dns failure")}, 50, discardLogger())
	_, err := dir.NearbyStations(context.Background(), wrigley, domain.YearRange(2021), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Wrigley Field")

	dir = NewDirectory(&fakeLookup{nearby: []domain.StationID{"A"}, metaErr: errors.New("502")}, 50, discardLogger())
	_, err = dir.NearbyStations(context.Background(), wrigley, domain.YearRange(2021), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "station meta A")
}
