package domain

import (
	"time"

	"github.com/google/uuid"
)

// Metrics holds the Meteostat daily fields. A nil pointer is a missing value.
type Metrics struct {
	Tavg *float64 `json:"tavg"`
	Tmin *float64 `json:"tmin"`
	Tmax *float64 `json:"tmax"`
	Prcp *float64 `json:"prcp"`
	Snow *float64 `json:"snow"`
	Wdir *float64 `json:"wdir"`
	Wspd *float64 `json:"wspd"`
	Wpgt *float64 `json:"wpgt"`
	Pres *float64 `json:"pres"`
	Tsun *float64 `json:"tsun"`
}

// MetricColumns lists the metric names in export order.
var MetricColumns = []string{"tavg", "tmin", "tmax", "prcp", "snow", "wdir", "wspd", "wpgt", "pres", "tsun"}

// Values returns the metrics in MetricColumns order.
func (m Metrics) Values() []*float64 {
	return []*float64{m.Tavg, m.Tmin, m.Tmax, m.Prcp, m.Snow, m.Wdir, m.Wspd, m.Wpgt, m.Pres, m.Tsun}
}

// DailyObservation is one source row for a station and day, temperatures in
// Celsius.
type DailyObservation struct {
	Date time.Time
	Metrics
}

// ShapedRecord is a DailyObservation placed on the full calendar, tagged
// with its station and location, temperatures in Fahrenheit.
type ShapedRecord struct {
	Date      time.Time
	StationID StationID
	Location  string
	Metrics
}

// Table is the concatenated output of one run.
type Table struct {
	RunID      string
	ExportedAt time.Time
	Rows       []ShapedRecord
}

// NewTable stamps rows with a fresh run id and the current clock time.
func NewTable(rows []ShapedRecord) Table {
	return Table{
		RunID:      uuid.NewString(),
		ExportedAt: clock.Now().UTC(),
		Rows:       rows,
	}
}

// Float returns a pointer to v, for building optional metrics.
func Float(v float64) *float64 {
	return &v
}
