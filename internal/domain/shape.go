package domain

import "time"

// Shape places observations on every calendar day of r, stamps each row with
// stationID and location, and converts tavg, tmin and tmax to Fahrenheit.
//
// Days without an observation get all-null metrics. Observations outside r
// are dropped; when a day appears more than once the first observation wins.
func Shape(observations []DailyObservation, r DateRange, stationID StationID, location string) []ShapedRecord {
	byDay := make(map[time.Time]Metrics, len(observations))
	for _, obs := range observations {
		day := truncateDay(obs.Date)
		if !r.Contains(day) {
			continue
		}
		if _, dup := byDay[day]; dup {
			continue
		}
		byDay[day] = obs.Metrics
	}

	days := r.Days()
	out := make([]ShapedRecord, 0, len(days))
	for _, day := range days {
		out = append(out, ShapedRecord{
			Date:      day,
			StationID: stationID,
			Location:  location,
			Metrics:   toFahrenheit(byDay[day]),
		})
	}
	return out
}

// CelsiusToFahrenheit converts a temperature from °C to °F.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// toFahrenheit returns a copy of m with temperatures converted. The input
// pointers are never mutated.
func toFahrenheit(m Metrics) Metrics {
	m.Tavg = convertTemp(m.Tavg)
	m.Tmin = convertTemp(m.Tmin)
	m.Tmax = convertTemp(m.Tmax)
	return m
}

func convertTemp(c *float64) *float64 {
	if c == nil {
		return nil
	}
	f := CelsiusToFahrenheit(*c)
	return &f
}
