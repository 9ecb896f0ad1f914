// Package domain models daily weather observations collected near MLB
// stadiums.
//
// # Data Source
//
// Observations come from Meteostat (https://meteostat.net), which aggregates
// national weather service records (NOAA GHCN-D, ISD, DWD, Environment
// Canada) into per-station daily summaries. Stations are identified by a
// Meteostat id: usually the five-digit WMO number ("72494") or, for
// stations without one, a four to five character synthetic code ("KLXT0").
//
// # Meteostat Daily Conventions
//
// Each daily record carries:
//
//	tavg  average air temperature      °C
//	tmin  minimum air temperature      °C
//	tmax  maximum air temperature      °C
//	prcp  total precipitation          mm
//	snow  snow depth                   mm
//	wdir  average wind direction       degrees
//	wspd  average wind speed           km/h
//	wpgt  peak wind gust               km/h
//	pres  sea-level air pressure       hPa
//	tsun  total sunshine duration      minutes
//
// Every metric may be null. A station reports no row at all for days it
// did not observe, so the raw series is sparse.
//
// # Shaping
//
// [Shape] reindexes a sparse series onto every calendar day of a
// [DateRange], so a full year always yields 365 or 366 rows. Days without a
// source row keep all metrics null. Only the three temperature fields are
// converted, to Fahrenheit:
//
//	F = C * 9/5 + 32
//
// The remaining metrics pass through in their source units.
//
// # Station Overrides
//
// Nearest-station lookup picks poor or empty stations for a handful of
// venues. [Registry.Overrides] pins those venues to a known-good station and
// bypasses the lookup entirely.
package domain
